package repository

import (
	"github.com/google/uuid"
	"github.com/yourusername/trivia-bot/internal/domain/entity"
)

// UserRepository определяет методы для работы с игроками
type UserRepository interface {
	// GetOrCreate возвращает пользователя по Telegram-идентификатору,
	// создавая запись при первом обращении.
	GetOrCreate(telegramID int64, username string) (*entity.User, error)
	GetByID(id uuid.UUID) (*entity.User, error)
}

// PlayerRepository определяет методы для работы с участием игроков в играх
type PlayerRepository interface {
	GetByGame(gameID uuid.UUID) ([]entity.GamePlayer, error)
	// Add вступает пользователя в игру с нулевым счётом за партию.
	// Идемпотентность обеспечивает обработчик: он проверяет участие
	// до вставки, а не репозиторий.
	Add(gameID, userID uuid.UUID) (*entity.GamePlayer, error)
}
