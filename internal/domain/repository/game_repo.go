package repository

import (
	"github.com/google/uuid"
	"github.com/yourusername/trivia-bot/internal/domain/entity"
)

// GameChanges описывает частичное обновление игры. Заполненные поля
// применяются, nil-поля не трогаются. UpdatedAt репозиторий проставляет
// всегда, независимо от набора изменений.
type GameChanges struct {
	Status     *entity.GameStatus
	Round      *int
	ActiveUser *uuid.UUID
}

// IsEmpty проверяет, что изменений нет
func (c GameChanges) IsEmpty() bool {
	return c.Status == nil && c.Round == nil && c.ActiveUser == nil
}

// GameRepository определяет методы для работы с играми
type GameRepository interface {
	Create(chatID int64, createdBy *int64) (*entity.Game, error)
	GetByID(id uuid.UUID) (*entity.Game, error)
	// GetLatestByChat возвращает самую свежую по времени создания игру чата
	// независимо от её статуса; ветвление по статусу — забота вызывающего.
	GetLatestByChat(chatID int64) (*entity.Game, error)
	// GetActive возвращает все игры, не достигшие end_game.
	GetActive() ([]entity.Game, error)
	List(limit, offset int) ([]entity.Game, error)
	Update(id uuid.UUID, changes GameChanges) error
}
