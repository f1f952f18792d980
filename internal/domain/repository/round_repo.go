package repository

import (
	"github.com/google/uuid"
	"github.com/yourusername/trivia-bot/internal/domain/entity"
)

// RoundRepository определяет методы для работы с пораундовыми записями:
// предложениями тем, назначенными вопросами и ответами игроков.
// Все три набора append-only; единственное обновление — пометка
// выбранного предложения темы.
type RoundRepository interface {
	// Предложения тем
	InsertThemeOffer(gameID, themeID uuid.UUID, round, iteration int) (*entity.GameTheme, error)
	GetThemeOffers(gameID uuid.UUID, round int) ([]entity.GameTheme, error)
	// MarkThemeSelected помечает выбранным предложение данной темы
	// в указанной попытке выбора.
	MarkThemeSelected(gameID, themeID uuid.UUID, round, iteration int) error

	// Назначенный вопрос раунда
	InsertGameQuestion(gameID, questionID uuid.UUID, round int) (*entity.GameQuestion, error)
	GetGameQuestion(gameID uuid.UUID, round int) (*entity.GameQuestion, error)

	// Ответы игроков
	InsertGameAnswer(gameID, answerID, userID uuid.UUID, round int) (*entity.GameAnswer, error)
	FindGameAnswer(gameID, answerID, userID uuid.UUID, round int) (*entity.GameAnswer, error)
	GetGameAnswers(gameID uuid.UUID) ([]entity.GameAnswer, error)
}
