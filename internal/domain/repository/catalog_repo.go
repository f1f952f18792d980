package repository

import (
	"github.com/google/uuid"
	"github.com/yourusername/trivia-bot/internal/domain/entity"
)

// ThemeRepository определяет методы для работы с каталогом тем
type ThemeRepository interface {
	List() ([]entity.Theme, error)
	Count() (int64, error)
	Create(title string) (*entity.Theme, error)
	GetByTitle(title string) (*entity.Theme, error)
}

// QuestionRepository определяет методы для работы с каталогом вопросов и ответов
type QuestionRepository interface {
	GetByID(id uuid.UUID) (*entity.Question, error)
	GetByTheme(themeID uuid.UUID) ([]entity.Question, error)
	GetAnswers(questionID uuid.UUID) ([]entity.Answer, error)
	GetAnswerByID(id uuid.UUID) (*entity.Answer, error)
	CreateBatch(questions []entity.Question, answers []entity.Answer) error
	CountByTheme(themeID uuid.UUID) (int64, error)
}
