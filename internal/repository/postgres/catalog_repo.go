package postgres

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/trivia-bot/internal/domain/entity"
	apperrors "github.com/yourusername/trivia-bot/internal/pkg/errors"
)

// ThemeRepo реализует repository.ThemeRepository
type ThemeRepo struct {
	db *gorm.DB
}

// NewThemeRepo создает новый репозиторий каталога тем
func NewThemeRepo(db *gorm.DB) *ThemeRepo {
	return &ThemeRepo{db: db}
}

// List возвращает весь каталог тем
func (r *ThemeRepo) List() ([]entity.Theme, error) {
	var themes []entity.Theme
	err := r.db.Order("title").Find(&themes).Error
	if err != nil {
		return nil, err
	}
	return themes, nil
}

// Count возвращает размер каталога тем
func (r *ThemeRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entity.Theme{}).Count(&count).Error
	return count, err
}

// Create добавляет тему в каталог
func (r *ThemeRepo) Create(title string) (*entity.Theme, error) {
	theme := &entity.Theme{ID: uuid.New(), Title: title}
	if err := r.db.Create(theme).Error; err != nil {
		return nil, err
	}
	return theme, nil
}

// GetByTitle возвращает тему по названию
func (r *ThemeRepo) GetByTitle(title string) (*entity.Theme, error) {
	var theme entity.Theme
	err := r.db.Where("title = ?", title).First(&theme).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &theme, nil
}

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий каталога вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// GetByID возвращает вопрос по идентификатору
func (r *QuestionRepo) GetByID(id uuid.UUID) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByTheme возвращает все вопросы темы
func (r *QuestionRepo) GetByTheme(themeID uuid.UUID) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Where("theme_id = ?", themeID).Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// GetAnswers возвращает варианты ответа на вопрос
func (r *QuestionRepo) GetAnswers(questionID uuid.UUID) ([]entity.Answer, error) {
	var answers []entity.Answer
	err := r.db.Where("question_id = ?", questionID).Order("id").Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// GetAnswerByID возвращает вариант ответа по идентификатору
func (r *QuestionRepo) GetAnswerByID(id uuid.UUID) (*entity.Answer, error) {
	var answer entity.Answer
	err := r.db.First(&answer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &answer, nil
}

// CreateBatch создает пакет вопросов вместе с вариантами ответов
func (r *QuestionRepo) CreateBatch(questions []entity.Question, answers []entity.Answer) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountByTheme возвращает количество вопросов темы
func (r *QuestionRepo) CountByTheme(themeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Question{}).Where("theme_id = ?", themeID).Count(&count).Error
	return count, err
}
