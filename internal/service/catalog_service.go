package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/yourusername/trivia-bot/internal/domain/entity"
	"github.com/yourusername/trivia-bot/internal/domain/repository"
	apperrors "github.com/yourusername/trivia-bot/internal/pkg/errors"
	"github.com/yourusername/trivia-bot/internal/service/gamemanager"
)

// CatalogService отвечает за статический каталог тем, вопросов и ответов:
// проверку его пригодности на старте и пакетный импорт.
type CatalogService struct {
	themeRepo    repository.ThemeRepository
	questionRepo repository.QuestionRepository
}

// NewCatalogService создает новый сервис каталога
func NewCatalogService(themeRepo repository.ThemeRepository, questionRepo repository.QuestionRepository) *CatalogService {
	return &CatalogService{
		themeRepo:    themeRepo,
		questionRepo: questionRepo,
	}
}

// CatalogRow — одна строка импорта: вариант ответа на вопрос темы
type CatalogRow struct {
	Theme     string
	Question  string
	Answer    string
	IsCorrect bool
}

// ImportStats — итоги импорта каталога
type ImportStats struct {
	Themes    int `json:"themes"`
	Questions int `json:"questions"`
	Answers   int `json:"answers"`
}

// Validate проверяет пригодность каталога для игры: тем не меньше, чем
// предлагается на выбор, и у каждой темы есть хотя бы один вопрос.
// Непригодный каталог — ошибка конфигурации, останавливающая запуск,
// а не состояние, которое чинится по ходу обработки обновлений.
func (s *CatalogService) Validate() error {
	themes, err := s.themeRepo.List()
	if err != nil {
		return fmt.Errorf("failed to load theme catalog: %w", err)
	}
	if len(themes) < gamemanager.ThemeSampleSize {
		return fmt.Errorf("%w: has %d themes, need at least %d",
			apperrors.ErrCatalogExhausted, len(themes), gamemanager.ThemeSampleSize)
	}

	for _, theme := range themes {
		count, err := s.questionRepo.CountByTheme(theme.ID)
		if err != nil {
			return fmt.Errorf("failed to count questions of theme %q: %w", theme.Title, err)
		}
		if count == 0 {
			return fmt.Errorf("%w: theme %q has no questions", apperrors.ErrCatalogExhausted, theme.Title)
		}
	}

	log.Printf("[CatalogService] Каталог пригоден: %d тем", len(themes))
	return nil
}

// Import загружает строки каталога: темы создаются по мере встречаемости,
// строки группируются в вопросы с вариантами ответов. У каждого вопроса
// должен быть ровно один правильный вариант.
func (s *CatalogService) Import(rows []CatalogRow) (*ImportStats, error) {
	stats := &ImportStats{}
	themeIDs := make(map[string]uuid.UUID)

	type questionGroup struct {
		themeTitle string
		title      string
		answers    []CatalogRow
	}
	var order []string
	groups := make(map[string]*questionGroup)

	for i, row := range rows {
		theme := strings.TrimSpace(row.Theme)
		question := strings.TrimSpace(row.Question)
		answer := strings.TrimSpace(row.Answer)
		if theme == "" || question == "" || answer == "" {
			return nil, fmt.Errorf("%w: row %d has empty theme, question or answer", apperrors.ErrValidation, i+1)
		}

		key := theme + "\x00" + question
		g, ok := groups[key]
		if !ok {
			g = &questionGroup{themeTitle: theme, title: question}
			groups[key] = g
			order = append(order, key)
		}
		g.answers = append(g.answers, row)
	}

	var questions []entity.Question
	var answers []entity.Answer

	for _, key := range order {
		g := groups[key]

		correct := 0
		for _, a := range g.answers {
			if a.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return nil, fmt.Errorf("%w: question %q has %d correct answers, expected exactly 1",
				apperrors.ErrValidation, g.title, correct)
		}

		themeID, ok := themeIDs[g.themeTitle]
		if !ok {
			id, err := s.resolveTheme(g.themeTitle, stats)
			if err != nil {
				return nil, err
			}
			themeID = id
			themeIDs[g.themeTitle] = themeID
		}

		question := entity.Question{
			ID:      uuid.New(),
			Title:   g.title,
			ThemeID: themeID,
		}
		questions = append(questions, question)
		for _, a := range g.answers {
			answers = append(answers, entity.Answer{
				ID:         uuid.New(),
				Title:      strings.TrimSpace(a.Answer),
				IsCorrect:  a.IsCorrect,
				QuestionID: question.ID,
			})
		}
	}

	if err := s.questionRepo.CreateBatch(questions, answers); err != nil {
		return nil, fmt.Errorf("failed to persist catalog batch: %w", err)
	}

	stats.Questions = len(questions)
	stats.Answers = len(answers)
	log.Printf("[CatalogService] Импортировано: тем %d, вопросов %d, ответов %d",
		stats.Themes, stats.Questions, stats.Answers)
	return stats, nil
}

// resolveTheme находит тему по названию или создает новую
func (s *CatalogService) resolveTheme(title string, stats *ImportStats) (uuid.UUID, error) {
	theme, err := s.themeRepo.GetByTitle(title)
	if err == nil {
		return theme.ID, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("failed to look up theme %q: %w", title, err)
	}

	created, err := s.themeRepo.Create(title)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create theme %q: %w", title, err)
	}
	stats.Themes++
	return created.ID, nil
}
