package gamemanager

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"

	"github.com/yourusername/trivia-bot/internal/domain/entity"
	"github.com/yourusername/trivia-bot/internal/telegram"
)

// Selector отвечает за выбор ведущего раунда, набор кандидатных тем
// и выбор вопроса внутри темы. Все выборы равномерно случайные.
type Selector struct {
	config *Config
	deps   *Dependencies
}

// NewSelector создает новый селектор
func NewSelector(config *Config, deps *Dependencies) *Selector {
	return &Selector{
		config: config,
		deps:   deps,
	}
}

// SelectChooser выбирает случайного участника ведущим раунда и переводит
// игру в select_theme. Запись activeUser и смена статуса — один переход.
func (s *Selector) SelectChooser(ctx context.Context, game *entity.Game, players []entity.GamePlayer) (*entity.User, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("game %s has no players to choose from", game.ID)
	}

	picked := players[rand.Intn(len(players))]
	user, err := s.deps.UserRepo.GetByID(picked.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chooser %s: %w", picked.UserID, err)
	}

	status := entity.GameStatusSelectTheme
	if err := s.deps.GameRepo.Update(game.ID, gameChanges(&status, nil, &user.ID)); err != nil {
		return nil, fmt.Errorf("failed to assign chooser for game %s: %w", game.ID, err)
	}
	game.Status = status
	game.ActiveUser = &user.ID

	log.Printf("[Selector] Игра %s: ведущим раунда %d выбран %s", game.ID, game.Round, user.DisplayName())
	return user, nil
}

// OfferThemes набирает ровно ThemeSampleSize различных тем из каталога,
// записывает предложения со свежим номером попытки (максимум+1 для пары
// игра/раунд) и возвращает выбранный набор.
func (s *Selector) OfferThemes(ctx context.Context, game *entity.Game) ([]entity.Theme, error) {
	themes, err := s.deps.ThemeRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load theme catalog: %w", err)
	}
	if len(themes) < ThemeSampleSize {
		// Ошибка конфигурации: каталог обязан содержать минимум ThemeSampleSize тем
		return nil, fmt.Errorf("theme catalog has %d themes, need at least %d", len(themes), ThemeSampleSize)
	}

	offers, err := s.deps.RoundRepo.GetThemeOffers(game.ID, game.Round)
	if err != nil {
		return nil, fmt.Errorf("failed to load theme offers for game %s: %w", game.ID, err)
	}
	iteration := entity.MaxIteration(offers) + 1

	sampled := make([]entity.Theme, 0, ThemeSampleSize)
	for _, idx := range rand.Perm(len(themes))[:ThemeSampleSize] {
		theme := themes[idx]
		if _, err := s.deps.RoundRepo.InsertThemeOffer(game.ID, theme.ID, game.Round, iteration); err != nil {
			return nil, fmt.Errorf("failed to insert theme offer for game %s: %w", game.ID, err)
		}
		sampled = append(sampled, theme)
	}

	log.Printf("[Selector] Игра %s: предложены темы (раунд %d, попытка %d)", game.ID, game.Round, iteration)
	return sampled, nil
}

// StartThemeSelection выбирает ведущего, предлагает набор тем и отправляет
// в чат приглашение к выбору. Используется вотчдогом при завершении набора
// игроков и при повторной попытке выбора темы.
func (s *Selector) StartThemeSelection(ctx context.Context, game *entity.Game, players []entity.GamePlayer) error {
	chooser, err := s.SelectChooser(ctx, game, players)
	if err != nil {
		return err
	}

	themes, err := s.OfferThemes(ctx, game)
	if err != nil {
		return err
	}

	msg := telegram.OutboundMessage{
		ChatID:  game.ChatID,
		Text:    fmt.Sprintf("Пользователю %s необходимо выбрать тему:", chooser.DisplayName()),
		Buttons: themeButtons(themes),
	}
	if err := s.deps.Sender.SendMessage(ctx, msg); err != nil {
		// Транспортная ошибка фиксируется, но не ретраится ядром
		log.Printf("[Selector] Ошибка отправки приглашения к выбору темы (игра %s): %v", game.ID, err)
	}
	return nil
}

// PickQuestion равномерно случайно выбирает вопрос из темы.
// Тема без вопросов — дефект каталога, не состояние игры.
func (s *Selector) PickQuestion(ctx context.Context, themeID uuid.UUID) (*entity.Question, error) {
	questions, err := s.deps.QuestionRepo.GetByTheme(themeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for theme %s: %w", themeID, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("theme %s has no questions", themeID)
	}
	question := questions[rand.Intn(len(questions))]
	return &question, nil
}

// themeButtons строит один ряд кнопок по предложенным темам
func themeButtons(themes []entity.Theme) [][]telegram.Button {
	row := make([]telegram.Button, 0, len(themes))
	for _, t := range themes {
		row = append(row, telegram.Button{Label: t.Title, Token: t.ID.String()})
	}
	return [][]telegram.Button{row}
}
