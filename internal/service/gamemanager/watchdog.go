package gamemanager

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/trivia-bot/internal/domain/entity"
	"github.com/yourusername/trivia-bot/internal/telegram"
)

// Watchdog продвигает игры, в которых игроки бездействуют. Дедлайны
// сравниваются с UpdatedAt игры, отдельных таймеров по стадиям нет:
// любая запись в игру сбрасывает отсчёт.
type Watchdog struct {
	config   *Config
	deps     *Dependencies
	selector *Selector

	// now подменяется в тестах
	now func() time.Time
}

// NewWatchdog создает новый вотчдог
func NewWatchdog(config *Config, deps *Dependencies, selector *Selector) *Watchdog {
	return &Watchdog{
		config:   config,
		deps:     deps,
		selector: selector,
		now:      time.Now,
	}
}

// Tick один раз проходит по всем нетерминальным играм и применяет
// просроченные переходы. Ошибка по одной игре логируется и не мешает
// обработке остальных.
func (w *Watchdog) Tick(ctx context.Context) {
	games, err := w.deps.GameRepo.GetActive()
	if err != nil {
		log.Printf("[Watchdog] Ошибка загрузки активных игр: %v", err)
		return
	}

	for i := range games {
		game := &games[i]
		var checkErr error

		switch game.Status {
		case entity.GameStatusWaitPlayer:
			checkErr = w.checkWaitPlayer(ctx, game)
		case entity.GameStatusSelectTheme:
			checkErr = w.checkSelectTheme(ctx, game)
		case entity.GameStatusAskQuestion:
			checkErr = w.checkAskQuestion(ctx, game)
		case entity.GameStatusCheckQuestion:
			// Стадия подведения итогов не имеет дедлайна (заглушка)
		case entity.GameStatusEndGame:
			// GetActive такие игры не возвращает
		default:
			checkErr = fmt.Errorf("unknown game status %q", game.Status)
		}

		if checkErr != nil {
			log.Printf("[Watchdog] Игра %s: %v", game.ID, checkErr)
		}
	}
}

// checkWaitPlayer закрывает набор игроков по истечении окна: при нехватке
// участников игра отменяется, иначе начинается выбор темы.
func (w *Watchdog) checkWaitPlayer(ctx context.Context, game *entity.Game) error {
	if !game.Expired(w.now(), w.config.RecruitWindow) {
		return nil
	}

	players, err := w.deps.PlayerRepo.GetByGame(game.ID)
	if err != nil {
		return fmt.Errorf("failed to load players: %w", err)
	}

	if len(players) < w.config.MinPlayers {
		log.Printf("[Watchdog] Игра %s: набрано %d из %d игроков, отмена", game.ID, len(players), w.config.MinPlayers)
		return w.finishGame(ctx, game, textGameCancelled)
	}

	return w.selector.StartThemeSelection(ctx, game, players)
}

// checkSelectTheme реагирует на истечение окна выбора темы. Успевший
// «в последний момент» выбор признается действительным; исчерпание
// попыток отменяет игру; иначе предлагается свежий набор тем.
func (w *Watchdog) checkSelectTheme(ctx context.Context, game *entity.Game) error {
	if !game.Expired(w.now(), w.config.ThemeWindow) {
		return nil
	}

	offers, err := w.deps.RoundRepo.GetThemeOffers(game.ID, game.Round)
	if err != nil {
		return fmt.Errorf("failed to load theme offers: %w", err)
	}

	if entity.SelectedTheme(offers) != nil {
		// Выбор уже сделан — только фиксируем переход
		status := entity.GameStatusAskQuestion
		if err := w.deps.GameRepo.Update(game.ID, gameChanges(&status, nil, nil)); err != nil {
			return fmt.Errorf("failed to force ask_question: %w", err)
		}
		return nil
	}

	if entity.MaxIteration(offers) >= w.config.ThemeRetryLimit {
		log.Printf("[Watchdog] Игра %s: попытки выбора темы исчерпаны, отмена", game.ID)
		return w.finishGame(ctx, game, textThemesExpired)
	}

	players, err := w.deps.PlayerRepo.GetByGame(game.ID)
	if err != nil {
		return fmt.Errorf("failed to load players: %w", err)
	}
	return w.selector.StartThemeSelection(ctx, game, players)
}

// checkAskQuestion закрывает приём ответов по истечении окна и продвигает
// раунд: либо к выбору темы следующего раунда, либо к завершению игры.
func (w *Watchdog) checkAskQuestion(ctx context.Context, game *entity.Game) error {
	if !game.Expired(w.now(), w.config.AnswerWindow) {
		return nil
	}

	newRound := game.Round + 1
	if game.Round < w.config.Rounds {
		status := entity.GameStatusSelectTheme
		if err := w.deps.GameRepo.Update(game.ID, gameChanges(&status, &newRound, nil)); err != nil {
			return fmt.Errorf("failed to advance to next round: %w", err)
		}
		log.Printf("[Watchdog] Игра %s: раунд %d закрыт, выбор темы раунда %d", game.ID, game.Round, newRound)
		return nil
	}

	status := entity.GameStatusEndGame
	if err := w.deps.GameRepo.Update(game.ID, gameChanges(&status, &newRound, nil)); err != nil {
		return fmt.Errorf("failed to finish game: %w", err)
	}
	log.Printf("[Watchdog] Игра %s: все раунды сыграны, игра завершена", game.ID)

	w.announce(ctx, game.ChatID, textGameFinished)
	return nil
}

// finishGame переводит игру в end_game и объявляет причину в чат
func (w *Watchdog) finishGame(ctx context.Context, game *entity.Game, announcement string) error {
	status := entity.GameStatusEndGame
	if err := w.deps.GameRepo.Update(game.ID, gameChanges(&status, nil, nil)); err != nil {
		return fmt.Errorf("failed to finish game: %w", err)
	}
	w.announce(ctx, game.ChatID, announcement)
	return nil
}

// announce отправляет в чат объявление с кнопкой создания новой игры.
// Транспортная ошибка фиксируется, повторной отправки ядро не делает.
func (w *Watchdog) announce(ctx context.Context, chatID int64, text string) {
	msg := telegram.OutboundMessage{
		ChatID:  chatID,
		Text:    text,
		Buttons: [][]telegram.Button{{{Label: btnCreateGame, Token: TokenCreateGame}}},
	}
	if err := w.deps.Sender.SendMessage(ctx, msg); err != nil {
		log.Printf("[Watchdog] Ошибка отправки объявления в чат %d: %v", chatID, err)
	}
}
