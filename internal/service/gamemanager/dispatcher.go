package gamemanager

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/yourusername/trivia-bot/internal/domain/entity"
	apperrors "github.com/yourusername/trivia-bot/internal/pkg/errors"
	"github.com/yourusername/trivia-bot/internal/telegram"
)

// Dispatcher направляет входящее обновление ровно одному обработчику,
// выбранному по текущему статусу игры чата. Обработчик — единственный
// писатель состояния игры для этого обновления; на одно обновление
// приходится не более одной последовательности записей и не более
// одного исходящего сообщения.
type Dispatcher struct {
	config   *Config
	deps     *Dependencies
	selector *Selector
}

// NewDispatcher создает новый диспетчер обновлений
func NewDispatcher(config *Config, deps *Dependencies, selector *Selector) *Dispatcher {
	return &Dispatcher{
		config:   config,
		deps:     deps,
		selector: selector,
	}
}

// Dispatch обрабатывает одно входящее обновление и возвращает ответное
// сообщение. Отсутствие игры у чата трактуется как статус end_game.
// Ошибка обработчика изолируется вызывающим циклом: обновление
// пропускается, сообщение не отправляется.
func (d *Dispatcher) Dispatch(ctx context.Context, upd telegram.Update) (*telegram.OutboundMessage, error) {
	game, err := d.deps.GameRepo.GetLatestByChat(upd.ChatID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve game for chat %d: %w", upd.ChatID, err)
	}

	status := entity.GameStatusEndGame
	if game != nil {
		status = game.Status
	}

	// Закрытый switch по статусу: новая стадия игры не скомпилируется
	// без явной ветки здесь.
	switch status {
	case entity.GameStatusWaitPlayer:
		return d.handleWaitPlayer(ctx, game, upd)
	case entity.GameStatusSelectTheme:
		return d.handleSelectTheme(ctx, game, upd)
	case entity.GameStatusAskQuestion:
		return d.handleAskQuestion(ctx, game, upd)
	case entity.GameStatusCheckQuestion:
		return d.handleCheckQuestion(ctx, game, upd)
	case entity.GameStatusEndGame:
		return d.handleEndGame(ctx, upd)
	default:
		return nil, fmt.Errorf("unknown game status %q for chat %d", status, upd.ChatID)
	}
}

// handleEndGame обрабатывает обновления чата без активной игры:
// кнопка создания заводит новую игру, всё остальное получает
// приглашение её создать.
func (d *Dispatcher) handleEndGame(ctx context.Context, upd telegram.Update) (*telegram.OutboundMessage, error) {
	if upd.IsCallback() && upd.Token == TokenCreateGame {
		creator := upd.From.ID
		game, err := d.deps.GameRepo.Create(upd.ChatID, &creator)
		if err != nil {
			return nil, fmt.Errorf("failed to create game for chat %d: %w", upd.ChatID, err)
		}
		log.Printf("[Dispatcher] Чат %d: создана игра %s", upd.ChatID, game.ID)

		return &telegram.OutboundMessage{
			ChatID:  upd.ChatID,
			Text:    textGameCreated,
			Buttons: [][]telegram.Button{{{Label: btnJoinGame, Token: TokenJoinGame}}},
		}, nil
	}

	return &telegram.OutboundMessage{
		ChatID:  upd.ChatID,
		Text:    textNoGame,
		Buttons: [][]telegram.Button{{{Label: btnCreateGame, Token: TokenCreateGame}}},
	}, nil
}

// handleWaitPlayer обрабатывает стадию набора игроков. Повторное
// вступление того же игрока не создает вторую запись участия.
func (d *Dispatcher) handleWaitPlayer(ctx context.Context, game *entity.Game, upd telegram.Update) (*telegram.OutboundMessage, error) {
	joinButtons := [][]telegram.Button{{{Label: btnJoinGame, Token: TokenJoinGame}}}

	if !upd.IsCallback() || upd.Token != TokenJoinGame {
		return &telegram.OutboundMessage{
			ChatID:  upd.ChatID,
			Text:    textJoinPrompt,
			Buttons: joinButtons,
		}, nil
	}

	user, err := d.deps.UserRepo.GetOrCreate(upd.From.ID, upd.From.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %d: %w", upd.From.ID, err)
	}

	players, err := d.deps.PlayerRepo.GetByGame(game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load players of game %s: %w", game.ID, err)
	}
	for _, p := range players {
		if p.UserID == user.ID {
			return &telegram.OutboundMessage{
				ChatID:  upd.ChatID,
				Text:    fmt.Sprintf("Пользователь %s уже в игре.", user.DisplayName()),
				Buttons: joinButtons,
			}, nil
		}
	}

	if _, err := d.deps.PlayerRepo.Add(game.ID, user.ID); err != nil {
		return nil, fmt.Errorf("failed to add user %s to game %s: %w", user.ID, game.ID, err)
	}
	log.Printf("[Dispatcher] Игра %s: добавлен игрок %s", game.ID, user.DisplayName())

	return &telegram.OutboundMessage{
		ChatID:  upd.ChatID,
		Text:    fmt.Sprintf("Пользователь %s добавлен в игру", user.DisplayName()),
		Buttons: joinButtons,
	}, nil
}

// handleSelectTheme обрабатывает выбор темы ведущим раунда. Нажатие
// кнопки предложенной темы от ведущего запускает раунд: тема помечается
// выбранной, раунд увеличивается, случайный вопрос темы назначается игре
// и задается в чат. Все прочие обновления получают напоминание о том,
// кто должен выбирать, с повторным показом открытых вариантов.
func (d *Dispatcher) handleSelectTheme(ctx context.Context, game *entity.Game, upd telegram.Update) (*telegram.OutboundMessage, error) {
	if game.ActiveUser == nil {
		return nil, fmt.Errorf("game %s is in select_theme without active user", game.ID)
	}
	chooser, err := d.deps.UserRepo.GetByID(*game.ActiveUser)
	if err != nil {
		return nil, fmt.Errorf("failed to load chooser of game %s: %w", game.ID, err)
	}

	actor, err := d.deps.UserRepo.GetOrCreate(upd.From.ID, upd.From.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %d: %w", upd.From.ID, err)
	}

	offers, err := d.deps.RoundRepo.GetThemeOffers(game.ID, game.Round)
	if err != nil {
		return nil, fmt.Errorf("failed to load theme offers of game %s: %w", game.ID, err)
	}

	chosen := d.matchThemeChoice(upd, offers)
	if !game.IsChooser(actor.ID) || chosen == nil {
		return d.remindChooser(game, chooser, offers)
	}

	// Намерение подтверждено: фиксируем выбор и запускаем раунд
	newRound := game.Round + 1
	status := entity.GameStatusAskQuestion
	if err := d.deps.GameRepo.Update(game.ID, gameChanges(&status, &newRound, nil)); err != nil {
		return nil, fmt.Errorf("failed to advance game %s to ask_question: %w", game.ID, err)
	}
	if err := d.deps.RoundRepo.MarkThemeSelected(game.ID, chosen.ThemeID, game.Round, chosen.Iteration); err != nil {
		return nil, fmt.Errorf("failed to mark theme selected for game %s: %w", game.ID, err)
	}

	question, err := d.selector.PickQuestion(ctx, chosen.ThemeID)
	if err != nil {
		return nil, fmt.Errorf("failed to pick question for game %s: %w", game.ID, err)
	}
	if _, err := d.deps.RoundRepo.InsertGameQuestion(game.ID, question.ID, newRound); err != nil {
		return nil, fmt.Errorf("failed to assign question to game %s: %w", game.ID, err)
	}

	answers, err := d.deps.QuestionRepo.GetAnswers(question.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers of question %s: %w", question.ID, err)
	}
	log.Printf("[Dispatcher] Игра %s: раунд %d, задан вопрос %s", game.ID, newRound, question.ID)

	return &telegram.OutboundMessage{
		ChatID:  game.ChatID,
		Text:    question.Title,
		Buttons: answerButtons(answers),
	}, nil
}

// matchThemeChoice проверяет, что обновление — нажатие кнопки темы
// из последней предложенной выборки, и возвращает совпавшее предложение
func (d *Dispatcher) matchThemeChoice(upd telegram.Update, offers []entity.GameTheme) *entity.GameTheme {
	if !upd.IsCallback() {
		return nil
	}
	themeID, err := uuid.Parse(upd.Token)
	if err != nil {
		return nil
	}
	latest := entity.LatestOffer(offers)
	for i := range latest {
		if latest[i].ThemeID == themeID {
			return &latest[i]
		}
	}
	return nil
}

// remindChooser напоминает, кто выбирает тему, и повторяет открытые варианты
func (d *Dispatcher) remindChooser(game *entity.Game, chooser *entity.User, offers []entity.GameTheme) (*telegram.OutboundMessage, error) {
	titles, err := d.themeTitles()
	if err != nil {
		return nil, err
	}

	latest := entity.LatestOffer(offers)
	row := make([]telegram.Button, 0, len(latest))
	for _, o := range latest {
		row = append(row, telegram.Button{Label: titles[o.ThemeID], Token: o.ThemeID.String()})
	}

	return &telegram.OutboundMessage{
		ChatID:  game.ChatID,
		Text:    fmt.Sprintf("Только пользователь %s может выбрать тему:", chooser.DisplayName()),
		Buttons: [][]telegram.Button{row},
	}, nil
}

// themeTitles строит отображение идентификатора темы в название
func (d *Dispatcher) themeTitles() (map[uuid.UUID]string, error) {
	themes, err := d.deps.ThemeRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load theme catalog: %w", err)
	}
	titles := make(map[uuid.UUID]string, len(themes))
	for _, t := range themes {
		titles[t.ID] = t.Title
	}
	return titles, nil
}

// handleAskQuestion обрабатывает приём ответов на заданный вопрос.
// Повторный ответ тем же вариантом в том же раунде не создает вторую
// запись и получает уведомление о дубликате.
func (d *Dispatcher) handleAskQuestion(ctx context.Context, game *entity.Game, upd telegram.Update) (*telegram.OutboundMessage, error) {
	gq, err := d.deps.RoundRepo.GetGameQuestion(game.ID, game.Round)
	if err != nil {
		// Отсутствие назначенного вопроса — фатально для этого обновления
		return nil, fmt.Errorf("failed to load question assignment of game %s round %d: %w", game.ID, game.Round, err)
	}
	question, err := d.deps.QuestionRepo.GetByID(gq.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question %s: %w", gq.QuestionID, err)
	}
	answers, err := d.deps.QuestionRepo.GetAnswers(question.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers of question %s: %w", question.ID, err)
	}

	answer := matchAnswerChoice(upd, answers)
	if answer == nil {
		// Не ответ — повторяем вопрос с вариантами
		return &telegram.OutboundMessage{
			ChatID:  game.ChatID,
			Text:    question.Title,
			Buttons: answerButtons(answers),
		}, nil
	}

	user, err := d.deps.UserRepo.GetOrCreate(upd.From.ID, upd.From.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %d: %w", upd.From.ID, err)
	}

	existing, err := d.deps.RoundRepo.FindGameAnswer(game.ID, answer.ID, user.ID, game.Round)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check duplicate answer: %w", err)
	}
	duplicate := existing != nil

	if !duplicate {
		if _, err := d.deps.RoundRepo.InsertGameAnswer(game.ID, answer.ID, user.ID, game.Round); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				// Подстраховка уникального индекса: считаем дубликатом
				duplicate = true
			} else {
				return nil, fmt.Errorf("failed to record answer of user %s: %w", user.ID, err)
			}
		}
	}

	text := fmt.Sprintf("Ответ пользователя %s записан\n%s", user.DisplayName(), question.Title)
	if duplicate {
		text = fmt.Sprintf("Пользователь %s уже отвечал на этот вопрос\n%s", user.DisplayName(), question.Title)
	} else {
		log.Printf("[Dispatcher] Игра %s: записан ответ игрока %s (раунд %d)", game.ID, user.DisplayName(), game.Round)
	}

	return &telegram.OutboundMessage{
		ChatID:  game.ChatID,
		Text:    text,
		Buttons: answerButtons(answers),
	}, nil
}

// handleCheckQuestion — заглушка стадии подведения итогов раунда.
// Подсчёт очков по правильности ответов пока не реализован; обработчик
// обязан вернуть корректный ответ, чтобы не нарушать контракт диспетчера.
func (d *Dispatcher) handleCheckQuestion(ctx context.Context, game *entity.Game, upd telegram.Update) (*telegram.OutboundMessage, error) {
	return &telegram.OutboundMessage{
		ChatID: upd.ChatID,
		Text:   textUnknownCommand,
	}, nil
}

// matchAnswerChoice проверяет, что обновление — нажатие кнопки одного
// из вариантов ответа на текущий вопрос
func matchAnswerChoice(upd telegram.Update, answers []entity.Answer) *entity.Answer {
	if !upd.IsCallback() {
		return nil
	}
	answerID, err := uuid.Parse(upd.Token)
	if err != nil {
		return nil
	}
	for i := range answers {
		if answers[i].ID == answerID {
			return &answers[i]
		}
	}
	return nil
}

// answerButtons строит кнопки по вариантам ответа, по одной в ряду
func answerButtons(answers []entity.Answer) [][]telegram.Button {
	grid := make([][]telegram.Button, 0, len(answers))
	for _, a := range answers {
		grid = append(grid, []telegram.Button{{Label: a.Title, Token: a.ID.String()}})
	}
	return grid
}
