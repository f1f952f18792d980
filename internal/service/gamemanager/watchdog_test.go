package gamemanager

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trivia-bot/internal/domain/entity"
)

// createTestWatchdog создаёт Watchdog с фиксированным временем
func createTestWatchdog(deps *Dependencies, now time.Time) *Watchdog {
	config := DefaultConfig()
	selector := NewSelector(config, deps)
	watchdog := NewWatchdog(config, deps, selector)
	watchdog.now = func() time.Time { return now }
	return watchdog
}

func TestWatchdog_WaitPlayer_NotEnoughPlayers_Cancels(t *testing.T) {
	// Arrange
	mockGameRepo := new(MockGameRepo)
	mockPlayerRepo := new(MockPlayerRepo)
	mockSender := new(MockSender)
	deps := newTestDeps(mockGameRepo, new(MockUserRepo), mockPlayerRepo, new(MockThemeRepo), new(MockQuestionRepo), new(MockRoundRepo), mockSender)

	now := time.Now()
	game := entity.Game{
		ID:        uuid.New(),
		ChatID:    100500,
		Status:    entity.GameStatusWaitPlayer,
		UpdatedAt: now.Add(-2 * time.Minute), // Окно набора (60с) давно истекло
	}

	mockGameRepo.On("GetActive").Return([]entity.Game{game}, nil)
	// Один игрок при минимуме в два
	mockPlayerRepo.On("GetByGame", game.ID).Return([]entity.GamePlayer{
		{ID: uuid.New(), GameID: game.ID, UserID: uuid.New()},
	}, nil)
	endGame := entity.GameStatusEndGame
	mockGameRepo.On("Update", game.ID, gameChanges(&endGame, nil, nil)).Return(nil)
	mockSender.On("SendMessage", mock.Anything, mock.Anything).Return(nil)

	watchdog := createTestWatchdog(deps, now)

	// Act
	watchdog.Tick(context.Background())

	// Assert
	mockGameRepo.AssertExpectations(t)
	require.Len(t, mockSender.Sent, 1, "Должно быть одно объявление об отмене")
	assert.Equal(t, "Не удалось набрать минимальное количество игроков для игры. Игра отменена. Для продолжения создайте новую игру.", mockSender.Sent[0].Text)
	assert.Equal(t, TokenCreateGame, mockSender.Sent[0].Buttons[0][0].Token, "Объявление должно предлагать создать новую игру")
}

func TestWatchdog_WaitPlayer_EnoughPlayers_StartsThemeSelection(t *testing.T) {
	// Arrange
	mockGameRepo := new(MockGameRepo)
	mockUserRepo := new(MockUserRepo)
	mockPlayerRepo := new(MockPlayerRepo)
	mockThemeRepo := new(MockThemeRepo)
	mockRoundRepo := new(MockRoundRepo)
	mockSender := new(MockSender)
	deps := newTestDeps(mockGameRepo, mockUserRepo, mockPlayerRepo, mockThemeRepo, new(MockQuestionRepo), mockRoundRepo, mockSender)

	now := time.Now()
	game := entity.Game{
		ID:        uuid.New(),
		ChatID:    100500,
		Status:    entity.GameStatusWaitPlayer,
		Round:     0,
		UpdatedAt: now.Add(-2 * time.Minute),
	}
	alice := &entity.User{ID: uuid.New(), TelegramID: 42, Username: "alice"}
	bob := &entity.User{ID: uuid.New(), TelegramID: 43, Username: "bob"}
	players := []entity.GamePlayer{
		{ID: uuid.New(), GameID: game.ID, UserID: alice.ID},
		{ID: uuid.New(), GameID: game.ID, UserID: bob.ID},
	}
	themes := []entity.Theme{
		{ID: uuid.New(), Title: "История"},
		{ID: uuid.New(), Title: "География"},
		{ID: uuid.New(), Title: "Наука"},
	}

	mockGameRepo.On("GetActive").Return([]entity.Game{game}, nil)
	mockPlayerRepo.On("GetByGame", game.ID).Return(players, nil)
	// Ведущий выбирается случайно, подходит любой из двух
	mockUserRepo.On("GetByID", alice.ID).Return(alice, nil).Maybe()
	mockUserRepo.On("GetByID", bob.ID).Return(bob, nil).Maybe()
	mockGameRepo.On("Update", game.ID, mock.AnythingOfType("repository.GameChanges")).Return(nil)
	mockThemeRepo.On("List").Return(themes, nil)
	// Предложений ещё не было, попытка должна стать первой
	mockRoundRepo.On("GetThemeOffers", game.ID, 0).Return([]entity.GameTheme{}, nil)
	for _, theme := range themes {
		mockRoundRepo.On("InsertThemeOffer", game.ID, theme.ID, 0, 1).
			Return(&entity.GameTheme{ID: uuid.New(), GameID: game.ID, ThemeID: theme.ID, Round: 0, Iteration: 1}, nil)
	}
	mockSender.On("SendMessage", mock.Anything, mock.Anything).Return(nil)

	watchdog := createTestWatchdog(deps, now)

	// Act
	watchdog.Tick(context.Background())

	// Assert
	mockRoundRepo.AssertExpectations(t)
	require.Len(t, mockSender.Sent, 1)
	msg := mockSender.Sent[0]
	assert.Contains(t, msg.Text, "необходимо выбрать тему", "В чат должно уйти приглашение к выбору темы")
	require.Len(t, msg.Buttons, 1, "Темы предлагаются одним рядом кнопок")
	assert.Len(t, msg.Buttons[0], ThemeSampleSize, "Предлагается ровно три темы")
}

func TestWatchdog_SelectTheme_AlreadySelected_ForcesAskQuestion(t *testing.T) {
	// Arrange
	mockGameRepo := new(MockGameRepo)
	mockRoundRepo := new(MockRoundRepo)
	mockSender := new(MockSender)
	deps := newTestDeps(mockGameRepo, new(MockUserRepo), new(MockPlayerRepo), new(MockThemeRepo), new(MockQuestionRepo), mockRoundRepo, mockSender)

	now := time.Now()
	game := entity.Game{
		ID:        uuid.New(),
		ChatID:    100500,
		Status:    entity.GameStatusSelectTheme,
		Round:     1,
		UpdatedAt: now.Add(-1 * time.Minute),
	}

	mockGameRepo.On("GetActive").Return([]entity.Game{game}, nil)
	// Выбор был сделан, но статус не успел поменяться
	mockRoundRepo.On("GetThemeOffers", game.ID, 1).Return([]entity.GameTheme{
		{ID: uuid.New(), GameID: game.ID, ThemeID: uuid.New(), Round: 1, Iteration: 1, IsSelected: true},
	}, nil)
	askQuestion := entity.GameStatusAskQuestion
	// Только смена статуса, раунд не трогается
	mockGameRepo.On("Update", game.ID, gameChanges(&askQuestion, nil, nil)).Return(nil)

	watchdog := createTestWatchdog(deps, now)

	// Act
	watchdog.Tick(context.Background())

	// Assert
	mockGameRepo.AssertExpectations(t)
	assert.Empty(t, mockSender.Sent, "Фиксация уже сделанного выбора не требует сообщений")
}

func TestWatchdog_SelectTheme_RetriesExhausted_Cancels(t *testing.T) {
	// Arrange
	mockGameRepo := new(MockGameRepo)
	mockRoundRepo := new(MockRoundRepo)
	mockSender := new(MockSender)
	deps := newTestDeps(mockGameRepo, new(MockUserRepo), new(MockPlayerRepo), new(MockThemeRepo), new(MockQuestionRepo), mockRoundRepo, mockSender)

	now := time.Now()
	game := entity.Game{
		ID:        uuid.New(),
		ChatID:    100500,
		Status:    entity.GameStatusSelectTheme,
		Round:     1,
		UpdatedAt: now.Add(-1 * time.Minute),
	}

	mockGameRepo.On("GetActive").Return([]entity.Game{game}, nil)
	// Третья попытка (предел по умолчанию) истекла без выбора
	mockRoundRepo.On("GetThemeOffers", game.ID, 1).Return([]entity.GameTheme{
		{ID: uuid.New(), GameID: game.ID, ThemeID: uuid.New(), Round: 1, Iteration: 3},
		{ID: uuid.New(), GameID: game.ID, ThemeID: uuid.New(), Round: 1, Iteration: 3},
		{ID: uuid.New(), GameID: game.ID, ThemeID: uuid.New(), Round: 1, Iteration: 3},
	}, nil)
	endGame := entity.GameStatusEndGame
	mockGameRepo.On("Update", game.ID, gameChanges(&endGame, nil, nil)).Return(nil)
	mockSender.On("SendMessage", mock.Anything, mock.Anything).Return(nil)

	watchdog := createTestWatchdog(deps, now)

	// Act
	watchdog.Tick(context.Background())

	// Assert
	mockGameRepo.AssertExpectations(t)
	require.Len(t, mockSender.Sent, 1)
	assert.Equal(t, "Доступное количество попыток выбора темы закончилось. Игра отменена. Для продолжения создайте новую игру.", mockSender.Sent[0].Text)
}

func TestWatchdog_AskQuestion_MidGame_AdvancesToNextRound(t *testing.T) {
	// Arrange
	mockGameRepo := new(MockGameRepo)
	mockSender := new(MockSender)
	deps := newTestDeps(mockGameRepo, new(MockUserRepo), new(MockPlayerRepo), new(MockThemeRepo), new(MockQuestionRepo), new(MockRoundRepo), mockSender)

	now := time.Now()
	game := entity.Game{
		ID:        uuid.New(),
		ChatID:    100500,
		Status:    entity.GameStatusAskQuestion,
		Round:     2, // Меньше лимита раундов (3)
		UpdatedAt: now.Add(-1 * time.Minute),
	}

	mockGameRepo.On("GetActive").Return([]entity.Game{game}, nil)
	selectTheme := entity.GameStatusSelectTheme
	newRound := 3
	mockGameRepo.On("Update", game.ID, gameChanges(&selectTheme, &newRound, nil)).Return(nil)

	watchdog := createTestWatchdog(deps, now)

	// Act
	watchdog.Tick(context.Background())

	// Assert
	mockGameRepo.AssertExpectations(t)
	assert.Empty(t, mockSender.Sent, "Переход к следующему раунду не объявляется вотчдогом")
}

func TestWatchdog_AskQuestion_LastRound_FinishesGame(t *testing.T) {
	// Arrange
	mockGameRepo := new(MockGameRepo)
	mockSender := new(MockSender)
	deps := newTestDeps(mockGameRepo, new(MockUserRepo), new(MockPlayerRepo), new(MockThemeRepo), new(MockQuestionRepo), new(MockRoundRepo), mockSender)

	now := time.Now()
	game := entity.Game{
		ID:        uuid.New(),
		ChatID:    100500,
		Status:    entity.GameStatusAskQuestion,
		Round:     3, // Достигнут лимит раундов
		UpdatedAt: now.Add(-1 * time.Minute),
	}

	mockGameRepo.On("GetActive").Return([]entity.Game{game}, nil)
	endGame := entity.GameStatusEndGame
	newRound := 4
	mockGameRepo.On("Update", game.ID, gameChanges(&endGame, &newRound, nil)).Return(nil)
	mockSender.On("SendMessage", mock.Anything, mock.Anything).Return(nil)

	watchdog := createTestWatchdog(deps, now)

	// Act
	watchdog.Tick(context.Background())

	// Assert
	mockGameRepo.AssertExpectations(t)
	require.Len(t, mockSender.Sent, 1)
	assert.Equal(t, "Игра закончена.", mockSender.Sent[0].Text)
	assert.Equal(t, TokenCreateGame, mockSender.Sent[0].Buttons[0][0].Token)
}

func TestWatchdog_FreshGame_NoAction(t *testing.T) {
	// Arrange
	mockGameRepo := new(MockGameRepo)
	mockPlayerRepo := new(MockPlayerRepo)
	mockSender := new(MockSender)
	deps := newTestDeps(mockGameRepo, new(MockUserRepo), mockPlayerRepo, new(MockThemeRepo), new(MockQuestionRepo), new(MockRoundRepo), mockSender)

	now := time.Now()
	// Игра обновлялась только что, все окна ещё открыты
	games := []entity.Game{
		{ID: uuid.New(), ChatID: 1, Status: entity.GameStatusWaitPlayer, UpdatedAt: now.Add(-5 * time.Second)},
		{ID: uuid.New(), ChatID: 2, Status: entity.GameStatusSelectTheme, UpdatedAt: now.Add(-5 * time.Second)},
		{ID: uuid.New(), ChatID: 3, Status: entity.GameStatusAskQuestion, UpdatedAt: now.Add(-5 * time.Second)},
	}
	mockGameRepo.On("GetActive").Return(games, nil)

	watchdog := createTestWatchdog(deps, now)

	// Act
	watchdog.Tick(context.Background())

	// Assert: никаких записей и сообщений
	mockGameRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mockPlayerRepo.AssertNotCalled(t, "GetByGame", mock.Anything)
	assert.Empty(t, mockSender.Sent)
}
