package gamemanager

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trivia-bot/internal/domain/entity"
	"github.com/yourusername/trivia-bot/internal/domain/repository"
	"github.com/yourusername/trivia-bot/internal/telegram"
)

// Callback-токены inline-кнопок
const (
	TokenCreateGame = "/create_game"
	TokenJoinGame   = "/join_game"
)

// ThemeSampleSize — сколько тем предлагается на выбор за одну попытку.
// Каталог меньшего размера — ошибка конфигурации, проверяется на старте.
const ThemeSampleSize = 3

// Тексты сообщений бота
const (
	textGameCreated    = "Создана новая игра. Присоединитесь для участия."
	textNoGame         = "Игра не создана. Создайте новую игру."
	textJoinPrompt     = "Игра создана. Присоединитесь для участия."
	textGameCancelled  = "Не удалось набрать минимальное количество игроков для игры. Игра отменена. Для продолжения создайте новую игру."
	textThemesExpired  = "Доступное количество попыток выбора темы закончилось. Игра отменена. Для продолжения создайте новую игру."
	textGameFinished   = "Игра закончена."
	textUnknownCommand = "Не найдена команда"

	btnCreateGame = "Создать игру"
	btnJoinGame   = "Присоединиться к игре"
)

// Config содержит настройки игрового цикла
type Config struct {
	// MinPlayers: Минимальное количество игроков, чтобы игра состоялась
	MinPlayers int
	// RecruitWindow: Окно набора игроков
	RecruitWindow time.Duration
	// ThemeWindow: Окно выбора темы
	ThemeWindow time.Duration
	// AnswerWindow: Окно приёма ответов
	AnswerWindow time.Duration
	// Rounds: Количество вопросов за игру
	Rounds int
	// ThemeRetryLimit: Предел попыток выбора темы внутри раунда
	ThemeRetryLimit int
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		MinPlayers:      2,
		RecruitWindow:   60 * time.Second,
		ThemeWindow:     30 * time.Second,
		AnswerWindow:    30 * time.Second,
		Rounds:          3,
		ThemeRetryLimit: 3,
	}
}

// MessageSender — приёмник исходящих сообщений. Ядро не знает о сетевых
// деталях транспорта и повторные отправки не выполняет.
type MessageSender interface {
	SendMessage(ctx context.Context, msg telegram.OutboundMessage) error
}

// gameChanges собирает частичное обновление игры из опциональных полей
func gameChanges(status *entity.GameStatus, round *int, activeUser *uuid.UUID) repository.GameChanges {
	return repository.GameChanges{
		Status:     status,
		Round:      round,
		ActiveUser: activeUser,
	}
}

// Dependencies содержит зависимости компонентов игрового ядра
type Dependencies struct {
	GameRepo     repository.GameRepository
	UserRepo     repository.UserRepository
	PlayerRepo   repository.PlayerRepository
	ThemeRepo    repository.ThemeRepository
	QuestionRepo repository.QuestionRepository
	RoundRepo    repository.RoundRepository
	Sender       MessageSender
}
