package entity

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus описывает стадию жизненного цикла игры.
// Набор значений закрытый: диспетчер и вотчдог делают исчерпывающий
// switch по статусу, добавление нового значения требует правки всех веток.
type GameStatus string

// Константы статусов игры
const (
	GameStatusWaitPlayer    GameStatus = "wait_player"
	GameStatusSelectTheme   GameStatus = "select_theme"
	GameStatusAskQuestion   GameStatus = "ask_question"
	GameStatusCheckQuestion GameStatus = "check_question"
	GameStatusEndGame       GameStatus = "end_game"
)

// Game представляет одну партию викторины в рамках одного чата
type Game struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID     int64      `gorm:"not null;index" json:"chat_id"`
	Status     GameStatus `gorm:"size:20;not null;default:'wait_player';index" json:"status"`
	CreatedBy  *int64     `gorm:"type:bigint" json:"created_by,omitempty"`
	ActiveUser *uuid.UUID `gorm:"type:uuid" json:"active_user,omitempty"` // Текущий выбирающий тему
	Round      int        `gorm:"not null;default:0" json:"round"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Game) TableName() string {
	return "games"
}

// IsFinished проверяет, достигла ли игра терминального статуса.
// Из end_game переходов нет: статус поглощающий.
func (g *Game) IsFinished() bool {
	return g.Status == GameStatusEndGame
}

// IsChooser проверяет, является ли пользователь текущим выбирающим тему
func (g *Game) IsChooser(userID uuid.UUID) bool {
	return g.ActiveUser != nil && *g.ActiveUser == userID
}

// Expired проверяет, превысило ли время с последнего обновления игры
// заданное окно. Любая запись в игру сдвигает UpdatedAt и тем самым
// сбрасывает отсчёт для вотчдога.
func (g *Game) Expired(now time.Time, window time.Duration) bool {
	return now.Sub(g.UpdatedAt) > window
}
