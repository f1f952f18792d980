package entity

import (
	"github.com/google/uuid"
)

// User представляет игрока. Создаётся лениво при первом действии
// с данным Telegram-идентификатором и никогда не удаляется.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TelegramID int64     `gorm:"not null;uniqueIndex" json:"telegram_id"`
	Username   string    `gorm:"size:100;not null;default:''" json:"username"`
	Score      int       `gorm:"not null;default:0" json:"score"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// DisplayName возвращает имя для упоминания в сообщениях чата
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return "игрок"
}

// GamePlayer связывает пользователя с игрой, в которую он вступил.
// Пара (game, user) уникальна: повторное вступление отсекается обработчиком
// до вставки.
type GamePlayer struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GameID uuid.UUID `gorm:"type:uuid;not null;index" json:"game_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Score  *int      `json:"score,omitempty"` // Очки за партию; подсчёт пока не реализован
}

// TableName определяет имя таблицы для GORM
func (GamePlayer) TableName() string {
	return "game_players"
}
