package entity

import (
	"time"

	"github.com/google/uuid"
)

// Theme представляет тему из статического каталога (не привязана к игре)
type Theme struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title string    `gorm:"size:200;not null" json:"title"`
}

// TableName определяет имя таблицы для GORM
func (Theme) TableName() string {
	return "themes"
}

// GameTheme фиксирует предложение темы игре в рамках раунда.
// Строки append-only: единственное допустимое изменение — установка IsSelected.
// Iteration — монотонный счётчик попыток выбора внутри раунда, по нему
// определяется последний предложенный набор и ограничивается число попыток.
type GameTheme struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GameID     uuid.UUID `gorm:"type:uuid;not null;index:idx_game_themes_round" json:"game_id"`
	ThemeID    uuid.UUID `gorm:"type:uuid;not null" json:"theme_id"`
	Round      int       `gorm:"not null;index:idx_game_themes_round" json:"round"`
	Iteration  int       `gorm:"not null" json:"iteration"`
	IsSelected bool      `gorm:"not null;default:false" json:"is_selected"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (GameTheme) TableName() string {
	return "game_themes"
}

// MaxIteration возвращает наибольший номер попытки среди предложений
// (0, если предложений ещё не было)
func MaxIteration(assignments []GameTheme) int {
	max := 0
	for _, a := range assignments {
		if a.Iteration > max {
			max = a.Iteration
		}
	}
	return max
}

// SelectedTheme возвращает выбранное предложение темы, если оно есть
func SelectedTheme(assignments []GameTheme) *GameTheme {
	for i := range assignments {
		if assignments[i].IsSelected {
			return &assignments[i]
		}
	}
	return nil
}

// LatestOffer возвращает предложения последней попытки выбора
func LatestOffer(assignments []GameTheme) []GameTheme {
	max := MaxIteration(assignments)
	var latest []GameTheme
	for _, a := range assignments {
		if a.Iteration == max {
			latest = append(latest, a)
		}
	}
	return latest
}
