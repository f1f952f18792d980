package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trivia-bot/internal/domain/entity"
)

// GameResponse — представление игры для операционного API
type GameResponse struct {
	ID         uuid.UUID  `json:"id"`
	ChatID     int64      `json:"chat_id"`
	Status     string     `json:"status"`
	Round      int        `json:"round"`
	ActiveUser *uuid.UUID `json:"active_user,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewGameResponse строит GameResponse из сущности
func NewGameResponse(g *entity.Game) GameResponse {
	return GameResponse{
		ID:         g.ID,
		ChatID:     g.ChatID,
		Status:     string(g.Status),
		Round:      g.Round,
		ActiveUser: g.ActiveUser,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

// ThemeResponse — представление темы каталога
type ThemeResponse struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

// NewThemeResponse строит ThemeResponse из сущности
func NewThemeResponse(t *entity.Theme) ThemeResponse {
	return ThemeResponse{ID: t.ID, Title: t.Title}
}
