package postgres

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/trivia-bot/internal/domain/entity"
)

// PlayerRepo реализует repository.PlayerRepository
type PlayerRepo struct {
	db *gorm.DB
}

// NewPlayerRepo создает новый репозиторий участников игр
func NewPlayerRepo(db *gorm.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// GetByGame возвращает всех участников игры
func (r *PlayerRepo) GetByGame(gameID uuid.UUID) ([]entity.GamePlayer, error) {
	var players []entity.GamePlayer
	err := r.db.Where("game_id = ?", gameID).Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

// Add вступает пользователя в игру с нулевым счётом за партию
func (r *PlayerRepo) Add(gameID, userID uuid.UUID) (*entity.GamePlayer, error) {
	score := 0
	player := &entity.GamePlayer{
		ID:     uuid.New(),
		GameID: gameID,
		UserID: userID,
		Score:  &score,
	}
	if err := r.db.Create(player).Error; err != nil {
		return nil, err
	}
	return player, nil
}
