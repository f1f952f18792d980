package postgres

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/trivia-bot/internal/domain/entity"
	"github.com/yourusername/trivia-bot/internal/domain/repository"
	apperrors "github.com/yourusername/trivia-bot/internal/pkg/errors"
)

// GameRepo реализует repository.GameRepository
type GameRepo struct {
	db *gorm.DB
}

// NewGameRepo создает новый репозиторий игр
func NewGameRepo(db *gorm.DB) *GameRepo {
	return &GameRepo{db: db}
}

// Create создает новую игру в статусе ожидания игроков
func (r *GameRepo) Create(chatID int64, createdBy *int64) (*entity.Game, error) {
	game := &entity.Game{
		ID:        uuid.New(),
		ChatID:    chatID,
		Status:    entity.GameStatusWaitPlayer,
		CreatedBy: createdBy,
		Round:     0,
	}
	if err := r.db.Create(game).Error; err != nil {
		return nil, err
	}
	return game, nil
}

// GetByID возвращает игру по идентификатору
func (r *GameRepo) GetByID(id uuid.UUID) (*entity.Game, error) {
	var game entity.Game
	err := r.db.First(&game, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &game, nil
}

// GetLatestByChat возвращает последнюю созданную игру чата независимо от статуса
func (r *GameRepo) GetLatestByChat(chatID int64) (*entity.Game, error) {
	var game entity.Game
	err := r.db.Where("chat_id = ?", chatID).
		Order("created_at DESC").
		First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &game, nil
}

// GetActive возвращает все игры, не достигшие терминального статуса
func (r *GameRepo) GetActive() ([]entity.Game, error) {
	var games []entity.Game
	err := r.db.Where("status <> ?", entity.GameStatusEndGame).
		Order("created_at").
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

// List возвращает игры постранично, самые свежие первыми
func (r *GameRepo) List(limit, offset int) ([]entity.Game, error) {
	var games []entity.Game
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

// Update применяет частичное изменение игры. UpdatedAt проставляется всегда,
// даже при пустом наборе изменений: запись в игру сбрасывает отсчёт вотчдога.
func (r *GameRepo) Update(id uuid.UUID, changes repository.GameChanges) error {
	fields := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if changes.Status != nil {
		fields["status"] = *changes.Status
	}
	if changes.Round != nil {
		fields["round"] = *changes.Round
	}
	if changes.ActiveUser != nil {
		fields["active_user"] = *changes.ActiveUser
	}

	result := r.db.Model(&entity.Game{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
