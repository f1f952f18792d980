package postgres

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/trivia-bot/internal/domain/entity"
	apperrors "github.com/yourusername/trivia-bot/internal/pkg/errors"
)

// RoundRepo реализует repository.RoundRepository
type RoundRepo struct {
	db *gorm.DB
}

// NewRoundRepo создает новый репозиторий пораундовых записей
func NewRoundRepo(db *gorm.DB) *RoundRepo {
	return &RoundRepo{db: db}
}

// InsertThemeOffer записывает предложение темы игре в рамках попытки выбора
func (r *RoundRepo) InsertThemeOffer(gameID, themeID uuid.UUID, round, iteration int) (*entity.GameTheme, error) {
	offer := &entity.GameTheme{
		ID:        uuid.New(),
		GameID:    gameID,
		ThemeID:   themeID,
		Round:     round,
		Iteration: iteration,
	}
	if err := r.db.Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// GetThemeOffers возвращает все предложения тем для пары (игра, раунд)
func (r *RoundRepo) GetThemeOffers(gameID uuid.UUID, round int) ([]entity.GameTheme, error) {
	var offers []entity.GameTheme
	err := r.db.Where("game_id = ? AND round = ?", gameID, round).
		Order("iteration, created_at").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// MarkThemeSelected помечает выбранным предложение темы в указанной попытке.
// Единственное обновление, допустимое для append-only журнала предложений.
func (r *RoundRepo) MarkThemeSelected(gameID, themeID uuid.UUID, round, iteration int) error {
	result := r.db.Model(&entity.GameTheme{}).
		Where("game_id = ? AND theme_id = ? AND round = ? AND iteration = ?", gameID, themeID, round, iteration).
		Updates(map[string]interface{}{
			"is_selected": true,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// InsertGameQuestion записывает вопрос, назначенный игре на раунд
func (r *RoundRepo) InsertGameQuestion(gameID, questionID uuid.UUID, round int) (*entity.GameQuestion, error) {
	gq := &entity.GameQuestion{
		ID:         uuid.New(),
		GameID:     gameID,
		QuestionID: questionID,
		Round:      round,
	}
	if err := r.db.Create(gq).Error; err != nil {
		return nil, err
	}
	return gq, nil
}

// GetGameQuestion возвращает вопрос, назначенный игре на раунд
func (r *RoundRepo) GetGameQuestion(gameID uuid.UUID, round int) (*entity.GameQuestion, error) {
	var gq entity.GameQuestion
	err := r.db.Where("game_id = ? AND round = ?", gameID, round).First(&gq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &gq, nil
}

// InsertGameAnswer записывает ответ игрока в раунде. Дубликат по кортежу
// (game, answer, user, round) отсекается обработчиком заранее; уникальный
// индекс в БД — подстраховка, его срабатывание транслируется в ErrConflict.
func (r *RoundRepo) InsertGameAnswer(gameID, answerID, userID uuid.UUID, round int) (*entity.GameAnswer, error) {
	ga := &entity.GameAnswer{
		ID:       uuid.New(),
		GameID:   gameID,
		AnswerID: answerID,
		UserID:   userID,
		Round:    round,
	}
	if err := r.db.Create(ga).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // 23505 - unique_violation
			return nil, apperrors.ErrConflict
		}
		return nil, err
	}
	return ga, nil
}

// FindGameAnswer ищет ранее записанный ответ игрока по кортежу раунда
func (r *RoundRepo) FindGameAnswer(gameID, answerID, userID uuid.UUID, round int) (*entity.GameAnswer, error) {
	var ga entity.GameAnswer
	err := r.db.Where("game_id = ? AND answer_id = ? AND user_id = ? AND round = ?",
		gameID, answerID, userID, round).First(&ga).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &ga, nil
}

// GetGameAnswers возвращает журнал ответов игры за все раунды
func (r *RoundRepo) GetGameAnswers(gameID uuid.UUID) ([]entity.GameAnswer, error) {
	var answers []entity.GameAnswer
	err := r.db.Where("game_id = ?", gameID).Order("round, created_at").Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}
