package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/trivia-bot/internal/domain/entity"
	"github.com/yourusername/trivia-bot/internal/domain/repository"
	apperrors "github.com/yourusername/trivia-bot/internal/pkg/errors"
	"github.com/yourusername/trivia-bot/internal/service/gamemanager"
	"github.com/yourusername/trivia-bot/internal/telegram"
)

// MockCacheRepo реализует repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepo) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepo) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepo) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

// MockGameRepoForLoop реализует repository.GameRepository; игровому циклу
// в этих тестах нужен только GetActive
type MockGameRepoForLoop struct {
	mock.Mock
}

func (m *MockGameRepoForLoop) Create(chatID int64, createdBy *int64) (*entity.Game, error) {
	args := m.Called(chatID, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (m *MockGameRepoForLoop) GetByID(id uuid.UUID) (*entity.Game, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (m *MockGameRepoForLoop) GetLatestByChat(chatID int64) (*entity.Game, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (m *MockGameRepoForLoop) GetActive() ([]entity.Game, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Game), args.Error(1)
}

func (m *MockGameRepoForLoop) List(limit, offset int) ([]entity.Game, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Game), args.Error(1)
}

func (m *MockGameRepoForLoop) Update(id uuid.UUID, changes repository.GameChanges) error {
	args := m.Called(id, changes)
	return args.Error(0)
}

// staleBatchSource отдаёт одну пачку из единственного обновления
// неподдерживаемого типа (нормализованных обновлений нет, сырой хвост есть),
// после чего останавливает цикл
type staleBatchSource struct {
	cancel context.CancelFunc
	calls  int
}

func (s *staleBatchSource) GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, int64, error) {
	s.calls++
	if s.calls == 1 {
		return nil, 11, nil
	}
	s.cancel()
	return nil, -1, context.Canceled
}

// createTestGameManager создаёт GameManager без источника обновлений:
// для тестов чекпойнта смещения цикл не запускается
func createTestGameManager(cacheRepo *MockCacheRepo) *GameManager {
	return NewGameManager(gamemanager.DefaultConfig(), &gamemanager.Dependencies{}, nil, cacheRepo)
}

func TestGameManager_RestoreOffset_FromCache(t *testing.T) {
	// Arrange
	mockCache := new(MockCacheRepo)
	mockCache.On("Get", pollOffsetKey).Return("12345", nil)
	m := createTestGameManager(mockCache)

	// Act
	m.restoreOffset()

	// Assert
	assert.Equal(t, int64(12345), m.offset, "Смещение должно восстановиться из кеша")
}

func TestGameManager_RestoreOffset_ColdStart(t *testing.T) {
	// Arrange: в кеше ничего нет
	mockCache := new(MockCacheRepo)
	mockCache.On("Get", pollOffsetKey).Return("", apperrors.ErrNotFound)
	m := createTestGameManager(mockCache)

	// Act
	m.restoreOffset()

	// Assert
	assert.Equal(t, int64(0), m.offset, "Холодный старт начинается с нулевого смещения")
}

func TestGameManager_RestoreOffset_GarbageValue(t *testing.T) {
	// Arrange: в кеше мусор
	mockCache := new(MockCacheRepo)
	mockCache.On("Get", pollOffsetKey).Return("не число", nil)
	m := createTestGameManager(mockCache)

	// Act
	m.restoreOffset()

	// Assert
	assert.Equal(t, int64(0), m.offset, "Некорректное значение игнорируется")
}

func TestGameManager_Run_AdvancesOffsetPastUnsupportedBatch(t *testing.T) {
	// Arrange: источник вернёт пачку без единого нормализованного
	// обновления, но с сырым update_id 11
	mockCache := new(MockCacheRepo)
	mockCache.On("Get", pollOffsetKey).Return("", apperrors.ErrNotFound)
	mockCache.On("Set", pollOffsetKey, "12", time.Duration(0)).Return(nil)

	mockGameRepo := new(MockGameRepoForLoop)
	mockGameRepo.On("GetActive").Return([]entity.Game{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := &staleBatchSource{cancel: cancel}

	m := NewGameManager(gamemanager.DefaultConfig(), &gamemanager.Dependencies{GameRepo: mockGameRepo}, source, mockCache)

	// Act
	go m.Run(ctx)
	m.Wait()

	// Assert: смещение ушло за неподдерживаемое обновление и сохранено,
	// иначе следующий же poll вернул бы то же обновление без паузы
	assert.Equal(t, int64(12), m.offset, "Смещение должно пройти сырой хвост пачки")
	mockCache.AssertCalled(t, "Set", pollOffsetKey, "12", time.Duration(0))
}

func TestGameManager_CheckpointOffset(t *testing.T) {
	// Arrange
	mockCache := new(MockCacheRepo)
	mockCache.On("Set", pollOffsetKey, "777", time.Duration(0)).Return(nil)
	m := createTestGameManager(mockCache)
	m.offset = 777

	// Act
	m.checkpointOffset()

	// Assert
	mockCache.AssertExpectations(t)
}
