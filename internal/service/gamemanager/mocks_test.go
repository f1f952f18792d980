package gamemanager

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/trivia-bot/internal/domain/entity"
	"github.com/yourusername/trivia-bot/internal/domain/repository"
	"github.com/yourusername/trivia-bot/internal/telegram"
)

// ============================================================================
// Общие моки для тестов игрового ядра
// ============================================================================

// MockGameRepo реализует repository.GameRepository
type MockGameRepo struct {
	mock.Mock
}

func (m *MockGameRepo) Create(chatID int64, createdBy *int64) (*entity.Game, error) {
	args := m.Called(chatID, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (m *MockGameRepo) GetByID(id uuid.UUID) (*entity.Game, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (m *MockGameRepo) GetLatestByChat(chatID int64) (*entity.Game, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (m *MockGameRepo) GetActive() ([]entity.Game, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Game), args.Error(1)
}

func (m *MockGameRepo) List(limit, offset int) ([]entity.Game, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Game), args.Error(1)
}

func (m *MockGameRepo) Update(id uuid.UUID, changes repository.GameChanges) error {
	args := m.Called(id, changes)
	return args.Error(0)
}

// MockUserRepo реализует repository.UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetOrCreate(telegramID int64, username string) (*entity.User, error) {
	args := m.Called(telegramID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByID(id uuid.UUID) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// MockPlayerRepo реализует repository.PlayerRepository
type MockPlayerRepo struct {
	mock.Mock
}

func (m *MockPlayerRepo) GetByGame(gameID uuid.UUID) ([]entity.GamePlayer, error) {
	args := m.Called(gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.GamePlayer), args.Error(1)
}

func (m *MockPlayerRepo) Add(gameID, userID uuid.UUID) (*entity.GamePlayer, error) {
	args := m.Called(gameID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GamePlayer), args.Error(1)
}

// MockThemeRepo реализует repository.ThemeRepository
type MockThemeRepo struct {
	mock.Mock
}

func (m *MockThemeRepo) List() ([]entity.Theme, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Theme), args.Error(1)
}

func (m *MockThemeRepo) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockThemeRepo) Create(title string) (*entity.Theme, error) {
	args := m.Called(title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Theme), args.Error(1)
}

func (m *MockThemeRepo) GetByTitle(title string) (*entity.Theme, error) {
	args := m.Called(title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Theme), args.Error(1)
}

// MockQuestionRepo реализует repository.QuestionRepository
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) GetByID(id uuid.UUID) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetByTheme(themeID uuid.UUID) ([]entity.Question, error) {
	args := m.Called(themeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetAnswers(questionID uuid.UUID) ([]entity.Answer, error) {
	args := m.Called(questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Answer), args.Error(1)
}

func (m *MockQuestionRepo) GetAnswerByID(id uuid.UUID) (*entity.Answer, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Answer), args.Error(1)
}

func (m *MockQuestionRepo) CreateBatch(questions []entity.Question, answers []entity.Answer) error {
	args := m.Called(questions, answers)
	return args.Error(0)
}

func (m *MockQuestionRepo) CountByTheme(themeID uuid.UUID) (int64, error) {
	args := m.Called(themeID)
	return args.Get(0).(int64), args.Error(1)
}

// MockRoundRepo реализует repository.RoundRepository
type MockRoundRepo struct {
	mock.Mock
}

func (m *MockRoundRepo) InsertThemeOffer(gameID, themeID uuid.UUID, round, iteration int) (*entity.GameTheme, error) {
	args := m.Called(gameID, themeID, round, iteration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GameTheme), args.Error(1)
}

func (m *MockRoundRepo) GetThemeOffers(gameID uuid.UUID, round int) ([]entity.GameTheme, error) {
	args := m.Called(gameID, round)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.GameTheme), args.Error(1)
}

func (m *MockRoundRepo) MarkThemeSelected(gameID, themeID uuid.UUID, round, iteration int) error {
	args := m.Called(gameID, themeID, round, iteration)
	return args.Error(0)
}

func (m *MockRoundRepo) InsertGameQuestion(gameID, questionID uuid.UUID, round int) (*entity.GameQuestion, error) {
	args := m.Called(gameID, questionID, round)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GameQuestion), args.Error(1)
}

func (m *MockRoundRepo) GetGameQuestion(gameID uuid.UUID, round int) (*entity.GameQuestion, error) {
	args := m.Called(gameID, round)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GameQuestion), args.Error(1)
}

func (m *MockRoundRepo) InsertGameAnswer(gameID, answerID, userID uuid.UUID, round int) (*entity.GameAnswer, error) {
	args := m.Called(gameID, answerID, userID, round)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GameAnswer), args.Error(1)
}

func (m *MockRoundRepo) FindGameAnswer(gameID, answerID, userID uuid.UUID, round int) (*entity.GameAnswer, error) {
	args := m.Called(gameID, answerID, userID, round)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GameAnswer), args.Error(1)
}

func (m *MockRoundRepo) GetGameAnswers(gameID uuid.UUID) ([]entity.GameAnswer, error) {
	args := m.Called(gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.GameAnswer), args.Error(1)
}

// MockSender реализует MessageSender и запоминает отправленные сообщения
type MockSender struct {
	mock.Mock
	Sent []telegram.OutboundMessage
}

func (m *MockSender) SendMessage(ctx context.Context, msg telegram.OutboundMessage) error {
	args := m.Called(ctx, msg)
	m.Sent = append(m.Sent, msg)
	return args.Error(0)
}

// ============================================================================
// Вспомогательные конструкторы
// ============================================================================

// newTestDeps собирает Dependencies из моков
func newTestDeps(
	gameRepo *MockGameRepo,
	userRepo *MockUserRepo,
	playerRepo *MockPlayerRepo,
	themeRepo *MockThemeRepo,
	questionRepo *MockQuestionRepo,
	roundRepo *MockRoundRepo,
	sender *MockSender,
) *Dependencies {
	return &Dependencies{
		GameRepo:     gameRepo,
		UserRepo:     userRepo,
		PlayerRepo:   playerRepo,
		ThemeRepo:    themeRepo,
		QuestionRepo: questionRepo,
		RoundRepo:    roundRepo,
		Sender:       sender,
	}
}
