package entity

import (
	"time"

	"github.com/google/uuid"
)

// Question представляет вопрос из статического каталога
type Question struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title   string    `gorm:"size:500;not null" json:"title"`
	ThemeID uuid.UUID `gorm:"type:uuid;not null;index" json:"theme_id"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// Answer представляет вариант ответа на вопрос каталога.
// У вопроса несколько вариантов, ровно один помечен правильным —
// инвариант посевных данных, ядром не проверяется.
type Answer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string    `gorm:"size:500;not null" json:"title"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"-"` // Скрыто от клиента
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
}

// TableName определяет имя таблицы для GORM
func (Answer) TableName() string {
	return "answers"
}

// GameQuestion фиксирует, какой вопрос был задан игре в данном раунде.
// Не более одной записи на пару (game, round).
type GameQuestion struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GameID     uuid.UUID `gorm:"type:uuid;not null;index:idx_game_questions_round" json:"game_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null" json:"question_id"`
	Round      int       `gorm:"not null;index:idx_game_questions_round" json:"round"`
}

// TableName определяет имя таблицы для GORM
func (GameQuestion) TableName() string {
	return "game_questions"
}

// GameAnswer фиксирует ответ игрока в раунде. Кортеж
// (game, answer, user, round) уникален: повтор отсекается обработчиком
// до вставки, уникальный индекс в БД служит подстраховкой.
type GameAnswer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GameID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_game_answers" json:"game_id"`
	AnswerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_game_answers" json:"answer_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_game_answers" json:"user_id"`
	Round     int       `gorm:"not null;uniqueIndex:uq_game_answers" json:"round"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (GameAnswer) TableName() string {
	return "game_answers"
}
