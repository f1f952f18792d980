package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/yourusername/trivia-bot/internal/domain/repository"
	"github.com/yourusername/trivia-bot/internal/handler/dto"
	apperrors "github.com/yourusername/trivia-bot/internal/pkg/errors"
	"github.com/yourusername/trivia-bot/internal/service"
)

// AdminHandler обслуживает операционный HTTP API: здоровье процесса,
// просмотр игр, импорт каталога и выгрузку журнала ответов.
type AdminHandler struct {
	db             *gorm.DB
	gameRepo       repository.GameRepository
	userRepo       repository.UserRepository
	themeRepo      repository.ThemeRepository
	questionRepo   repository.QuestionRepository
	roundRepo      repository.RoundRepository
	catalogService *service.CatalogService
}

// NewAdminHandler создает новый обработчик операционного API
func NewAdminHandler(
	db *gorm.DB,
	gameRepo repository.GameRepository,
	userRepo repository.UserRepository,
	themeRepo repository.ThemeRepository,
	questionRepo repository.QuestionRepository,
	roundRepo repository.RoundRepository,
	catalogService *service.CatalogService,
) *AdminHandler {
	return &AdminHandler{
		db:             db,
		gameRepo:       gameRepo,
		userRepo:       userRepo,
		themeRepo:      themeRepo,
		questionRepo:   questionRepo,
		roundRepo:      roundRepo,
		catalogService: catalogService,
	}
}

// RegisterRoutes подключает маршруты операционного API
func (h *AdminHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	api := router.Group("/api")
	{
		api.GET("/games", h.ListGames)
		api.GET("/games/:id/answers/export", h.ExportGameAnswers)
		api.GET("/themes", h.ListThemes)
		api.POST("/catalog/import", h.ImportCatalog)
	}
}

// Health проверяет живость процесса и доступность БД
// GET /health
func (h *AdminHandler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListGames возвращает игры постранично
// GET /api/games?limit=&offset=
func (h *AdminHandler) ListGames(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	games, err := h.gameRepo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list games"})
		return
	}

	resp := make([]dto.GameResponse, 0, len(games))
	for i := range games {
		resp = append(resp, dto.NewGameResponse(&games[i]))
	}
	c.JSON(http.StatusOK, gin.H{"games": resp})
}

// ListThemes возвращает каталог тем
// GET /api/themes
func (h *AdminHandler) ListThemes(c *gin.Context) {
	themes, err := h.themeRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list themes"})
		return
	}

	resp := make([]dto.ThemeResponse, 0, len(themes))
	for i := range themes {
		resp = append(resp, dto.NewThemeResponse(&themes[i]))
	}
	c.JSON(http.StatusOK, gin.H{"themes": resp})
}

// ImportCatalog загружает каталог из XLSX файла. Ожидаются колонки:
// тема | вопрос | ответ | правильный (true/1/да). Первая строка — заголовок.
// POST /api/catalog/import (multipart, поле file)
func (h *AdminHandler) ImportCatalog(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer file.Close()

	book, err := excelize.OpenReader(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse xlsx file"})
		return
	}
	defer book.Close()

	sheet := book.GetSheetName(0)
	rows, err := book.GetRows(sheet)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read xlsx rows"})
		return
	}

	var catalogRows []service.CatalogRow
	for i, row := range rows {
		if i == 0 {
			continue // заголовок
		}
		if len(row) < 4 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("row %d has %d columns, expected 4", i+1, len(row))})
			return
		}
		catalogRows = append(catalogRows, service.CatalogRow{
			Theme:     row[0],
			Question:  row[1],
			Answer:    row[2],
			IsCorrect: parseCorrectFlag(row[3]),
		})
	}

	stats, err := h.catalogService.Import(catalogRows)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[AdminHandler] Ошибка импорта каталога: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to import catalog"})
		return
	}

	c.JSON(http.StatusCreated, stats)
}

// ExportGameAnswers выгружает журнал ответов игры в CSV или Excel формате
// GET /api/games/:id/answers/export?format=csv|xlsx
func (h *AdminHandler) ExportGameAnswers(c *gin.Context) {
	gameID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}
	if _, err := h.gameRepo.GetByID(gameID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load game"})
		return
	}

	records, err := h.collectAnswerLog(gameID)
	if err != nil {
		log.Printf("[AdminHandler] Ошибка сборки журнала ответов игры %s: %v", gameID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect answer log"})
		return
	}

	filename := fmt.Sprintf("game_%s_answers_%s", gameID, time.Now().Format("2006-01-02"))
	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		h.exportXLSX(c, records, filename)
	default:
		h.exportCSV(c, records, filename)
	}
}

// answerLogRecord — одна строка выгрузки журнала ответов
type answerLogRecord struct {
	Round     int
	Username  string
	Answer    string
	Correct   bool
	CreatedAt time.Time
}

// collectAnswerLog разворачивает журнал ответов в строки с именами
// игроков и текстами вариантов
func (h *AdminHandler) collectAnswerLog(gameID uuid.UUID) ([]answerLogRecord, error) {
	answers, err := h.roundRepo.GetGameAnswers(gameID)
	if err != nil {
		return nil, err
	}

	records := make([]answerLogRecord, 0, len(answers))
	for _, ga := range answers {
		user, err := h.userRepo.GetByID(ga.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user %s: %w", ga.UserID, err)
		}
		answer, err := h.questionRepo.GetAnswerByID(ga.AnswerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load answer %s: %w", ga.AnswerID, err)
		}
		records = append(records, answerLogRecord{
			Round:     ga.Round,
			Username:  user.DisplayName(),
			Answer:    answer.Title,
			Correct:   answer.IsCorrect,
			CreatedAt: ga.CreatedAt,
		})
	}
	return records, nil
}

// exportCSV выгружает журнал в CSV с правильным экранированием спецсимволов
func (h *AdminHandler) exportCSV(c *gin.Context, records []answerLogRecord, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Раунд", "Игрок", "Ответ", "Правильный", "Время"})
	for _, r := range records {
		correct := "Нет"
		if r.Correct {
			correct = "Да"
		}
		writer.Write([]string{
			strconv.Itoa(r.Round),
			r.Username,
			r.Answer,
			correct,
			r.CreatedAt.Format(time.RFC3339),
		})
	}
}

// exportXLSX выгружает журнал в Excel через StreamWriter
func (h *AdminHandler) exportXLSX(c *gin.Context, records []answerLogRecord, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Ответы"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AdminHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create Excel file"})
		return
	}

	headers := []interface{}{"Раунд", "Игрок", "Ответ", "Правильный", "Время"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[AdminHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range records {
		correct := "Нет"
		if r.Correct {
			correct = "Да"
		}
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{r.Round, r.Username, r.Answer, correct, r.CreatedAt.Format(time.RFC3339)}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[AdminHandler] Ошибка записи строки %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[AdminHandler] Ошибка финализации StreamWriter: %v", err)
		return
	}
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AdminHandler] Ошибка записи файла в ответ: %v", err)
	}
}

// parseCorrectFlag распознает отметку правильного ответа в ячейке импорта
func parseCorrectFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "да", "yes", "y", "+":
		return true
	default:
		return false
	}
}
