package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/yourusername/trivia-bot/internal/domain/repository"
	apperrors "github.com/yourusername/trivia-bot/internal/pkg/errors"
	"github.com/yourusername/trivia-bot/internal/service/gamemanager"
	"github.com/yourusername/trivia-bot/internal/telegram"
)

// Ключ Redis для чекпойнта смещения long poll: после рестарта процесс
// продолжает с того места, где остановился, не переигрывая обновления.
const pollOffsetKey = "telegram:poll_offset"

// Пауза перед повтором после транспортной ошибки getUpdates
const pollRetryDelay = 3 * time.Second

// UpdateSource — источник входящих обновлений чата. Кроме нормализованных
// обновлений возвращает наибольший сырой update_id пачки (-1 для пустой):
// по нему продвигается смещение, чтобы обновления неподдерживаемых типов
// не застревали в long poll навсегда.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, int64, error)
}

// GameManager владеет единственным ведущим циклом игры: на каждом витке
// сначала вотчдог проходит по всем активным играм, затем обрабатывается
// очередная пачка входящих обновлений строго в порядке поступления.
// Оба потребителя делят одно персистентное состояние игр; порядок — это
// и есть механизм корректности, строк в БД никто не блокирует.
type GameManager struct {
	dispatcher *gamemanager.Dispatcher
	watchdog   *gamemanager.Watchdog
	selector   *gamemanager.Selector

	source    UpdateSource
	sender    gamemanager.MessageSender
	cacheRepo repository.CacheRepository

	offset int64
	done   chan struct{}
}

// NewGameManager создает новый экземпляр менеджера игры
func NewGameManager(
	config *gamemanager.Config,
	deps *gamemanager.Dependencies,
	source UpdateSource,
	cacheRepo repository.CacheRepository,
) *GameManager {
	selector := gamemanager.NewSelector(config, deps)
	return &GameManager{
		dispatcher: gamemanager.NewDispatcher(config, deps, selector),
		watchdog:   gamemanager.NewWatchdog(config, deps, selector),
		selector:   selector,
		source:     source,
		sender:     deps.Sender,
		cacheRepo:  cacheRepo,
		done:       make(chan struct{}),
	}
}

// Run крутит ведущий цикл до отмены контекста. Отмена не прерывает
// виток посередине: начатый цикл доигрывается, затем цикл завершается.
func (m *GameManager) Run(ctx context.Context) {
	defer close(m.done)

	m.restoreOffset()
	log.Printf("[GameManager] Запуск игрового цикла (offset=%d)", m.offset)

	for {
		select {
		case <-ctx.Done():
			log.Println("[GameManager] Игровой цикл остановлен")
			return
		default:
		}

		m.watchdog.Tick(ctx)

		updates, lastID, err := m.source.GetUpdates(ctx, m.offset)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("[GameManager] Ошибка получения обновлений: %v", err)
			time.Sleep(pollRetryDelay)
			continue
		}

		for _, upd := range updates {
			m.handleUpdate(ctx, upd)
			m.offset = upd.ID + 1
		}
		// Смещение двигается по сырому хвосту пачки: пачка из одних
		// неподдерживаемых обновлений тоже должна быть подтверждена
		if lastID >= m.offset {
			m.offset = lastID + 1
		}
		if lastID >= 0 {
			m.checkpointOffset()
		}
	}
}

// Wait блокируется до полного завершения цикла после отмены контекста
func (m *GameManager) Wait() {
	<-m.done
}

// handleUpdate обрабатывает одно обновление. Ошибка обработчика
// изолируется: обновление пропускается, ответ не отправляется, цикл
// продолжает со следующего обновления.
func (m *GameManager) handleUpdate(ctx context.Context, upd telegram.Update) {
	msg, err := m.dispatcher.Dispatch(ctx, upd)
	if err != nil {
		log.Printf("[GameManager] Обновление #%d пропущено: %v", upd.ID, err)
		return
	}
	if msg == nil {
		return
	}
	if err := m.sender.SendMessage(ctx, *msg); err != nil {
		// Доставку ядро не гарантирует; ретраи — забота транспорта
		log.Printf("[GameManager] Ошибка отправки ответа на обновление #%d: %v", upd.ID, err)
	}
}

// restoreOffset восстанавливает смещение long poll из кеша
func (m *GameManager) restoreOffset() {
	val, err := m.cacheRepo.Get(pollOffsetKey)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[GameManager] Не удалось восстановить offset из кеша: %v", err)
		}
		return
	}
	offset, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		log.Printf("[GameManager] Некорректный offset в кеше (%q), начинаем с нуля", val)
		return
	}
	m.offset = offset
}

// checkpointOffset сохраняет смещение long poll в кеш
func (m *GameManager) checkpointOffset() {
	if err := m.cacheRepo.Set(pollOffsetKey, fmt.Sprintf("%d", m.offset), 0); err != nil {
		log.Printf("[GameManager] Не удалось сохранить offset в кеш: %v", err)
	}
}
