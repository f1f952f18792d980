package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client — клиент Telegram Bot API поверх HTTP long polling.
// Сетевые детали остаются здесь; ядро видит только нормализованные
// Update и OutboundMessage.
type Client struct {
	httpClient *http.Client
	baseURL    string

	// Таймаут long poll запроса getUpdates
	pollTimeout time.Duration
}

// NewClient создает новый клиент Bot API
func NewClient(apiURL, token string, pollTimeoutSec int) *Client {
	return &Client{
		httpClient: &http.Client{
			// HTTP-таймаут с запасом поверх long poll таймаута
			Timeout: time.Duration(pollTimeoutSec+10) * time.Second,
		},
		baseURL:     fmt.Sprintf("%s/bot%s", apiURL, token),
		pollTimeout: time.Duration(pollTimeoutSec) * time.Second,
	}
}

// GetUpdates выполняет long poll запрос getUpdates начиная с offset
// и возвращает нормализованные обновления в порядке поступления.
// Вторым значением возвращается наибольший сырой update_id пачки
// (-1, если пачка пуста): смещение должно продвигаться и через
// обновления неподдерживаемых типов, иначе Bot API будет отдавать
// зависшее обновление в цикле без паузы.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, int64, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(int(c.pollTimeout.Seconds())))

	reqURL := fmt.Sprintf("%s/getUpdates?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, -1, fmt.Errorf("failed to build getUpdates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, -1, fmt.Errorf("getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, -1, fmt.Errorf("failed to read getUpdates response: %w", err)
	}

	var parsed getUpdatesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, -1, fmt.Errorf("failed to decode getUpdates response: %w", err)
	}
	if !parsed.OK {
		return nil, -1, fmt.Errorf("getUpdates returned error: %s", parsed.Description)
	}

	lastID := int64(-1)
	updates := make([]Update, 0, len(parsed.Result))
	for i := range parsed.Result {
		if parsed.Result[i].UpdateID > lastID {
			lastID = parsed.Result[i].UpdateID
		}
		u, ok := parsed.Result[i].normalize()
		if !ok {
			log.Printf("[Telegram] Пропущено обновление #%d неподдерживаемого типа", parsed.Result[i].UpdateID)
			continue
		}
		updates = append(updates, u)
	}
	return updates, lastID, nil
}

// SendMessage отправляет сообщение в чат, при необходимости с inline-кнопками
func (c *Client) SendMessage(ctx context.Context, msg OutboundMessage) error {
	reqBody := sendMessageRequest{
		ChatID: msg.ChatID,
		Text:   msg.Text,
	}
	if len(msg.Buttons) > 0 {
		reqBody.ReplyMarkup = &replyMarkup{InlineKeyboard: msg.Buttons}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to encode sendMessage payload: %w", err)
	}

	reqURL := fmt.Sprintf("%s/sendMessage", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read sendMessage response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("failed to decode sendMessage response: %w", err)
	}
	if !parsed.OK {
		return fmt.Errorf("sendMessage returned error: %s", parsed.Description)
	}
	return nil
}
