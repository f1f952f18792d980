package telegram

// Типы обновлений, приходящих из Bot API
const (
	UpdateTypeMessage       = "message"
	UpdateTypeCallbackQuery = "callback_query"
)

// apiResponse — общая обёртка ответа Bot API
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// getUpdatesResponse — ответ метода getUpdates
type getUpdatesResponse struct {
	apiResponse
	Result []rawUpdate `json:"result"`
}

// rawUpdate — обновление в том виде, в котором его отдает Bot API
type rawUpdate struct {
	UpdateID      int64             `json:"update_id"`
	Message       *rawMessage       `json:"message,omitempty"`
	CallbackQuery *rawCallbackQuery `json:"callback_query,omitempty"`
}

type rawMessage struct {
	MessageID int64   `json:"message_id"`
	From      rawUser `json:"from"`
	Chat      rawChat `json:"chat"`
	Text      string  `json:"text"`
}

type rawCallbackQuery struct {
	ID      string      `json:"id"`
	From    rawUser     `json:"from"`
	Message *rawMessage `json:"message,omitempty"`
	Data    string      `json:"data"`
}

type rawUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type rawChat struct {
	ID int64 `json:"id"`
}

// Sender описывает отправителя обновления
type Sender struct {
	ID       int64
	Username string
}

// Update — нормализованное входящее обновление для игрового ядра.
// Token заполнен только для нажатий inline-кнопок.
type Update struct {
	ID     int64
	Type   string
	ChatID int64
	From   Sender
	Text   string
	Token  string
}

// IsCallback проверяет, что обновление пришло от нажатия inline-кнопки
func (u *Update) IsCallback() bool {
	return u.Type == UpdateTypeCallbackQuery
}

// Button — подпись и callback-токен одной inline-кнопки
type Button struct {
	Label string `json:"text"`
	Token string `json:"callback_data"`
}

// OutboundMessage — исходящее сообщение для чата. Buttons — сетка
// inline-кнопок; пустая или отсутствующая сетка кнопок не рисует.
type OutboundMessage struct {
	ChatID  int64
	Text    string
	Buttons [][]Button
}

// sendMessageRequest — тело запроса метода sendMessage
type sendMessageRequest struct {
	ChatID      int64        `json:"chat_id"`
	Text        string       `json:"text"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

type replyMarkup struct {
	InlineKeyboard [][]Button `json:"inline_keyboard"`
}

// normalize переводит сырое обновление Bot API в форму для ядра.
// Возвращает false для обновлений, которые ядру обработать нечем:
// без сообщения и callback, либо callback без сообщения (нет чата).
func (r *rawUpdate) normalize() (Update, bool) {
	switch {
	case r.CallbackQuery != nil:
		// Bot API опускает message у callback от устаревших кнопок;
		// без него неизвестен чат, отвечать некуда — пропускаем
		if r.CallbackQuery.Message == nil {
			return Update{}, false
		}
		return Update{
			ID:     r.UpdateID,
			Type:   UpdateTypeCallbackQuery,
			ChatID: r.CallbackQuery.Message.Chat.ID,
			From:   Sender{ID: r.CallbackQuery.From.ID, Username: r.CallbackQuery.From.Username},
			Text:   r.CallbackQuery.Message.Text,
			Token:  r.CallbackQuery.Data,
		}, true
	case r.Message != nil:
		return Update{
			ID:     r.UpdateID,
			Type:   UpdateTypeMessage,
			ChatID: r.Message.Chat.ID,
			From:   Sender{ID: r.Message.From.ID, Username: r.Message.From.Username},
			Text:   r.Message.Text,
		}, true
	default:
		return Update{}, false
	}
}
