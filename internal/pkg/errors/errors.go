package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, повторная
	// запись ответа, уже отсечённая уникальным индексом).
	ErrConflict = errors.New("resource state conflict")

	// ErrCatalogExhausted используется, когда каталог тем/вопросов слишком мал
	// для работы селектора. Это ошибка конфигурации: она должна останавливать
	// запуск процесса, а не всплывать на обработке отдельного обновления.
	ErrCatalogExhausted = errors.New("catalog is too small")
)
