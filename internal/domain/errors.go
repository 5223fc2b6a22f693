package domain

import (
	"errors"
	"fmt"
)

// Сентинел-ошибки пайплайна публикации.
// Фатальные (валидация, авторизация, загрузка основного файла, создание метаданных)
// прерывают пайплайн; мягкие (теги, персонажи) собираются в список предупреждений
var (
	// ErrValidation — входные данные не прошли локальную проверку, сеть не трогали
	ErrValidation = errors.New("validation error")

	// ErrUnauthorized — у вызывающего нет идентичности, пайплайн не стартует
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSlotIssuance — не удалось получить подписанный URL для записи
	ErrSlotIssuance = errors.New("upload slot issuance failed")

	// ErrTransfer — не удалось передать байты в объектное хранилище
	ErrTransfer = errors.New("object transfer failed")

	// ErrMetadataCreation — не удалось создать запись работы (объект в сторе остается сиротой)
	ErrMetadataCreation = errors.New("artwork metadata creation failed")

	// ErrTagResolution — не удалось разрешить имя тега в идентификатор
	ErrTagResolution = errors.New("tag resolution failed")

	// ErrLink — не удалось связать тег или персонажа с работой
	ErrLink = errors.New("link failed")

	// ErrNotFound — запрошенная запись отсутствует
	ErrNotFound = errors.New("not found")
)

// Warning — нефатальная ошибка шага обогащения (теги, персонажи),
// возвращается вызывающему вместе с id успешно созданной работы
type Warning struct {
	Stage  string `json:"stage"`
	Detail string `json:"detail"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Stage, w.Detail)
}

// NewWarning создает предупреждение для шага пайплайна
func NewWarning(stage string, err error) Warning {
	return Warning{Stage: stage, Detail: err.Error()}
}
