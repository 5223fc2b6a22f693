package domain

import (
	"time"

	"github.com/google/uuid"
)

// Artwork представляет опубликованную работу в системе,
// соответствует таблице artworks в бд.
// После создания запись неизменна, меняются только наборы связей (теги, персонажи)
type Artwork struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UploaderID   uuid.UUID  `json:"uploader_id" db:"uploader_id"`
	PartyID      *uuid.UUID `json:"party_id,omitempty" db:"party_id"`
	Title        string     `json:"title" db:"title"`
	ImageURL     string     `json:"image_url" db:"image_url"`
	ReferenceURL *string    `json:"reference_url,omitempty" db:"reference_url"`
	Notes        string     `json:"notes" db:"notes"`
	ToolsUsed    string     `json:"tools_used" db:"tools_used"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	Tags         []Tag      `json:"tags,omitempty" db:"-" gorm:"-"`
}

func (Artwork) TableName() string {
	return "artworks"
}

// Tag представляет модель тега,
// соответствует таблице tags в бд.
// Имя уникально на всю систему, тег создается лениво при первом использовании
type Tag struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

func (Tag) TableName() string {
	return "tags"
}

// ArtworkTag представляет связующую модель для отношения Many-to-Many между Artwork и Tag,
// соответствует таблице artwork_tags в бд
type ArtworkTag struct {
	ArtworkID uuid.UUID `json:"artwork_id" db:"artwork_id"`
	TagID     uuid.UUID `json:"tag_id" db:"tag_id"`
}

func (ArtworkTag) TableName() string {
	return "artwork_tags"
}

// Character представляет участника события (персонажа),
// создается отдельным флоу привязки персонажа, здесь только читается и линкуется
type Character struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PartyID   uuid.UUID `json:"party_id" db:"party_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	AvatarURL string    `json:"avatar_url" db:"avatar_url"`
}

func (Character) TableName() string {
	return "characters"
}

// ArtworkCharacter представляет связующую модель между Artwork и Character,
// соответствует таблице artwork_characters в бд
type ArtworkCharacter struct {
	ArtworkID   uuid.UUID `json:"artwork_id" db:"artwork_id"`
	CharacterID uuid.UUID `json:"character_id" db:"character_id"`
}

func (ArtworkCharacter) TableName() string {
	return "artwork_characters"
}

// Like представляет лайк работы, уникален в паре (artwork_id, user_id),
// в этом пайплайне используется только на чтение (счетчик)
type Like struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ArtworkID uuid.UUID `json:"artwork_id" db:"artwork_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}

// ArtworkView — собранное представление работы для детальной страницы:
// базовая запись плюс обогащения (теги, персонажи, имя автора, лайки).
// Обогащения заполняются best-effort: при ошибке чтения остаются пустыми
type ArtworkView struct {
	Artwork      Artwork     `json:"artwork"`
	TagNames     []string    `json:"tag_names"`
	Characters   []Character `json:"characters"`
	UploaderName string      `json:"uploader_name"`
	LikeCount    int         `json:"like_count"`
}

// UploadSlot — эфемерная сессия загрузки: подписанный URL для записи,
// публичный адрес объекта и ключ. Используется ровно один раз на файл
type UploadSlot struct {
	ObjectKey string    `json:"object_key"`
	WriteURL  string    `json:"upload_url"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
