package model

import "time"

// Song represents a playable track in the public catalog.
// FileURL and CoverURL point at objects on the media CDN; the playback
// layer never touches the storage backend directly.
type Song struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Artist    string    `json:"artist" gorm:"size:255;not null"`
	Movie     string    `json:"movie,omitempty" gorm:"size:255"` // Optional movie/album tag
	FileURL   string    `json:"fileUrl" gorm:"size:1024;not null"`
	CoverURL  string    `json:"coverImage,omitempty" gorm:"size:1024"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName keeps the table name in line with the hand-written schema.
func (Song) TableName() string {
	return "songs"
}
