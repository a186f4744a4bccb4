package models

import "time"

type Artist struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Owner     string    `json:"owner" gorm:"type:varchar(191);not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"type:varchar(256);not null"`
	CreatedAt time.Time `json:"created_at"`
}

type Song struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ArtistID  uint64    `json:"artist_id" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"type:varchar(256);not null"`
	FileHash  string    `json:"file_hash" gorm:"type:char(64);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// Counter rows hold the last ID handed out for each table.
type Counter struct {
	Name  string `gorm:"type:varchar(32);primaryKey"`
	Value uint64 `gorm:"not null"`
}

const (
	ArtistCounter = "artist"
	SongCounter   = "song"
)

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{&Artist{}, &Song{}, &Counter{}}
}
