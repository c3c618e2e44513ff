package model

import "time"

// Document ingestion status. Retrieval only ever sees ready documents, so a
// half-ingested document is invisible until its chunks land atomically.
const (
	DocumentStatusPending = "pending"
	DocumentStatusReady   = "ready"
	DocumentStatusFailed  = "failed"
)

// Document is the metadata row for one uploaded file. The unique index on
// Name is the final arbiter for concurrent uploads of the same file.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:256;not null;uniqueIndex" json:"name"`
	Size      int64     `gorm:"not null" json:"size"`
	Extension string    `gorm:"size:16;not null" json:"extension"`
	Status    string    `gorm:"size:16;not null;default:pending;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
