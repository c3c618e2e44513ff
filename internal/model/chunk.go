package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Chunk stores one text segment of a document and its embedding. The column
// dimension here is the default; bootstrap retypes it to the configured
// embedding dimension before the vector index is created.
type Chunk struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	DocumentID uint            `gorm:"not null;index" json:"document_id"`
	Seq        int             `gorm:"not null" json:"seq"`
	Content    string          `gorm:"type:text;not null" json:"content"`
	Embedding  pgvector.Vector `gorm:"type:vector(1536)" json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RetrievedChunk is a nearest-neighbor hit: the chunk text, the document it
// came from, and its cosine distance to the query vector.
type RetrievedChunk struct {
	ChunkID      uint    `json:"chunk_id"`
	DocumentID   uint    `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Content      string  `json:"content"`
	Distance     float64 `json:"distance"`
}
