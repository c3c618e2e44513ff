package repository

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"docuchat/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// CreateBatchAndMarkReady inserts every chunk of a document and flips its
// status to ready in one transaction. Either all chunks land and the document
// becomes visible to retrieval, or nothing is persisted.
func (r *ChunkRepository) CreateBatchAndMarkReady(ctx context.Context, documentID uint, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to insert for document %d", documentID)
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&chunks).Error; err != nil {
			return err
		}
		return tx.Model(&model.Document{}).
			Where("id = ?", documentID).
			Update("status", model.DocumentStatusReady).Error
	})
	if err != nil {
		return fmt.Errorf("create chunk batch failed: %w", err)
	}
	return nil
}

// NearestNeighbors returns the k chunks closest to the query vector by
// cosine distance, ascending. Only chunks of ready documents are visible, so
// a partially ingested document can never leak into retrieval.
func (r *ChunkRepository) NearestNeighbors(ctx context.Context, vec []float32, k int) ([]model.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	var results []model.RetrievedChunk
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id AS chunk_id,
		       c.document_id,
		       d.name AS document_name,
		       c.content,
		       c.embedding <=> ? AS distance
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.status = ?
		ORDER BY distance ASC
		LIMIT ?`,
		pgvector.NewVector(vec), model.DocumentStatusReady, k,
	).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("nearest neighbor query failed: %w", err)
	}
	return results, nil
}

func (r *ChunkRepository) DeleteByDocumentID(ctx context.Context, documentID uint) error {
	if err := r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&model.Chunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks by document failed: %w", err)
	}
	return nil
}

func (r *ChunkRepository) CountByDocumentID(ctx context.Context, documentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Chunk{}).Where("document_id = ?", documentID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count chunks failed: %w", err)
	}
	return count, nil
}
