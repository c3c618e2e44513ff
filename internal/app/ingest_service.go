package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	"docuchat/internal/ai"
	"docuchat/internal/chunker"
	"docuchat/internal/extract"
	"docuchat/internal/model"
	"docuchat/internal/repository"
)

// Closed error kinds of the upload path. Handlers map them onto response
// codes; nothing finer leaks to the caller.
var (
	ErrInvalidFileType   = errors.New("invalid file type")
	ErrDuplicateDocument = errors.New("document with this name already exists")
	ErrLocalWriteFailed  = errors.New("saving uploaded file failed")
	ErrExtractionFailed  = errors.New("text extraction failed")
	ErrEmbeddingFailed   = errors.New("embedding failed")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrEmptyUpload       = errors.New("uploaded file is empty")
)

// DocumentStore is the metadata side of ingestion.
type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	GetByID(ctx context.Context, id uint) (*model.Document, error)
	GetByName(ctx context.Context, name string) (*model.Document, error)
	List(ctx context.Context) ([]model.Document, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
}

// ChunkStore persists chunk+vector rows and serves similarity search.
type ChunkStore interface {
	CreateBatchAndMarkReady(ctx context.Context, documentID uint, chunks []model.Chunk) error
	NearestNeighbors(ctx context.Context, vec []float32, k int) ([]model.RetrievedChunk, error)
	DeleteByDocumentID(ctx context.Context, documentID uint) error
	CountByDocumentID(ctx context.Context, documentID uint) (int64, error)
}

// EmbeddingClient is satisfied by *ai.OpenAICompatibleClient.
type EmbeddingClient interface {
	Embed(ctx context.Context, cfg ai.EmbeddingConfig, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, cfg ai.EmbeddingConfig, texts []string) ([][]float32, error)
}

// IngestConfig is threaded in explicitly; the pipeline never reads ambient
// environment.
type IngestConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	Dimension      int
	EmbedBatchSize int
	EmbedTimeout   time.Duration
	SaveUploads    bool
	UploadDir      string
}

type IngestService struct {
	docStore   DocumentStore
	chunkStore ChunkStore
	embClient  EmbeddingClient
	embConfig  ai.EmbeddingConfig
	cfg        IngestConfig
	splitter   chunker.Splitter
	logger     *slog.Logger
}

func NewIngestService(
	docStore DocumentStore,
	chunkStore ChunkStore,
	embClient EmbeddingClient,
	embConfig ai.EmbeddingConfig,
	cfg IngestConfig,
	logger *slog.Logger,
) *IngestService {
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 10
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestService{
		docStore:   docStore,
		chunkStore: chunkStore,
		embClient:  embClient,
		embConfig:  embConfig,
		cfg:        cfg,
		splitter:   chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		logger:     logger,
	}
}

type IngestInput struct {
	Name string
	Data []byte
}

type IngestResult struct {
	Document   model.Document `json:"document"`
	ChunkCount int            `json:"chunk_count"`
}

// Ingest runs the upload pipeline: validate extension, reject duplicate
// names, create the metadata row (pending), optionally persist the raw file,
// then extract, chunk, embed, and atomically store the chunks. Terminal on
// first failure; every step after document creation compensates by removing
// the document row, its chunks, and the saved file.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(input.Data) == 0 {
		return nil, ErrEmptyUpload
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !extract.Supported(ext) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFileType, ext)
	}

	// Application-level pre-check; the unique index below is the final
	// arbiter under concurrent uploads of the same name.
	existing, err := s.docStore.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateDocument
	}

	doc := &model.Document{
		Name:      name,
		Size:      int64(len(input.Data)),
		Extension: ext,
		Status:    model.DocumentStatusPending,
	}
	if err := s.docStore.Create(ctx, doc); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, ErrDuplicateDocument
		}
		return nil, err
	}

	var savedPath string
	if s.cfg.SaveUploads {
		path, err := s.saveUpload(name, input.Data)
		if err != nil {
			s.compensate(ctx, doc, "")
			return nil, fmt.Errorf("%w: %v", ErrLocalWriteFailed, err)
		}
		savedPath = path
	}

	text, err := extract.Text(input.Data, ext)
	if err != nil {
		s.compensate(ctx, doc, savedPath)
		if errors.Is(err, extract.ErrUnsupportedType) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFileType, ext)
		}
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	chunks := s.splitter.Split(text)
	if len(chunks) == 0 {
		s.compensate(ctx, doc, savedPath)
		return nil, fmt.Errorf("%w: no text to chunk", ErrExtractionFailed)
	}

	embeddings, err := s.embedChunks(ctx, chunks)
	if err != nil {
		s.compensate(ctx, doc, savedPath)
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	rows := make([]model.Chunk, len(chunks))
	for i := range chunks {
		rows[i] = model.Chunk{
			DocumentID: doc.ID,
			Seq:        i,
			Content:    chunks[i],
			Embedding:  pgvector.NewVector(embeddings[i]),
		}
	}
	if err := s.chunkStore.CreateBatchAndMarkReady(ctx, doc.ID, rows); err != nil {
		s.compensate(ctx, doc, savedPath)
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	doc.Status = model.DocumentStatusReady

	s.logger.Info("document ingested",
		slog.String("name", doc.Name),
		slog.Int("chunks", len(rows)),
		slog.Int64("size", doc.Size))

	return &IngestResult{Document: *doc, ChunkCount: len(rows)}, nil
}

// embedChunks calls the embedding API in bounded batches under a deadline.
// Positional correspondence between chunks and vectors is preserved; any
// batch failure or dimension mismatch fails the whole document.
func (s *IngestService) embedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	embedCtx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout)
	defer cancel()

	embeddings := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += s.cfg.EmbedBatchSize {
		end := i + s.cfg.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch, err := s.embClient.EmbedBatch(embedCtx, s.embConfig, chunks[i:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batch...)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}
	for i, vec := range embeddings {
		if s.cfg.Dimension > 0 && len(vec) != s.cfg.Dimension {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(vec), s.cfg.Dimension)
		}
	}
	return embeddings, nil
}

func (s *IngestService) saveUpload(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.cfg.UploadDir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// compensate undoes the partial side effects of a failed ingestion so no
// orphaned metadata row survives. Failures here are logged, not returned;
// the caller already has the original error. Cleanup must still run when
// ingestion failed because the request context was canceled, so it detaches
// from the caller's cancellation. The document is marked failed first: if a
// delete below fails, the leftover row is at least invisible to retrieval.
func (s *IngestService) compensate(ctx context.Context, doc *model.Document, savedPath string) {
	ctx = context.WithoutCancel(ctx)

	if err := s.docStore.UpdateStatus(ctx, doc.ID, model.DocumentStatusFailed); err != nil {
		s.logger.Error("ingest compensation: mark document failed",
			slog.Uint64("document_id", uint64(doc.ID)), slog.String("error", err.Error()))
	}
	if err := s.chunkStore.DeleteByDocumentID(ctx, doc.ID); err != nil {
		s.logger.Error("ingest compensation: delete chunks failed",
			slog.Uint64("document_id", uint64(doc.ID)), slog.String("error", err.Error()))
	}
	if err := s.docStore.Delete(ctx, doc.ID); err != nil {
		s.logger.Error("ingest compensation: delete document failed",
			slog.Uint64("document_id", uint64(doc.ID)), slog.String("error", err.Error()))
	}
	if savedPath != "" {
		if err := os.Remove(savedPath); err != nil && !os.IsNotExist(err) {
			s.logger.Error("ingest compensation: remove saved file failed",
				slog.String("path", savedPath), slog.String("error", err.Error()))
		}
	}
}

type DocumentInfo struct {
	model.Document
	ChunkCount int64 `json:"chunk_count"`
}

// ListDocuments returns all document metadata with chunk counts, newest
// first.
func (s *IngestService) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	docs, err := s.docStore.List(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]DocumentInfo, len(docs))
	for i, doc := range docs {
		count, err := s.chunkStore.CountByDocumentID(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		infos[i] = DocumentInfo{Document: doc, ChunkCount: count}
	}
	return infos, nil
}

// DeleteDocument removes a document, its chunks, and its saved raw file.
func (s *IngestService) DeleteDocument(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrInvalidInput
	}
	doc, err := s.docStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if err := s.chunkStore.DeleteByDocumentID(ctx, doc.ID); err != nil {
		return err
	}
	if err := s.docStore.Delete(ctx, doc.ID); err != nil {
		return err
	}
	if s.cfg.SaveUploads {
		path := filepath.Join(s.cfg.UploadDir, filepath.Base(doc.Name))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("remove saved file failed", slog.String("path", path), slog.String("error", err.Error()))
		}
	}
	return nil
}
