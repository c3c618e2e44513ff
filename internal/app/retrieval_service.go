package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docuchat/internal/ai"
	"docuchat/internal/model"
)

var (
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	ErrNoChunks             = errors.New("no chunks available for retrieval")
)

// CompletionClient is satisfied by *ai.OpenAICompatibleClient.
type CompletionClient interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

const defaultRAGSystemMessage = "You are a helpful assistant. Answer the user's question based only on the " +
	"following context. If the context does not contain enough information, say so. Do not make up facts."

type RetrievalService struct {
	chunkStore   ChunkStore
	settingStore SettingStore
	embClient    EmbeddingClient
	embConfig    ai.EmbeddingConfig
	llmClient    CompletionClient
	chatConfig   ai.ChatConfig
	topK         int
	embedTimeout time.Duration
	logger       *slog.Logger
}

func NewRetrievalService(
	chunkStore ChunkStore,
	settingStore SettingStore,
	embClient EmbeddingClient,
	embConfig ai.EmbeddingConfig,
	llmClient CompletionClient,
	chatConfig ai.ChatConfig,
	topK int,
	embedTimeout time.Duration,
	logger *slog.Logger,
) *RetrievalService {
	if topK <= 0 {
		topK = 5
	}
	if embedTimeout <= 0 {
		embedTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetrievalService{
		chunkStore:   chunkStore,
		settingStore: settingStore,
		embClient:    embClient,
		embConfig:    embConfig,
		llmClient:    llmClient,
		chatConfig:   chatConfig,
		topK:         topK,
		embedTimeout: embedTimeout,
		logger:       logger,
	}
}

type AskInput struct {
	Question string
	TopK     int
}

type AskResult struct {
	Answer string                 `json:"answer"`
	Chunks []model.RetrievedChunk `json:"chunks"`
}

// Ask embeds the question, fetches the nearest chunks, builds a context block
// with source-document citations, and hands it to the language model. Store
// or embedding failures collapse into ErrRetrievalUnavailable; no partial or
// degraded result is returned.
func (s *RetrievalService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrInvalidInput
	}

	topK := input.TopK
	if topK <= 0 {
		topK = s.topK
	}

	chunks, err := s.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	systemContent := defaultRAGSystemMessage
	if s.settingStore != nil {
		if setting, err := s.settingStore.Get(ctx); err == nil && setting != nil && strings.TrimSpace(setting.System) != "" {
			systemContent = setting.System
		}
	}

	messages := []ai.ChatMessage{
		{Role: "system", Content: systemContent},
		{Role: "user", Content: buildAugmentedPrompt(question, chunks)},
	}
	answer, err := s.llmClient.Complete(ctx, s.chatConfig, messages)
	if err != nil {
		return nil, fmt.Errorf("llm completion failed: %w", err)
	}

	return &AskResult{
		Answer: strings.TrimSpace(answer),
		Chunks: chunks,
	}, nil
}

// Retrieve is the bare retrieval path: query vector in, nearest chunks out,
// ordered ascending by distance.
func (s *RetrievalService) Retrieve(ctx context.Context, question string, topK int) ([]model.RetrievedChunk, error) {
	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	queryVec, err := s.embClient.Embed(embedCtx, s.embConfig, question)
	if err != nil {
		s.logger.Error("query embedding failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}

	chunks, err := s.chunkStore.NearestNeighbors(ctx, queryVec, topK)
	if err != nil {
		s.logger.Error("nearest neighbor search failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}
	return chunks, nil
}

func buildAugmentedPrompt(question string, chunks []model.RetrievedChunk) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	for _, c := range chunks {
		sb.WriteString("---\n")
		sb.WriteString("[source: ")
		sb.WriteString(c.DocumentName)
		sb.WriteString("]\n")
		sb.WriteString(c.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("---\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}
