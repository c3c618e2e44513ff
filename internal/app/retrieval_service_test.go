package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"docuchat/internal/ai"
	"docuchat/internal/model"
)

type fakeCompleter struct {
	answer   string
	err      error
	lastMsgs []ai.ChatMessage
}

func (f *fakeCompleter) Complete(_ context.Context, _ ai.ChatConfig, messages []ai.ChatMessage) (string, error) {
	f.lastMsgs = messages
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeSettingStore struct {
	setting *model.Setting
	err     error
}

func (f *fakeSettingStore) Get(_ context.Context) (*model.Setting, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.setting, nil
}

func (f *fakeSettingStore) Upsert(_ context.Context, setting *model.Setting) error {
	copied := *setting
	f.setting = &copied
	return nil
}

func newTestRetrievalService(chunkStore ChunkStore, settingStore SettingStore, emb EmbeddingClient, llm CompletionClient) *RetrievalService {
	return NewRetrievalService(
		chunkStore,
		settingStore,
		emb,
		ai.EmbeddingConfig{Model: "test-embed"},
		llm,
		ai.ChatConfig{BaseURL: "http://llm", APIKey: "k", Model: "test-chat"},
		5,
		time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestAsk_AnswersWithCitedContext(t *testing.T) {
	docStore := newFakeDocStore()
	chunkStore := newFakeChunkStore(docStore)
	chunkStore.neighbors = []model.RetrievedChunk{
		{ChunkID: 1, DocumentID: 7, DocumentName: "guide.txt", Content: "Cats sleep 16 hours a day.", Distance: 0.12},
		{ChunkID: 2, DocumentID: 8, DocumentName: "facts.pdf", Content: "Dogs are loyal.", Distance: 0.34},
	}
	llm := &fakeCompleter{answer: "  Cats sleep a lot.  "}
	svc := newTestRetrievalService(chunkStore, &fakeSettingStore{}, &fakeEmbedder{dim: 8}, llm)

	result, err := svc.Ask(context.Background(), AskInput{Question: "How much do cats sleep?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Answer != "Cats sleep a lot." {
		t.Fatalf("answer not trimmed: %q", result.Answer)
	}
	if len(result.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(result.Chunks))
	}
	if result.Chunks[0].DocumentName != "guide.txt" {
		t.Fatalf("nearest chunk should come first, got %q", result.Chunks[0].DocumentName)
	}

	if len(llm.lastMsgs) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(llm.lastMsgs))
	}
	prompt := llm.lastMsgs[1].Content
	for _, want := range []string{
		"Context:",
		"[source: guide.txt]",
		"Cats sleep 16 hours a day.",
		"[source: facts.pdf]",
		"Question: How much do cats sleep?",
		"Answer:",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestAsk_UsesConfiguredSystemMessage(t *testing.T) {
	docStore := newFakeDocStore()
	chunkStore := newFakeChunkStore(docStore)
	chunkStore.neighbors = []model.RetrievedChunk{
		{ChunkID: 1, DocumentName: "a.txt", Content: "x"},
	}
	llm := &fakeCompleter{answer: "ok"}
	settings := &fakeSettingStore{setting: &model.Setting{System: "Answer like a pirate."}}
	svc := newTestRetrievalService(chunkStore, settings, &fakeEmbedder{dim: 8}, llm)

	if _, err := svc.Ask(context.Background(), AskInput{Question: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if llm.lastMsgs[0].Content != "Answer like a pirate." {
		t.Fatalf("system message not taken from settings: %q", llm.lastMsgs[0].Content)
	}
}

func TestAsk_EmptyQuestionRejected(t *testing.T) {
	docStore := newFakeDocStore()
	chunkStore := newFakeChunkStore(docStore)
	svc := newTestRetrievalService(chunkStore, &fakeSettingStore{}, &fakeEmbedder{dim: 8}, &fakeCompleter{})

	_, err := svc.Ask(context.Background(), AskInput{Question: "   "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRetrieve_EmbedFailureIsUnavailable(t *testing.T) {
	docStore := newFakeDocStore()
	chunkStore := newFakeChunkStore(docStore)
	emb := &fakeEmbedder{dim: 8, err: fmt.Errorf("timeout")}
	svc := newTestRetrievalService(chunkStore, &fakeSettingStore{}, emb, &fakeCompleter{})

	_, err := svc.Retrieve(context.Background(), "q", 5)
	if !errors.Is(err, ErrRetrievalUnavailable) {
		t.Fatalf("expected ErrRetrievalUnavailable, got %v", err)
	}
}

func TestRetrieve_SearchFailureIsUnavailable(t *testing.T) {
	docStore := newFakeDocStore()
	chunkStore := newFakeChunkStore(docStore)
	chunkStore.searchErr = fmt.Errorf("relation does not exist")
	svc := newTestRetrievalService(chunkStore, &fakeSettingStore{}, &fakeEmbedder{dim: 8}, &fakeCompleter{})

	_, err := svc.Retrieve(context.Background(), "q", 5)
	if !errors.Is(err, ErrRetrievalUnavailable) {
		t.Fatalf("expected ErrRetrievalUnavailable, got %v", err)
	}
}

func TestRetrieve_EmptyIndexIsNoChunks(t *testing.T) {
	docStore := newFakeDocStore()
	chunkStore := newFakeChunkStore(docStore)
	svc := newTestRetrievalService(chunkStore, &fakeSettingStore{}, &fakeEmbedder{dim: 8}, &fakeCompleter{})

	_, err := svc.Retrieve(context.Background(), "q", 5)
	if !errors.Is(err, ErrNoChunks) {
		t.Fatalf("expected ErrNoChunks, got %v", err)
	}
}

func TestAsk_TopKOverrideLimitsResults(t *testing.T) {
	docStore := newFakeDocStore()
	chunkStore := newFakeChunkStore(docStore)
	for i := 0; i < 5; i++ {
		chunkStore.neighbors = append(chunkStore.neighbors, model.RetrievedChunk{
			ChunkID: uint(i + 1), DocumentName: "d.txt", Content: fmt.Sprintf("chunk %d", i),
		})
	}
	svc := newTestRetrievalService(chunkStore, &fakeSettingStore{}, &fakeEmbedder{dim: 8}, &fakeCompleter{answer: "ok"})

	result, err := svc.Ask(context.Background(), AskInput{Question: "q", TopK: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Chunks) != 2 {
		t.Fatalf("expected top-k override of 2, got %d chunks", len(result.Chunks))
	}
}
