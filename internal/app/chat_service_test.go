package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"docuchat/internal/ai"
	"docuchat/internal/model"
)

type fakeSessionStore struct {
	sessions map[uint]*model.Session
	nextID   uint
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[uint]*model.Session{}, nextID: 1}
}

func (f *fakeSessionStore) Create(session *model.Session) error {
	session.ID = f.nextID
	f.nextID++
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionStore) ListByUserID(userID uint) ([]model.Session, error) {
	var out []model.Session
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) GetByIDAndUserID(sessionID, userID uint) (*model.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionStore) DeleteByIDAndUserID(sessionID, userID uint) error {
	if s, ok := f.sessions[sessionID]; ok && s.UserID == userID {
		delete(f.sessions, sessionID)
	}
	return nil
}

type fakeMessageStore struct {
	messages        map[uint][]model.Message
	deletedSessions []uint
	lastRecentLimit int
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{messages: map[uint][]model.Message{}}
}

func (f *fakeMessageStore) ListBySessionID(sessionID uint, limit int) ([]model.Message, error) {
	msgs := f.messages[sessionID]
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (f *fakeMessageStore) ListRecentBySessionID(sessionID uint, limit int) ([]model.Message, error) {
	f.lastRecentLimit = limit
	return f.ListBySessionID(sessionID, limit)
}

func (f *fakeMessageStore) DeleteBySessionID(sessionID uint) error {
	f.deletedSessions = append(f.deletedSessions, sessionID)
	delete(f.messages, sessionID)
	return nil
}

type fakePublisher struct {
	published []model.Message
}

func (f *fakePublisher) Publish(_ context.Context, msg model.Message) error {
	f.published = append(f.published, msg)
	return nil
}

func newTestChatService(sessions *fakeSessionStore, messages *fakeMessageStore, settings SettingStore) *ChatService {
	return NewChatService(
		sessions,
		messages,
		&fakePublisher{},
		nil,
		settings,
		ai.ChatConfig{BaseURL: "http://llm", APIKey: "k", Model: "test-chat"},
		3,
	)
}

func TestDeleteSession_CascadesMessages(t *testing.T) {
	sessions := newFakeSessionStore()
	messages := newFakeMessageStore()
	svc := newTestChatService(sessions, messages, &fakeSettingStore{})

	session, err := svc.CreateSession(CreateSessionInput{UserID: 1, Title: "notes"})
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	messages.messages[session.ID] = []model.Message{
		{SessionID: session.ID, UserID: 1, Role: "user", Content: "hi"},
	}

	if err := svc.DeleteSession(1, session.ID); err != nil {
		t.Fatalf("delete session failed: %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Fatalf("session row should be gone")
	}
	if len(messages.deletedSessions) != 1 || messages.deletedSessions[0] != session.ID {
		t.Fatalf("messages of session %d should be deleted, got %v", session.ID, messages.deletedSessions)
	}

	if err := svc.DeleteSession(1, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestDeleteSession_OtherUserRejected(t *testing.T) {
	sessions := newFakeSessionStore()
	messages := newFakeMessageStore()
	svc := newTestChatService(sessions, messages, &fakeSettingStore{})

	session, err := svc.CreateSession(CreateSessionInput{UserID: 1, Title: "mine"})
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	if err := svc.DeleteSession(2, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for another user's session, got %v", err)
	}
	if len(messages.deletedSessions) != 0 {
		t.Fatalf("no messages should be deleted, got %v", messages.deletedSessions)
	}
}

func TestBuildPromptMessages_UsesRecentWindow(t *testing.T) {
	sessions := newFakeSessionStore()
	messages := newFakeMessageStore()
	svc := newTestChatService(sessions, messages, &fakeSettingStore{setting: &model.Setting{System: "Be terse."}})

	now := time.Now()
	messages.messages[7] = []model.Message{
		{SessionID: 7, Role: "user", Content: "one", CreatedAt: now.Add(-4 * time.Minute)},
		{SessionID: 7, Role: "assistant", Content: "two", CreatedAt: now.Add(-3 * time.Minute)},
		{SessionID: 7, Role: "user", Content: "three", CreatedAt: now.Add(-2 * time.Minute)},
		{SessionID: 7, Role: "assistant", Content: "four", CreatedAt: now.Add(-1 * time.Minute)},
	}

	prompt, err := svc.buildPromptMessages(7, "five")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if messages.lastRecentLimit != 3 {
		t.Fatalf("context window should cap at 3 messages, asked for %d", messages.lastRecentLimit)
	}
	// system + 3 recent + current input
	if len(prompt) != 5 {
		t.Fatalf("expected 5 prompt messages, got %d", len(prompt))
	}
	if prompt[0].Role != "system" || prompt[0].Content != "Be terse." {
		t.Fatalf("system message not taken from settings: %+v", prompt[0])
	}
	for i, want := range []string{"two", "three", "four", "five"} {
		if prompt[i+1].Content != want {
			t.Fatalf("prompt message %d = %q, want %q (chronological order)", i+1, prompt[i+1].Content, want)
		}
	}
}
