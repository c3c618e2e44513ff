package app

import (
	"context"
	"errors"
	"strings"

	"docuchat/internal/model"
)

var ErrPromptNotFound = errors.New("prompt not found")

const (
	maxPromptTitleLen   = 150
	maxPromptContentLen = 1000
)

type PromptStore interface {
	Create(ctx context.Context, prompt *model.Prompt) error
	List(ctx context.Context) ([]model.Prompt, error)
	GetByID(ctx context.Context, id uint) (*model.Prompt, error)
	Update(ctx context.Context, prompt *model.Prompt) error
	Delete(ctx context.Context, id uint) error
}

type PromptService struct {
	store PromptStore
}

func NewPromptService(store PromptStore) *PromptService {
	return &PromptService{store: store}
}

type PromptInput struct {
	Title   string
	Content string
}

// Create stores a prompt; title and content are truncated to their column
// limits rather than rejected.
func (s *PromptService) Create(ctx context.Context, input PromptInput) (*model.Prompt, error) {
	title := truncateRunes(strings.TrimSpace(input.Title), maxPromptTitleLen)
	content := truncateRunes(strings.TrimSpace(input.Content), maxPromptContentLen)
	if title == "" || content == "" {
		return nil, ErrInvalidInput
	}

	prompt := &model.Prompt{Title: title, Content: content}
	if err := s.store.Create(ctx, prompt); err != nil {
		return nil, err
	}
	return prompt, nil
}

func (s *PromptService) List(ctx context.Context) ([]model.Prompt, error) {
	return s.store.List(ctx)
}

func (s *PromptService) Update(ctx context.Context, id uint, input PromptInput) (*model.Prompt, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	prompt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prompt == nil {
		return nil, ErrPromptNotFound
	}

	title := truncateRunes(strings.TrimSpace(input.Title), maxPromptTitleLen)
	content := truncateRunes(strings.TrimSpace(input.Content), maxPromptContentLen)
	if title == "" || content == "" {
		return nil, ErrInvalidInput
	}

	prompt.Title = title
	prompt.Content = content
	if err := s.store.Update(ctx, prompt); err != nil {
		return nil, err
	}
	return prompt, nil
}

func (s *PromptService) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrInvalidInput
	}
	prompt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if prompt == nil {
		return ErrPromptNotFound
	}
	return s.store.Delete(ctx, id)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
