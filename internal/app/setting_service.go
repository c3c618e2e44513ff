package app

import (
	"context"
	"strings"

	"docuchat/internal/model"
)

const (
	maxUsernameLen      = 100
	maxSystemMessageLen = 1000
)

type SettingStore interface {
	Get(ctx context.Context) (*model.Setting, error)
	Upsert(ctx context.Context, setting *model.Setting) error
}

type SettingService struct {
	store SettingStore
}

func NewSettingService(store SettingStore) *SettingService {
	return &SettingService{store: store}
}

// Get returns the settings singleton, creating a default row on first read.
func (s *SettingService) Get(ctx context.Context) (*model.Setting, error) {
	setting, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if setting != nil {
		return setting, nil
	}

	setting = &model.Setting{}
	if err := s.store.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}

type SettingInput struct {
	Username string
	System   string
}

// Update replaces the singleton row; fields are truncated to their limits.
func (s *SettingService) Update(ctx context.Context, input SettingInput) (*model.Setting, error) {
	setting := &model.Setting{
		Username: truncateRunes(strings.TrimSpace(input.Username), maxUsernameLen),
		System:   truncateRunes(strings.TrimSpace(input.System), maxSystemMessageLen),
	}
	if err := s.store.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}
