package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type PromptRepository struct {
	db *gorm.DB
}

func NewPromptRepository(db *gorm.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

func (r *PromptRepository) Create(ctx context.Context, prompt *model.Prompt) error {
	if err := r.db.WithContext(ctx).Create(prompt).Error; err != nil {
		return fmt.Errorf("create prompt failed: %w", err)
	}
	return nil
}

func (r *PromptRepository) List(ctx context.Context) ([]model.Prompt, error) {
	var list []model.Prompt
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list prompts failed: %w", err)
	}
	return list, nil
}

func (r *PromptRepository) GetByID(ctx context.Context, id uint) (*model.Prompt, error) {
	var prompt model.Prompt
	if err := r.db.WithContext(ctx).First(&prompt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get prompt failed: %w", err)
	}
	return &prompt, nil
}

func (r *PromptRepository) Update(ctx context.Context, prompt *model.Prompt) error {
	if err := r.db.WithContext(ctx).Save(prompt).Error; err != nil {
		return fmt.Errorf("update prompt failed: %w", err)
	}
	return nil
}

func (r *PromptRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Prompt{}, id).Error; err != nil {
		return fmt.Errorf("delete prompt failed: %w", err)
	}
	return nil
}
