package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

// settingRowID pins the settings table to a single row: every read and write
// targets the same primary key, so at most one row can ever exist.
const settingRowID = 1

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Get(ctx context.Context) (*model.Setting, error) {
	var setting model.Setting
	if err := r.db.WithContext(ctx).First(&setting, settingRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settings failed: %w", err)
	}
	return &setting, nil
}

// Upsert replaces the singleton row.
func (r *SettingRepository) Upsert(ctx context.Context, setting *model.Setting) error {
	setting.ID = settingRowID
	if err := r.db.WithContext(ctx).Save(setting).Error; err != nil {
		return fmt.Errorf("save settings failed: %w", err)
	}
	return nil
}
