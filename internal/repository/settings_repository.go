package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
)

// SettingsRepository provides data access methods for the system_setting table.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SettingsRepository with the provided database connection.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting returns one setting by key.
func (r *SettingsRepository) GetSetting(ctx context.Context, key string) (model.SystemSetting, error) {
	query := `SELECT key, value, encrypted FROM system_setting WHERE key = ?`

	var s model.SystemSetting
	err := r.db.QueryRowContext(ctx, query, key).Scan(&s.Key, &s.Value, &s.Encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SystemSetting{}, apperrors.ErrSettingNotFound
	}
	if err != nil {
		return model.SystemSetting{}, fmt.Errorf("failed to query system_setting table: %w", err)
	}
	return s, nil
}

// SetSetting stores a setting, replacing any existing value for the key.
func (r *SettingsRepository) SetSetting(ctx context.Context, setting model.SystemSetting) error {
	query := `
		INSERT INTO system_setting (key, value, encrypted)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, encrypted = excluded.encrypted
	`

	if _, err := r.db.ExecContext(ctx, query, setting.Key, setting.Value, setting.Encrypted); err != nil {
		return fmt.Errorf("failed to upsert system setting: %w", err)
	}
	return nil
}
