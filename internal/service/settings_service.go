package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/repository"
)

// ledgerAPIKeySetting is the system_setting key holding the (encrypted)
// credential for the authoritative ledger endpoint.
const ledgerAPIKeySetting = "ledger_api_key"

// SettingsService stores system settings, encrypting sensitive values with
// fernet before they reach the database.
type SettingsService struct {
	settingsRepo *repository.SettingsRepository
	key          *fernet.Key
}

// NewSettingsService creates a SettingsService. fernetKey is the base64
// fernet key used for secrets; when empty, secrets cannot be stored or read.
func NewSettingsService(settingsRepo *repository.SettingsRepository, fernetKey string) (*SettingsService, error) {
	s := &SettingsService{settingsRepo: settingsRepo}

	if fernetKey != "" {
		key, err := fernet.DecodeKey(fernetKey)
		if err != nil {
			return nil, fmt.Errorf("invalid fernet key: %w", err)
		}
		s.key = key
	}

	return s, nil
}

// SetSetting stores a plain, unencrypted setting.
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.settingsRepo.SetSetting(ctx, model.SystemSetting{Key: key, Value: value})
}

// GetSetting returns a plain setting value.
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	setting, err := s.settingsRepo.GetSetting(ctx, key)
	if err != nil {
		return "", err
	}
	if setting.Encrypted {
		return "", fmt.Errorf("setting %s is encrypted, use GetSecret", key)
	}
	return setting.Value, nil
}

// SetSecret encrypts and stores a sensitive value.
func (s *SettingsService) SetSecret(ctx context.Context, key, plaintext string) error {
	if s.key == nil {
		return fmt.Errorf("no fernet key configured, cannot store secret %s", key)
	}

	token, err := fernet.EncryptAndSign([]byte(plaintext), s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt setting %s: %w", key, err)
	}

	return s.settingsRepo.SetSetting(ctx, model.SystemSetting{
		Key:       key,
		Value:     string(token),
		Encrypted: true,
	})
}

// GetSecret decrypts and returns a sensitive value.
func (s *SettingsService) GetSecret(ctx context.Context, key string) (string, error) {
	setting, err := s.settingsRepo.GetSetting(ctx, key)
	if err != nil {
		return "", err
	}
	if !setting.Encrypted {
		return setting.Value, nil
	}
	if s.key == nil {
		return "", fmt.Errorf("no fernet key configured, cannot read secret %s", key)
	}

	plaintext := fernet.VerifyAndDecrypt([]byte(setting.Value), 0, []*fernet.Key{s.key})
	if plaintext == nil {
		return "", fmt.Errorf("failed to decrypt setting %s", key)
	}
	return string(plaintext), nil
}

// SetLedgerAPIKey stores the ledger credential encrypted.
func (s *SettingsService) SetLedgerAPIKey(ctx context.Context, apiKey string) error {
	return s.SetSecret(ctx, ledgerAPIKeySetting, apiKey)
}

// LedgerAPIKey returns the ledger credential, or empty when none is stored.
func (s *SettingsService) LedgerAPIKey(ctx context.Context) (string, error) {
	apiKey, err := s.GetSecret(ctx, ledgerAPIKeySetting)
	if errors.Is(err, apperrors.ErrSettingNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return apiKey, nil
}
