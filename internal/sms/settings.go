package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/agencydesk/relay/internal/db"
	"github.com/agencydesk/relay/internal/db/sqlc"
	"github.com/agencydesk/relay/internal/phone"
	"github.com/agencydesk/relay/internal/secrets"
)

// SettingsService stores per-admin Twilio credentials, auth token encrypted
// at rest.
type SettingsService struct {
	queries *sqlc.Queries
	cipher  *secrets.Cipher
	logger  *slog.Logger
}

func NewSettingsService(log *slog.Logger, queries *sqlc.Queries, cipher *secrets.Cipher) *SettingsService {
	return &SettingsService{
		queries: queries,
		cipher:  cipher,
		logger:  log.With(slog.String("service", "sms_settings")),
	}
}

// Upsert writes the admin's provider settings. The phone number is stored in
// canonical digits and the auth token encrypted.
func (s *SettingsService) Upsert(ctx context.Context, adminID string, input SettingsInput) (Settings, error) {
	pgAdminID, err := db.ParseUUID(adminID)
	if err != nil {
		return Settings{}, fmt.Errorf("invalid admin id: %w", err)
	}
	encrypted, err := s.cipher.Encrypt(input.AuthToken)
	if err != nil {
		return Settings{}, fmt.Errorf("encrypt auth token: %w", err)
	}
	row, err := s.queries.UpsertSMSSettings(ctx, sqlc.UpsertSMSSettingsParams{
		AdminID:     pgAdminID,
		PhoneNumber: phone.Normalize(input.PhoneNumber),
		AccountSid:  input.AccountSID,
		AuthToken:   encrypted,
	})
	if err != nil {
		return Settings{}, fmt.Errorf("upsert sms settings: %w", err)
	}
	s.logger.Info("sms settings updated", slog.String("admin_id", adminID))
	return toSettings(row), nil
}

// Get returns the admin's settings with the auth token masked.
func (s *SettingsService) Get(ctx context.Context, adminID string) (Settings, error) {
	row, err := s.load(ctx, adminID)
	if err != nil {
		return Settings{}, err
	}
	return toSettings(row), nil
}

// credentials decrypts the stored auth token for an outbound send.
func (s *SettingsService) credentials(ctx context.Context, adminID string) (credentials, error) {
	row, err := s.load(ctx, adminID)
	if err != nil {
		return credentials{}, err
	}
	if row.PhoneNumber == "" || row.AccountSid == "" || row.AuthToken == "" {
		return credentials{}, ErrNotConfigured
	}
	token, err := s.cipher.Decrypt(row.AuthToken)
	if err != nil {
		return credentials{}, fmt.Errorf("decrypt auth token: %w", err)
	}
	return credentials{
		PhoneNumber: row.PhoneNumber,
		AccountSID:  row.AccountSid,
		AuthToken:   token,
	}, nil
}

func (s *SettingsService) load(ctx context.Context, adminID string) (sqlc.SmsSetting, error) {
	pgAdminID, err := db.ParseUUID(adminID)
	if err != nil {
		return sqlc.SmsSetting{}, fmt.Errorf("invalid admin id: %w", err)
	}
	row, err := s.queries.GetSMSSettings(ctx, pgAdminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sqlc.SmsSetting{}, ErrNotConfigured
		}
		return sqlc.SmsSetting{}, err
	}
	return row, nil
}

func toSettings(row sqlc.SmsSetting) Settings {
	return Settings{
		PhoneNumber:  row.PhoneNumber,
		AccountSID:   row.AccountSid,
		AuthTokenSet: row.AuthToken != "",
	}
}
