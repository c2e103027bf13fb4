// Package profiles reads client and staff profiles owned by the platform's
// CRUD flows. The relay only ever references these rows.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/agencydesk/relay/internal/db"
	"github.com/agencydesk/relay/internal/db/sqlc"
	"github.com/agencydesk/relay/internal/phone"
)

var ErrNotFound = errors.New("profile not found")

type Service struct {
	queries *sqlc.Queries
	logger  *slog.Logger
}

func NewService(log *slog.Logger, queries *sqlc.Queries) *Service {
	return &Service{
		queries: queries,
		logger:  log.With(slog.String("service", "profiles")),
	}
}

// GetClient returns the client profile for the given id.
func (s *Service) GetClient(ctx context.Context, clientID string) (Client, error) {
	pgID, err := db.ParseUUID(clientID)
	if err != nil {
		return Client{}, fmt.Errorf("invalid client id: %w", err)
	}
	row, err := s.queries.GetClientProfile(ctx, pgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	return toClient(row.ID, row.Email, row.DisplayName, row.Phone, row.Company), nil
}

// FindClientByPhone resolves a raw phone string to the client whose stored
// number normalizes to the same canonical digits. Inputs that differ only in
// formatting ("+1", dashes, parentheses) resolve to the same client.
func (s *Service) FindClientByPhone(ctx context.Context, raw string) (Client, error) {
	wanted := phone.Normalize(raw)
	if wanted == "" {
		return Client{}, ErrNotFound
	}

	rows, err := s.queries.ListClientProfilesWithPhone(ctx)
	if err != nil {
		return Client{}, err
	}
	for _, row := range rows {
		if phone.Normalize(db.TextToString(row.Phone)) == wanted {
			return toClient(row.ID, row.Email, row.DisplayName, row.Phone, row.Company), nil
		}
	}
	return Client{}, ErrNotFound
}

// ListAssignedStaff returns the deduplicated ids of staff members currently
// assigned to any of the client's services.
func (s *Service) ListAssignedStaff(ctx context.Context, clientID string) ([]string, error) {
	pgID, err := db.ParseUUID(clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid client id: %w", err)
	}
	rows, err := s.queries.ListAssignedStaffIDs(ctx, pgID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, db.UUIDToString(row))
	}
	return ids, nil
}

func toClient(id pgtype.UUID, email, displayName string, phoneCol, companyCol pgtype.Text) Client {
	return Client{
		ID:          db.UUIDToString(id),
		Email:       email,
		DisplayName: displayName,
		Phone:       db.TextToString(phoneCol),
		Company:     db.TextToString(companyCol),
	}
}
