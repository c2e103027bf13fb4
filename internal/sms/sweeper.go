package sms

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/agencydesk/relay/internal/db/sqlc"
)

// Sweeper deletes expired magic links on a schedule. Resolution already
// rejects expired tokens, the sweep just keeps the table from growing.
type Sweeper struct {
	queries *sqlc.Queries
	cron    *cron.Cron
	logger  *slog.Logger
}

func NewSweeper(log *slog.Logger, queries *sqlc.Queries) *Sweeper {
	return &Sweeper{
		queries: queries,
		cron:    cron.New(),
		logger:  log.With(slog.String("service", "sms_sweeper")),
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.queries.DeleteExpiredSMSLinks(ctx)
	if err != nil {
		s.logger.Error("link sweep failed", slog.String("error", err.Error()))
		return
	}
	if deleted > 0 {
		s.logger.Info("expired links deleted", slog.Int64("count", deleted))
	}
}
