package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/agencydesk/relay/internal/config"
	"github.com/agencydesk/relay/internal/conversation"
	"github.com/agencydesk/relay/internal/db"
	dbsqlc "github.com/agencydesk/relay/internal/db/sqlc"
	emailpkg "github.com/agencydesk/relay/internal/email"
	emailmailgun "github.com/agencydesk/relay/internal/email/adapters/mailgun"
	emailsmtp "github.com/agencydesk/relay/internal/email/adapters/smtp"
	"github.com/agencydesk/relay/internal/handlers"
	"github.com/agencydesk/relay/internal/logger"
	"github.com/agencydesk/relay/internal/profiles"
	"github.com/agencydesk/relay/internal/realtime"
	"github.com/agencydesk/relay/internal/secrets"
	"github.com/agencydesk/relay/internal/server"
	"github.com/agencydesk/relay/internal/sms"
	smstwilio "github.com/agencydesk/relay/internal/sms/adapters/twilio"
)

func runServe(cfgPath string) {
	fx.New(
		fx.Provide(
			func() (config.Config, error) { return provideConfig(cfgPath) },
			provideLogger,
			provideDBConn,
			provideDBQueries,
			provideCipher,
			profiles.NewService,
			realtime.NewHub,
			provideConversationService,
			sms.NewSettingsService,
			smstwilio.NewSender,
			provideSMSService,
			provideInboundProcessor,
			sms.NewSweeper,
			provideEmailSender,
			provideEmailService,
			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(handlers.NewConversationHandler),
			provideServerHandler(provideSMSHandler),
			provideServerHandler(handlers.NewSMSWebhookHandler),
			provideServerHandler(handlers.NewMagicLinkHandler),
			provideServerHandler(handlers.NewEmailHandler),
			provideServerHandler(handlers.NewRealtimeHandler),
			provideServer,
		),
		fx.Invoke(
			startSweeper,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideDBQueries(conn *pgxpool.Pool) *dbsqlc.Queries { return dbsqlc.New(conn) }

func provideCipher(cfg config.Config) (*secrets.Cipher, error) {
	return secrets.NewCipher(cfg.Crypto)
}

func provideConversationService(log *slog.Logger, queries *dbsqlc.Queries, directory *profiles.Service, hub *realtime.Hub) *conversation.Service {
	return conversation.NewService(log, queries, directory, hub)
}

func provideSMSService(log *slog.Logger, cfg config.Config, queries *dbsqlc.Queries, settings *sms.SettingsService, sender *smstwilio.Sender, conversations *conversation.Service, directory *profiles.Service) *sms.Service {
	return sms.NewService(log, queries, settings, sender, conversations, directory, cfg.Links.BaseURL)
}

func provideInboundProcessor(log *slog.Logger, queries *dbsqlc.Queries, conversations *conversation.Service, directory *profiles.Service) *sms.InboundProcessor {
	return sms.NewInboundProcessor(log, queries, conversations, directory)
}

func provideEmailSender(log *slog.Logger, cfg config.Config) (emailpkg.Sender, error) {
	switch cfg.Email.Provider {
	case "mailgun":
		return emailmailgun.New(log, cfg.Email.Mailgun, cfg.Email.From), nil
	case "smtp":
		return emailsmtp.New(log, cfg.Email.SMTP, cfg.Email.From), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Email.Provider)
	}
}

func provideEmailService(log *slog.Logger, queries *dbsqlc.Queries, sender emailpkg.Sender, conversations *conversation.Service) (*emailpkg.Service, error) {
	return emailpkg.NewService(log, queries, sender, conversations)
}

func provideSMSHandler(log *slog.Logger, smsService *sms.Service, settings *sms.SettingsService, inbound *sms.InboundProcessor) *handlers.SMSHandler {
	return handlers.NewSMSHandler(log, smsService, settings, inbound)
}

type serverParams struct {
	fx.In
	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.New(params.Logger, params.Config.Server.Addr, params.Config.Auth.JWTSecret, params.ServerHandlers)
}

func startSweeper(lc fx.Lifecycle, sweeper *sms.Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return sweeper.Start() },
		OnStop:  func(ctx context.Context) error { sweeper.Stop(); return nil },
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
