package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath = "config.toml"
	DefaultHTTPAddr   = ":8080"
	DefaultPGHost     = "127.0.0.1"
	DefaultPGPort     = 5432
	DefaultPGUser     = "postgres"
	DefaultPGDatabase = "relay"
	DefaultPGSSLMode  = "disable"
	DefaultLinkBase   = "http://127.0.0.1:8080"
	DefaultEmailFrom  = "noreply@localhost"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	Postgres PostgresConfig `toml:"postgres"`
	Links    LinksConfig    `toml:"links"`
	Crypto   CryptoConfig   `toml:"crypto"`
	Email    EmailConfig    `toml:"email"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret" validate:"required"`
}

type PostgresConfig struct {
	Host     string `toml:"host" validate:"required"`
	Port     int    `toml:"port" validate:"gt=0"`
	User     string `toml:"user" validate:"required"`
	Password string `toml:"password"`
	Database string `toml:"database" validate:"required"`
	SSLMode  string `toml:"sslmode"`
}

// LinksConfig controls how public magic links are generated.
type LinksConfig struct {
	BaseURL string `toml:"base_url" validate:"required,url"`
}

// CryptoKey is one entry in the versioned keyring. The highest configured
// version encrypts; every configured version can still decrypt.
type CryptoKey struct {
	Version int    `toml:"version" validate:"gt=0"`
	Secret  string `toml:"secret" validate:"required,min=16"`
}

type CryptoConfig struct {
	Keys []CryptoKey `toml:"keys" validate:"required,min=1,dive"`
}

type EmailConfig struct {
	Provider string        `toml:"provider" validate:"oneof=mailgun smtp"`
	From     string        `toml:"from" validate:"required,email"`
	Mailgun  MailgunConfig `toml:"mailgun"`
	SMTP     SMTPConfig    `toml:"smtp"`
}

type MailgunConfig struct {
	Domain string `toml:"domain"`
	APIKey string `toml:"api_key"`
	Region string `toml:"region"`
}

type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Links: LinksConfig{
			BaseURL: DefaultLinkBase,
		},
		Email: EmailConfig{
			Provider: "smtp",
			From:     DefaultEmailFrom,
			Mailgun:  MailgunConfig{Region: "us"},
			SMTP:     SMTPConfig{Host: "127.0.0.1", Port: 587},
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the loaded configuration once at startup so a broken
// deployment fails the process instead of the first request.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Email.Provider {
	case "mailgun":
		if c.Email.Mailgun.Domain == "" || c.Email.Mailgun.APIKey == "" {
			return fmt.Errorf("invalid config: email.mailgun requires domain and api_key")
		}
	case "smtp":
		if c.Email.SMTP.Host == "" || c.Email.SMTP.Port <= 0 {
			return fmt.Errorf("invalid config: email.smtp requires host and port")
		}
	}
	return nil
}

// ActiveKey returns the highest-version crypto key.
func (c CryptoConfig) ActiveKey() (CryptoKey, error) {
	if len(c.Keys) == 0 {
		return CryptoKey{}, fmt.Errorf("no crypto keys configured")
	}
	active := c.Keys[0]
	for _, k := range c.Keys[1:] {
		if k.Version > active.Version {
			active = k
		}
	}
	return active, nil
}
