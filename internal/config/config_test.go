package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultPGDatabase, cfg.Postgres.Database)
	assert.Equal(t, "smtp", cfg.Email.Provider)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[server]
addr = ":9090"

[auth]
jwt_secret = "unit-test-secret"

[postgres]
database = "relay_test"

[links]
base_url = "https://app.example.com"

[crypto]
keys = [{ version = 1, secret = "0123456789abcdef" }]

[email]
provider = "mailgun"
from = "noreply@example.com"

[email.mailgun]
domain = "mg.example.com"
api_key = "key-test"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "relay_test", cfg.Postgres.Database)
	assert.Equal(t, "https://app.example.com", cfg.Links.BaseURL)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsIncompleteMailgun(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	cfg.Auth.JWTSecret = "secret"
	cfg.Crypto.Keys = []CryptoKey{{Version: 1, Secret: "0123456789abcdef"}}
	cfg.Email.Provider = "mailgun"
	cfg.Email.From = "noreply@example.com"
	cfg.Email.Mailgun = MailgunConfig{}

	assert.Error(t, cfg.Validate())
}

func TestActiveKeyPicksHighestVersion(t *testing.T) {
	cc := CryptoConfig{Keys: []CryptoKey{
		{Version: 1, Secret: "first-secret-0123"},
		{Version: 3, Secret: "third-secret-0123"},
		{Version: 2, Secret: "second-secret-012"},
	}}
	key, err := cc.ActiveKey()
	require.NoError(t, err)
	assert.Equal(t, 3, key.Version)
}
