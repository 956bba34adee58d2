package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileWithDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  url: postgres://localhost/auctions
jwt:
  secret: s3cret
app:
  base_url: https://auctions.example.gov/
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "https://auctions.example.gov", cfg.App.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.SendTimeout())
	assert.Equal(t, 1, cfg.Email.MaxParallel)
	assert.Equal(t, time.Hour, cfg.TokenTTL())
	assert.Equal(t, 5*time.Minute, cfg.CloseInterval())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost/auctions
jwt:
  secret: from-file
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_DRIVER", "mysql")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 2525, cfg.Email.SMTPPort)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.CORSOrigins)
}

func TestLoad_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/auctions")
	t.Setenv("JWT_SECRET", "env")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/auctions", cfg.Database.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "database:\n  url: x\n"))
	assert.ErrorContains(t, err, "jwt secret")

	_, err = Load(writeConfig(t, "database:\n  url: x\n  driver: oracle\njwt:\n  secret: y\n"))
	assert.ErrorContains(t, err, "unsupported database driver")
}
