package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, k := range []string{"HTTP_ADDR", "RUN_MIGRATIONS", "CURRENCY", "DELIVERY_FEE", "REQUEST_TIMEOUT", "DATABASE_DSN"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, ":8085", cfg.HTTPAddr)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, "CLP", cfg.Currency)
	assert.Equal(t, "es-CL", cfg.Locale)
	assert.Equal(t, 2000.0, cfg.DeliveryFee)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Empty(t, cfg.DatabaseDSN)
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("CURRENCY", "usd")
	t.Setenv("DELIVERY_FEE", "4.5")
	t.Setenv("CUSTOMER_TIMEOUT", "750ms")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.False(t, cfg.RunMigrations)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 4.5, cfg.DeliveryFee)
	assert.Equal(t, 750*time.Millisecond, cfg.CustomerTimeout)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RUN_MIGRATIONS", "maybe")
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("FREE_DELIVERY_THRESHOLD", "-1")

	cfg := Load()

	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30000.0, cfg.FreeDeliveryThreshold)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOCALE=en-US\nHTTP_ADDR=:7000\n"), 0o600))
	chdir(t, dir)
	t.Setenv("HTTP_ADDR", ":7100")
	os.Unsetenv("LOCALE")
	t.Cleanup(func() { os.Unsetenv("LOCALE") })

	cfg := Load()

	assert.Equal(t, "en-US", cfg.Locale)
	// Real environment wins over .env.
	assert.Equal(t, ":7100", cfg.HTTPAddr)
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
