package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	keys := []string{
		"APP_PORT",
		"STORE_BASE_URL",
		"STORE_TIMEOUT",
		"PRICING_BASE_URL",
		"PRICING_TIMEOUT",
		"MONGODB_URI",
		"MONGODB_DB_NAME",
		"GOOGLE_SHEETS_CREDENTIALS_PATH",
		"GOOGLE_SHEET_EXPORT_ID",
		"GOOGLE_SHEET_EXPORT_RANGE",
		"SNAPSHOT_CRON_SCHEDULE",
		"TIMEZONE",
		"MILK_SNF_CLR_DIVISOR",
		"MILK_SNF_FAT_COEFF",
		"MILK_SNF_CONSTANT",
		"MILK_LITER_DIVISOR",
	}

	originalEnv := map[string]string{}
	for _, k := range keys {
		originalEnv[k] = os.Getenv(k)
	}
	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "http://localhost:3001", cfg.Store.BaseURL)
		assert.Equal(t, 15*time.Second, cfg.Store.Timeout)
		assert.Equal(t, "", cfg.Pricing.BaseURL)
		assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
		assert.Equal(t, "dairycoop", cfg.MongoDB.DBName)
		assert.Equal(t, "0 21 * * *", cfg.Snapshot.CronSchedule)
		assert.InDelta(t, 4, cfg.Milk.SNFCLRDivisor, 1e-9)
		assert.InDelta(t, 0.21, cfg.Milk.SNFFatCoeff, 1e-9)
		assert.InDelta(t, 0.36, cfg.Milk.SNFConstant, 1e-9)
		assert.InDelta(t, 1.03, cfg.Milk.LiterDivisor, 1e-9)
	})

	t.Run("reads overrides from the environment", func(t *testing.T) {
		clearEnv()
		os.Setenv("APP_PORT", "9090")
		os.Setenv("STORE_BASE_URL", "http://store.internal")
		os.Setenv("STORE_TIMEOUT", "30s")
		os.Setenv("MILK_LITER_DIVISOR", "1.04")

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, "http://store.internal", cfg.Store.BaseURL)
		assert.Equal(t, 30*time.Second, cfg.Store.Timeout)
		assert.InDelta(t, 1.04, cfg.Milk.LiterDivisor, 1e-9)
	})

	t.Run("unparseable numeric override keeps the default", func(t *testing.T) {
		clearEnv()
		os.Setenv("MILK_SNF_FAT_COEFF", "lots")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.InDelta(t, 0.21, cfg.Milk.SNFFatCoeff, 1e-9)
	})

	t.Run("rejects non-positive milk constants", func(t *testing.T) {
		clearEnv()
		os.Setenv("MILK_LITER_DIVISOR", "-1")

		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("requires spreadsheet id alongside credentials", func(t *testing.T) {
		clearEnv()
		os.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/etc/creds.json")

		_, err := Load("")
		assert.Error(t, err)
	})
}
