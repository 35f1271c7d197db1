package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dzubidas/ibit-strike-ratio/pkg/config"
	"github.com/dzubidas/ibit-strike-ratio/pkg/env"
)

// clearEnv unsets every recognized variable for the duration of a test so
// assertions are not polluted by the host environment. t.Setenv registers
// the restore; the unset makes the variable read as absent, not empty.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		env.GoogleCredentialsFile,
		env.GoogleSheetID,
		env.GoogleWorksheetID,
		env.GoogleWorksheetID2,
		env.IBITUnits,
		env.IBITSharesOutstanding,
		env.ETHAUnits,
		env.ETHASharesOutstanding,
		env.AuditLogFile,
		env.LogLevel,
	}
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	assert.NoError(t, err)

	assert.Equal(t, "service-account-key.json", cfg.CredentialsFile)
	assert.Equal(t, "", cfg.SpreadsheetID)
	assert.Equal(t, "logs/strike_prices.log", cfg.AuditLogFile)
	assert.Equal(t, "info", cfg.LogLevel)

	assert.Len(t, cfg.Instruments, 2)

	ibit := cfg.Instruments[0]
	assert.Equal(t, "IBIT", ibit.Symbol)
	assert.Equal(t, "BTC", ibit.Asset)
	assert.Equal(t, 746810.57340, ibit.Units)
	assert.Equal(t, 1314880000.0, ibit.SharesOutstanding)
	assert.Equal(t, int64(0), ibit.WorksheetID)
	assert.Equal(t, 25.0, ibit.Low)
	assert.Equal(t, 80.0, ibit.High)
	assert.Equal(t, 0.5, ibit.Step)
	assert.True(t, ibit.Required)

	etha := cfg.Instruments[1]
	assert.Equal(t, "ETHA", etha.Symbol)
	assert.Equal(t, "ETH", etha.Asset)
	assert.Equal(t, 3777263.17140, etha.Units)
	assert.Equal(t, 499320000.0, etha.SharesOutstanding)
	assert.Equal(t, int64(1), etha.WorksheetID)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(env.GoogleSheetID, "sheet-123")
	t.Setenv(env.GoogleWorksheetID, "5")
	t.Setenv(env.GoogleWorksheetID2, "6")
	t.Setenv(env.IBITUnits, "800000.5")
	t.Setenv(env.IBITSharesOutstanding, "1500000000")
	t.Setenv(env.AuditLogFile, "")
	t.Setenv(env.LogLevel, "debug")

	cfg, err := config.Load()
	assert.NoError(t, err)

	assert.Equal(t, "sheet-123", cfg.SpreadsheetID)
	assert.Equal(t, "", cfg.AuditLogFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(5), cfg.Instruments[0].WorksheetID)
	assert.Equal(t, int64(6), cfg.Instruments[1].WorksheetID)
	assert.Equal(t, 800000.5, cfg.Instruments[0].Units)
	assert.Equal(t, 1500000000.0, cfg.Instruments[0].SharesOutstanding)
}

func TestLoadRejectsInvalidRatioOperands(t *testing.T) {
	cases := []struct {
		Name  string
		Key   string
		Value string
	}{
		{"zero units", env.IBITUnits, "0"},
		{"negative units", env.ETHAUnits, "-1"},
		{"zero shares", env.IBITSharesOutstanding, "0"},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(c.Key, c.Value)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

// An explicitly empty AUDIT_LOG_FILE disables the audit log rather than
// falling back to the default path.
func TestLoadEmptyAuditLogFileDisablesAuditLog(t *testing.T) {
	clearEnv(t)
	t.Setenv(env.AuditLogFile, "")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "", cfg.AuditLogFile)
}
