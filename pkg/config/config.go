// Package config assembles the immutable runtime configuration from the
// process environment.
package config

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/dzubidas/ibit-strike-ratio/pkg/env"
	"github.com/dzubidas/ibit-strike-ratio/pkg/strike"
)

// Instrument describes one tracked ETF and the fixed conversion parameters
// published for it.
type Instrument struct {
	Symbol            string
	Label             string
	Asset             string
	Units             float64
	SharesOutstanding float64
	WorksheetID       int64
	Low               float64
	High              float64
	Step              float64
	Required          bool
}

// Config is constructed once at startup and passed into every component.
type Config struct {
	CredentialsFile string
	SpreadsheetID   string
	AuditLogFile    string
	LogLevel        string
	Instruments     []Instrument
}

func defaults() {
	viper.SetDefault(env.GoogleCredentialsFile, "service-account-key.json")
	viper.SetDefault(env.GoogleSheetID, "")
	viper.SetDefault(env.GoogleWorksheetID, 0)
	viper.SetDefault(env.GoogleWorksheetID2, 1)
	viper.SetDefault(env.IBITUnits, 746810.57340)
	viper.SetDefault(env.IBITSharesOutstanding, 1314880000.0)
	viper.SetDefault(env.ETHAUnits, 3777263.17140)
	viper.SetDefault(env.ETHASharesOutstanding, 499320000.0)
	viper.SetDefault(env.AuditLogFile, "logs/strike_prices.log")
	viper.SetDefault(env.LogLevel, "info")
	// An explicitly empty variable must win over the default, e.g.
	// AUDIT_LOG_FILE="" disables the audit log.
	viper.AllowEmptyEnv(true)
	viper.AutomaticEnv()
}

// Load reads the environment (and a local .env file when present) into a
// Config. Unit and share counts are validated here so that every ratio the
// registry derives later is finite and positive.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using system environment variables")
	}
	defaults()

	cfg := Config{
		CredentialsFile: viper.GetString(env.GoogleCredentialsFile),
		SpreadsheetID:   viper.GetString(env.GoogleSheetID),
		AuditLogFile:    viper.GetString(env.AuditLogFile),
		LogLevel:        viper.GetString(env.LogLevel),
		Instruments: []Instrument{
			{
				Symbol:            "IBIT",
				Label:             "IBIT",
				Asset:             "BTC",
				Units:             viper.GetFloat64(env.IBITUnits),
				SharesOutstanding: viper.GetFloat64(env.IBITSharesOutstanding),
				WorksheetID:       viper.GetInt64(env.GoogleWorksheetID),
				Low:               25,
				High:              80,
				Step:              0.5,
				Required:          true,
			},
			{
				Symbol:            "ETHA",
				Label:             "ETHA",
				Asset:             "ETH",
				Units:             viper.GetFloat64(env.ETHAUnits),
				SharesOutstanding: viper.GetFloat64(env.ETHASharesOutstanding),
				WorksheetID:       viper.GetInt64(env.GoogleWorksheetID2),
				Low:               10,
				High:              70,
				Step:              0.5,
				Required:          true,
			},
		},
	}

	for _, inst := range cfg.Instruments {
		if _, err := strike.NewConversionRatio(inst.Symbol, inst.Units, inst.SharesOutstanding); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
