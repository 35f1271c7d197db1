package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/dzubidas/ibit-strike-ratio/pkg/auditlog"
	"github.com/dzubidas/ibit-strike-ratio/pkg/config"
	"github.com/dzubidas/ibit-strike-ratio/pkg/pricing"
	"github.com/dzubidas/ibit-strike-ratio/pkg/runner"
	"github.com/dzubidas/ibit-strike-ratio/pkg/sheets"
	"github.com/dzubidas/ibit-strike-ratio/pkg/strike"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Error("Invalid configuration")
		return 1
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// Fixed conversion ratios, derived once from configuration.
	ratios := make([]strike.ConversionRatio, 0, len(cfg.Instruments))
	for _, inst := range cfg.Instruments {
		ratio, err := strike.NewConversionRatio(inst.Symbol, inst.Units, inst.SharesOutstanding)
		if err != nil {
			logrus.WithError(err).Error("Invalid conversion ratio configuration")
			return 1
		}
		ratios = append(ratios, ratio)
	}
	registry := strike.NewRegistry(ratios...)

	// Spreadsheet sink is a capability-checked collaborator: when it cannot
	// be constructed the run proceeds with a no-op sink.
	ctx := context.Background()
	var sink sheets.Sink = sheets.NoopSink{}
	if cfg.SpreadsheetID == "" {
		logrus.Info("No spreadsheet configured, continuing without sheet uploads")
	} else {
		connector := &sheets.Connector{
			CredentialsFile: cfg.CredentialsFile,
			SpreadsheetID:   cfg.SpreadsheetID,
		}
		connected, err := connector.Connect(ctx)
		if err != nil {
			logrus.WithError(err).Warn("Google Sheets unavailable, continuing without sheet uploads")
		} else {
			sink = connected
		}
	}

	var audit *auditlog.Logger
	if cfg.AuditLogFile != "" {
		audit, err = auditlog.Open(cfg.AuditLogFile)
		if err != nil {
			logrus.WithError(err).Warn("Audit log unavailable, continuing without it")
		} else {
			defer audit.Close()
		}
	}

	r := &runner.Runner{
		Feed:          pricing.NewYahooFeed(),
		ReferenceFeed: pricing.NewKrakenIndexFeed(),
		Registry:      registry,
		Sink:          sink,
		Audit:         audit,
		Out:           os.Stdout,
		Instruments:   cfg.Instruments,
	}
	return r.Run(ctx)
}
