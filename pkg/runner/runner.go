// Package runner sequences the per-instrument pipeline: resolve price,
// generate the strike table, render, upload, audit. Instruments run
// sequentially and failures in one never abort the others.
package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dzubidas/ibit-strike-ratio/pkg/auditlog"
	"github.com/dzubidas/ibit-strike-ratio/pkg/config"
	"github.com/dzubidas/ibit-strike-ratio/pkg/pricing"
	"github.com/dzubidas/ibit-strike-ratio/pkg/render"
	"github.com/dzubidas/ibit-strike-ratio/pkg/sheets"
	"github.com/dzubidas/ibit-strike-ratio/pkg/strike"
)

// Runner composes the pipeline components. All collaborators are supplied
// at construction; Run holds no state across invocations.
type Runner struct {
	Feed          pricing.Client
	ReferenceFeed pricing.Client
	Registry      *strike.Registry
	Sink          sheets.Sink
	Audit         *auditlog.Logger
	Out           io.Writer
	Instruments   []config.Instrument

	// Now overrides the clock in tests; nil means time.Now.
	Now func() time.Time
}

// Run executes every configured instrument pipeline and returns the
// process exit code: 0 when all required instruments produced a table,
// 1 when a required price could not be resolved or nothing resolved.
func (r *Runner) Run(ctx context.Context) int {
	runID := uuid.NewString()
	now := r.Now
	if now == nil {
		now = time.Now
	}

	reference := r.resolveReference(ctx)

	fields := []auditlog.Field{}
	if reference != nil {
		fields = append(fields, auditlog.Field{Key: "BTC_INDEX", Value: fmt.Sprintf("%.2f", reference.Price)})
	}

	resolved := 0
	requiredFailed := false
	for _, inst := range r.Instruments {
		log := logrus.WithFields(logrus.Fields{"run": runID, "instrument": inst.Symbol})

		quote, err := r.Feed.Resolve(ctx, inst.Symbol)
		if err != nil {
			log.WithError(err).Error("Failed to resolve instrument price, skipping")
			fmt.Fprintf(r.Out, "ERROR: failed to resolve %s price: %v\n", inst.Symbol, err)
			if inst.Required {
				requiredFailed = true
			}
			continue
		}

		ratio, err := r.Registry.RatioFor(inst.Symbol)
		if err != nil {
			log.WithError(err).Error("No conversion ratio configured, skipping")
			fmt.Fprintf(r.Out, "ERROR: %s: %v\n", inst.Symbol, err)
			if inst.Required {
				requiredFailed = true
			}
			continue
		}

		table, err := strike.Generate(ratio, inst.Low, inst.High, inst.Step, now())
		if err != nil {
			log.WithError(err).Error("Strike table generation failed, skipping")
			fmt.Fprintf(r.Out, "ERROR: %s: %v\n", inst.Symbol, err)
			if inst.Required {
				requiredFailed = true
			}
			continue
		}
		log.WithField("rows", len(table.Rows)).Infof("Generated strike table at ratio %.10f", ratio.Ratio())

		var instrumentReference *pricing.Quote
		if inst.Asset == "BTC" {
			instrumentReference = reference
		}
		fmt.Fprint(r.Out, render.Report(table, quote, inst.Label, inst.Asset, instrumentReference))

		resolved++
		fields = append(fields,
			auditlog.Field{Key: inst.Symbol, Value: fmt.Sprintf("%.2f", quote.Price)},
			auditlog.Field{Key: inst.Symbol + "_RATIO", Value: fmt.Sprintf("%.10f", ratio.Ratio())},
		)

		matrix := render.SheetMatrix(table, quote, inst.Label, inst.Asset)
		if err := r.Sink.Upload(ctx, inst.WorksheetID, matrix); err != nil {
			log.WithError(err).Error("Sheet upload failed, continuing without it")
			fmt.Fprintf(r.Out, "WARNING: sheet upload for %s failed: %v\n", inst.Symbol, err)
			continue
		}
		log.WithField("worksheet", inst.WorksheetID).Info("Uploaded strike table to Google Sheets")
	}

	r.Audit.Record(runID, fields...)

	if resolved == 0 || requiredFailed {
		return 1
	}
	return 0
}

// resolveReference fetches the live Bitcoin index quote for report and
// audit metadata. It never affects the conversion or the exit code.
func (r *Runner) resolveReference(ctx context.Context) *pricing.Quote {
	if r.ReferenceFeed == nil {
		return nil
	}
	quote, err := r.ReferenceFeed.Resolve(ctx, pricing.BitcoinIndexInstrument)
	if err != nil {
		logrus.WithError(err).Warn("Failed to resolve Bitcoin index price, continuing without it")
		return nil
	}
	return &quote
}
