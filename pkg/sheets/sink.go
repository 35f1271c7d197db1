// Package sheets mirrors rendered strike tables into Google Sheets
// worksheets. Upload is best-effort: every failure here is reported and
// isolated, never fatal to the run.
package sheets

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Sink accepts a rendered cell matrix for one worksheet.
type Sink interface {
	Upload(ctx context.Context, worksheetID int64, matrix [][]string) error
}

// ConnectionError reports that the spreadsheet backend could not be
// reached after exhausting the retry budget.
type ConnectionError struct {
	Attempts int
	Cause    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("sheets connection failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// UploadError reports a failed write to a single worksheet.
type UploadError struct {
	WorksheetID int64
	Cause       error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload to worksheet %d failed: %v", e.WorksheetID, e.Cause)
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}

// NoopSink is selected when the spreadsheet backend is not configured or
// could not be constructed; the pipeline runs unchanged without uploads.
type NoopSink struct{}

func (NoopSink) Upload(_ context.Context, worksheetID int64, matrix [][]string) error {
	logrus.WithFields(logrus.Fields{
		"worksheet": worksheetID,
		"rows":      len(matrix),
	}).Debug("Sheets backend not configured, skipping upload")
	return nil
}
