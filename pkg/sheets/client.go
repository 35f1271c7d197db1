package sheets

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
	ghttp "google.golang.org/api/transport/http"
)

const (
	MaxIdleConns        = 100
	MaxIdleConnsPerHost = 50

	maxConnectAttempts = 3
	initialRetryDelay  = 2 * time.Second
)

// spreadsheetAPI is the slice of the Sheets service the sink needs.
type spreadsheetAPI interface {
	WorksheetTitle(ctx context.Context, spreadsheetID string, worksheetID int64) (string, error)
	Clear(ctx context.Context, spreadsheetID, readRange string) error
	Update(ctx context.Context, spreadsheetID, readRange string, values [][]interface{}) error
}

// Connector establishes a spreadsheet connection with bounded retries:
// up to 3 attempts with a doubling delay starting at 2s (2, 4, 8).
type Connector struct {
	CredentialsFile string
	SpreadsheetID   string

	// Sleep is the delay function between attempts; nil means time.Sleep.
	Sleep func(time.Duration)

	// Dial overrides backend construction, used by tests.
	Dial func(ctx context.Context) (spreadsheetAPI, error)
}

// Connect returns a Sink bound to the configured spreadsheet, or a
// ConnectionError once the retry budget is exhausted. A missing
// credentials file fails immediately without retrying.
func (c *Connector) Connect(ctx context.Context) (Sink, error) {
	if c.CredentialsFile != "" {
		if _, err := os.Stat(c.CredentialsFile); err != nil {
			return nil, &ConnectionError{Attempts: 0, Cause: fmt.Errorf("credentials file not found: %s", c.CredentialsFile)}
		}
	}

	dial := c.Dial
	if dial == nil {
		dial = c.dialGoogle
	}
	sleep := c.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	delay := initialRetryDelay
	var lastErr error
	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		api, err := dial(ctx)
		if err == nil {
			logrus.Info("Connected to Google Sheets")
			return &GoogleSink{SpreadsheetID: c.SpreadsheetID, api: api}, nil
		}
		lastErr = err
		logrus.WithError(err).Warnf("Sheets connection attempt %d/%d failed, retrying in %s", attempt, maxConnectAttempts, delay)
		sleep(delay)
		delay *= 2
	}
	return nil, &ConnectionError{Attempts: maxConnectAttempts, Cause: lastErr}
}

func (c *Connector) dialGoogle(ctx context.Context) (spreadsheetAPI, error) {
	options := []option.ClientOption{
		option.WithScopes(gsheets.SpreadsheetsScope, gsheets.DriveScope),
	}
	if c.CredentialsFile != "" {
		options = append(options, option.WithCredentialsFile(c.CredentialsFile))
	}

	transport, err := ghttp.NewTransport(ctx, &http.Transport{
		MaxIdleConns:        MaxIdleConns,
		MaxIdleConnsPerHost: MaxIdleConnsPerHost,
		IdleConnTimeout:     time.Minute,
	}, options...)
	if err != nil {
		return nil, err
	}

	svc, err := gsheets.NewService(ctx, option.WithHTTPClient(&http.Client{
		Transport: transport,
	}))
	if err != nil {
		return nil, err
	}
	return &googleAPI{svc: svc}, nil
}

// GoogleSink uploads matrices to one spreadsheet, addressing worksheets by
// their numeric id. The target worksheet is fully cleared before the new
// matrix is written starting at the top-left cell; values are interpreted
// as user-entered so formatted strings keep their literal formatting.
type GoogleSink struct {
	SpreadsheetID string
	api           spreadsheetAPI
}

func (s *GoogleSink) Upload(ctx context.Context, worksheetID int64, matrix [][]string) error {
	title, err := s.api.WorksheetTitle(ctx, s.SpreadsheetID, worksheetID)
	if err != nil {
		return &UploadError{WorksheetID: worksheetID, Cause: err}
	}
	sheetRange := fmt.Sprintf("'%s'", strings.ReplaceAll(title, "'", "''"))

	if err := s.api.Clear(ctx, s.SpreadsheetID, sheetRange); err != nil {
		return &UploadError{WorksheetID: worksheetID, Cause: fmt.Errorf("clear: %w", err)}
	}

	values := make([][]interface{}, len(matrix))
	for i, row := range matrix {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}
	if err := s.api.Update(ctx, s.SpreadsheetID, sheetRange+"!A1", values); err != nil {
		return &UploadError{WorksheetID: worksheetID, Cause: fmt.Errorf("update: %w", err)}
	}
	return nil
}

type googleAPI struct {
	svc *gsheets.Service
}

func (g *googleAPI) WorksheetTitle(ctx context.Context, spreadsheetID string, worksheetID int64) (string, error) {
	resp, err := g.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil && sheet.Properties.SheetId == worksheetID {
			return sheet.Properties.Title, nil
		}
	}
	return "", fmt.Errorf("worksheet %d not found in spreadsheet %s", worksheetID, spreadsheetID)
}

func (g *googleAPI) Clear(ctx context.Context, spreadsheetID, readRange string) error {
	_, err := g.svc.Spreadsheets.Values.Clear(spreadsheetID, readRange, &gsheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (g *googleAPI) Update(ctx context.Context, spreadsheetID, readRange string, values [][]interface{}) error {
	_, err := g.svc.Spreadsheets.Values.
		Update(spreadsheetID, readRange, &gsheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	return err
}
