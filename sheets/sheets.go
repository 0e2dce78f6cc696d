// Package sheets appends parsed ideas to a Google Sheet.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	ideas "github.com/vivaneiona/reddit-ideas"
)

// DefaultRange covers the ten exported columns.
const DefaultRange = "Sheet1!A:J"

// Header lists the exported columns in order. WithHeaderRow writes it above
// the first rows of an empty sheet.
var Header = []string{
	"Date", "Subreddit", "Post URL", "Post Title", "Product Name",
	"Target User", "Core Problem", "MVP Features", "Monetization", "Feasibility",
}

// Exporter appends one row per idea in a single batched call.
type Exporter struct {
	svc     *sheets.Service
	sheetID string
	rng     string
	now     func() time.Time
	log     *slog.Logger

	mu         sync.Mutex
	header     bool
	headerDone bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithRange overrides the A1 range rows are appended to.
func WithRange(rng string) Option {
	return func(e *Exporter) {
		if rng != "" {
			e.rng = rng
		}
	}
}

// WithHeaderRow prepends Header to the first append when the range is empty.
func WithHeaderRow() Option {
	return func(e *Exporter) { e.header = true }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Exporter) { e.log = log }
}

// New authenticates with the service-account key at credentialsPath.
func New(ctx context.Context, sheetID, credentialsPath string, opts ...Option) (*Exporter, error) {
	return NewWithClientOptions(ctx, sheetID, []option.ClientOption{
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope),
	}, opts...)
}

// NewWithClientOptions builds an Exporter from raw client options.
func NewWithClientOptions(ctx context.Context, sheetID string, clientOpts []option.ClientOption, opts ...Option) (*Exporter, error) {
	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build sheets client: %v", ideas.ErrSheetsExport, err)
	}
	e := &Exporter{
		svc:     svc,
		sheetID: sheetID,
		rng:     DefaultRange,
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Ensure Exporter implements ideas.Exporter
var _ ideas.Exporter = (*Exporter)(nil)

// Export appends every idea as one row.
func (e *Exporter) Export(ctx context.Context, subreddit, postURL, postTitle string, list []ideas.Idea) error {
	if len(list) == 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	rows := Rows(e.now().UTC().Format(time.RFC3339), subreddit, postURL, postTitle, list)
	withHeader := false
	if e.header && !e.headerDone {
		existing, err := e.svc.Spreadsheets.Values.Get(e.sheetID, e.rng).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("%w: failed to read range: %v", ideas.ErrSheetsExport, err)
		}
		if len(existing.Values) == 0 {
			rows = append([][]interface{}{headerRow()}, rows...)
			withHeader = true
		}
	}
	vr := &sheets.ValueRange{
		Range:          e.rng,
		MajorDimension: "ROWS",
		Values:         rows,
	}

	_, err := e.svc.Spreadsheets.Values.Append(e.sheetID, e.rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: failed to append rows: %v", ideas.ErrSheetsExport, err)
	}
	e.headerDone = true
	e.log.Debug("Appended rows", "sheet_id", e.sheetID, "range", e.rng, "rows", len(list), "header", withHeader)
	return nil
}

func headerRow() []interface{} {
	row := make([]interface{}, len(Header))
	for i, h := range Header {
		row[i] = h
	}
	return row
}

// Rows builds the ten-column rows for list. MVP features are joined with "; ".
func Rows(timestamp, subreddit, postURL, postTitle string, list []ideas.Idea) [][]interface{} {
	rows := make([][]interface{}, 0, len(list))
	for _, idea := range list {
		rows = append(rows, []interface{}{
			timestamp,
			subreddit,
			postURL,
			postTitle,
			idea.ProductName,
			idea.TargetUser,
			idea.CoreProblem,
			strings.Join(idea.MVPFeatures, "; "),
			idea.Monetization,
			idea.Feasibility,
		})
	}
	return rows
}
