// Package catalog seeds the local item table from the remote product API.
//
// An import is one request and one sequential pass over the returned rows.
// Failures come in two tiers: a batch failure (network error, malformed
// response) is returned from Run and nothing is written; a row failure is
// recorded in the Report and the remaining rows are still processed.
// Rows whose id already exists are skipped, never overwritten.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/storefront/internal/storage"
)

// ErrMalformedResponse is returned when the body is not an object with a
// products array.
var ErrMalformedResponse = errors.New("malformed catalog response")

// Observer receives import counts. *metrics.Registry satisfies it.
type Observer interface {
	ObserveImportRun(ok bool)
	ObserveImportRow(outcome string)
}

// Importer copies the remote catalog into an ItemStore.
type Importer struct {
	store    storage.ItemStore
	fetcher  Fetcher
	logger   *slog.Logger
	observer Observer
	timeout  time.Duration
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger used for row and summary records.
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) { im.logger = logger }
}

// WithObserver reports run and row counts to o.
func WithObserver(o Observer) Option {
	return func(im *Importer) { im.observer = o }
}

// WithTimeout bounds a whole run. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(im *Importer) { im.timeout = d }
}

// NewImporter creates an importer writing to store.
func NewImporter(store storage.ItemStore, fetcher Fetcher, opts ...Option) *Importer {
	im := &Importer{
		store:   store,
		fetcher: fetcher,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Run fetches the catalog and inserts every row that is not already stored.
// A returned error means the batch failed before any row was processed,
// or that ctx was cancelled mid-run (the partial report is returned too).
func (im *Importer) Run(ctx context.Context) (*Report, error) {
	if im.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, im.timeout)
		defer cancel()
	}
	start := time.Now()

	body, err := im.fetcher.FetchProducts(ctx)
	if err != nil {
		im.observeRun(false)
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	rows, err := decodeProducts(body)
	if err != nil {
		im.observeRun(false)
		return nil, err
	}

	report := &Report{Total: len(rows)}
	for i, raw := range rows {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			im.observeRun(false)
			return report, fmt.Errorf("import interrupted after %d of %d rows: %w", i, len(rows), err)
		}

		res := im.importRow(ctx, i, raw)
		report.add(res)
		im.logRow(ctx, res)
		if im.observer != nil {
			im.observer.ObserveImportRow(string(res.Outcome))
		}
	}
	report.Duration = time.Since(start)
	im.observeRun(true)

	im.logger.InfoContext(ctx, "Catalog import finished",
		"total", report.Total,
		"inserted", report.Inserted,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// importRow handles one element; it never returns an error, only a result.
func (im *Importer) importRow(ctx context.Context, index int, raw json.RawMessage) RowResult {
	res := RowResult{Index: index}

	p, id, err := parseProduct(raw)
	res.ID = id
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Reason = ReasonInvalidRow
		if errors.Is(err, errMissingID) {
			res.Reason = ReasonMissingID
		}
		res.Err = err
		return res
	}

	item, reason, err := p.toItem()
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Reason = reason
		res.Err = err
		return res
	}

	inserted, err := im.store.InsertItemIfAbsent(ctx, item)
	switch {
	case err != nil:
		res.Outcome = OutcomeFailed
		res.Reason = ReasonInsertError
		res.Err = err
	case inserted:
		res.Outcome = OutcomeInserted
	default:
		res.Outcome = OutcomeSkipped
	}
	return res
}

func (im *Importer) logRow(ctx context.Context, res RowResult) {
	switch res.Outcome {
	case OutcomeInserted:
		im.logger.InfoContext(ctx, "Inserted item", "item_id", res.ID)
	case OutcomeSkipped:
		im.logger.DebugContext(ctx, "Item already present", "item_id", res.ID)
	case OutcomeFailed:
		im.logger.WarnContext(ctx, "Failed to import item",
			"item_id", res.ID,
			"index", res.Index,
			"reason", res.Reason,
			"error", res.Err,
		)
	}
}

func (im *Importer) observeRun(ok bool) {
	if im.observer != nil {
		im.observer.ObserveImportRun(ok)
	}
}

// decodeProducts validates the envelope and splits the products array into
// raw rows so each one can fail on its own.
func decodeProducts(body []byte) ([]json.RawMessage, error) {
	var envelope struct {
		Products json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	products := bytes.TrimSpace(envelope.Products)
	if len(products) == 0 || products[0] != '[' {
		return nil, fmt.Errorf("%w: the 'products' field is not an array or is missing", ErrMalformedResponse)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(products, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return rows, nil
}
