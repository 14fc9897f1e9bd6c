package catalog

import "time"

// Outcome is what happened to one catalog row.
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeSkipped  Outcome = "skipped" // id already present
	OutcomeFailed   Outcome = "failed"
)

// Reason classifies a failed row.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonInvalidRow   Reason = "invalid_row"
	ReasonMissingID    Reason = "missing_id"
	ReasonInvalidPrice Reason = "invalid_price"
	ReasonInsertError  Reason = "insert_error"
)

// RowResult is the outcome of importing a single row.
type RowResult struct {
	Index   int // position in the products array
	ID      int64
	Outcome Outcome
	Reason  Reason
	Err     error
}

// Report aggregates the row results of one import run.
type Report struct {
	Total    int
	Inserted int
	Skipped  int
	Failed   int
	Rows     []RowResult
	Duration time.Duration
}

func (r *Report) add(res RowResult) {
	r.Rows = append(r.Rows, res)
	switch res.Outcome {
	case OutcomeInserted:
		r.Inserted++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

// Failures returns the failed rows in input order.
func (r *Report) Failures() []RowResult {
	var failed []RowResult
	for _, res := range r.Rows {
		if res.Outcome == OutcomeFailed {
			failed = append(failed, res)
		}
	}
	return failed
}
