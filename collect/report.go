package collect

import "fmt"

// KeywordState describes the outcome of one keyword in a run.
type KeywordState int

const (
	// KeywordPending means the keyword was never started, e.g. because
	// the run was canceled first.
	KeywordPending KeywordState = iota + 1

	// KeywordInProgress means a worker has picked the keyword up and is
	// paging through its results.
	KeywordInProgress

	// KeywordCompleted means every page of results was processed.
	KeywordCompleted

	// KeywordFailed means the keyword aborted before its result set was
	// exhausted, typically on a search error.
	KeywordFailed
)

func (s KeywordState) String() string {
	switch s {
	case KeywordPending:
		return "pending"
	case KeywordInProgress:
		return "in-progress"
	case KeywordCompleted:
		return "completed"
	case KeywordFailed:
		return "failed"
	default:
		return fmt.Sprintf("KeywordState(%d)", int(s))
	}
}

// FailureCategory classifies why a single record was not persisted.
type FailureCategory int

const (
	// FailureTransient covers network-level and retryable API failures
	// that persisted through the retry budget.
	FailureTransient FailureCategory = iota + 1

	// FailurePermanent covers non-retryable API failures such as a
	// malformed or missing document.
	FailurePermanent

	// FailurePersistence covers storage errors while writing the record.
	FailurePersistence
)

func (c FailureCategory) String() string {
	switch c {
	case FailureTransient:
		return "transient-network"
	case FailurePermanent:
		return "permanent-request"
	case FailurePersistence:
		return "persistence"
	default:
		return fmt.Sprintf("FailureCategory(%d)", int(c))
	}
}

// RecordFailure describes a single publication that could not be
// collected or persisted.
type RecordFailure struct {
	Keyword  string
	Number   string
	Category FailureCategory
	Err      error
}

// KeywordResult is the per-keyword outcome of a run.
type KeywordResult struct {
	Keyword string
	State   KeywordState

	// Persisted is the number of records upserted for this keyword.
	Persisted int

	// Duplicates is the number of references skipped because another
	// keyword had already claimed them.
	Duplicates int

	// FailedRecords lists individual records that could not be collected.
	FailedRecords []RecordFailure

	// Err is the error that failed the keyword, nil unless State is
	// KeywordFailed.
	Err error
}

// Report aggregates the outcome of one collection run.
type Report struct {
	Results []KeywordResult
}

func newReport(keywords []string) *Report {
	results := make([]KeywordResult, len(keywords))
	for i, keyword := range keywords {
		results[i] = KeywordResult{Keyword: keyword, State: KeywordPending}
	}
	return &Report{Results: results}
}

// Persisted returns the total number of records upserted across keywords.
func (r *Report) Persisted() int {
	total := 0
	for _, result := range r.Results {
		total += result.Persisted
	}
	return total
}

// Duplicates returns the total number of cross-keyword duplicates skipped.
func (r *Report) Duplicates() int {
	total := 0
	for _, result := range r.Results {
		total += result.Duplicates
	}
	return total
}

// FailedRecords returns every record failure across keywords.
func (r *Report) FailedRecords() []RecordFailure {
	var failures []RecordFailure
	for _, result := range r.Results {
		failures = append(failures, result.FailedRecords...)
	}
	return failures
}

// CountByState returns the number of keywords in the given state.
func (r *Report) CountByState(state KeywordState) int {
	count := 0
	for _, result := range r.Results {
		if result.State == state {
			count++
		}
	}
	return count
}

// Summary returns a one-line human-readable digest of the run.
func (r *Report) Summary() string {
	return fmt.Sprintf("keywords: %d completed, %d failed, %d pending; records: %d persisted, %d duplicates, %d failed",
		r.CountByState(KeywordCompleted), r.CountByState(KeywordFailed), r.CountByState(KeywordPending),
		r.Persisted(), r.Duplicates(), len(r.FailedRecords()))
}
