package entities

import "time"

// FailedChunk records one batch-delete request that the service rejected.
// The chunk is treated as atomic pass/fail: the service reports no
// per-name result, so none of the names are counted as deleted even if the
// service applied some of them.
type FailedChunk struct {
	Names []string `json:"names"`
	Error string   `json:"error"`
}

// PruneOutcome is the per-app summary of a pruning run.
type PruneOutcome struct {
	Deleted      int           `json:"deleted"`
	FailedChunks []FailedChunk `json:"failed_chunks,omitempty"`
}

// Clean returns true if every chunk succeeded.
func (o PruneOutcome) Clean() bool {
	return len(o.FailedChunks) == 0
}

// AppResult captures one app's run as success-or-error, so a failure in
// one app never aborts the iteration over the remaining apps.
type AppResult struct {
	App      App          `json:"app"`
	Examined int          `json:"examined"`
	Kept     int          `json:"kept"`
	Outcome  PruneOutcome `json:"outcome"`
	Error    string       `json:"error,omitempty"`
}

// Failed returns true if the app's listing failed or any chunk failed.
func (r AppResult) Failed() bool {
	return r.Error != "" || !r.Outcome.Clean()
}

// PruneReport aggregates all app results of one run.
type PruneReport struct {
	RunID      string      `json:"run_id"`
	Project    string      `json:"project"`
	Policy     Policy      `json:"policy"`
	Results    []AppResult `json:"results"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}

// Policy is the JSON shape of a RetentionPolicy in reports.
type Policy struct {
	MinKeep    int `json:"min_keep"`
	MaxAgeDays int `json:"max_age_days"`
}

// Clean returns true if no app reported a failure of any kind.
func (r *PruneReport) Clean() bool {
	for _, res := range r.Results {
		if res.Failed() {
			return false
		}
	}
	return true
}

// TotalDeleted sums deletions across all apps.
func (r *PruneReport) TotalDeleted() int {
	total := 0
	for _, res := range r.Results {
		total += res.Outcome.Deleted
	}
	return total
}
