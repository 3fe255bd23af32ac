package domain

import "time"

// ReconciliationRun identifies one pipeline invocation. Runs are append-only;
// the most recent run is the canonical result set for dashboards.
type ReconciliationRun struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Departments []string  `json:"departments"`
}

// ResultSet is the complete output of one run: the flat result list plus
// every derived view downstream consumers read.
type ResultSet struct {
	Run         ReconciliationRun `json:"run"`
	Results     []MatchResult     `json:"results"`
	Conflicts   []Conflict        `json:"conflicts"`
	Missing     []MatchResult     `json:"missing"`
	NeedsReview []MatchResult     `json:"needs_review"`
	Unmapped    []MatchResult     `json:"unmapped"`
	Departments []Summary         `json:"departments"`
	Global      Summary           `json:"global"`
}
