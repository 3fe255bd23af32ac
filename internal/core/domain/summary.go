package domain

// Summary is the aggregated compliance posture for one department, or for the
// whole organization when Department is the global scope marker. Pure
// function of a MatchResult set; recomputed every run.
type Summary struct {
	Department       string `json:"department"`
	TotalRequired    int    `json:"total_required"`
	WithEvidence     int    `json:"with_evidence"`
	ApprovedCount    int    `json:"approved_count"`
	MappedCount      int    `json:"mapped_count"`
	FreshCount       int    `json:"fresh_count"`
	InventoryPercent int    `json:"inventory_percent"`
	ApprovalPercent  int    `json:"approval_percent"`
	MappingPercent   int    `json:"mapping_percent"`
	FreshnessPercent int    `json:"freshness_percent"`
	ReadinessScore   int    `json:"readiness_score"`
}

// GlobalScope is the Department value of the organization-wide summary row.
const GlobalScope = "ALL"
