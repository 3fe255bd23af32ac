package domain

// ConflictReason distinguishes duplicate titles inside one department from
// title collisions that span departments.
type ConflictReason string

const (
	ReasonCrossDepartment  ConflictReason = "same-title-cross-department"
	ReasonWithinDepartment ConflictReason = "duplicate-title-within-department"
)

// Conflict is a group of required documents sharing one normalized title.
type Conflict struct {
	Title       string         `json:"title"`
	DocumentIDs []string       `json:"document_ids"`
	Departments []string       `json:"departments"`
	Versions    []string       `json:"versions,omitempty"`
	Reason      ConflictReason `json:"reason"`
}
