package domain

// DocumentType is the catalog bucket a required document belongs to.
type DocumentType string

const (
	TypePolicy    DocumentType = "policy"
	TypeProcedure DocumentType = "procedure"
	TypeSOP       DocumentType = "sop"
	TypeRegister  DocumentType = "register"
	TypeForm      DocumentType = "form"
)

// RequiredDocument is one taxonomy entry a department must eventually produce.
// Entries are read-only for the duration of a run; reconciliation results are
// attached as sibling MatchResult records, never written back.
type RequiredDocument struct {
	DocID       string         `json:"doc_id"`
	Title       string         `json:"title"`
	Type        DocumentType   `json:"type"`
	Department  string         `json:"department"`
	Frameworks  []string       `json:"frameworks,omitempty"`
	Priority    int            `json:"priority,omitempty"`
	Version     string         `json:"version,omitempty"`
	Approver    string         `json:"approver,omitempty"`
	CrossOwners []string       `json:"cross_owners,omitempty"`
	Status      DocumentStatus `json:"status,omitempty"`
}

// DepartmentConfig describes one organizational unit the pipeline reconciles.
type DepartmentConfig struct {
	Code         string `yaml:"code"`
	Name         string `yaml:"name"`
	CatalogFile  string `yaml:"catalog_file"`
	DefaultTheme string `yaml:"default_theme"`
	Approver     string `yaml:"approver"`
}
