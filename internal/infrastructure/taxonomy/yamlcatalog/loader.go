// Package yamlcatalog loads per-department required-document catalogs from
// YAML files. Two shapes are accepted: a flat list of entries, or a mapping
// keyed by document type (policies/procedures/sops/registers/forms) whose
// bucket supplies the entry type.
package yamlcatalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/govreg/doccompass/internal/core/domain"
)

type Loader struct {
	catalogDir string
}

func New(catalogDir string) *Loader {
	return &Loader{catalogDir: catalogDir}
}

type catalogEntry struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Type        string   `yaml:"type"`
	Department  string   `yaml:"department"`
	Frameworks  []string `yaml:"frameworks"`
	Priority    int      `yaml:"priority"`
	Version     string   `yaml:"version"`
	Approver    string   `yaml:"approver"`
	CrossOwners []string `yaml:"cross_owners"`
	Status      string   `yaml:"status"`
}

var bucketTypes = map[string]domain.DocumentType{
	"policies":   domain.TypePolicy,
	"policy":     domain.TypePolicy,
	"procedures": domain.TypeProcedure,
	"procedure":  domain.TypeProcedure,
	"sops":       domain.TypeSOP,
	"sop":        domain.TypeSOP,
	"registers":  domain.TypeRegister,
	"register":   domain.TypeRegister,
	"forms":      domain.TypeForm,
	"form":       domain.TypeForm,
}

// Load reads the department's catalog file and normalizes it into a flat
// RequiredDocument list. A missing file maps to domain.ErrCatalogNotFound so
// the caller can treat the department as empty and keep the run going.
func (l *Loader) Load(_ context.Context, dept domain.DepartmentConfig) ([]domain.RequiredDocument, error) {
	path := l.catalogPath(dept)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.WrapError(domain.ErrCatalogNotFound, "read catalog", err)
		}
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidCatalog, "parse catalog", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		return l.decodeFlat(doc, dept)
	case yaml.MappingNode:
		return l.decodeBuckets(doc, dept)
	default:
		return nil, domain.WrapError(domain.ErrInvalidCatalog, "parse catalog",
			fmt.Errorf("unexpected top-level node kind %d in %s", doc.Kind, path))
	}
}

func (l *Loader) catalogPath(dept domain.DepartmentConfig) string {
	file := dept.CatalogFile
	if file == "" {
		file = strings.ToLower(dept.Code) + ".yaml"
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(l.catalogDir, file)
}

func (l *Loader) decodeFlat(node *yaml.Node, dept domain.DepartmentConfig) ([]domain.RequiredDocument, error) {
	var entries []catalogEntry
	if err := node.Decode(&entries); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidCatalog, "decode catalog list", err)
	}
	out := make([]domain.RequiredDocument, 0, len(entries))
	for _, e := range entries {
		out = append(out, toDocument(e, dept, domain.DocumentType(strings.ToLower(e.Type))))
	}
	return out, nil
}

func (l *Loader) decodeBuckets(node *yaml.Node, dept domain.DepartmentConfig) ([]domain.RequiredDocument, error) {
	var out []domain.RequiredDocument
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := strings.ToLower(strings.TrimSpace(node.Content[i].Value))
		bucketType, known := bucketTypes[key]
		if !known {
			bucketType = domain.DocumentType(key)
		}

		var entries []catalogEntry
		if err := node.Content[i+1].Decode(&entries); err != nil {
			return nil, domain.WrapError(domain.ErrInvalidCatalog,
				fmt.Sprintf("decode catalog bucket %q", key), err)
		}
		for _, e := range entries {
			// Entry-level type overrides the bucket it was filed under.
			t := bucketType
			if e.Type != "" {
				t = domain.DocumentType(strings.ToLower(e.Type))
			}
			out = append(out, toDocument(e, dept, t))
		}
	}
	return out, nil
}

func toDocument(e catalogEntry, dept domain.DepartmentConfig, t domain.DocumentType) domain.RequiredDocument {
	department := e.Department
	if department == "" {
		department = dept.Code
	}
	return domain.RequiredDocument{
		DocID:       strings.TrimSpace(e.ID),
		Title:       strings.TrimSpace(e.Title),
		Type:        t,
		Department:  department,
		Frameworks:  e.Frameworks,
		Priority:    e.Priority,
		Version:     e.Version,
		Approver:    e.Approver,
		CrossOwners: e.CrossOwners,
		Status:      domain.DocumentStatus(strings.TrimSpace(e.Status)),
	}
}

// LoadDepartments reads the department manifest listing every organizational
// unit the pipeline reconciles.
func LoadDepartments(path string) ([]domain.DepartmentConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read departments manifest: %w", err)
	}
	var manifest struct {
		Departments []domain.DepartmentConfig `yaml:"departments"`
	}
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidCatalog, "parse departments manifest", err)
	}
	return manifest.Departments, nil
}
