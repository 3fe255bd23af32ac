// Package excel renders a reconciliation result set as an .xlsx workbook for
// compliance reviewers: one registry sheet plus one sheet per derived list
// and the summary rows.
package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/govreg/doccompass/internal/core/domain"
)

const (
	sheetRegister    = "Register"
	sheetConflicts   = "Conflicts"
	sheetMissing     = "Missing"
	sheetNeedsReview = "Needs Review"
	sheetUnmapped    = "Unmapped"
	sheetSummary     = "Summary"
)

type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// Write renders rs into an .xlsx file at path, creating parent directories as
// needed. Any failure is returned to the caller, which treats it as
// non-fatal: the in-memory result set is the source of truth.
func (w *Writer) Write(ctx context.Context, rs *domain.ResultSet, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeResultSheet(f, sheetRegister, rs.Results, header); err != nil {
		return err
	}
	if err := writeConflictSheet(f, rs.Conflicts, header); err != nil {
		return err
	}
	if err := writeResultSheet(f, sheetMissing, rs.Missing, header); err != nil {
		return err
	}
	if err := writeResultSheet(f, sheetNeedsReview, rs.NeedsReview, header); err != nil {
		return err
	}
	if err := writeResultSheet(f, sheetUnmapped, rs.Unmapped, header); err != nil {
		return err
	}
	if err := writeSummarySheet(f, rs, header); err != nil {
		return err
	}

	// The default sheet excelize creates is replaced by Register.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(sheetRegister); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

var resultHeaders = []string{
	"Document ID", "Title", "Type", "Owner", "Cross Owners", "Approver", "Version",
	"Status", "Coverage %", "Match Method", "Match Confidence", "Evidence Path",
	"Last Updated", "Obligations", "Frameworks", "Shared Evidence", "Notes",
}

func writeResultSheet(f *excelize.File, sheet string, results []domain.MatchResult, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	if err := setHeaderRow(f, sheet, resultHeaders, headerStyle); err != nil {
		return err
	}

	for i, r := range results {
		row := []interface{}{
			r.DocumentID, r.Title, string(r.Type), r.Owner, strings.Join(r.CrossOwners, ", "),
			r.Approver, r.Version, string(r.Status), r.CoveragePercent, string(r.MatchMethod),
			string(r.MatchConfidence), r.EvidencePath, formatDate(r.LastUpdated),
			strings.Join(r.MatchedObligations, "; "), strings.Join(r.FrameworkTags, "; "),
			r.SharedEvidence, r.Notes,
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeConflictSheet(f *excelize.File, conflicts []domain.Conflict, headerStyle int) error {
	if _, err := f.NewSheet(sheetConflicts); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheetConflicts, err)
	}
	headers := []string{"Title", "Document IDs", "Departments", "Versions", "Reason"}
	if err := setHeaderRow(f, sheetConflicts, headers, headerStyle); err != nil {
		return err
	}
	for i, c := range conflicts {
		row := []interface{}{
			c.Title, strings.Join(c.DocumentIDs, ", "), strings.Join(c.Departments, ", "),
			strings.Join(c.Versions, ", "), string(c.Reason),
		}
		if err := writeRow(f, sheetConflicts, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, rs *domain.ResultSet, headerStyle int) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheetSummary, err)
	}
	headers := []string{
		"Department", "Total Required", "With Evidence", "Inventory %",
		"Approval %", "Mapping %", "Freshness %", "Readiness",
	}
	if err := setHeaderRow(f, sheetSummary, headers, headerStyle); err != nil {
		return err
	}

	rowNum := 2
	for _, s := range append(rs.Departments, rs.Global) {
		row := []interface{}{
			s.Department, s.TotalRequired, s.WithEvidence, s.InventoryPercent,
			s.ApprovalPercent, s.MappingPercent, s.FreshnessPercent, s.ReadinessScore,
		}
		if err := writeRow(f, sheetSummary, rowNum, row); err != nil {
			return err
		}
		rowNum++
	}
	return nil
}

func setHeaderRow(f *excelize.File, sheet string, headers []string, style int) error {
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("set header %s!%s: %w", sheet, cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("style header %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("row cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %s!%d: %w", sheet, rowNum, err)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
