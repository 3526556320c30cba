package validator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ridoystarlord/reportmerge/extract"
	"github.com/ridoystarlord/reportmerge/jointree"
	"github.com/ridoystarlord/reportmerge/schema"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Type     string `json:"type"`
	Table    string `json:"table,omitempty"`
	Column   string `json:"column,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error", "warning", "info"
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
	Info     []ValidationError `json:"info"`
}

func newResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
		Info:     []ValidationError{},
	}
}

func (r *ValidationResult) addError(typ, table, column, msg string) {
	r.Errors = append(r.Errors, ValidationError{Type: typ, Table: table, Column: column, Message: msg, Severity: "error"})
}

func (r *ValidationResult) addWarning(typ, table, column, msg string) {
	r.Warnings = append(r.Warnings, ValidationError{Type: typ, Table: table, Column: column, Message: msg, Severity: "warning"})
}

func (r *ValidationResult) addInfo(typ, table, msg string) {
	r.Info = append(r.Info, ValidationError{Type: typ, Table: table, Message: msg, Severity: "info"})
}

// ReportValidator checks report configurations. Without a database it only
// checks the configuration itself.
type ReportValidator struct {
	db extract.Querier
}

// NewReportValidator creates a validator. db may be nil for offline checks.
func NewReportValidator(db extract.Querier) *ReportValidator {
	return &ReportValidator{db: db}
}

// ValidateReport validates the configuration and, when a database is
// attached, that every configured table and column exists.
func (v *ReportValidator) ValidateReport(ctx context.Context, report schema.Report) (*ValidationResult, error) {
	result := v.ValidateReportWithoutDB(report)

	if v.db != nil {
		if err := v.validateAgainstDatabase(ctx, report, result); err != nil {
			return nil, fmt.Errorf("failed to validate against database: %w", err)
		}
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// ValidateReportWithoutDB validates a report without database connection
func (v *ReportValidator) ValidateReportWithoutDB(report schema.Report) *ValidationResult {
	result := newResult()

	if len(report.Tables) == 0 {
		result.addError("no_tables", "", "", fmt.Sprintf("Report '%s' defines no tables", report.Name))
	} else if len(report.Masters()) == 0 {
		result.addError("no_master", "", "", fmt.Sprintf("Report '%s' has no master table", report.Name))
	}

	byName := make(map[string]schema.TableSpec, len(report.Tables))
	for _, t := range report.Tables {
		byName[t.Name] = t
	}

	for _, t := range report.Tables {
		v.validateTable(t, result)
		v.validateJoins(t, byName, result)
	}

	v.validateTrees(report, result)

	result.Valid = len(result.Errors) == 0
	return result
}

// validateTable checks the table name and its column lists.
func (v *ReportValidator) validateTable(t schema.TableSpec, result *ValidationResult) {
	if err := validateIdentifier("table", t.Name, true); err != nil {
		result.addError("table_name", t.Name, "", err.Error())
	}

	if len(t.Columns) == 0 {
		result.addWarning("all_columns", t.Name, "",
			fmt.Sprintf("Table '%s' lists no columns; every column will be loaded", t.Name))
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c] {
			result.addError("duplicate_column", t.Name, c,
				fmt.Sprintf("Duplicate column name '%s' in table '%s'", c, t.Name))
			continue
		}
		seen[c] = true

		if err := validateIdentifier("column", c, false); err != nil {
			result.addError("column_name", t.Name, c, err.Error())
		}
	}

	for _, c := range t.ParseDates {
		if len(t.Columns) > 0 && !seen[c] {
			result.addWarning("parse_dates", t.Name, c,
				fmt.Sprintf("parse_dates column '%s' is not loaded from table '%s'", c, t.Name))
		}
	}
}

// validateJoins checks that both sides of every edge are loaded columns.
func (v *ReportValidator) validateJoins(t schema.TableSpec, byName map[string]schema.TableSpec, result *ValidationResult) {
	targets := make(map[string]bool, len(t.Joins))
	for _, j := range t.Joins {
		if targets[j.JoinWith] {
			result.addError("duplicate_join", t.Name, j.On,
				fmt.Sprintf("Table '%s' joins with '%s' more than once", t.Name, j.JoinWith))
		}
		targets[j.JoinWith] = true

		if j.On == "" || j.JoinWithOn == "" {
			result.addError("join_column", t.Name, "",
				fmt.Sprintf("Join from '%s' to '%s' needs both 'on' and 'join_with_on'", t.Name, j.JoinWith))
			continue
		}

		if len(t.Columns) > 0 && !t.HasColumn(j.On) {
			result.addError("join_column", t.Name, j.On,
				fmt.Sprintf("Join column '%s' is not loaded from table '%s'", j.On, t.Name))
		}

		target, ok := byName[j.JoinWith]
		if !ok {
			// reported by validateTrees with the builder's wording
			continue
		}
		if len(target.Columns) > 0 && !target.HasColumn(j.JoinWithOn) {
			result.addError("join_column", target.Name, j.JoinWithOn,
				fmt.Sprintf("Join column '%s' is not loaded from table '%s' (joined from '%s')",
					j.JoinWithOn, target.Name, t.Name))
		}
	}
}

// validateTrees builds the join trees and reports what the builder rejects.
func (v *ReportValidator) validateTrees(report schema.Report, result *ValidationResult) {
	trees, err := jointree.Build(report.Tables)
	if err != nil {
		result.addError(treeErrorType(err), "", "", err.Error())
		return
	}

	for _, name := range jointree.Unreachable(report.Tables, trees) {
		result.addWarning("unreachable_table", name, "",
			fmt.Sprintf("Table '%s' is not joined to any master table and will not be merged", name))
	}

	for _, tree := range trees {
		result.addInfo("join_tree", tree.Name(),
			fmt.Sprintf("Master '%s' merges %d tables (depth %d)", tree.Name(), len(tree.Tables()), tree.Depth()))
	}
}

func treeErrorType(err error) string {
	switch {
	case errors.Is(err, jointree.ErrUnknownJoinTarget):
		return "unknown_join_target"
	case errors.Is(err, jointree.ErrDuplicateTableConsumption):
		return "duplicate_table_consumption"
	case errors.Is(err, jointree.ErrJoinCycle):
		return "join_cycle"
	case errors.Is(err, jointree.ErrDuplicateTable):
		return "duplicate_table"
	default:
		return "join_tree"
	}
}

// validateAgainstDatabase checks configured tables and columns exist.
func (v *ReportValidator) validateAgainstDatabase(ctx context.Context, report schema.Report, result *ValidationResult) error {
	for _, t := range report.Tables {
		existing, err := extract.ExistingColumns(ctx, v.db, t.Name)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			result.addError("missing_table", t.Name, "",
				fmt.Sprintf("Table '%s' does not exist in database", t.Name))
			continue
		}

		have := make(map[string]bool, len(existing))
		for _, c := range existing {
			have[c] = true
		}
		for _, c := range t.Columns {
			if !have[c] {
				result.addError("missing_column", t.Name, c,
					fmt.Sprintf("Column '%s' does not exist in table '%s'", c, t.Name))
			}
		}
	}
	return nil
}

// validateIdentifier applies PostgreSQL identifier rules. Table names may be
// schema qualified.
func validateIdentifier(kind, name string, qualified bool) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}

	parts := []string{name}
	if qualified {
		parts = strings.Split(name, ".")
	}

	for _, part := range parts {
		if part == "" {
			return fmt.Errorf("%s name '%s' has an empty part", kind, name)
		}
		if len(part) > 63 {
			return fmt.Errorf("%s name '%s' is too long (max 63 characters)", kind, name)
		}
		for _, char := range part {
			if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_') {
				return fmt.Errorf("%s name '%s' contains invalid character '%c'", kind, name, char)
			}
		}
	}

	return nil
}
