package models

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

/*
Column Mismatch Report Usage:

`portfolio generate` writes typed query helpers for every model into ./generated and
then prints the columns that exist in the database but have no field in the
corresponding Go struct. `portfolio generate --report-only` skips code generation.

Example output:
=== COLUMN MISMATCH REPORT ===
--- Table: projects ---
Found 1 columns not accounted for in model:
  - legacy_slug

--- Table: certificates ---
All columns are accounted for in the model.
*/

// GenerateModels emits gorm/gen query code for the portfolio models into outPath.
func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)
	g.Execute()

	log.Info().Str("out", outPath).Msg("Model generation complete")
	return nil
}

// ColumnMismatch lists database columns that have no matching model field.
type ColumnMismatch struct {
	Table   string
	Missing []string
	Absent  bool // table does not exist yet
}

// GenerateColumnMismatchReport compares every model against information_schema.
func GenerateColumnMismatchReport(db *gorm.DB) ([]ColumnMismatch, error) {
	var report []ColumnMismatch

	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		tableName := stmt.Schema.Table

		dbColumns, exists, err := getTableColumns(db, tableName)
		if err != nil {
			return nil, err
		}
		if !exists {
			report = append(report, ColumnMismatch{Table: tableName, Absent: true})
			continue
		}

		report = append(report, ColumnMismatch{
			Table:   tableName,
			Missing: findColumnMismatches(dbColumns, getModelFields(stmt.Schema)),
		})
	}

	sort.Slice(report, func(i, j int) bool { return report[i].Table < report[j].Table })
	return report, nil
}

// FormatColumnMismatchReport renders the report in the layout shown above.
func FormatColumnMismatchReport(report []ColumnMismatch) string {
	var b strings.Builder
	b.WriteString("=== COLUMN MISMATCH REPORT ===\n")

	total := 0
	for _, table := range report {
		fmt.Fprintf(&b, "\n--- Table: %s ---\n", table.Table)
		switch {
		case table.Absent:
			b.WriteString("Table does not exist yet (run `portfolio migrate`)\n")
		case len(table.Missing) == 0:
			b.WriteString("All columns are accounted for in the model.\n")
		default:
			fmt.Fprintf(&b, "Found %d columns not accounted for in model:\n", len(table.Missing))
			for _, col := range table.Missing {
				fmt.Fprintf(&b, "  - %s\n", col)
			}
			total += len(table.Missing)
		}
	}

	fmt.Fprintf(&b, "\n=== SUMMARY ===\nTotal mismatched columns across all tables: %d\n", total)
	return b.String()
}

// getTableColumns retrieves column names from a database table
func getTableColumns(db *gorm.DB, tableName string) ([]string, bool, error) {
	var columns []string
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = ?
		AND table_schema = CURRENT_SCHEMA()
		ORDER BY ordinal_position
	`
	if err := db.Raw(query, tableName).Scan(&columns).Error; err != nil {
		return nil, false, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}

	if len(columns) == 0 {
		var tableExists bool
		tableQuery := `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = CURRENT_SCHEMA()
				AND table_name = ?
			)
		`
		if err := db.Raw(tableQuery, tableName).Scan(&tableExists).Error; err != nil {
			return nil, false, fmt.Errorf("error checking if table %s exists: %w", tableName, err)
		}
		return nil, tableExists, nil
	}

	return columns, true, nil
}

// getModelFields returns the column names gorm maps for a parsed model
func getModelFields(s *schema.Schema) []string {
	var fields []string
	for _, field := range s.Fields {
		if field.DBName == "" {
			continue
		}
		// relations have no column of their own
		if field.FieldType.Kind() == reflect.Slice && field.FieldType.Elem().Kind() == reflect.Struct {
			continue
		}
		fields = append(fields, field.DBName)
	}
	return fields
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}

	return mismatches
}
