package models

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Schema management.

Migrate creates or alters every table behind the marketplace store:
users, projects, follows, handle_reservations and media_cleanup_tasks.

Column Mismatch Report Usage:

1. Set the environment variable: GENERATE_COLUMN_REPORT=true
2. Run the application

The report lists, per table, the database columns that no model field maps to
(via its gorm `column:` tag). Stale columns usually mean a field was renamed.
*/

// AllModels lists every persisted model
func AllModels() []any {
	return []any{
		&User{},
		&Project{},
		&Follow{},
		&HandleReservation{},
		&MediaCleanupTask{},
	}
}

// Migrate runs GORM's auto migration for every model with verbose SQL logging
func Migrate(db *gorm.DB) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	migrationLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             0,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)

	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
		Logger:                 migrationLogger,
	})

	if err := migrateDB.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("error during models migration: %w", err)
	}
	return nil
}

// GenerateColumnMismatchReport prints the database columns that aren't accounted for in Go models
func GenerateColumnMismatchReport(db *gorm.DB) int {
	fmt.Println("=== COLUMN MISMATCH REPORT ===")

	totalMismatches := 0
	for _, model := range AllModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			fmt.Printf("Error parsing model %T: %v\n", model, err)
			continue
		}
		tableName := stmt.Schema.Table

		fmt.Printf("\n--- Table: %s ---\n", tableName)

		dbColumns, err := getTableColumns(db, tableName)
		if err != nil {
			if strings.Contains(err.Error(), "does not exist") {
				fmt.Printf("Table does not exist yet (will be created during migration)\n")
			} else {
				fmt.Printf("Error getting columns for table %s: %v\n", tableName, err)
			}
			continue
		}

		mismatches := findColumnMismatches(dbColumns, getModelFields(model))
		if len(mismatches) > 0 {
			fmt.Printf("Found %d columns not accounted for in model:\n", len(mismatches))
			for _, col := range mismatches {
				fmt.Printf("  - %s\n", col)
			}
			totalMismatches += len(mismatches)
		} else {
			fmt.Println("All columns are accounted for in the model.")
		}
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Total mismatched columns across all tables: %d\n", totalMismatches)
	return totalMismatches
}

// getTableColumns retrieves column names from a database table
func getTableColumns(db *gorm.DB, tableName string) ([]string, error) {
	var columns []string
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = ?
		AND table_schema = CURRENT_SCHEMA()
		ORDER BY ordinal_position
	`
	if err := db.Raw(query, tableName).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", tableName)
	}
	return columns, nil
}

// getModelFields extracts column names from a model's gorm tags
func getModelFields(model any) []string {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var fields []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			continue
		}
		if columnName := extractColumnNameFromGormTag(field.Tag.Get("gorm")); columnName != "" {
			fields = append(fields, columnName)
		}
	}
	return fields
}

// extractColumnNameFromGormTag extracts the column name from a GORM tag
func extractColumnNameFromGormTag(gormTag string) string {
	for _, part := range strings.Split(gormTag, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "column:") {
			return strings.TrimPrefix(part, "column:")
		}
	}
	return ""
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
