package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// AddIndexes adds the lookup indexes the visibility queries rely on.
// It only runs against postgres.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Assignment lookups by project and by (user, role)
		{"project_assignments", "idx_assignments_project_role", "project_id, project_role"},
		{"project_assignments", "idx_assignments_user_role", "user_id, project_role"},

		// Task lookups by assignee set and status counts
		{"tasks", "idx_tasks_assignee_status", "assignee_id, status"},
		{"tasks", "idx_tasks_due_date", "due_date"},

		{"users", "idx_users_role", "role"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Scan(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			slog.Debug("Index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("Created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}

// MigrateDatabase runs the driver specific steps that AutoMigrate does not cover.
func MigrateDatabase(db *gorm.DB, driver string) error {
	if driver != "postgres" {
		return nil
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
