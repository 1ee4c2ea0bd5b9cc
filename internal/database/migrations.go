package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the scoped queries rely on
func AddIndexes(db *gorm.DB, log logrus.FieldLogger) error {
	indexes := []struct {
		model   interface{}
		table   string
		name    string
		columns string
	}{
		// Every scoped read filters on tenant and tombstone together
		{&models.Role{}, "roles", "idx_roles_tenant_name", "tenant_id, is_deleted, name"},
		{&models.User{}, "users", "idx_users_tenant_deleted", "tenant_id, is_deleted"},
		{&models.Project{}, "projects", "idx_projects_tenant_deleted", "tenant_id, is_deleted"},
		{&models.Task{}, "tasks", "idx_tasks_project_deleted", "project_id, is_deleted"},

		// Activity log is listed newest first per tenant
		{&models.ActivityLog{}, "activity_logs", "idx_activity_logs_tenant_created", "tenant_id, created_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			log.Debugf("Index %s already exists, skipping", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Infof("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
