package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/enterprise-core-api/internal/constants"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/repository"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"gorm.io/gorm"
)

// Permission codes shipped with the service.
const (
	ProjectsView   = "projects.view"
	ProjectsCreate = "projects.create"
	ProjectsEdit   = "projects.edit"
	ProjectsDelete = "projects.delete"

	TasksView   = "tasks.view"
	TasksCreate = "tasks.create"
	TasksEdit   = "tasks.edit"
	TasksDelete = "tasks.delete"

	UsersView   = "users.view"
	UsersManage = "users.manage"

	RolesView   = "roles.view"
	RolesCreate = "roles.create"
	RolesEdit   = "roles.edit"
	RolesDelete = "roles.delete"

	PermissionsView = "permissions.view"
	ActivityView    = "activity.view"
)

type PermissionDefinition struct {
	Code        string
	Name        string
	Description string
}

type RoleDefinition struct {
	Name        string
	Description string
	Codes       []string
}

var Permissions = []PermissionDefinition{
	{ProjectsView, "View projects", "List and read projects"},
	{ProjectsCreate, "Create projects", "Create new projects"},
	{ProjectsEdit, "Edit projects", "Rename and describe projects"},
	{ProjectsDelete, "Delete projects", "Delete projects and their tasks"},
	{TasksView, "View tasks", "List and read tasks"},
	{TasksCreate, "Create tasks", "Create tasks inside a project"},
	{TasksEdit, "Edit tasks", "Change task fields and status"},
	{TasksDelete, "Delete tasks", "Delete tasks"},
	{UsersView, "View users", "List users of the tenant"},
	{UsersManage, "Manage users", "Assign roles to and remove users"},
	{RolesView, "View roles", "List roles and their permissions"},
	{RolesCreate, "Create roles", "Create tenant roles"},
	{RolesEdit, "Edit roles", "Rename roles and replace their permissions"},
	{RolesDelete, "Delete roles", "Delete tenant roles no user holds"},
	{PermissionsView, "View permissions", "Read the permission catalog"},
	{ActivityView, "View activity", "Read the tenant activity log"},
}

var SystemRoles = []RoleDefinition{
	{
		Name:        constants.SystemRoleAdmin,
		Description: "Full access to every tenant resource",
		Codes:       allCodes(),
	},
	{
		Name:        constants.SystemRoleMember,
		Description: "Works on projects and tasks",
		Codes: []string{
			ProjectsView, ProjectsCreate, ProjectsEdit,
			TasksView, TasksCreate, TasksEdit,
		},
	},
	{
		Name:        constants.SystemRoleViewer,
		Description: "Read-only access to projects and tasks",
		Codes:       []string{ProjectsView, TasksView},
	},
}

func allCodes() []string {
	codes := make([]string, len(Permissions))
	for i, p := range Permissions {
		codes[i] = p.Code
	}
	return codes
}

// Seed inserts missing permissions and system roles and resets the grants
// of every system role. It is safe to run on every start.
func Seed(ctx context.Context, db *gorm.DB, log logrus.FieldLogger) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		perms := repository.NewPermissionRepository(tx)
		roles := repository.NewRoleRepository(tx)

		existing, err := perms.List(ctx)
		if err != nil {
			return fmt.Errorf("list permissions: %w", err)
		}
		byCode := make(map[string]uuid.UUID, len(existing))
		for _, p := range existing {
			byCode[p.Code] = p.ID
		}

		for _, def := range Permissions {
			if _, ok := byCode[def.Code]; ok {
				continue
			}
			p := &models.Permission{Code: def.Code, Name: def.Name, Description: def.Description}
			if err := perms.Create(ctx, p); err != nil {
				return fmt.Errorf("create permission %s: %w", def.Code, err)
			}
			byCode[def.Code] = p.ID
			log.WithField("code", def.Code).Info("Seeded permission")
		}

		for _, def := range SystemRoles {
			role, err := roles.FindSystemRole(ctx, def.Name)
			if errors.Is(err, tenancy.ErrNotFound) {
				role = &models.Role{Name: def.Name, Description: def.Description}
				if err := roles.Create(ctx, tenancy.SystemCaller(), role); err != nil {
					return fmt.Errorf("create system role %s: %w", def.Name, err)
				}
				log.WithField("role", def.Name).Info("Seeded system role")
			} else if err != nil {
				return fmt.Errorf("find system role %s: %w", def.Name, err)
			}

			ids := make([]uuid.UUID, 0, len(def.Codes))
			for _, code := range def.Codes {
				ids = append(ids, byCode[code])
			}
			if err := roles.ReplacePermissions(ctx, role.ID, ids); err != nil {
				return fmt.Errorf("grant system role %s: %w", def.Name, err)
			}
		}
		return nil
	})
}
