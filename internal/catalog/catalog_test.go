package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/enterprise-core-api/internal/constants"
	"github.com/yukikurage/enterprise-core-api/internal/database"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/obs"
	"github.com/yukikurage/enterprise-core-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func TestDefinitionsAreWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Permissions {
		require.True(t, strings.Contains(p.Code, "."), p.Code)
		require.False(t, seen[p.Code], "duplicate %s", p.Code)
		seen[p.Code] = true
	}
	for _, r := range SystemRoles {
		for _, code := range r.Codes {
			require.True(t, seen[code], "role %s grants unknown %s", r.Name, code)
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupCatalogTestDB(t)
	ctx := context.Background()
	log := obs.NewDiscardLogger()

	require.NoError(t, Seed(ctx, db, log))
	require.NoError(t, Seed(ctx, db, log))

	perms, err := repository.NewPermissionRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, perms, len(Permissions))
	for i := 1; i < len(perms); i++ {
		require.Less(t, perms[i-1].Code, perms[i].Code)
	}

	var roleCount int64
	require.NoError(t, db.Model(&models.Role{}).Where("tenant_id IS NULL").Count(&roleCount).Error)
	require.Equal(t, int64(len(SystemRoles)), roleCount)

	roles := repository.NewRoleRepository(db)
	admin, err := roles.FindSystemRole(ctx, constants.SystemRoleAdmin)
	require.NoError(t, err)
	viewer, err := roles.FindSystemRole(ctx, constants.SystemRoleViewer)
	require.NoError(t, err)

	grants, err := roles.Permissions(ctx, []uuid.UUID{admin.ID, viewer.ID})
	require.NoError(t, err)
	require.Len(t, grants[admin.ID], len(Permissions))
	require.Len(t, grants[viewer.ID], 2)
}
