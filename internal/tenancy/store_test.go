package tenancy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStoreTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(&models.Project{}, &models.Role{}, &models.ActivityLog{}))
	return db
}

func fixedClock(at time.Time) Option {
	return WithClock(func() time.Time { return at })
}

func TestStoreCreateStampsTenantAndAudit(t *testing.T) {
	db := setupStoreTestDB(t)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := NewStore[models.Project](db, TenantScoped, fixedClock(at))
	caller := ForUser(uuid.New(), uuid.New())

	p := &models.Project{Name: "Apollo"}
	p.CreatedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	p.IsDeleted = true
	require.NoError(t, store.Create(context.Background(), caller, p))

	require.NotEqual(t, uuid.Nil, p.ID)
	require.Equal(t, caller.TenantID, p.TenantID)
	require.Equal(t, at, p.CreatedAt)
	require.NotNil(t, p.CreatedBy)
	require.Equal(t, caller.UserID, *p.CreatedBy)
	require.False(t, p.IsDeleted)
	require.Equal(t, int64(1), p.Version)

	got, err := store.Get(context.Background(), caller, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Apollo", got.Name)
}

func TestStoreCreateRejectsForeignTenant(t *testing.T) {
	db := setupStoreTestDB(t)
	store := NewStore[models.Project](db, TenantScoped)
	caller := ForUser(uuid.New(), uuid.New())

	p := &models.Project{Name: "Injected", TenantID: uuid.New()}
	err := store.Create(context.Background(), caller, p)
	require.ErrorIs(t, err, ErrCrossTenantWrite)

	n, err := NewStore[models.Project](db, Global).Count(context.Background(), SystemCaller())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestStoreCreateWithoutTenantContext(t *testing.T) {
	db := setupStoreTestDB(t)
	store := NewStore[models.Project](db, TenantScoped)

	err := store.Create(context.Background(), Anonymous(), &models.Project{Name: "Orphan"})
	require.ErrorIs(t, err, ErrNoTenantContext)

	err = store.Create(context.Background(), SystemCaller(), &models.Project{Name: "Orphan"})
	require.ErrorIs(t, err, ErrNoTenantContext)
}

func TestStoreReadsAreIsolatedByTenant(t *testing.T) {
	db := setupStoreTestDB(t)
	store := NewStore[models.Project](db, TenantScoped)
	ctx := context.Background()
	tenantA := ForUser(uuid.New(), uuid.New())
	tenantB := ForUser(uuid.New(), uuid.New())

	a := &models.Project{Name: "A"}
	require.NoError(t, store.Create(ctx, tenantA, a))
	b := &models.Project{Name: "B"}
	require.NoError(t, store.Create(ctx, tenantB, b))

	list, err := store.List(ctx, tenantB)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, b.ID, list[0].ID)

	_, err = store.Get(ctx, tenantB, a.ID)
	require.ErrorIs(t, err, ErrNotFound)

	a.Name = "hijacked"
	require.ErrorIs(t, store.Update(ctx, tenantB, a), ErrNotFound)
	require.ErrorIs(t, store.Delete(ctx, tenantB, a.ID), ErrNotFound)

	fresh, err := store.Get(ctx, tenantA, a.ID)
	require.NoError(t, err)
	require.Equal(t, "A", fresh.Name)
	require.False(t, fresh.IsDeleted)

	_, err = store.List(ctx, Anonymous())
	require.ErrorIs(t, err, ErrNoTenantContext)

	all, err := store.List(ctx, SystemCaller())
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestStoreDeleteIsLogical(t *testing.T) {
	db := setupStoreTestDB(t)
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore[models.Project](db, TenantScoped, fixedClock(at))
	ctx := context.Background()
	caller := ForUser(uuid.New(), uuid.New())

	p := &models.Project{Name: "Doomed"}
	require.NoError(t, store.Create(ctx, caller, p))
	require.NoError(t, store.Delete(ctx, caller, p.ID))

	_, err := store.Get(ctx, caller, p.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, SystemCaller(), p.ID)
	require.ErrorIs(t, err, ErrNotFound)

	list, err := store.List(ctx, caller)
	require.NoError(t, err)
	require.Empty(t, list)

	var raw models.Project
	require.NoError(t, db.Where("id = ?", p.ID).First(&raw).Error)
	require.True(t, raw.IsDeleted)
	require.NotNil(t, raw.DeletedAt)
	require.True(t, at.Equal(*raw.DeletedAt))
	require.NotNil(t, raw.DeletedBy)
	require.Equal(t, caller.UserID, *raw.DeletedBy)

	require.ErrorIs(t, store.Delete(ctx, caller, p.ID), ErrNotFound)
}

func TestStoreUpdateStampsAndDetectsStaleVersion(t *testing.T) {
	db := setupStoreTestDB(t)
	store := NewStore[models.Project](db, TenantScoped)
	ctx := context.Background()
	caller := ForUser(uuid.New(), uuid.New())

	p := &models.Project{Name: "v1"}
	require.NoError(t, store.Create(ctx, caller, p))
	createdAt := p.CreatedAt

	first, err := store.Get(ctx, caller, p.ID)
	require.NoError(t, err)
	second, err := store.Get(ctx, caller, p.ID)
	require.NoError(t, err)

	first.Name = "v2"
	first.CreatedAt = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	first.TenantID = uuid.New()
	require.NoError(t, store.Update(ctx, caller, first))
	require.Equal(t, int64(2), first.Version)
	require.NotNil(t, first.UpdatedAt)
	require.Equal(t, caller.UserID, *first.UpdatedBy)

	second.Description = "unrelated"
	require.ErrorIs(t, store.Update(ctx, caller, second), ErrConcurrencyConflict)
	require.Equal(t, int64(1), second.Version)

	stored, err := store.Get(ctx, caller, p.ID)
	require.NoError(t, err)
	require.Equal(t, "v2", stored.Name)
	require.Empty(t, stored.Description)
	require.Equal(t, caller.TenantID, stored.TenantID)
	require.True(t, createdAt.Equal(stored.CreatedAt))
}

func TestSharedStoreReadsSystemRowsButCannotWriteThem(t *testing.T) {
	db := setupStoreTestDB(t)
	store := NewStore[models.Role](db, Shared)
	ctx := context.Background()
	tenant := ForUser(uuid.New(), uuid.New())
	other := ForUser(uuid.New(), uuid.New())

	system := &models.Role{Name: "Admin"}
	require.NoError(t, store.Create(ctx, SystemCaller(), system))
	require.Nil(t, system.TenantID)

	own := &models.Role{Name: "Reviewer"}
	require.NoError(t, store.Create(ctx, tenant, own))
	require.NotNil(t, own.TenantID)

	visible, err := store.List(ctx, tenant)
	require.NoError(t, err)
	require.Len(t, visible, 2)

	visible, err = store.List(ctx, other)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, system.ID, visible[0].ID)

	system.Name = "Owner"
	require.ErrorIs(t, store.Update(ctx, tenant, system), ErrCrossTenantWrite)
	require.ErrorIs(t, store.Delete(ctx, tenant, system.ID), ErrCrossTenantWrite)
}

func TestScopeToTenant(t *testing.T) {
	db := setupStoreTestDB(t)
	ctx := context.Background()
	tenantA := uuid.New()

	logs := []models.ActivityLog{
		{ID: uuid.New(), TenantID: tenantA, UserID: uuid.New(), Action: "Created", EntityType: "Role", EntityID: uuid.New(), CreatedAt: time.Now()},
		{ID: uuid.New(), TenantID: uuid.New(), UserID: uuid.New(), Action: "Created", EntityType: "Role", EntityID: uuid.New(), CreatedAt: time.Now()},
	}
	require.NoError(t, db.Create(&logs).Error)

	scoped, err := ScopeToTenant(db.WithContext(ctx).Model(&models.ActivityLog{}), ForUser(uuid.New(), tenantA))
	require.NoError(t, err)
	var got []models.ActivityLog
	require.NoError(t, scoped.Find(&got).Error)
	require.Len(t, got, 1)
	require.Equal(t, tenantA, got[0].TenantID)

	_, err = ScopeToTenant(db, Anonymous())
	require.ErrorIs(t, err, ErrNoTenantContext)
}
