package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/enterprise-core-api/internal/auth"
	"github.com/yukikurage/enterprise-core-api/internal/cache"
	"github.com/yukikurage/enterprise-core-api/internal/catalog"
	"github.com/yukikurage/enterprise-core-api/internal/config"
	"github.com/yukikurage/enterprise-core-api/internal/database"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/obs"
	"github.com/yukikurage/enterprise-core-api/internal/repository"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "password123"

type testEnv struct {
	db    *gorm.DB
	codec *auth.Codec
	cache *cache.Memory

	auth        *AuthService
	roles       *RoleService
	users       *UserService
	permissions *PermissionService
	projects    *ProjectService
	tasks       *TaskService
	activity    *ActivityService

	userRepo repository.UserRepository
	permRepo repository.PermissionRepository
}

func setupServiceTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	log := obs.NewDiscardLogger()
	require.NoError(t, database.Migrate(db, log))
	require.NoError(t, catalog.Seed(context.Background(), db, log))

	codec, err := auth.NewCodec(config.JWTConfig{
		Secret:             "services-test-secret-0123456789abcdef",
		Issuer:             "EnterpriseCore",
		Audience:           "EnterpriseCore",
		AccessTokenMinutes: 60,
		RefreshTokenDays:   7,
	})
	require.NoError(t, err)

	tenantRepo := repository.NewTenantRepository(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	logRepo := repository.NewActivityLogRepository(db)

	memory := cache.NewMemory(16, time.Hour)
	resolver := NewPermissionResolver(permRepo)

	return &testEnv{
		db:          db,
		codec:       codec,
		cache:       memory,
		auth:        NewAuthService(db, tenantRepo, userRepo, roleRepo, resolver, codec),
		roles:       NewRoleService(db, roleRepo, permRepo, logRepo),
		users:       NewUserService(db, userRepo, roleRepo, logRepo),
		permissions: NewPermissionService(permRepo, memory, time.Hour, log),
		projects:    NewProjectService(db, projectRepo, taskRepo),
		tasks:       NewTaskService(taskRepo, projectRepo),
		activity:    NewActivityService(logRepo),
		userRepo:    userRepo,
		permRepo:    permRepo,
	}
}

// register opens a tenant and returns the verified caller of its admin.
func (e *testEnv) register(t *testing.T, tenantName, email string) (tenancy.Caller, *AuthResult) {
	t.Helper()
	result, err := e.auth.Register(context.Background(), RegisterInput{
		TenantName: tenantName,
		Email:      email,
		Password:   testPassword,
	})
	require.NoError(t, err)
	caller, err := e.codec.Verify(result.Credential.AccessToken)
	require.NoError(t, err)
	return caller, result
}

// addUser creates a user in caller's tenant with no roles. Its password is
// testPassword.
func (e *testEnv) addUser(t *testing.T, caller tenancy.Caller, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Email: email, PasswordHash: string(hash), IsActive: true}
	require.NoError(t, e.userRepo.Create(context.Background(), caller, user))
	return user
}

func (e *testEnv) permissionIDs(t *testing.T, codes ...string) []uuid.UUID {
	t.Helper()
	all, err := e.permRepo.List(context.Background())
	require.NoError(t, err)
	byCode := make(map[string]uuid.UUID, len(all))
	for _, p := range all {
		byCode[p.Code] = p.ID
	}
	ids := make([]uuid.UUID, 0, len(codes))
	for _, code := range codes {
		id, ok := byCode[code]
		require.True(t, ok, code)
		ids = append(ids, id)
	}
	return ids
}
