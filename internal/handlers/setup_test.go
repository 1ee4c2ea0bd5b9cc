package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/enterprise-core-api/internal/auth"
	"github.com/yukikurage/enterprise-core-api/internal/authz"
	"github.com/yukikurage/enterprise-core-api/internal/cache"
	"github.com/yukikurage/enterprise-core-api/internal/catalog"
	"github.com/yukikurage/enterprise-core-api/internal/config"
	"github.com/yukikurage/enterprise-core-api/internal/database"
	"github.com/yukikurage/enterprise-core-api/internal/dto"
	"github.com/yukikurage/enterprise-core-api/internal/middleware"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/obs"
	"github.com/yukikurage/enterprise-core-api/internal/repository"
	"github.com/yukikurage/enterprise-core-api/internal/services"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "password123"

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "handlers-test-secret-0123456789abcdef",
		Issuer:             "EnterpriseCore",
		Audience:           "EnterpriseCore",
		AccessTokenMinutes: 60,
		RefreshTokenDays:   7,
	}
}

type apiTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
	codec  *auth.Codec
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAPITestEnv(t *testing.T, limiter *middleware.RateLimiter) *apiTestEnv {
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

	codec, err := auth.NewCodec(testJWTConfig())
	require.NoError(t, err)

	tenantRepo := repository.NewTenantRepository(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	logRepo := repository.NewActivityLogRepository(db)

	router := NewRouter(Deps{
		Log:         log,
		DB:          db,
		Codec:       codec,
		Engine:      authz.NewEngine(),
		AuthLimiter: limiter,
		Auth:        services.NewAuthService(db, tenantRepo, userRepo, roleRepo, services.NewPermissionResolver(permRepo), codec),
		Roles:       services.NewRoleService(db, roleRepo, permRepo, logRepo),
		Users:       services.NewUserService(db, userRepo, roleRepo, logRepo),
		Permissions: services.NewPermissionService(permRepo, cache.NewMemory(16, time.Hour), time.Hour, log),
		Projects:    services.NewProjectService(db, projectRepo, taskRepo),
		Tasks:       services.NewTaskService(taskRepo, projectRepo),
		Activity:    services.NewActivityService(logRepo),
	})

	return &apiTestEnv{db: db, router: router, codec: codec}
}

// do sends a JSON request and returns the recorder.
func (e *apiTestEnv) do(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *apiTestEnv) register(t *testing.T, tenant, email string) dto.AuthResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"tenant_name": tenant,
		"email":       email,
		"password":    testPassword,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.AuthResponse](t, w)
}

func (e *apiTestEnv) login(t *testing.T, email string) dto.AuthResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[dto.AuthResponse](t, w)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	require.Equal(t, code, decode[errorBody](t, w).Code)
}

// addUser inserts a user with no roles into tenantID.
func (e *apiTestEnv) addUser(t *testing.T, tenantID uuid.UUID, email string) uuid.UUID {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Email: email, PasswordHash: string(hash), IsActive: true}
	require.NoError(t, repository.NewUserRepository(e.db).Create(context.Background(), tenancy.ForUser(uuid.Nil, tenantID), user))
	return user.ID
}

func (e *apiTestEnv) permissionID(t *testing.T, code string) uuid.UUID {
	t.Helper()
	var p models.Permission
	require.NoError(t, e.db.Where("code = ?", code).First(&p).Error)
	return p.ID
}
