package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/enterprise-core-api/internal/auth"
	"github.com/yukikurage/enterprise-core-api/internal/authz"
	"github.com/yukikurage/enterprise-core-api/internal/catalog"
	"github.com/yukikurage/enterprise-core-api/internal/middleware"
	"github.com/yukikurage/enterprise-core-api/internal/obs"
	"github.com/yukikurage/enterprise-core-api/internal/services"
	"gorm.io/gorm"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Log         *logrus.Logger
	DB          *gorm.DB
	Codec       *auth.Codec
	Engine      *authz.Engine
	AuthLimiter *middleware.RateLimiter

	Auth        *services.AuthService
	Roles       *services.RoleService
	Users       *services.UserService
	Permissions *services.PermissionService
	Projects    *services.ProjectService
	Tasks       *services.TaskService
	Activity    *services.ActivityService
}

// NewRouter wires every route. Each tenant-facing route names the permission
// codes it requires.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Observe(d.Log))

	authHandler := NewAuthHandler(d.Auth, d.Log)
	roleHandler := NewRoleHandler(d.Roles, d.Log)
	userHandler := NewUserHandler(d.Users, d.Log)
	permissionHandler := NewPermissionHandler(d.Permissions, d.Log)
	projectHandler := NewProjectHandler(d.Projects, d.Log)
	taskHandler := NewTaskHandler(d.Tasks, d.Log)
	activityHandler := NewActivityHandler(d.Activity, d.Log)
	healthHandler := NewHealthHandler(d.DB, d.Log)

	requireAuth := middleware.RequireAuth(d.Codec, d.Log)
	require := func(requirements ...string) gin.HandlerFunc {
		return middleware.RequirePermission(d.Engine, d.Log, requirements...)
	}

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(obs.Handler()))

	api := r.Group("/api")
	{
		// Auth routes
		authRoutes := api.Group("/auth")
		{
			limited := authRoutes.Group("")
			if d.AuthLimiter != nil {
				limited.Use(d.AuthLimiter.Middleware())
			}
			limited.POST("/register", authHandler.Register)
			limited.POST("/login", authHandler.Login)
			limited.POST("/refresh", authHandler.Refresh)

			authRoutes.POST("/logout", requireAuth, require(authz.PolicyAuthenticated), authHandler.Logout)
			authRoutes.GET("/me", requireAuth, require(authz.PolicyAuthenticated), authHandler.Me)
		}

		protected := api.Group("")
		protected.Use(requireAuth, require(authz.PolicyTenantMember))

		roles := protected.Group("/roles")
		{
			roles.GET("", require(catalog.RolesView), roleHandler.ListRoles)
			roles.POST("", require(catalog.RolesCreate), roleHandler.CreateRole)
			roles.GET("/:id", require(catalog.RolesView), roleHandler.GetRole)
			roles.PUT("/:id", require(catalog.RolesEdit), roleHandler.UpdateRole)
			roles.DELETE("/:id", require(catalog.RolesDelete), roleHandler.DeleteRole)
			roles.PUT("/:id/permissions", require(catalog.RolesEdit, catalog.PermissionsView), roleHandler.AssignPermissions)
		}

		users := protected.Group("/users")
		{
			users.GET("", require(catalog.UsersView), userHandler.ListUsers)
			users.POST("", require(catalog.UsersManage), userHandler.CreateUser)
			users.GET("/:id", require(catalog.UsersView), userHandler.GetUser)
			users.PUT("/:id", require(catalog.UsersManage), userHandler.UpdateUser)
			users.PUT("/:id/roles", require(catalog.UsersManage, catalog.RolesView), userHandler.AssignRoles)
			users.DELETE("/:id", require(catalog.UsersManage), userHandler.DeleteUser)
		}

		protected.GET("/permissions", require(catalog.PermissionsView), permissionHandler.ListPermissions)

		projects := protected.Group("/projects")
		{
			projects.GET("", require(catalog.ProjectsView), projectHandler.ListProjects)
			projects.POST("", require(catalog.ProjectsCreate), projectHandler.CreateProject)
			projects.GET("/:id", require(catalog.ProjectsView), projectHandler.GetProject)
			projects.PUT("/:id", require(catalog.ProjectsEdit), projectHandler.UpdateProject)
			projects.DELETE("/:id", require(catalog.ProjectsDelete), projectHandler.DeleteProject)
			projects.GET("/:id/tasks", require(catalog.TasksView), taskHandler.ListTasks)
			projects.POST("/:id/tasks", require(catalog.TasksCreate), taskHandler.CreateTask)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.PUT("/:id", require(catalog.TasksEdit), taskHandler.UpdateTask)
			tasks.DELETE("/:id", require(catalog.TasksDelete), taskHandler.DeleteTask)
		}

		protected.GET("/activity", require(catalog.ActivityView), activityHandler.ListActivity)
	}

	return r
}
