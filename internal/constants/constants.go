package constants

import "time"

// Context keys used by middleware
const (
	ContextKeyCaller    = "caller"
	ContextKeyRequestID = "request_id"
)

const HeaderRequestID = "X-Request-ID"

// Credential defaults and bounds
const (
	DefaultIssuer             = "EnterpriseCore"
	DefaultAudience           = "EnterpriseCore"
	DefaultAccessTokenMinutes = 60
	DefaultRefreshTokenDays   = 7
	MaxAccessTokenMinutes     = 1440
	MaxRefreshTokenDays       = 30
	MinSigningKeyBytes        = 32
	RefreshTokenBytes         = 64
)

// Cache
const (
	CacheKeyPermissionCatalog = "permissions:catalog"
	DefaultPermissionCacheTTL = 24 * time.Hour
	DefaultCacheSize          = 1024
)

// Validation limits
const (
	MaxRoleNameLength        = 100
	MaxRoleDescriptionLength = 500
	MaxTenantNameLength      = 200
	MinPasswordLength        = 8
	MaxProjectNameLength     = 200
	MaxTaskTitleLength       = 200
)

// Pagination
const (
	MinPage         = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Built-in system roles
const (
	SystemRoleAdmin  = "Admin"
	SystemRoleMember = "Member"
	SystemRoleViewer = "Viewer"
)
