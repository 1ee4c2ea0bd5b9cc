package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/enterprise-core-api/internal/auth"
	"github.com/yukikurage/enterprise-core-api/internal/authz"
	"github.com/yukikurage/enterprise-core-api/internal/services"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"

	// Authorization errors
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeCannotModifySystemRole = "CANNOT_MODIFY_SYSTEM_ROLE"

	// Validation errors
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodePermissionNotFound = "PERMISSION_NOT_FOUND"
	ErrCodeRoleNotFound       = "ROLE_NOT_FOUND"

	// Resource errors
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeNameConflict        = "NAME_CONFLICT"
	ErrCodeRoleInUse           = "ROLE_IN_USE"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"

	// Service errors
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// RespondWithError sends an error response and stops the handler chain
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.AbortWithStatusJSON(statusCode, err)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context) {
	RespondWithError(c, http.StatusTooManyRequests, NewAPIError(ErrCodeTooManyRequests, "Too many requests"))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, "Internal server error"))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}

type mapping struct {
	target  error
	status  int
	code    string
	message string
}

// Order matters: the first matching target wins.
var mappings = []mapping{
	{services.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid email or password"},
	{auth.ErrExpired, http.StatusUnauthorized, ErrCodeTokenExpired, "Token expired"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, ErrCodeInvalidToken, "Invalid or expired token"},
	{authz.ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required"},
	{tenancy.ErrNoTenantContext, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required"},

	{authz.ErrForbidden, http.StatusForbidden, ErrCodeForbidden, "Access denied"},
	{tenancy.ErrCrossTenantWrite, http.StatusForbidden, ErrCodeForbidden, "Access denied"},
	{services.ErrCannotModifySystemRole, http.StatusForbidden, ErrCodeCannotModifySystemRole, "System roles cannot be modified"},

	{tenancy.ErrNotFound, http.StatusNotFound, ErrCodeNotFound, "Resource not found"},

	{services.ErrNameConflict, http.StatusConflict, ErrCodeNameConflict, "A role with this name already exists"},
	{services.ErrRoleInUse, http.StatusConflict, ErrCodeRoleInUse, "Role is assigned to users"},
	{services.ErrEmailTaken, http.StatusConflict, ErrCodeEmailTaken, "Email already registered"},
	{tenancy.ErrConcurrencyConflict, http.StatusConflict, ErrCodeConcurrencyConflict, "The resource was modified by another request"},

	{services.ErrPermissionNotFound, http.StatusBadRequest, ErrCodePermissionNotFound, "One or more permissions do not exist"},
	{services.ErrRoleNotFound, http.StatusBadRequest, ErrCodeRoleNotFound, "One or more roles do not exist"},
}

// Respond translates err into the public error taxonomy. Validation errors
// carry their own message; anything unmapped is logged and reported as 500.
func Respond(c *gin.Context, log logrus.FieldLogger, err error) {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			if m.status == http.StatusUnauthorized {
				log.WithError(err).Debug("Request rejected as unauthenticated")
			}
			RespondWithError(c, m.status, NewAPIError(m.code, m.message))
			return
		}
	}
	if errors.Is(err, services.ErrValidation) {
		BadRequest(c, err.Error())
		return
	}

	log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	InternalError(c)
}
