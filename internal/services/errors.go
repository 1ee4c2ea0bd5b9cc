package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation wraps every malformed-input failure.
	ErrValidation = errors.New("validation failed")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrNameConflict           = errors.New("a role with this name already exists")
	ErrCannotModifySystemRole = errors.New("system roles cannot be modified")
	ErrRoleInUse              = errors.New("role is assigned to users")
	ErrPermissionNotFound     = errors.New("one or more permissions do not exist")
	ErrRoleNotFound           = errors.New("one or more roles do not exist")
	ErrCannotDeleteSelf       = fmt.Errorf("%w: users cannot delete themselves", ErrValidation)
	ErrCannotDeactivateSelf   = fmt.Errorf("%w: users cannot deactivate themselves", ErrValidation)
)
