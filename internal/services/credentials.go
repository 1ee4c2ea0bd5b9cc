package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yukikurage/enterprise-core-api/internal/constants"
	"golang.org/x/crypto/bcrypt"
)

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// dummyPasswordHash is compared against when no usable account exists, so a
// failed login costs one bcrypt comparison whatever the reason.
func dummyPasswordHash() []byte {
	dummyHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("enterprise-core-dummy-password"), bcrypt.DefaultCost)
		if err != nil {
			panic(fmt.Sprintf("generate dummy password hash: %v", err))
		}
		dummyHash = h
	})
	return dummyHash
}

func hashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

// validateCredentials checks an already normalized email and a password.
// Full address syntax is checked by request binding.
func validateCredentials(email, password string) error {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.ContainsAny(email, " \t<>") || strings.Contains(domain, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if len(password) < constants.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, constants.MinPasswordLength)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
