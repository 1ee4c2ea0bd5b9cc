package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateTenantSlug lower-cases name, replaces spaces and underscores with
// dashes and appends an 8 character random hex suffix.
func GenerateTenantSlug(name string) (string, error) {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	base := strings.ToLower(strings.TrimSpace(name))
	base = strings.NewReplacer(" ", "-", "_", "-").Replace(base)

	return fmt.Sprintf("%s-%s", base, hex.EncodeToString(bytes)), nil
}
