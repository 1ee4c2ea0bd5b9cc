package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/enterprise-core-api/internal/cache"
	"github.com/yukikurage/enterprise-core-api/internal/constants"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/repository"
)

// PermissionService serves the permission catalog. Reads may be stale for up
// to the cache TTL.
type PermissionService struct {
	perms repository.PermissionRepository
	cache cache.Cache
	ttl   time.Duration
	log   logrus.FieldLogger
}

func NewPermissionService(perms repository.PermissionRepository, c cache.Cache, ttl time.Duration, log logrus.FieldLogger) *PermissionService {
	if c == nil {
		c = cache.Null{}
	}
	return &PermissionService{perms: perms, cache: c, ttl: ttl, log: log}
}

// ListPermissions returns the catalog ordered by code
func (s *PermissionService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var cached []models.Permission
	err := cache.GetJSON(ctx, s.cache, constants.CacheKeyPermissionCatalog, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.WithError(err).Warn("Permission catalog cache read failed")
	}

	perms, err := s.perms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	if err := cache.SetJSON(ctx, s.cache, constants.CacheKeyPermissionCatalog, perms, s.ttl); err != nil {
		s.log.WithError(err).Warn("Permission catalog cache write failed")
	}
	return perms, nil
}

// Invalidate drops the cached catalog
func (s *PermissionService) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, constants.CacheKeyPermissionCatalog)
}
