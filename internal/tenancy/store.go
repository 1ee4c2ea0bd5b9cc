package tenancy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrNoTenantContext     = errors.New("caller has no tenant context")
	ErrCrossTenantWrite    = errors.New("entity belongs to another tenant")
	ErrConcurrencyConflict = errors.New("entity was modified by another request")
)

// Scope selects how rows of an entity type are partitioned between tenants.
type Scope int

const (
	// TenantScoped rows are visible to their own tenant only.
	TenantScoped Scope = iota
	// Shared rows with a null tenant_id are readable by every tenant and
	// writable only by the system caller.
	Shared
	// Global rows are not owned by any tenant.
	Global
)

// Columns never written by Update.
var protectedColumns = []string{
	"id", "created_at", "created_by", "tenant_id",
	"is_deleted", "deleted_at", "deleted_by",
	clause.Associations,
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for audit stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Store wraps every read and write of one entity type with tenant scoping,
// soft-delete filtering and audit stamping.
type Store[E any] struct {
	db    *gorm.DB
	scope Scope
	now   func() time.Time
}

func NewStore[E any](db *gorm.DB, scope Scope, opts ...Option) *Store[E] {
	if _, ok := any(new(E)).(models.Audited); !ok {
		panic(fmt.Sprintf("tenancy: %T does not embed models.BaseEntity", new(E)))
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[E]{db: db, scope: scope, now: o.now}
}

// WithTx returns a copy of the store bound to tx.
func (s *Store[E]) WithTx(tx *gorm.DB) *Store[E] {
	c := *s
	c.db = tx
	return &c
}

// Query returns a base query restricted to the rows caller may read.
func (s *Store[E]) Query(ctx context.Context, caller Caller) (*gorm.DB, error) {
	return s.restrict(s.db.WithContext(ctx).Model(new(E)), caller, false)
}

func (s *Store[E]) Get(ctx context.Context, caller Caller, id uuid.UUID) (*E, error) {
	db, err := s.Query(ctx, caller)
	if err != nil {
		return nil, err
	}
	var e E
	if err := db.Where(clause.Eq{Column: Column("id"), Value: id}).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// First returns the first visible row matching the extra scopes.
func (s *Store[E]) First(ctx context.Context, caller Caller, scopes ...func(*gorm.DB) *gorm.DB) (*E, error) {
	db, err := s.Query(ctx, caller)
	if err != nil {
		return nil, err
	}
	var e E
	if err := db.Scopes(scopes...).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (s *Store[E]) List(ctx context.Context, caller Caller, scopes ...func(*gorm.DB) *gorm.DB) ([]E, error) {
	db, err := s.Query(ctx, caller)
	if err != nil {
		return nil, err
	}
	var out []E
	if err := db.Scopes(scopes...).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store[E]) Count(ctx context.Context, caller Caller, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	db, err := s.Query(ctx, caller)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.Scopes(scopes...).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Create stamps identity, tenant and creation audit fields, then inserts e.
// A tenant id different from the caller's is rejected.
func (s *Store[E]) Create(ctx context.Context, caller Caller, e *E) error {
	if err := s.stampTenant(caller, e); err != nil {
		return err
	}
	base := audited(e)
	base.ID = uuid.New()
	base.CreatedAt = s.now().UTC()
	base.CreatedBy = caller.actor()
	base.UpdatedAt = nil
	base.UpdatedBy = nil
	base.IsDeleted = false
	base.DeletedAt = nil
	base.DeletedBy = nil
	base.Version = 1
	return s.db.WithContext(ctx).Create(e).Error
}

// Update writes every non-protected column of e if the stored version still
// equals e's version. A stale version yields ErrConcurrencyConflict.
func (s *Store[E]) Update(ctx context.Context, caller Caller, e *E) error {
	db, err := s.restrict(s.db.WithContext(ctx), caller, true)
	if err != nil {
		return err
	}
	base := audited(e)
	expected := base.Version
	prevAt, prevBy := base.UpdatedAt, base.UpdatedBy

	now := s.now().UTC()
	base.UpdatedAt = &now
	base.UpdatedBy = caller.actor()
	base.Version = expected + 1

	res := db.Model(e).
		Select("*").
		Omit(protectedColumns...).
		Where(clause.Eq{Column: Column("version"), Value: expected}).
		Updates(e)
	if res.Error == nil && res.RowsAffected == 1 {
		return nil
	}
	base.Version = expected
	base.UpdatedAt, base.UpdatedBy = prevAt, prevBy
	if res.Error != nil {
		return res.Error
	}
	if err := s.classifyMiss(ctx, caller, base.ID); err != nil {
		return err
	}
	return ErrConcurrencyConflict
}

// Delete tombstones the row. No physical delete is ever issued.
func (s *Store[E]) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	db, err := s.restrict(s.db.WithContext(ctx).Model(new(E)), caller, true)
	if err != nil {
		return err
	}
	res := db.Where(clause.Eq{Column: Column("id"), Value: id}).
		UpdateColumns(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": s.now().UTC(),
			"deleted_by": caller.actor(),
			"version":    gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if err := s.classifyMiss(ctx, caller, id); err != nil {
			return err
		}
		return ErrNotFound
	}
	return nil
}

func (s *Store[E]) stampTenant(caller Caller, e *E) error {
	owned, ok := any(e).(models.TenantOwned)
	if !ok || s.scope == Global {
		return nil
	}
	current := owned.OwningTenant()
	if caller.IsSystem() {
		if current == nil && s.scope == TenantScoped {
			return ErrNoTenantContext
		}
		return nil
	}
	if !caller.HasTenant() {
		return ErrNoTenantContext
	}
	if current == nil {
		owned.SetOwningTenant(caller.TenantID)
		return nil
	}
	if *current != caller.TenantID {
		return ErrCrossTenantWrite
	}
	return nil
}

// restrict applies the soft-delete filter and, unless caller is the system
// caller, the tenant filter. Writes never see shared rows.
func (s *Store[E]) restrict(db *gorm.DB, caller Caller, write bool) (*gorm.DB, error) {
	db = db.Where(clause.Eq{Column: Column("is_deleted"), Value: false})
	if s.scope == Global || caller.IsSystem() {
		return db, nil
	}
	if !caller.HasTenant() {
		return nil, ErrNoTenantContext
	}
	if s.scope == Shared && !write {
		return db.Where(clause.Expr{
			SQL:  "(? = ? OR ? IS NULL)",
			Vars: []interface{}{Column("tenant_id"), caller.TenantID, Column("tenant_id")},
		}), nil
	}
	return db.Where(clause.Eq{Column: Column("tenant_id"), Value: caller.TenantID}), nil
}

// classifyMiss explains a write that matched no row. It returns nil when the
// row is visible and writable, which means the version moved.
func (s *Store[E]) classifyMiss(ctx context.Context, caller Caller, id uuid.UUID) error {
	e, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if owned, ok := any(e).(models.TenantOwned); ok && s.scope == Shared && !caller.IsSystem() {
		if owned.OwningTenant() == nil {
			return ErrCrossTenantWrite
		}
	}
	return nil
}

// ScopeToTenant restricts db to the caller's tenant without a soft-delete
// filter. It is meant for append-only tables.
func ScopeToTenant(db *gorm.DB, caller Caller) (*gorm.DB, error) {
	if caller.IsSystem() {
		return db, nil
	}
	if !caller.HasTenant() {
		return nil, ErrNoTenantContext
	}
	return db.Where(clause.Eq{Column: Column("tenant_id"), Value: caller.TenantID}), nil
}

// Column qualifies name with the statement's main table.
func Column(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

func audited[E any](e *E) *models.BaseEntity {
	return any(e).(models.Audited).Audit()
}
