package authz

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/yukikurage/enterprise-core-api/internal/obs"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)

// PermissionSeparator marks a requirement as a permission code.
const PermissionSeparator = "."

// Built-in named policies.
const (
	PolicyAuthenticated = "authenticated"
	PolicyTenantMember  = "tenant"
)

// Evaluator decides one requirement for a caller.
type Evaluator func(caller tenancy.Caller) bool

// Engine maps requirement strings to evaluators. Permission codes need no
// registration: any requirement containing a separator resolves to an exact
// membership test against the caller's permission claims. Other requirements
// are looked up among registered named policies.
type Engine struct {
	mu       sync.RWMutex
	resolved map[string]Evaluator
	named    map[string]Evaluator
}

func NewEngine() *Engine {
	e := &Engine{
		resolved: make(map[string]Evaluator),
		named:    make(map[string]Evaluator),
	}
	e.named[PolicyAuthenticated] = func(c tenancy.Caller) bool { return c.IsAuthenticated() }
	e.named[PolicyTenantMember] = func(c tenancy.Caller) bool { return c.IsAuthenticated() && c.HasTenant() }
	return e
}

func IsPermissionCode(requirement string) bool {
	return strings.Contains(requirement, PermissionSeparator)
}

// RegisterPolicy adds a named policy. Names containing the separator are
// reserved for permission codes.
func (e *Engine) RegisterPolicy(name string, ev Evaluator) error {
	name = strings.TrimSpace(name)
	if name == "" || ev == nil {
		return errors.New("authz: policy name and evaluator are required")
	}
	if IsPermissionCode(name) {
		return fmt.Errorf("authz: %q looks like a permission code", name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.named[name] = ev
	return nil
}

// Resolve returns the evaluator for requirement. The second result is false
// for an unregistered named policy.
func (e *Engine) Resolve(requirement string) (Evaluator, bool) {
	e.mu.RLock()
	ev, ok := e.resolved[requirement]
	if !ok {
		ev, ok = e.named[requirement]
	}
	e.mu.RUnlock()
	if ok {
		return ev, true
	}
	if !IsPermissionCode(requirement) {
		return nil, false
	}

	code := requirement
	ev = func(c tenancy.Caller) bool { return c.HasPermission(code) }
	e.mu.Lock()
	e.resolved[requirement] = ev
	e.mu.Unlock()
	return ev, true
}

// Authorize succeeds only if caller is authenticated and satisfies every
// requirement. Failures carry no detail about which requirement failed.
func (e *Engine) Authorize(caller tenancy.Caller, requirements ...string) error {
	if !caller.IsAuthenticated() {
		obs.RecordAuthzDecision(obs.DecisionUnauthenticated)
		return ErrUnauthenticated
	}
	for _, r := range requirements {
		ev, ok := e.Resolve(r)
		if !ok || !ev(caller) {
			obs.RecordAuthzDecision(obs.DecisionDenied)
			return ErrForbidden
		}
	}
	obs.RecordAuthzDecision(obs.DecisionAllowed)
	return nil
}
