package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
)

func callerWith(perms ...string) tenancy.Caller {
	c := tenancy.ForUser(uuid.New(), uuid.New())
	c.Permissions = perms
	return c
}

func TestAuthorizeExactMatch(t *testing.T) {
	engine := NewEngine()
	caller := callerWith("projects.create", "tasks.view")

	cases := []struct {
		requirement string
		allowed     bool
	}{
		{"projects.create", true},
		{"tasks.view", true},
		{"tasks.edit", false},
		{"projects.*", false},
		{"projects", false},
		{"Projects.Create", false},
		{"projects.create.extra", false},
		{"roles.delete", false},
	}
	for _, tc := range cases {
		t.Run(tc.requirement, func(t *testing.T) {
			err := engine.Authorize(caller, tc.requirement)
			if tc.allowed {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestWildcardClaimDoesNotImplyCode(t *testing.T) {
	engine := NewEngine()
	caller := callerWith("projects.*")

	require.ErrorIs(t, engine.Authorize(caller, "projects.create"), ErrForbidden)
	require.NoError(t, engine.Authorize(caller, "projects.*"))
}

func TestAuthorizeRequiresAllRequirements(t *testing.T) {
	engine := NewEngine()
	caller := callerWith("tasks.view", "tasks.edit")

	require.NoError(t, engine.Authorize(caller, "tasks.view", "tasks.edit"))
	require.ErrorIs(t, engine.Authorize(caller, "tasks.view", "tasks.delete"), ErrForbidden)
	require.ErrorIs(t, engine.Authorize(caller, "tasks.delete", "tasks.view"), ErrForbidden)
}

func TestAuthorizeUnauthenticated(t *testing.T) {
	engine := NewEngine()

	require.ErrorIs(t, engine.Authorize(tenancy.Anonymous(), "tasks.view"), ErrUnauthenticated)
	require.ErrorIs(t, engine.Authorize(tenancy.Anonymous()), ErrUnauthenticated)
	require.NoError(t, engine.Authorize(callerWith()))
}

func TestNamedPolicies(t *testing.T) {
	engine := NewEngine()
	caller := callerWith()

	require.NoError(t, engine.Authorize(caller, PolicyAuthenticated))
	require.NoError(t, engine.Authorize(caller, PolicyTenantMember))
	require.ErrorIs(t, engine.Authorize(caller, "unregistered"), ErrForbidden)

	require.NoError(t, engine.RegisterPolicy("corporate", func(c tenancy.Caller) bool {
		return c.Email == "boss@corp.example"
	}))
	require.ErrorIs(t, engine.Authorize(caller, "corporate"), ErrForbidden)

	caller.Email = "boss@corp.example"
	require.NoError(t, engine.Authorize(caller, "corporate"))
}

func TestRegisterPolicyRejectsPermissionShapedNames(t *testing.T) {
	engine := NewEngine()

	require.Error(t, engine.RegisterPolicy("tasks.view", func(tenancy.Caller) bool { return true }))
	require.Error(t, engine.RegisterPolicy("", func(tenancy.Caller) bool { return true }))
	require.Error(t, engine.RegisterPolicy("x", nil))

	require.ErrorIs(t, engine.Authorize(callerWith(), "tasks.view"), ErrForbidden)
}

func TestResolveMemoizesPermissionEvaluators(t *testing.T) {
	engine := NewEngine()

	_, ok := engine.Resolve("sprints.plan")
	require.True(t, ok)
	require.Contains(t, engine.resolved, "sprints.plan")

	_, ok = engine.Resolve("nodot")
	require.False(t, ok)
	require.NotContains(t, engine.resolved, "nodot")
}
