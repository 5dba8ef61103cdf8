package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/manudrel/elara/internal/registry"
)

func newEngine(t *testing.T, users ...registry.User) *Engine {
	t.Helper()
	store := registry.NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	reg, err := registry.NewRegistry(context.Background(), store)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	for _, u := range users {
		if err := reg.Create(context.Background(), u); err != nil {
			t.Fatalf("Create(%d) error = %v", u.ID, err)
		}
	}
	return NewEngine(reg)
}

func TestDecideRoleChangeFullHierarchy(t *testing.T) {
	roles := []registry.Role{registry.RoleDeveloper, registry.RoleTester, registry.RoleUser}

	for _, requester := range roles {
		for _, target := range roles {
			for _, desired := range roles {
				e := newEngine(t,
					registry.User{ID: 1, Name: "Req", Role: requester},
					registry.User{ID: 2, Name: "Tgt", Role: target},
				)
				tgt, _ := e.reg.GetByID(2)
				got := e.DecideRoleChange(1, tgt, string(desired))

				want := requester == registry.RoleDeveloper ||
					(requester.Level() > target.Level() && desired.Level() <= requester.Level())
				if got.Allowed != want {
					t.Fatalf("requester=%s target=%s desired=%s: Allowed = %v, want %v",
						requester, target, desired, got.Allowed, want)
				}
				if got.Allowed && got.Role != desired {
					t.Fatalf("requester=%s target=%s desired=%s: Role = %q, want %q",
						requester, target, desired, got.Role, desired)
				}
			}
		}
	}
}

func TestDecideRoleChangeNormalizesDesiredRole(t *testing.T) {
	e := newEngine(t,
		registry.User{ID: 1, Name: "Req", Role: registry.RoleDeveloper},
		registry.User{ID: 2, Name: "Tgt", Role: registry.RoleUser},
	)
	tgt, _ := e.reg.GetByID(2)

	got := e.DecideRoleChange(1, tgt, "tester")
	if !got.Allowed {
		t.Fatalf("Allowed = false, want true for lowercase role")
	}
	if got.Role != registry.RoleTester {
		t.Fatalf("Role = %q, want %q", got.Role, registry.RoleTester)
	}
}

func TestDecideRoleChangeInvalidDesiredRole(t *testing.T) {
	e := newEngine(t,
		registry.User{ID: 1, Name: "Req", Role: registry.RoleDeveloper},
		registry.User{ID: 2, Name: "Tgt", Role: registry.RoleUser},
	)
	tgt, _ := e.reg.GetByID(2)

	got := e.DecideRoleChange(1, tgt, "Wizard")
	if got.Allowed {
		t.Fatalf("Allowed = true, want false")
	}
	if got.Reason != ReasonInvalidRole {
		t.Fatalf("Reason = %q, want %q", got.Reason, ReasonInvalidRole)
	}
}

func TestDecideRoleChangeMissingRequester(t *testing.T) {
	e := newEngine(t, registry.User{ID: 2, Name: "Tgt", Role: registry.RoleUser})
	tgt, _ := e.reg.GetByID(2)

	got := e.DecideRoleChange(99, tgt, "User")
	if got.Allowed {
		t.Fatalf("Allowed = true, want false")
	}
	if got.Reason != ReasonRequesterNotFound {
		t.Fatalf("Reason = %q, want %q", got.Reason, ReasonRequesterNotFound)
	}
}

func TestDecideRoleChangeUnrecognizedStoredRole(t *testing.T) {
	e := newEngine(t,
		registry.User{ID: 1, Name: "Req", Role: "Overlord"},
		registry.User{ID: 2, Name: "Tgt", Role: registry.RoleUser},
	)
	tgt, _ := e.reg.GetByID(2)

	got := e.DecideRoleChange(1, tgt, "User")
	if got.Allowed {
		t.Fatalf("Allowed = true, want false")
	}
	if got.Reason != ReasonUnrecognizedRole {
		t.Fatalf("Reason = %q, want %q", got.Reason, ReasonUnrecognizedRole)
	}
}

func TestDecideMoodChange(t *testing.T) {
	cases := []struct {
		role registry.Role
		want bool
	}{
		{registry.RoleDeveloper, true},
		{registry.RoleTester, true},
		{registry.RoleUser, false},
	}
	for _, tc := range cases {
		e := newEngine(t, registry.User{ID: 1, Name: "Req", Role: tc.role})
		got := e.DecideMoodChange(1)
		if got.Allowed != tc.want {
			t.Fatalf("role=%s: Allowed = %v, want %v", tc.role, got.Allowed, tc.want)
		}
	}

	e := newEngine(t)
	got := e.DecideMoodChange(404)
	if got.Allowed || got.Reason != ReasonRequesterNotFound {
		t.Fatalf("missing requester: got %+v, want requester_not_found denial", got)
	}
}
