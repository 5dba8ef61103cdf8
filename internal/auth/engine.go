// Package auth decides whether role and mood mutations are permitted,
// based on the Developer > Tester > User hierarchy.
package auth

import "github.com/manudrel/elara/internal/registry"

// Reason explains a denial. A denial is a normal negative outcome, not an
// error.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonInvalidRole           Reason = "invalid_role"
	ReasonRequesterNotFound     Reason = "requester_not_found"
	ReasonUnrecognizedRole      Reason = "unrecognized_role"
	ReasonInsufficientPrivilege Reason = "insufficient_privilege"
)

// Decision is the structured outcome of an authorization check.
type Decision struct {
	Allowed bool
	// Role holds the normalized desired role when a role change is allowed.
	Role   registry.Role
	Reason Reason
}

func allow(role registry.Role) Decision { return Decision{Allowed: true, Role: role} }
func deny(reason Reason) Decision       { return Decision{Reason: reason} }

// Engine evaluates mutation requests against the registry's current records.
type Engine struct {
	reg *registry.Registry
}

func NewEngine(reg *registry.Registry) *Engine {
	return &Engine{reg: reg}
}

// DecideRoleChange decides whether the requester may set target's role to
// desired. Rules: a Developer may change anyone to anything; everyone else
// must outrank the target and may only hand out roles at or below their own
// level.
func (e *Engine) DecideRoleChange(requesterID int64, target registry.User, desired string) Decision {
	desiredRole, ok := registry.ParseRole(desired)
	if !ok {
		return deny(ReasonInvalidRole)
	}

	requester, ok := e.reg.GetByID(requesterID)
	if !ok {
		return deny(ReasonRequesterNotFound)
	}
	if requester.Role.Level() == 0 || target.Role.Level() == 0 {
		return deny(ReasonUnrecognizedRole)
	}

	if requester.Role == registry.RoleDeveloper {
		return allow(desiredRole)
	}

	if requester.Role.Level() > target.Role.Level() &&
		desiredRole.Level() <= requester.Role.Level() {
		return allow(desiredRole)
	}

	return deny(ReasonInsufficientPrivilege)
}

// DecideMoodChange decides whether the requester may set moods at all.
// Only Developers and Testers may; the target's role is never consulted.
func (e *Engine) DecideMoodChange(requesterID int64) Decision {
	requester, ok := e.reg.GetByID(requesterID)
	if !ok {
		return deny(ReasonRequesterNotFound)
	}
	switch requester.Role {
	case registry.RoleDeveloper, registry.RoleTester:
		return allow("")
	default:
		return deny(ReasonInsufficientPrivilege)
	}
}
