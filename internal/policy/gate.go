// Package policy centralizes authorization decisions for the reservation
// core. Handlers and the lifecycle supervisor call Authorize instead of
// performing ad-hoc role checks; a single declarative rule table replaces the
// per-route conditionals the marketplace grew over time.
package policy

import (
	"errors"
	"fmt"

	"github.com/gearshare/rental-service/internal/models"
)

var (
	// ErrNoPolicy means no rule matches the requested operation. Absence of
	// a rule is a deny, never an allow.
	ErrNoPolicy = errors.New("no policy for requested operation")

	// ErrForbidden means a rule matched but the principal does not satisfy it.
	ErrForbidden = errors.New("forbidden")
)

type Resource string

const (
	ResourceBooking  Resource = "booking"
	ResourceVehicle  Resource = "vehicle"
	ResourceEarnings Resource = "earnings"
)

type Verb string

const (
	VerbCreate   Verb = "create"
	VerbRead     Verb = "read"
	VerbList     Verb = "list"
	VerbConfirm  Verb = "confirm"
	VerbReject   Verb = "reject"
	VerbCancel   Verb = "cancel"
	VerbComplete Verb = "complete"
)

// Ownership names which party must match the principal when a rule requires
// ownership. Admins bypass the ownership check, never the role check.
type Ownership int

const (
	OwnershipNone Ownership = iota
	OwnershipVehicleOwner
	OwnershipRenter
	OwnershipRenterOrOwner
)

type Rule struct {
	Resource  Resource
	Verb      Verb
	Roles     []models.Role
	Ownership Ownership
}

// Action is one requested operation. The caller resolves OwnerID (the
// vehicle's owner) and RenterID (the booking's renter) before invoking the
// gate; the gate itself performs no I/O.
type Action struct {
	Resource   Resource
	ResourceID uint
	Verb       Verb
	OwnerID    string
	RenterID   string
}

// rules is the process-wide policy table: built once, immutable thereafter.
var rules = []Rule{
	{ResourceBooking, VerbCreate, []models.Role{models.RoleRenter, models.RoleAdmin}, OwnershipNone},
	{ResourceBooking, VerbRead, []models.Role{models.RoleRenter, models.RoleOwner, models.RoleAdmin}, OwnershipRenterOrOwner},
	{ResourceBooking, VerbList, []models.Role{models.RoleOwner, models.RoleAdmin}, OwnershipVehicleOwner},
	{ResourceBooking, VerbConfirm, []models.Role{models.RoleOwner, models.RoleAdmin}, OwnershipVehicleOwner},
	{ResourceBooking, VerbReject, []models.Role{models.RoleOwner, models.RoleAdmin}, OwnershipVehicleOwner},
	{ResourceBooking, VerbCancel, []models.Role{models.RoleRenter, models.RoleOwner, models.RoleAdmin}, OwnershipRenterOrOwner},
	{ResourceBooking, VerbComplete, []models.Role{models.RoleAdmin}, OwnershipNone},
	{ResourceEarnings, VerbRead, []models.Role{models.RoleOwner, models.RoleAdmin}, OwnershipVehicleOwner},
}

// Authorize checks the principal against the rule matching the action.
// Returns nil on allow, ErrNoPolicy or ErrForbidden (wrapped with the reason)
// on deny. Deterministic and side-effect free.
func Authorize(p models.Principal, a Action) error {
	rule, ok := lookup(a.Resource, a.Verb)
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrNoPolicy, a.Verb, a.Resource)
	}

	if !hasAnyRole(p, rule.Roles) {
		return fmt.Errorf("%w: %s %s requires one of %v", ErrForbidden, a.Verb, a.Resource, rule.Roles)
	}

	if rule.Ownership == OwnershipNone || p.IsAdmin() {
		return nil
	}

	switch rule.Ownership {
	case OwnershipVehicleOwner:
		if p.UserID == a.OwnerID {
			return nil
		}
	case OwnershipRenter:
		if p.UserID == a.RenterID {
			return nil
		}
	case OwnershipRenterOrOwner:
		if p.UserID == a.OwnerID || p.UserID == a.RenterID {
			return nil
		}
	}

	return fmt.Errorf("%w: principal does not own the resource", ErrForbidden)
}

func lookup(res Resource, verb Verb) (Rule, bool) {
	for _, r := range rules {
		if r.Resource == res && r.Verb == verb {
			return r, true
		}
	}
	return Rule{}, false
}

func hasAnyRole(p models.Principal, allowed []models.Role) bool {
	for _, r := range allowed {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}
