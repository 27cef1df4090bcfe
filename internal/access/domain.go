// Package access implements the role and permission model for Lumina.
//
// Roles form a closed set; an unrecognized role string is rejected at the
// boundary rather than defaulted. Authorization questions are answered by a
// pure evaluator over static tables validated at construction time.
package access

import "fmt"

// Role identifies a class of users with a fixed capability set.
type Role string

// The closed role set.
const (
	RoleUser       Role = "user"
	RoleVenueOwner Role = "venue_owner"
	RoleOrganizer  Role = "organizer"
	RoleAdmin      Role = "admin"
)

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleUser, RoleVenueOwner, RoleOrganizer, RoleAdmin}
}

// ParseRole validates a raw role string against the closed set.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleUser, RoleVenueOwner, RoleOrganizer, RoleAdmin:
		return Role(raw), nil
	}
	return "", fmt.Errorf("access: unknown role %q", raw)
}

// String returns the wire representation of the role.
func (r Role) String() string { return string(r) }

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Wildcard matches any resource or action in a permission.
const Wildcard = "*"

// Permission is an immutable (resource, action) capability pair.
// Either field may be the wildcard "*".
type Permission struct {
	Resource string
	Action   string
}

// Matches reports whether the permission grants (resource, action),
// honouring wildcards on either field.
func (p Permission) Matches(resource, action string) bool {
	if p.Resource != Wildcard && p.Resource != resource {
		return false
	}
	if p.Action != Wildcard && p.Action != action {
		return false
	}
	return true
}

// rolePermissions is the static role capability table. Admin holds the
// universal permission and always evaluates true.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		{Resource: Wildcard, Action: Wildcard},
	},
	RoleUser: {
		{Resource: "venues", Action: "view"},
		{Resource: "events", Action: "view"},
		{Resource: "bookings", Action: "create"},
		{Resource: "bookings", Action: "view"},
		{Resource: "bookings", Action: "cancel"},
		{Resource: "reviews", Action: "create"},
		{Resource: "reviews", Action: "view"},
		{Resource: "profile", Action: Wildcard},
	},
	RoleVenueOwner: {
		{Resource: "venues", Action: Wildcard},
		{Resource: "events", Action: "view"},
		{Resource: "bookings", Action: "view"},
		{Resource: "bookings", Action: "confirm"},
		{Resource: "reviews", Action: "view"},
		{Resource: "profile", Action: Wildcard},
	},
	RoleOrganizer: {
		{Resource: "events", Action: Wildcard},
		{Resource: "venues", Action: "view"},
		{Resource: "bookings", Action: "view"},
		{Resource: "bookings", Action: "confirm"},
		{Resource: "reviews", Action: "view"},
		{Resource: "profile", Action: Wildcard},
	},
}

// HasPermission reports whether role may perform action on resource.
// Pure function over the static table; unknown roles always deny.
func HasPermission(role Role, resource, action string) bool {
	for _, p := range rolePermissions[role] {
		if p.Matches(resource, action) {
			return true
		}
	}
	return false
}

// PermissionsFor returns a copy of the role's permission set.
func PermissionsFor(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
