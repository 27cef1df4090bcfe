package access

import (
	"fmt"
	"sort"
	"strings"
)

// Anonymous is the role value used for unauthenticated callers.
const Anonymous Role = ""

// ConfigurationError reports an invalid route table. It is fatal at startup;
// the evaluator never produces it per-request.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return "access: invalid route configuration: " + e.Detail
}

// RouteClass maps a path prefix to the roles allowed to enter it.
type RouteClass struct {
	Prefix string
	Roles  []Role
}

// allows reports whether the class admits the role.
func (c RouteClass) allows(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Table is the validated route-access configuration: ordered RouteClass
// rules, the public allow-list and per-role landing routes. Immutable after
// construction.
type Table struct {
	classes       []RouteClass // sorted longest prefix first
	public        []string
	landing       map[Role]string
	loginRoute    string
	publicLanding string
}

// newTable validates and indexes the raw configuration.
func newTable(classes []RouteClass, public []string, landing map[Role]string, loginRoute, publicLanding string) (*Table, error) {
	if loginRoute == "" {
		return nil, &ConfigurationError{Detail: "login route missing"}
	}
	if publicLanding == "" {
		return nil, &ConfigurationError{Detail: "public landing route missing"}
	}
	for _, c := range classes {
		if !strings.HasPrefix(c.Prefix, "/") {
			return nil, &ConfigurationError{Detail: fmt.Sprintf("route prefix %q must start with /", c.Prefix)}
		}
		if len(c.Roles) == 0 {
			return nil, &ConfigurationError{Detail: fmt.Sprintf("route class %s has an empty role set", c.Prefix)}
		}
		for _, r := range c.Roles {
			if !r.Valid() {
				return nil, &ConfigurationError{Detail: fmt.Sprintf("route class %s references unknown role %q", c.Prefix, r)}
			}
		}
	}

	ordered := make([]RouteClass, len(classes))
	copy(ordered, classes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Prefix) > len(ordered[j].Prefix)
	})

	t := &Table{
		classes:       ordered,
		public:        public,
		landing:       landing,
		loginRoute:    loginRoute,
		publicLanding: publicLanding,
	}

	// Every role must have a landing route it is itself allowed to reach,
	// otherwise guard redirects could loop.
	for _, role := range Roles() {
		dest, ok := landing[role]
		if !ok || dest == "" {
			return nil, &ConfigurationError{Detail: fmt.Sprintf("role %s has no landing route", role)}
		}
		if !t.CanAccessPath(role, dest) {
			return nil, &ConfigurationError{Detail: fmt.Sprintf("role %s cannot access its landing route %s", role, dest)}
		}
	}
	if !t.CanAccessPath(Anonymous, loginRoute) {
		return nil, &ConfigurationError{Detail: "login route is not public"}
	}
	if !t.CanAccessPath(Anonymous, publicLanding) {
		return nil, &ConfigurationError{Detail: "public landing route is not public"}
	}
	return t, nil
}

// CanAccessPath reports whether a role may enter path. Pass Anonymous for
// unauthenticated callers. Rules, longest prefix first:
//   - a matching RouteClass decides: the role must be in its allowed set
//     (anonymous never is);
//   - otherwise a path on the public allow-list is open to everyone;
//   - otherwise any authenticated role may enter, anonymous may not.
func (t *Table) CanAccessPath(role Role, path string) bool {
	path = normalizePath(path)
	for _, c := range t.classes {
		if pathWithin(path, c.Prefix) {
			if role == Anonymous {
				return false
			}
			return c.allows(role)
		}
	}
	if t.isPublic(path) {
		return true
	}
	return role != Anonymous && role.Valid()
}

// LandingRoute returns the default destination for a role. Anonymous callers
// land on the public landing route.
func (t *Table) LandingRoute(role Role) string {
	if dest, ok := t.landing[role]; ok {
		return dest
	}
	return t.publicLanding
}

// LoginRoute returns the route unauthenticated callers are redirected to.
func (t *Table) LoginRoute() string { return t.loginRoute }

// PublicLanding returns the landing route for logged-out users.
func (t *Table) PublicLanding() string { return t.publicLanding }

func (t *Table) isPublic(path string) bool {
	for _, p := range t.public {
		if p == "/" {
			// Root is an exact entry, otherwise everything would be public.
			if path == "/" {
				return true
			}
			continue
		}
		if pathWithin(path, p) {
			return true
		}
	}
	return false
}

// pathWithin reports whether path equals prefix or is a descendant of it at a
// segment boundary, so /admin matches /admin and /admin/settings but not
// /administrator.
func pathWithin(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
