// Package nav derives sidebar state (active and expanded entries) from the
// current path over a static menu tree, with a small amount of mutable UI
// state for user-toggled sections.
package nav

import (
	"strings"
	"sync"

	"github.com/lumina-africa/lumina/internal/access"
)

// Node is one static menu entry. Active and expanded are never stored here;
// they are derived per navigation event.
type Node struct {
	Name     string
	Path     string
	Children []Node
}

// View is a derived rendering of a Node for one (role, path) pair.
type View struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Active   bool   `json:"active"`
	Expanded bool   `json:"expanded"`
	Children []View `json:"children,omitempty"`
}

// Cache owns the per-session toggle state and recomputes the derived tree on
// every navigation. The explicit toggle set persists across navigations and
// resets to auto-expansion when the active leaf moves outside every expanded
// branch.
type Cache struct {
	tree  []Node
	table *access.Table

	mu         sync.Mutex
	toggled    map[string]bool
	lastActive string
}

// NewCache constructs a Cache over a static tree.
func NewCache(tree []Node, table *access.Table) *Cache {
	return &Cache{tree: tree, table: table, toggled: make(map[string]bool)}
}

// Toggle flips the explicit expansion state of the section at path.
func (c *Cache) Toggle(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toggled[path] = !c.currentLocked(path)
}

// currentLocked reports the effective expansion of a section before the
// toggle, considering an auto-expanded active branch.
func (c *Cache) currentLocked(path string) bool {
	if explicit, ok := c.toggled[path]; ok {
		return explicit
	}
	return within(c.lastActive, path)
}

// Derive computes the role-filtered menu with active/expanded flags for the
// current path. Entries whose path the role cannot access are hidden unless a
// visible descendant remains.
func (c *Cache) Derive(role access.Role, path string) []View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if path != c.lastActive && !c.insideExpandedLocked(path) {
		// Active leaf left every expanded branch: drop the explicit toggles
		// and fall back to auto-expanding the active branch.
		c.toggled = make(map[string]bool)
	}
	c.lastActive = path

	return c.deriveLocked(c.tree, role, path)
}

func (c *Cache) deriveLocked(nodes []Node, role access.Role, path string) []View {
	views := make([]View, 0, len(nodes))
	for _, n := range nodes {
		children := c.deriveLocked(n.Children, role, path)
		allowed := c.table.CanAccessPath(role, n.Path)
		if !allowed && len(children) == 0 {
			continue
		}
		active := within(path, n.Path)
		expanded := active
		if explicit, ok := c.toggled[n.Path]; ok {
			expanded = explicit
		}
		views = append(views, View{
			Name:     n.Name,
			Path:     n.Path,
			Active:   active,
			Expanded: expanded && len(children) > 0,
			Children: children,
		})
	}
	return views
}

// insideExpandedLocked reports whether path falls under any branch that is
// currently expanded: an explicitly toggled-open section, or the
// auto-expanded branch of the active leaf.
func (c *Cache) insideExpandedLocked(path string) bool {
	for p, open := range c.toggled {
		if open && within(path, p) {
			return true
		}
	}
	if c.lastActive == "" {
		return false
	}
	return topSegment(path) == topSegment(c.lastActive)
}

// topSegment returns the first path segment, the unit of sidebar sections.
func topSegment(p string) string {
	p = strings.Trim(p, "/")
	if i := strings.Index(p, "/"); i >= 0 {
		p = p[:i]
	}
	return p
}

// within reports whether path equals node or descends from it at a segment
// boundary.
func within(path, node string) bool {
	if node == "" || path == "" {
		return false
	}
	if path == node {
		return true
	}
	if node == "/" {
		return false
	}
	return strings.HasPrefix(path, node+"/")
}
