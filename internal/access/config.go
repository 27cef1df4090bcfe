package access

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultRoutes []byte

type tableConfig struct {
	LoginRoute    string            `yaml:"login_route"`
	PublicLanding string            `yaml:"public_landing"`
	Public        []string          `yaml:"public"`
	Routes        []routeClassEntry `yaml:"routes"`
	Landing       map[string]string `yaml:"landing"`
}

type routeClassEntry struct {
	Prefix string   `yaml:"prefix"`
	Roles  []string `yaml:"roles"`
}

// ParseTable builds a validated Table from YAML configuration.
func ParseTable(raw []byte) (*Table, error) {
	var cfg tableConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, &ConfigurationError{Detail: fmt.Sprintf("parse yaml: %v", err)}
	}
	classes := make([]RouteClass, 0, len(cfg.Routes))
	for _, entry := range cfg.Routes {
		roles := make([]Role, 0, len(entry.Roles))
		for _, raw := range entry.Roles {
			role, err := ParseRole(raw)
			if err != nil {
				return nil, &ConfigurationError{Detail: fmt.Sprintf("route class %s: %v", entry.Prefix, err)}
			}
			roles = append(roles, role)
		}
		classes = append(classes, RouteClass{Prefix: entry.Prefix, Roles: roles})
	}
	landing := make(map[Role]string, len(cfg.Landing))
	for raw, dest := range cfg.Landing {
		role, err := ParseRole(raw)
		if err != nil {
			return nil, &ConfigurationError{Detail: fmt.Sprintf("landing table: %v", err)}
		}
		landing[role] = dest
	}
	return newTable(classes, cfg.Public, landing, cfg.LoginRoute, cfg.PublicLanding)
}

// LoadTable parses the embedded route table shipped with the binary.
func LoadTable() (*Table, error) {
	return ParseTable(defaultRoutes)
}

// MustLoadTable panics on configuration errors. Intended for startup paths
// where an invalid table should fail loudly.
func MustLoadTable() *Table {
	t, err := LoadTable()
	if err != nil {
		panic(err)
	}
	return t
}
