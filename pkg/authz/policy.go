package authz

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Grant is one line of policy: a principal (user or group name, already
// resolved by the caller) holds Privilege over everything Db/Table/Column/
// URI narrow down to. An empty field at a given level means "all" at that
// level — a Grant with only Db set and everything else empty covers every
// table, column, and function in that database.
type Grant struct {
	Principal string `yaml:"principal"`
	Privilege string `yaml:"privilege"`
	Db        string `yaml:"db,omitempty"`
	Table     string `yaml:"table,omitempty"`
	Column    string `yaml:"column,omitempty"`
	URI       string `yaml:"uri,omitempty"`
}

// policyFile is the on-disk YAML shape: a flat grant list. A real
// policy-engine file format (Sentry/Ranger style) is out of scope; this is
// the minimal parseable stand-in the Policy Reloader exercises.
type policyFile struct {
	Grants []Grant `yaml:"grants"`
}

// Policy is the parsed, immutable grant table. It is never mutated after
// construction — the reloader builds a new Policy and a new Checker on
// every reload and swaps the whole value.
type Policy struct {
	grants []Grant
}

// LoadPolicy reads and parses a policy file from path.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file %s: %w", path, err)
	}
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	for i, g := range pf.Grants {
		if parsePrivilege(g.Privilege) == nil {
			return nil, fmt.Errorf("policy file %s: grant %d: unknown privilege %q", path, i, g.Privilege)
		}
	}
	return &Policy{grants: pf.Grants}, nil
}

// NewPolicy builds a Policy directly from an in-memory grant list, mainly
// for tests.
func NewPolicy(grants []Grant) *Policy {
	return &Policy{grants: append([]Grant(nil), grants...)}
}

func parsePrivilege(s string) *Privilege {
	var p Privilege
	switch strings.ToUpper(s) {
	case "ALL":
		p = PrivilegeAll
	case "INSERT":
		p = PrivilegeInsert
	case "SELECT":
		p = PrivilegeSelect
	case "CREATE":
		p = PrivilegeCreate
	case "DROP":
		p = PrivilegeDrop
	case "VIEW_METADATA":
		p = PrivilegeViewMetadata
	case "ANY":
		p = PrivilegeAny
	default:
		return nil
	}
	return &p
}

// matches reports whether g covers target, ignoring privilege.
func (g Grant) matches(target Target) bool {
	fold := func(a, b string) bool {
		return a == "" || strings.EqualFold(a, b)
	}
	switch t := target.(type) {
	case ServerTarget:
		return g.Db == ""
	case DatabaseTarget:
		return fold(g.Db, t.Db) && g.Table == "" && g.Column == ""
	case TableTarget:
		return fold(g.Db, t.Db) && fold(g.Table, t.Table) && g.Column == ""
	case ColumnTarget:
		return fold(g.Db, t.Db) && fold(g.Table, t.Table) && fold(g.Column, t.Column)
	case AnyTableTarget:
		return fold(g.Db, t.Db)
	case URITarget:
		return g.URI != "" && strings.HasPrefix(t.URI, g.URI)
	default:
		return false
	}
}
