package authz

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func policy() *Policy {
	return NewPolicy([]Grant{
		{Principal: "alice", Privilege: "ALL", Db: "sales"},
		{Principal: "bob", Privilege: "SELECT", Db: "sales", Table: "orders"},
		{Principal: "carol", Privilege: "VIEW_METADATA", Db: "ops"},
	})
}

func TestHasAccessAllSubsumesActionPrivileges(t *testing.T) {
	c := NewChecker(policy())
	assert.True(t, c.HasAccess("alice", PrivilegeRequest{Privilege: PrivilegeSelect, Target: DatabaseTarget{Db: "sales"}}))
	assert.True(t, c.HasAccess("alice", PrivilegeRequest{Privilege: PrivilegeDrop, Target: TableTarget{Db: "sales", Table: "orders"}}))
}

func TestHasAccessAnyIsSatisfiedByNarrowerGrant(t *testing.T) {
	c := NewChecker(policy())
	assert.True(t, c.HasAccess("bob", PrivilegeRequest{Privilege: PrivilegeAny, Target: TableTarget{Db: "sales", Table: "orders"}}))
	assert.False(t, c.HasAccess("bob", PrivilegeRequest{Privilege: PrivilegeAny, Target: TableTarget{Db: "sales", Table: "returns"}}))
}

func TestHasAccessDeniedWithoutMatchingGrant(t *testing.T) {
	c := NewChecker(policy())
	assert.False(t, c.HasAccess("bob", PrivilegeRequest{Privilege: PrivilegeInsert, Target: TableTarget{Db: "sales", Table: "orders"}}))
	assert.False(t, c.HasAccess("dave", PrivilegeRequest{Privilege: PrivilegeSelect, Target: DatabaseTarget{Db: "sales"}}))
}

func TestAllOfTargetRequiresEveryPrivilege(t *testing.T) {
	c := NewChecker(policy())
	req := PrivilegeRequest{
		Privilege: PrivilegeAny,
		Target: AllOfTarget{
			Privileges: []Privilege{PrivilegeDrop, PrivilegeCreate},
			Scope:      DatabaseTarget{Db: "sales"},
		},
	}
	assert.True(t, c.HasAccess("alice", req))
	assert.False(t, c.HasAccess("bob", req))
}

// TestCheckAccessMessageShape is P8 plus the two-message-family rule from
// §4.4: access-family privileges (ANY/ALL/VIEW_METADATA) get "access X",
// action privileges get "execute P on X".
func TestCheckAccessMessageShape(t *testing.T) {
	c := NewChecker(policy())

	err := c.CheckAccess("dave", PrivilegeRequest{Privilege: PrivilegeViewMetadata, Target: DatabaseTarget{Db: "sales"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not have privileges to access")

	err = c.CheckAccess("dave", PrivilegeRequest{Privilege: PrivilegeSelect, Target: DatabaseTarget{Db: "sales"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not have privileges to execute SELECT on")
}

// TestCheckAccessSymmetricWithHasAccess is P8's core claim.
func TestCheckAccessSymmetricWithHasAccess(t *testing.T) {
	c := NewChecker(policy())
	req := PrivilegeRequest{Privilege: PrivilegeSelect, Target: TableTarget{Db: "sales", Table: "orders"}}

	assert.True(t, c.HasAccess("alice", req))
	assert.NoError(t, c.CheckAccess("alice", req))

	assert.False(t, c.HasAccess("dave", req))
	assert.Error(t, c.CheckAccess("dave", req))
}

func TestServerTargetOnlyMatchesServerWideGrant(t *testing.T) {
	c := NewChecker(NewPolicy([]Grant{{Principal: "admin", Privilege: "ALL"}}))
	assert.True(t, c.HasAccess("admin", PrivilegeRequest{Privilege: PrivilegeAny, Target: ServerTarget{}}))
	assert.False(t, c.HasAccess("admin2", PrivilegeRequest{Privilege: PrivilegeAny, Target: ServerTarget{}}))
}

func TestURITargetPrefixMatch(t *testing.T) {
	c := NewChecker(NewPolicy([]Grant{{Principal: "alice", Privilege: "ALL", URI: "hdfs://nn/warehouse"}}))
	assert.True(t, c.HasAccess("alice", PrivilegeRequest{
		Privilege: PrivilegeAny,
		Target:    URITarget{URI: "hdfs://nn/warehouse/sales/orders"},
	}))
	assert.False(t, c.HasAccess("alice", PrivilegeRequest{
		Privilege: PrivilegeAny,
		Target:    URITarget{URI: "hdfs://nn/other"},
	}))
}

func TestLoadPolicyRejectsUnknownPrivilege(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/policy.yaml"
	require.NoError(t, os.WriteFile(path, []byte("grants:\n  - principal: alice\n    privilege: NOPE\n    db: sales\n"), 0o600))

	_, err := LoadPolicy(path)
	assert.Error(t, err)
}

func TestLoadPolicyParsesGrants(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/policy.yaml"
	require.NoError(t, os.WriteFile(path, []byte("grants:\n  - principal: alice\n    privilege: ALL\n    db: sales\n"), 0o600))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	c := NewChecker(p)
	assert.True(t, c.HasAccess("alice", PrivilegeRequest{Privilege: PrivilegeSelect, Target: DatabaseTarget{Db: "sales"}}))
}
