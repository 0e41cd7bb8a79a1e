package authz

import (
	"github.com/cuemby/catalogd/pkg/catalog"
	"github.com/cuemby/catalogd/pkg/metrics"
)

// Checker evaluates PrivilegeRequests against an immutable Policy. A
// Checker is built once per policy load and never mutated; the Policy
// Reloader replaces the whole value under its own lock (see
// pkg/policyreload), never touches one in place.
type Checker struct {
	policy *Policy
}

// NewChecker builds a Checker bound to policy.
func NewChecker(policy *Policy) *Checker {
	return &Checker{policy: policy}
}

// HasAccess reports whether principal holds req.Privilege on req.Target,
// without raising an error. AllOfTarget requires every listed privilege
// to individually hold on the shared scope.
func (c *Checker) HasAccess(principal string, req PrivilegeRequest) bool {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.AuthCheckDuration)

	ok := c.evaluate(principal, req)
	if ok {
		metrics.AuthChecksTotal.WithLabelValues("granted").Inc()
	} else {
		metrics.AuthChecksTotal.WithLabelValues("denied").Inc()
	}
	return ok
}

func (c *Checker) evaluate(principal string, req PrivilegeRequest) bool {
	if all, ok := req.Target.(AllOfTarget); ok {
		for _, p := range all.Privileges {
			if !c.evaluate(principal, PrivilegeRequest{Privilege: p, Target: all.Scope}) {
				return false
			}
		}
		return true
	}

	for _, g := range c.policy.grants {
		if g.Principal != principal {
			continue
		}
		if !g.matches(req.Target) {
			continue
		}
		grantPrivilege := parsePrivilege(g.Privilege)
		if grantPrivilege != nil && implies(*grantPrivilege, req.Privilege) {
			return true
		}
	}
	return false
}

// CheckAccess is the throwing counterpart to HasAccess: it returns a
// *catalog.Error (CodeAuthorization) with one of two message shapes —
// "does not have privileges to access X" for ANY/ALL/VIEW_METADATA
// requests, "does not have privileges to execute P on X" for action
// (INSERT/SELECT/CREATE/DROP) requests.
func (c *Checker) CheckAccess(principal string, req PrivilegeRequest) error {
	if c.HasAccess(principal, req) {
		return nil
	}
	if req.Privilege.isAccessCheck() {
		return catalog.NewAuthorization("user %q does not have privileges to access %s", principal, req.Target)
	}
	return catalog.NewAuthorization("user %q does not have privileges to execute %s on %s", principal, req.Privilege, req.Target)
}
