// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package testing

import (
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/iam/types"
)

// IAMServer implements an IAM simulator for use in testing.
type IAMServer struct {
	mu sync.Mutex

	roles          map[string]*types.Role
	inlinePolicies map[string]map[string]string
	calls          map[string]int
}

// NewIAMServer returns an empty simulator.
func NewIAMServer() *IAMServer {
	srv := &IAMServer{}
	srv.Reset()
	return srv
}

// Reset forgets every role and call.
func (i *IAMServer) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.roles = make(map[string]*types.Role)
	i.inlinePolicies = make(map[string]map[string]string)
	i.calls = make(map[string]int)
}

// AddRole installs a role as if some earlier deployment had created it.
func (i *IAMServer) AddRole(role types.Role, policies map[string]string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.roles[*role.RoleName] = &role
	i.inlinePolicies[*role.RoleName] = make(map[string]string)
	for name, doc := range policies {
		i.inlinePolicies[*role.RoleName][name] = doc
	}
}

// Role returns the named role.
func (i *IAMServer) Role(name string) (types.Role, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	role, ok := i.roles[name]
	if !ok {
		return types.Role{}, false
	}
	return *role, true
}

// InlinePolicies returns the inline policy documents of the named role,
// keyed by policy name.
func (i *IAMServer) InlinePolicies(name string) map[string]string {
	i.mu.Lock()
	defer i.mu.Unlock()

	policies := make(map[string]string)
	for k, v := range i.inlinePolicies[name] {
		policies[k] = v
	}
	return policies
}

// Calls returns how many times the named operation was called.
func (i *IAMServer) Calls(op string) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.calls[op]
}
