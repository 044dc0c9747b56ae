// Package fake is an in-memory types.CatalogPersister, useful for tests and
// for exercising the persisted decorator without a real backend.
package fake

import (
	"context"

	"github.com/catalogdb/grantee/types"
)

// Persister is a plain in-memory CatalogPersister. It is not safe for
// concurrent use, and the root package's decorators do not serialize calls
// to it: the persisted decorator calls its persister outside the synced
// decorator's lock.
type Persister struct {
	principals map[string]types.PrincipalPolicy
	grants     map[string]map[types.DBObjectKey]types.GrantPolicy
	roleGrants map[types.RoleGrantPolicy]struct{}

	principalChanges chan types.PrincipalPolicyChange
	grantChanges     chan types.GrantPolicyChange
	roleGrantChanges chan types.RoleGrantPolicyChange
}

// New builds an empty Persister and stops emitting changes once ctx is
// done.
func New(ctx context.Context) *Persister {
	// buffered so a change can be recorded even if the current test or
	// caller never started watching; Watch still delivers every change in
	// order once someone does.
	const changeBuffer = 64

	p := &Persister{
		principals:       make(map[string]types.PrincipalPolicy),
		grants:           make(map[string]map[types.DBObjectKey]types.GrantPolicy),
		roleGrants:       make(map[types.RoleGrantPolicy]struct{}),
		principalChanges: make(chan types.PrincipalPolicyChange, changeBuffer),
		grantChanges:     make(chan types.GrantPolicyChange, changeBuffer),
		roleGrantChanges: make(chan types.RoleGrantPolicyChange, changeBuffer),
	}

	go func() {
		<-ctx.Done()
		close(p.principalChanges)
		close(p.grantChanges)
		close(p.roleGrantChanges)
	}()

	return p
}

var _ types.CatalogPersister = (*Persister)(nil)

func (p *Persister) InsertPrincipal(policy types.PrincipalPolicy) error {
	if _, ok := p.principals[policy.Name]; ok {
		return nil
	}
	p.principals[policy.Name] = policy
	p.principalChanges <- types.PrincipalPolicyChange{PrincipalPolicy: policy, Method: types.PersistInsert}
	return nil
}

func (p *Persister) RemovePrincipal(name string) error {
	policy, ok := p.principals[name]
	if !ok {
		return nil
	}
	delete(p.principals, name)
	delete(p.grants, name)
	p.principalChanges <- types.PrincipalPolicyChange{PrincipalPolicy: policy, Method: types.PersistDelete}
	return nil
}

func (p *Persister) ListPrincipals() ([]types.PrincipalPolicy, error) {
	out := make([]types.PrincipalPolicy, 0, len(p.principals))
	for _, policy := range p.principals {
		out = append(out, policy)
	}
	return out, nil
}

func (p *Persister) WatchPrincipals(context.Context) (<-chan types.PrincipalPolicyChange, error) {
	return p.principalChanges, nil
}

func (p *Persister) UpsertGrant(policy types.GrantPolicy) error {
	if p.grants[policy.Grantee] == nil {
		p.grants[policy.Grantee] = make(map[types.DBObjectKey]types.GrantPolicy)
	}
	p.grants[policy.Grantee][policy.Object.Key] = policy
	p.grantChanges <- types.GrantPolicyChange{GrantPolicy: policy, Method: types.PersistUpdate}
	return nil
}

func (p *Persister) RemoveGrant(grantee string, key types.DBObjectKey) error {
	byKey := p.grants[grantee]
	if byKey == nil {
		return nil
	}
	policy, ok := byKey[key]
	if !ok {
		return nil
	}
	delete(byKey, key)
	p.grantChanges <- types.GrantPolicyChange{GrantPolicy: policy, Method: types.PersistDelete}
	return nil
}

func (p *Persister) ListGrants() ([]types.GrantPolicy, error) {
	out := make([]types.GrantPolicy, 0)
	for _, byKey := range p.grants {
		for _, policy := range byKey {
			out = append(out, policy)
		}
	}
	return out, nil
}

func (p *Persister) WatchGrants(context.Context) (<-chan types.GrantPolicyChange, error) {
	return p.grantChanges, nil
}

func (p *Persister) InsertRoleGrant(policy types.RoleGrantPolicy) error {
	if _, ok := p.roleGrants[policy]; ok {
		return nil
	}
	p.roleGrants[policy] = struct{}{}
	p.roleGrantChanges <- types.RoleGrantPolicyChange{RoleGrantPolicy: policy, Method: types.PersistInsert}
	return nil
}

func (p *Persister) RemoveRoleGrant(policy types.RoleGrantPolicy) error {
	if _, ok := p.roleGrants[policy]; !ok {
		return nil
	}
	delete(p.roleGrants, policy)
	p.roleGrantChanges <- types.RoleGrantPolicyChange{RoleGrantPolicy: policy, Method: types.PersistDelete}
	return nil
}

func (p *Persister) ListRoleGrants() ([]types.RoleGrantPolicy, error) {
	out := make([]types.RoleGrantPolicy, 0, len(p.roleGrants))
	for policy := range p.roleGrants {
		out = append(out, policy)
	}
	return out, nil
}

func (p *Persister) WatchRoleGrants(context.Context) (<-chan types.RoleGrantPolicyChange, error) {
	return p.roleGrantChanges, nil
}
