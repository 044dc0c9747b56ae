// Package filter wraps a types.CatalogPersister so that changes the
// wrapped persister just wrote itself, and is about to be told about again
// through its own Watch channel, are dropped instead of re-applied.
package filter

import "github.com/catalogdb/grantee/types"

type persister struct {
	types.CatalogPersister

	principals map[types.PrincipalPolicyChange]struct{}
	grants     map[types.GrantPolicyChange]struct{}
	roleGrants map[types.RoleGrantPolicyChange]struct{}
}

// New checks whether an incoming change was made by the inner persister
// itself and, if so, does not call it again.
func New(p types.CatalogPersister) types.CatalogPersister {
	return &persister{
		CatalogPersister: p,
		principals:       make(map[types.PrincipalPolicyChange]struct{}),
		grants:           make(map[types.GrantPolicyChange]struct{}),
		roleGrants:       make(map[types.RoleGrantPolicyChange]struct{}),
	}
}

func (f *persister) InsertPrincipal(policy types.PrincipalPolicy) error {
	change := types.PrincipalPolicyChange{PrincipalPolicy: policy, Method: types.PersistInsert}
	if _, ok := f.principals[change]; ok {
		delete(f.principals, change)
		return nil
	}
	f.principals[change] = struct{}{}
	return f.CatalogPersister.InsertPrincipal(policy)
}

func (f *persister) RemovePrincipal(name string) error {
	// A bare name does not identify a PrincipalPolicyChange's Kind, so the
	// filter cannot dedupe this one against a watched change; always pass
	// it through.
	return f.CatalogPersister.RemovePrincipal(name)
}

func (f *persister) UpsertGrant(policy types.GrantPolicy) error {
	change := types.GrantPolicyChange{GrantPolicy: policy, Method: types.PersistUpdate}
	if _, ok := f.grants[change]; ok {
		delete(f.grants, change)
		return nil
	}
	f.grants[change] = struct{}{}
	return f.CatalogPersister.UpsertGrant(policy)
}

func (f *persister) RemoveGrant(grantee string, key types.DBObjectKey) error {
	return f.CatalogPersister.RemoveGrant(grantee, key)
}

func (f *persister) InsertRoleGrant(policy types.RoleGrantPolicy) error {
	change := types.RoleGrantPolicyChange{RoleGrantPolicy: policy, Method: types.PersistInsert}
	if _, ok := f.roleGrants[change]; ok {
		delete(f.roleGrants, change)
		return nil
	}
	f.roleGrants[change] = struct{}{}
	return f.CatalogPersister.InsertRoleGrant(policy)
}

func (f *persister) RemoveRoleGrant(policy types.RoleGrantPolicy) error {
	change := types.RoleGrantPolicyChange{RoleGrantPolicy: policy, Method: types.PersistDelete}
	if _, ok := f.roleGrants[change]; ok {
		delete(f.roleGrants, change)
		return nil
	}
	f.roleGrants[change] = struct{}{}
	return f.CatalogPersister.RemoveRoleGrant(policy)
}
