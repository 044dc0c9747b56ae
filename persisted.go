package grantee

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"github.com/catalogdb/grantee/persist/filter"
	"github.com/catalogdb/grantee/types"
)

var _ types.Catalog = (*persistedCatalog)(nil)

// persistedCatalog replays a CatalogPersister's recorded policies into the
// inner catalog at construction, then watches it for changes made by other
// processes for as long as ctx is live.
type persistedCatalog struct {
	types.Catalog
	persist types.CatalogPersister
	log     logr.Logger
}

func newPersistedCatalog(ctx context.Context, inner types.Catalog, p types.CatalogPersister, l logr.Logger) (*persistedCatalog, error) {
	c := &persistedCatalog{
		Catalog: inner,
		persist: filter.New(p),
		log:     l,
	}
	if err := c.loadPersisted(); err != nil {
		return nil, err
	}
	if err := c.startWatching(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *persistedCatalog) loadPersisted() error {
	c.log.V(levelMutate).Info("load persisted principals")

	principals, err := c.persist.ListPrincipals()
	if err != nil {
		return err
	}
	for _, p := range principals {
		if err := c.createByKind(p.Name, p.Kind); err != nil {
			return err
		}
	}

	c.log.V(levelMutate).Info("load persisted role grants")
	roleGrants, err := c.persist.ListRoleGrants()
	if err != nil {
		return err
	}
	for _, rg := range roleGrants {
		if err := c.Catalog.GrantRole(rg.Grantee, rg.Role); err != nil {
			return err
		}
	}

	c.log.V(levelMutate).Info("load persisted grants")
	grants, err := c.persist.ListGrants()
	if err != nil {
		return err
	}
	for _, g := range grants {
		if err := c.Catalog.GrantPrivileges(g.Grantee, g.Object); err != nil {
			return err
		}
	}

	return nil
}

func (c *persistedCatalog) createByKind(name string, kind types.PrincipalKind) error {
	c.log.V(levelMutate).Info("create by kind", "grantee", types.GranteeRef{Name: name, Kind: kind})
	if kind == types.RoleKind {
		return c.Catalog.CreateRole(name)
	}
	return c.Catalog.CreateUser(name)
}

func (c *persistedCatalog) startWatching(ctx context.Context) error {
	principals, err := c.persist.WatchPrincipals(ctx)
	if err != nil {
		return err
	}
	roleGrants, err := c.persist.WatchRoleGrants(ctx)
	if err != nil {
		return err
	}
	grants, err := c.persist.WatchGrants(ctx)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case change, ok := <-principals:
				if !ok {
					return
				}
				if err := c.coordinatePrincipalChange(change); err != nil {
					c.log.Error(err, "coordinate principal change")
				}
			case change, ok := <-roleGrants:
				if !ok {
					return
				}
				if err := c.coordinateRoleGrantChange(change); err != nil {
					c.log.Error(err, "coordinate role grant change")
				}
			case change, ok := <-grants:
				if !ok {
					return
				}
				if err := c.coordinateGrantChange(change); err != nil {
					c.log.Error(err, "coordinate grant change")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (c *persistedCatalog) coordinatePrincipalChange(change types.PrincipalPolicyChange) error {
	c.log.V(levelMutate).Info("coordinate principal change", "change", change)

	switch change.Method {
	case types.PersistInsert:
		return c.createByKind(change.Name, change.Kind)
	case types.PersistDelete:
		return c.Catalog.DropGrantee(change.Name)
	}
	return errors.Newf("unsupported principal persister change: %s", change.Method)
}

func (c *persistedCatalog) coordinateRoleGrantChange(change types.RoleGrantPolicyChange) error {
	c.log.V(levelMutate).Info("coordinate role grant change", "change", change)

	switch change.Method {
	case types.PersistInsert:
		return c.Catalog.GrantRole(change.Grantee, change.Role)
	case types.PersistDelete:
		return c.Catalog.RevokeRole(change.Grantee, change.Role)
	}
	return errors.Newf("unsupported role grant persister change: %s", change.Method)
}

func (c *persistedCatalog) coordinateGrantChange(change types.GrantPolicyChange) error {
	c.log.V(levelMutate).Info("coordinate grant change", "change", change)

	switch change.Method {
	case types.PersistUpdate:
		return c.Catalog.GrantPrivileges(change.Grantee, change.Object)
	case types.PersistDelete:
		_, err := c.Catalog.RevokePrivileges(change.Grantee, change.Object)
		return err
	}
	return errors.Newf("unsupported grant persister change: %s", change.Method)
}

func (c *persistedCatalog) CreateUser(name string) error {
	c.log.V(levelMutate).Info("create user", "name", name)
	if err := c.persist.InsertPrincipal(types.PrincipalPolicy{Name: name, Kind: types.UserKind}); err != nil {
		return err
	}
	return c.Catalog.CreateUser(name)
}

func (c *persistedCatalog) CreateRole(name string) error {
	c.log.V(levelMutate).Info("create role", "name", name)
	if err := c.persist.InsertPrincipal(types.PrincipalPolicy{Name: name, Kind: types.RoleKind}); err != nil {
		return err
	}
	return c.Catalog.CreateRole(name)
}

func (c *persistedCatalog) DropGrantee(name string) error {
	c.log.V(levelMutate).Info("drop grantee", "name", name)
	if err := c.persist.RemovePrincipal(name); err != nil {
		return err
	}
	return c.Catalog.DropGrantee(name)
}

func (c *persistedCatalog) GrantPrivileges(name string, object types.DBObject) error {
	c.log.V(levelMutate).Info("grant privileges", "name", name, "key", object.Key)
	if err := c.persist.UpsertGrant(types.GrantPolicy{Grantee: name, Object: object}); err != nil {
		return err
	}
	return c.Catalog.GrantPrivileges(name, object)
}

func (c *persistedCatalog) RevokePrivileges(name string, object types.DBObject) (*types.DBObject, error) {
	c.log.V(levelMutate).Info("revoke privileges", "name", name, "key", object.Key)

	remaining, err := c.Catalog.RevokePrivileges(name, object)
	if err != nil {
		return nil, err
	}
	if remaining == nil {
		if err := c.persist.RemoveGrant(name, object.Key); err != nil {
			return nil, err
		}
	} else {
		if err := c.persist.UpsertGrant(types.GrantPolicy{Grantee: name, Object: *remaining}); err != nil {
			return nil, err
		}
	}
	return remaining, nil
}

func (c *persistedCatalog) GrantRole(name, role string) error {
	c.log.V(levelMutate).Info("grant role", "name", name, "role", role)
	if err := c.persist.InsertRoleGrant(types.RoleGrantPolicy{Grantee: name, Role: role}); err != nil {
		return err
	}
	return c.Catalog.GrantRole(name, role)
}

func (c *persistedCatalog) RevokeRole(name, role string) error {
	c.log.V(levelMutate).Info("revoke role", "name", name, "role", role)
	if err := c.persist.RemoveRoleGrant(types.RoleGrantPolicy{Grantee: name, Role: role}); err != nil {
		return err
	}
	return c.Catalog.RevokeRole(name, role)
}
