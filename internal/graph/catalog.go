package graph

import (
	"github.com/cockroachdb/errors"

	"github.com/catalogdb/grantee/types"
)

// Catalog is the in-memory arena of grantee nodes: a plain map keyed by
// name, with no locking or persistence of its own. The root package wraps
// it with a synced decorator for concurrency and a persisted decorator for
// durability; this package only ever has to get the graph algorithm right.
type Catalog struct {
	nodes map[string]*node
}

// New returns an empty Catalog.
func New() *Catalog {
	return &Catalog{nodes: make(map[string]*node)}
}

var _ types.Catalog = (*Catalog)(nil)

func (c *Catalog) lookup(name string) (*node, error) {
	n, ok := c.nodes[name]
	if !ok {
		return nil, errors.Wrapf(types.ErrNotFound, "grantee %q", name)
	}
	return n, nil
}

func (c *Catalog) lookupRole(name string) (*node, error) {
	n, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	if !n.isRole() {
		return nil, errors.Wrapf(types.ErrNotARole, "grantee %q", name)
	}
	return n, nil
}

func (c *Catalog) create(name string, kind types.PrincipalKind) error {
	if _, ok := c.nodes[name]; ok {
		return errors.Wrapf(types.ErrAlreadyExists, "grantee %q", name)
	}
	c.nodes[name] = newNode(name, kind)
	return nil
}

// CreateUser registers a new terminal grantee under name.
func (c *Catalog) CreateUser(name string) error {
	return c.create(name, types.UserKind)
}

// CreateRole registers a new role under name.
func (c *Catalog) CreateRole(name string) error {
	return c.create(name, types.RoleKind)
}

// DropGrantee removes name and detaches it from the graph.
func (c *Catalog) DropGrantee(name string) error {
	n, err := c.lookup(name)
	if err != nil {
		return err
	}
	n.detach()
	delete(c.nodes, name)
	return nil
}

// Exists reports whether name is a registered grantee.
func (c *Catalog) Exists(name string) bool {
	_, ok := c.nodes[name]
	return ok
}

// GrantPrivileges merges object's privileges into name's records.
func (c *Catalog) GrantPrivileges(name string, object types.DBObject) error {
	n, err := c.lookup(name)
	if err != nil {
		return err
	}
	n.grantPrivileges(object)
	return nil
}

// RevokePrivileges subtracts object's privileges from name's direct record.
func (c *Catalog) RevokePrivileges(name string, object types.DBObject) (*types.DBObject, error) {
	n, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	return n.revokePrivileges(object)
}

// GrantRole adds role to name's upstream roles.
func (c *Catalog) GrantRole(name, role string) error {
	n, err := c.lookup(name)
	if err != nil {
		return err
	}
	r, err := c.lookupRole(role)
	if err != nil {
		return err
	}
	return n.grantRole(r)
}

// RevokeRole removes role from name's upstream roles.
func (c *Catalog) RevokeRole(name, role string) error {
	n, err := c.lookup(name)
	if err != nil {
		return err
	}
	r, err := c.lookup(role)
	if err != nil {
		return err
	}
	if _, ok := n.roles[r]; !ok {
		return errors.Wrapf(types.ErrNotGranted, "role %q not granted to %q", role, name)
	}
	n.revokeRole(r)
	return nil
}

// CheckPrivileges reports whether name's effective privileges dominate req.
func (c *Catalog) CheckPrivileges(name string, req types.DBObject) (bool, error) {
	n, err := c.lookup(name)
	if err != nil {
		return false, err
	}
	return n.checkPrivileges(req), nil
}

// HasAnyPrivileges reports whether name holds any privilege on req's key or
// a wildcard promotion of it.
func (c *Catalog) HasAnyPrivileges(name string, req types.DBObject, onlyDirect bool) (bool, error) {
	n, err := c.lookup(name)
	if err != nil {
		return false, err
	}
	return n.hasAnyPrivileges(req, onlyDirect), nil
}

// HasAnyPrivilegesOnDB reports whether name holds any non-empty privilege
// record scoped to dbID.
func (c *Catalog) HasAnyPrivilegesOnDB(name string, dbID int32, onlyDirect bool) (bool, error) {
	n, err := c.lookup(name)
	if err != nil {
		return false, err
	}
	return n.hasAnyPrivilegesOnDB(dbID, onlyDirect), nil
}

// GetPrivileges finds the exact-key record for name.
func (c *Catalog) GetPrivileges(name string, key types.DBObjectKey, onlyDirect bool) (types.DBObject, error) {
	n, err := c.lookup(name)
	if err != nil {
		return types.DBObject{}, err
	}
	return n.getPrivileges(key, onlyDirect)
}

// GetRoles returns role names visible from name.
func (c *Catalog) GetRoles(name string, onlyDirect bool) ([]string, error) {
	n, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	return n.getRoles(onlyDirect), nil
}

// HasRole reports whether role is reachable from name.
func (c *Catalog) HasRole(name, role string, onlyDirect bool) (bool, error) {
	n, err := c.lookup(name)
	if err != nil {
		return false, err
	}
	r, err := c.lookup(role)
	if err != nil {
		return false, err
	}
	return n.hasRole(r, onlyDirect), nil
}

// RevokeAllOnDatabase purges every record scoped to dbID from name, cascading
// to downstream grantees if name is a role.
func (c *Catalog) RevokeAllOnDatabase(name string, dbID int32) error {
	n, err := c.lookup(name)
	if err != nil {
		return err
	}
	n.revokeAllOnDatabase(dbID)
	return nil
}

// RenameDBObject rewrites the name field of any record matching object.Key
// under name, cascading to downstream grantees if name is a role.
func (c *Catalog) RenameDBObject(name string, object types.DBObject) error {
	n, err := c.lookup(name)
	if err != nil {
		return err
	}
	n.renameDBObject(object)
	return nil
}

// ReassignObjectOwners reassigns ownership under name, within dbID, of every
// object-scoped record currently owned by one of oldOwnerIDs.
func (c *Catalog) ReassignObjectOwners(name string, oldOwnerIDs []int32, newOwnerID, dbID int32) error {
	n, err := c.lookup(name)
	if err != nil {
		return err
	}
	n.reassignObjectOwners(oldOwnerIDs, newOwnerID, dbID)
	return nil
}

// ReassignObjectOwner reassigns ownership of the record matching key
// exactly, under name.
func (c *Catalog) ReassignObjectOwner(name string, key types.DBObjectKey, newOwnerID int32) error {
	n, err := c.lookup(name)
	if err != nil {
		return err
	}
	n.reassignObjectOwner(key, newOwnerID)
	return nil
}
