package grantee

import "github.com/catalogdb/grantee/types"

var _ types.Catalog = (*superuserCatalog)(nil)

// superuserCatalog short-circuits every privilege check for a fixed set of
// named grantees, bypassing the graph entirely the way SuperUser in the
// preset policy vocabulary this is ported from does.
type superuserCatalog struct {
	types.Catalog
	superusers map[string]struct{}
}

func newSuperuserCatalog(inner types.Catalog, names []string) *superuserCatalog {
	su := make(map[string]struct{}, len(names))
	for _, name := range names {
		su[name] = struct{}{}
	}
	return &superuserCatalog{Catalog: inner, superusers: su}
}

func (c *superuserCatalog) isSuperuser(name string) bool {
	_, ok := c.superusers[name]
	return ok
}

func (c *superuserCatalog) CheckPrivileges(name string, req types.DBObject) (bool, error) {
	if c.isSuperuser(name) {
		return true, nil
	}
	return c.Catalog.CheckPrivileges(name, req)
}

func (c *superuserCatalog) HasAnyPrivileges(name string, req types.DBObject, onlyDirect bool) (bool, error) {
	if c.isSuperuser(name) {
		return true, nil
	}
	return c.Catalog.HasAnyPrivileges(name, req, onlyDirect)
}

func (c *superuserCatalog) HasAnyPrivilegesOnDB(name string, dbID int32, onlyDirect bool) (bool, error) {
	if c.isSuperuser(name) {
		return true, nil
	}
	return c.Catalog.HasAnyPrivilegesOnDB(name, dbID, onlyDirect)
}
