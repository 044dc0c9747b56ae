package grantee

import (
	"sync"

	"github.com/catalogdb/grantee/types"
)

var _ types.Catalog = (*syncedCatalog)(nil)

// syncedCatalog makes an inner Catalog safe for concurrent use: every
// mutating method takes the exclusive lock (propagation to downstream
// grantees happens inside that single critical section, so it is never
// observed half-applied), and every query takes the shared lock.
type syncedCatalog struct {
	c types.Catalog
	sync.RWMutex
}

func newSyncedCatalog(c types.Catalog) *syncedCatalog {
	return &syncedCatalog{c: c}
}

func (s *syncedCatalog) Exists(name string) bool {
	s.RLock()
	defer s.RUnlock()
	return s.c.Exists(name)
}

func (s *syncedCatalog) CheckPrivileges(name string, req types.DBObject) (bool, error) {
	s.RLock()
	defer s.RUnlock()
	return s.c.CheckPrivileges(name, req)
}

func (s *syncedCatalog) HasAnyPrivileges(name string, req types.DBObject, onlyDirect bool) (bool, error) {
	s.RLock()
	defer s.RUnlock()
	return s.c.HasAnyPrivileges(name, req, onlyDirect)
}

func (s *syncedCatalog) HasAnyPrivilegesOnDB(name string, dbID int32, onlyDirect bool) (bool, error) {
	s.RLock()
	defer s.RUnlock()
	return s.c.HasAnyPrivilegesOnDB(name, dbID, onlyDirect)
}

func (s *syncedCatalog) GetPrivileges(name string, key types.DBObjectKey, onlyDirect bool) (types.DBObject, error) {
	s.RLock()
	defer s.RUnlock()
	return s.c.GetPrivileges(name, key, onlyDirect)
}

func (s *syncedCatalog) GetRoles(name string, onlyDirect bool) ([]string, error) {
	s.RLock()
	defer s.RUnlock()

	roles, err := s.c.GetRoles(name, onlyDirect)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(roles))
	copy(out, roles)
	return out, nil
}

func (s *syncedCatalog) HasRole(name, role string, onlyDirect bool) (bool, error) {
	s.RLock()
	defer s.RUnlock()
	return s.c.HasRole(name, role, onlyDirect)
}

func (s *syncedCatalog) CreateUser(name string) error {
	s.Lock()
	defer s.Unlock()
	return s.c.CreateUser(name)
}

func (s *syncedCatalog) CreateRole(name string) error {
	s.Lock()
	defer s.Unlock()
	return s.c.CreateRole(name)
}

func (s *syncedCatalog) DropGrantee(name string) error {
	s.Lock()
	defer s.Unlock()
	return s.c.DropGrantee(name)
}

func (s *syncedCatalog) GrantPrivileges(name string, object types.DBObject) error {
	s.Lock()
	defer s.Unlock()
	return s.c.GrantPrivileges(name, object)
}

func (s *syncedCatalog) RevokePrivileges(name string, object types.DBObject) (*types.DBObject, error) {
	s.Lock()
	defer s.Unlock()
	return s.c.RevokePrivileges(name, object)
}

func (s *syncedCatalog) GrantRole(name, role string) error {
	s.Lock()
	defer s.Unlock()
	return s.c.GrantRole(name, role)
}

func (s *syncedCatalog) RevokeRole(name, role string) error {
	s.Lock()
	defer s.Unlock()
	return s.c.RevokeRole(name, role)
}

func (s *syncedCatalog) RevokeAllOnDatabase(name string, dbID int32) error {
	s.Lock()
	defer s.Unlock()
	return s.c.RevokeAllOnDatabase(name, dbID)
}

func (s *syncedCatalog) RenameDBObject(name string, object types.DBObject) error {
	s.Lock()
	defer s.Unlock()
	return s.c.RenameDBObject(name, object)
}

func (s *syncedCatalog) ReassignObjectOwners(name string, oldOwnerIDs []int32, newOwnerID, dbID int32) error {
	s.Lock()
	defer s.Unlock()
	return s.c.ReassignObjectOwners(name, oldOwnerIDs, newOwnerID, dbID)
}

func (s *syncedCatalog) ReassignObjectOwner(name string, key types.DBObjectKey, newOwnerID int32) error {
	s.Lock()
	defer s.Unlock()
	return s.c.ReassignObjectOwner(name, key, newOwnerID)
}
