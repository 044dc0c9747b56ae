package grantee

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/catalogdb/grantee/types"
)

var (
	mutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grantee",
		Name:      "mutations_total",
		Help:      "Count of Catalog mutating calls, by operation and outcome.",
	}, []string{"operation", "outcome"})

	checksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grantee",
		Name:      "privilege_checks_total",
		Help:      "Count of CheckPrivileges calls, by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(mutationsTotal, checksTotal)
}

var _ types.Catalog = (*observedCatalog)(nil)

// observedCatalog records Prometheus counters around an inner Catalog's
// mutating calls and privilege checks. It changes nothing about behavior or
// error values; every method just forwards, then records.
type observedCatalog struct {
	types.Catalog
}

func newObservedCatalog(inner types.Catalog) *observedCatalog {
	return &observedCatalog{Catalog: inner}
}

func observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	mutationsTotal.WithLabelValues(operation, outcome).Inc()
}

func (c *observedCatalog) CheckPrivileges(name string, req types.DBObject) (bool, error) {
	ok, err := c.Catalog.CheckPrivileges(name, req)
	result := "denied"
	if err != nil {
		result = "error"
	} else if ok {
		result = "allowed"
	}
	checksTotal.WithLabelValues(result).Inc()
	return ok, err
}

func (c *observedCatalog) CreateUser(name string) error {
	err := c.Catalog.CreateUser(name)
	observe("create_user", err)
	return err
}

func (c *observedCatalog) CreateRole(name string) error {
	err := c.Catalog.CreateRole(name)
	observe("create_role", err)
	return err
}

func (c *observedCatalog) DropGrantee(name string) error {
	err := c.Catalog.DropGrantee(name)
	observe("drop_grantee", err)
	return err
}

func (c *observedCatalog) GrantPrivileges(name string, object types.DBObject) error {
	err := c.Catalog.GrantPrivileges(name, object)
	observe("grant_privileges", err)
	return err
}

func (c *observedCatalog) RevokePrivileges(name string, object types.DBObject) (*types.DBObject, error) {
	remaining, err := c.Catalog.RevokePrivileges(name, object)
	observe("revoke_privileges", err)
	return remaining, err
}

func (c *observedCatalog) GrantRole(name, role string) error {
	err := c.Catalog.GrantRole(name, role)
	observe("grant_role", err)
	return err
}

func (c *observedCatalog) RevokeRole(name, role string) error {
	err := c.Catalog.RevokeRole(name, role)
	observe("revoke_role", err)
	return err
}

func (c *observedCatalog) RevokeAllOnDatabase(name string, dbID int32) error {
	err := c.Catalog.RevokeAllOnDatabase(name, dbID)
	observe("revoke_all_on_database", err)
	return err
}

func (c *observedCatalog) RenameDBObject(name string, object types.DBObject) error {
	err := c.Catalog.RenameDBObject(name, object)
	observe("rename_db_object", err)
	return err
}

func (c *observedCatalog) ReassignObjectOwners(name string, oldOwnerIDs []int32, newOwnerID, dbID int32) error {
	err := c.Catalog.ReassignObjectOwners(name, oldOwnerIDs, newOwnerID, dbID)
	observe("reassign_object_owners", err)
	return err
}

func (c *observedCatalog) ReassignObjectOwner(name string, key types.DBObjectKey, newOwnerID int32) error {
	err := c.Catalog.ReassignObjectOwner(name, key, newOwnerID)
	observe("reassign_object_owner", err)
	return err
}
