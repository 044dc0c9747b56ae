package types

import "strings"

// PrincipalKind distinguishes a User (a terminal grantee; never upstream of
// anything) from a Role (a grantee that may also be granted to other
// grantees). It is the tag of the two-level Grantee/Role variant: the
// hierarchy is exactly two levels, so a tagged enum is preferred over
// embedding or a type switch at every call site.
type PrincipalKind int

const (
	// UserKind marks a terminal grantee.
	UserKind PrincipalKind = iota
	// RoleKind marks a grantee that may also carry downstream grantees.
	RoleKind
)

func (k PrincipalKind) String() string {
	if k == RoleKind {
		return "role"
	}
	return "user"
}

// GranteeRef names a principal together with its kind, e.g. for
// serialization to a persistence backend or a log line.
type GranteeRef struct {
	Name string
	Kind PrincipalKind
}

func (r GranteeRef) String() string {
	return r.Kind.String() + ":" + r.Name
}

// ParseGranteeRef parses a serialized GranteeRef produced by String.
func ParseGranteeRef(s string) (GranteeRef, error) {
	switch {
	case strings.HasPrefix(s, "user:"):
		return GranteeRef{Name: strings.TrimPrefix(s, "user:"), Kind: UserKind}, nil
	case strings.HasPrefix(s, "role:"):
		return GranteeRef{Name: strings.TrimPrefix(s, "role:"), Kind: RoleKind}, nil
	}
	return GranteeRef{}, errInvalidGranteeRef(s)
}

func errInvalidGranteeRef(s string) error {
	return &invalidGranteeRefError{s: s}
}

type invalidGranteeRefError struct{ s string }

func (e *invalidGranteeRefError) Error() string {
	return "invalid grantee reference: " + e.s
}

// CatalogReader exposes the query-side operations of a Catalog, intended to
// be called under a shared (read) lock.
type CatalogReader interface {
	// Exists reports whether name is a registered grantee (user or role).
	Exists(name string) bool

	// CheckPrivileges reports whether the named grantee's effective
	// privileges dominate req's privilege bits, promoting from the exact
	// key to database-wide and then global wildcards.
	CheckPrivileges(name string, req DBObject) (bool, error)

	// HasAnyPrivileges reports whether the named grantee holds any
	// privilege at all on req's key or a wildcard promotion of it.
	// onlyDirect selects direct vs. effective privileges.
	HasAnyPrivileges(name string, req DBObject, onlyDirect bool) (bool, error)

	// HasAnyPrivilegesOnDB reports whether the named grantee holds any
	// non-empty privilege record whose key's DBID matches dbID.
	HasAnyPrivilegesOnDB(name string, dbID int32, onlyDirect bool) (bool, error)

	// GetPrivileges finds the exact-key record for the named grantee. It
	// never promotes to a wildcard key.
	GetPrivileges(name string, key DBObjectKey, onlyDirect bool) (DBObject, error)

	// GetRoles returns role names visible from the named grantee: direct
	// roles, or (if onlyDirect is false) the transitive closure, sorted.
	GetRoles(name string, onlyDirect bool) ([]string, error)

	// HasRole reports whether role is reachable from name, directly or (if
	// onlyDirect is false) transitively via upstream roles.
	HasRole(name, role string, onlyDirect bool) (bool, error)
}

// CatalogWriter exposes the mutating operations of a Catalog, intended to be
// called under an exclusive (write) lock. Every method here must appear
// atomic to observers, including any downstream propagation it triggers.
type CatalogWriter interface {
	// CreateUser registers a new terminal grantee under name.
	CreateUser(name string) error
	// CreateRole registers a new role under name.
	CreateRole(name string) error
	// DropGrantee removes name and detaches it from the graph: from every
	// upstream role's downstream set, and (if it is a role) by revoking it
	// from every downstream grantee first.
	DropGrantee(name string) error

	// GrantPrivileges merges object's privileges into name's direct and
	// effective records, then recomputes (and, if name is a role,
	// propagates to its downstream grantees).
	GrantPrivileges(name string, object DBObject) error
	// RevokePrivileges subtracts object's privileges from name's direct
	// record, recomputes, and returns the still-live direct record, or nil
	// if the record was fully removed.
	RevokePrivileges(name string, object DBObject) (*DBObject, error)

	// GrantRole adds role to name's upstream roles, after a cycle check.
	GrantRole(name, role string) error
	// RevokeRole removes role from name's upstream roles. It returns
	// ErrNotGranted if the edge is absent.
	RevokeRole(name, role string) error

	// RevokeAllOnDatabase erases every privilege record (direct and
	// effective) scoped to dbID from name, recomputes, and (if name is a
	// role) cascades the same purge to its downstream grantees.
	RevokeAllOnDatabase(name string, dbID int32) error
	// RenameDBObject rewrites the name field of any record matching
	// object.Key, in both maps, cascading to downstream grantees if name
	// is a role.
	RenameDBObject(name string, object DBObject) error
	// ReassignObjectOwners reassigns ownership of every object-scoped
	// record under dbID currently owned by one of oldOwnerIDs to
	// newOwnerID, leaving privilege bits untouched.
	ReassignObjectOwners(name string, oldOwnerIDs []int32, newOwnerID int32, dbID int32) error
	// ReassignObjectOwner reassigns ownership of the record matching key
	// exactly to newOwnerID.
	ReassignObjectOwner(name string, key DBObjectKey, newOwnerID int32) error
}

// Catalog is the full read/write surface of the grantee graph registry.
type Catalog interface {
	CatalogReader
	CatalogWriter
}
