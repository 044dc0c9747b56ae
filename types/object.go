package types

// DBObject is a record of a claim of rights on an addressable catalog
// object: a key, a human-readable name, an owning principal id, and the
// privilege bits granted. name and owner are metadata, not governed by the
// privilege bits themselves.
type DBObject struct {
	Key        DBObjectKey
	Name       string
	Owner      int32
	Privileges PrivilegeSet
}

// NewDBObject builds a DBObject; Name and Owner may be filled in later via
// the setters below, since a bare grant often only specifies a key and
// privilege bits.
func NewDBObject(key DBObjectKey, privileges PrivilegeSet) DBObject {
	return DBObject{Key: key, Privileges: privileges}
}

// GrantPrivileges merges other's privileges into this object: OR-in.
func (o *DBObject) GrantPrivileges(other DBObject) {
	o.Privileges = o.Privileges.Union(other.Privileges)
}

// RevokePrivileges removes other's privileges from this object: AND-NOT.
func (o *DBObject) RevokePrivileges(other DBObject) {
	o.Privileges = o.Privileges.Subtract(other.Privileges)
}

// UpdatePrivileges has the same effect as GrantPrivileges; it exists as a
// distinct name because recompute (the core's eager propagation routine)
// uses it to mean "merge in a contribution", as opposed to a caller-facing
// grant.
func (o *DBObject) UpdatePrivileges(other DBObject) {
	o.GrantPrivileges(other)
}

// ResetPrivileges clears every privilege bit, leaving key/name/owner intact.
func (o *DBObject) ResetPrivileges() {
	o.Privileges = NoPrivileges
}

// HasAnyPrivileges reports whether the object carries any privilege bit.
func (o *DBObject) HasAnyPrivileges() bool {
	return o.Privileges.HasAny()
}

// SetName rewrites the object's display name in place.
func (o *DBObject) SetName(name string) {
	o.Name = name
}

// SetOwner rewrites the object's owning principal id in place.
func (o *DBObject) SetOwner(owner int32) {
	o.Owner = owner
}
