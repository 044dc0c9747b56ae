package types

import "fmt"

// Wildcard is the sentinel value meaning "any" at a given level of a DBObjectKey.
const Wildcard int32 = -1

// ObjectType distinguishes the kind of catalog object a DBObjectKey addresses,
// e.g. a table, a view, a database itself. The core treats it as an opaque
// ordinal; callers are free to define their own enumeration.
type ObjectType int32

// DBObjectKey identifies a protected object at one of three granularities:
//
//	(d, o, t)  - a specific object of type t in database d
//	(d, -1, t) - all objects of type t in database d
//	(-1, -1, t) - all objects of type t across all databases
//
// Keys are hashable (comparable struct, usable as a map key directly) and
// totally ordered lexicographically by (DBID, ObjectID, ObjectType).
type DBObjectKey struct {
	DBID       int32
	ObjectID   int32
	ObjectType ObjectType
}

// DatabaseWide returns the key that widens this key to "all objects of this
// type in this database" by resetting ObjectID to the wildcard.
func (k DBObjectKey) DatabaseWide() DBObjectKey {
	return DBObjectKey{DBID: k.DBID, ObjectID: Wildcard, ObjectType: k.ObjectType}
}

// Global returns the key that widens this key to "all objects of this type
// in any database" by resetting both DBID and ObjectID to the wildcard.
func (k DBObjectKey) Global() DBObjectKey {
	return DBObjectKey{DBID: Wildcard, ObjectID: Wildcard, ObjectType: k.ObjectType}
}

// Less reports whether k sorts before other under lexicographic order on
// (DBID, ObjectID, ObjectType).
func (k DBObjectKey) Less(other DBObjectKey) bool {
	if k.DBID != other.DBID {
		return k.DBID < other.DBID
	}
	if k.ObjectID != other.ObjectID {
		return k.ObjectID < other.ObjectID
	}
	return k.ObjectType < other.ObjectType
}

func (k DBObjectKey) String() string {
	return fmt.Sprintf("(db=%d,obj=%d,type=%d)", k.DBID, k.ObjectID, k.ObjectType)
}
