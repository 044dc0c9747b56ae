package sqlcmd

import "github.com/catalogdb/grantee/types"

// StaticResolver is an ObjectResolver over a fixed name->key table, useful
// for tests and small deployments that don't maintain their own catalog of
// object ids. Production callers backed by a real object catalog should
// supply their own ObjectResolver instead.
type StaticResolver struct {
	objectTypes map[string]types.ObjectType
	objects     map[string]int32
	dbID        int32
}

// NewStaticResolver builds a resolver scoped to a single database id,
// mapping object-type keywords to ordinals and object names to ids.
func NewStaticResolver(dbID int32, objectTypes map[string]types.ObjectType, objects map[string]int32) *StaticResolver {
	return &StaticResolver{objectTypes: objectTypes, objects: objects, dbID: dbID}
}

func (r *StaticResolver) Resolve(objectType, name string) (types.DBObjectKey, error) {
	t, ok := r.objectTypes[objectType]
	if !ok {
		return types.DBObjectKey{}, errUnknownObjectType(objectType)
	}
	id, ok := r.objects[name]
	if !ok {
		return types.DBObjectKey{}, errUnknownObject(name)
	}
	return types.DBObjectKey{DBID: r.dbID, ObjectID: id, ObjectType: t}, nil
}
