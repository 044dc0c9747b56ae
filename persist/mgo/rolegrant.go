package mgo

import (
	"context"
	"time"

	"github.com/globalsign/mgo"

	"github.com/catalogdb/grantee/types"
)

// RoleGrantPersister is a types.RoleGrantPersister backed by MongoDB.
type RoleGrantPersister struct {
	*collection
}

// NewRoleGrant uses coll as the backing collection for role-grant edges.
func NewRoleGrant(coll *mgo.Collection, opts ...collectionOption) (*RoleGrantPersister, error) {
	c := &RoleGrantPersister{newCollection(coll)}
	for _, opt := range opts {
		opt(c.collection)
	}
	return c, nil
}

type roleGrantDoc struct {
	ID      string `bson:"_id"`
	Grantee string `bson:"grantee"`
	Role    string `bson:"role"`
}

func roleGrantID(policy types.RoleGrantPolicy) string {
	return policy.Grantee + "#" + policy.Role
}

func (p *RoleGrantPersister) InsertRoleGrant(policy types.RoleGrantPolicy) error {
	ss := p.copySession()
	defer ss.closeSession()

	p.log.V(4).Info("insert role grant", "grantee", policy.Grantee, "role", policy.Role)
	doc := roleGrantDoc{ID: roleGrantID(policy), Grantee: policy.Grantee, Role: policy.Role}
	return parseMgoError(ss.Insert(doc))
}

func (p *RoleGrantPersister) RemoveRoleGrant(policy types.RoleGrantPolicy) error {
	ss := p.copySession()
	defer ss.closeSession()

	p.log.V(4).Info("remove role grant", "grantee", policy.Grantee, "role", policy.Role)
	return parseMgoError(ss.RemoveId(roleGrantID(policy)))
}

func (p *RoleGrantPersister) ListRoleGrants() ([]types.RoleGrantPolicy, error) {
	ss := p.copySession()
	defer ss.closeSession()

	iter := ss.Find(nil).Iter()
	defer iter.Close()

	policies := make([]types.RoleGrantPolicy, 0)
	var doc roleGrantDoc
	for iter.Next(&doc) {
		policies = append(policies, types.RoleGrantPolicy{Grantee: doc.Grantee, Role: doc.Role})
		doc = roleGrantDoc{}
	}
	return policies, iter.Err()
}

type roleGrantChangeEvent struct {
	OperationType changeStreamOperationType `bson:"operationType"`
	FullDocument  roleGrantDoc              `bson:"fullDocument"`
}

func (p *RoleGrantPersister) WatchRoleGrants(ctx context.Context) (<-chan types.RoleGrantPolicyChange, error) {
	changes := make(chan types.RoleGrantPolicyChange)

	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			cs, closer, err := p.connectToWatch()
			if err != nil {
				p.log.Error(err, "connect to watch failed, reconnect later")
				time.Sleep(p.retryTimeout)
				continue
			}

			var event roleGrantChangeEvent
			for cs.Next(&event) {
				var method types.PersistMethod
				switch event.OperationType {
				case opInsert:
					method = types.PersistInsert
				case opDelete:
					method = types.PersistDelete
				default:
					event = roleGrantChangeEvent{}
					continue
				}

				change := types.RoleGrantPolicyChange{
					RoleGrantPolicy: types.RoleGrantPolicy{Grantee: event.FullDocument.Grantee, Role: event.FullDocument.Role},
					Method:          method,
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					closer()
					return
				}
				event = roleGrantChangeEvent{}
			}
			if err := cs.Err(); err != nil {
				p.log.Error(err, "watch stream error, reconnect later")
			}
			closer()
			time.Sleep(p.retryTimeout)
		}
	}()

	return changes, nil
}

// Store bundles the three per-record persisters into a single
// types.CatalogPersister.
type Store struct {
	*PrincipalPersister
	*GrantPersister
	*RoleGrantPersister
}

var _ types.CatalogPersister = (*Store)(nil)

// NewStore opens all three collections under db, named principals, grants,
// and role_grants.
func NewStore(db *mgo.Database, opts ...collectionOption) (*Store, error) {
	principals, err := NewPrincipal(db.C("principals"), opts...)
	if err != nil {
		return nil, err
	}
	grants, err := NewGrant(db.C("grants"), opts...)
	if err != nil {
		return nil, err
	}
	roleGrants, err := NewRoleGrant(db.C("role_grants"), opts...)
	if err != nil {
		return nil, err
	}

	return &Store{PrincipalPersister: principals, GrantPersister: grants, RoleGrantPersister: roleGrants}, nil
}
