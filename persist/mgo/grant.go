package mgo

import (
	"context"
	"time"

	"github.com/globalsign/mgo"

	"github.com/catalogdb/grantee/types"
)

// GrantPersister is a types.GrantPersister backed by MongoDB. Each document
// is keyed by (grantee, key) so an upsert naturally replaces the prior
// privilege bits for that pair.
type GrantPersister struct {
	*collection
}

// NewGrant uses coll as the backing collection for direct privilege grants.
func NewGrant(coll *mgo.Collection, opts ...collectionOption) (*GrantPersister, error) {
	c := &GrantPersister{newCollection(coll)}
	for _, opt := range opts {
		opt(c.collection)
	}

	ss := c.copySession()
	defer ss.closeSession()
	if err := ss.EnsureIndex(mgo.Index{Key: []string{"grantee", "key"}, Unique: true}); err != nil {
		return nil, err
	}

	return c, nil
}

type grantDoc struct {
	ID         string             `bson:"_id"`
	Grantee    string             `bson:"grantee"`
	Key        types.DBObjectKey  `bson:"key"`
	Name       string             `bson:"name"`
	Owner      int32              `bson:"owner"`
	Privileges types.PrivilegeSet `bson:"privileges"`
}

func grantID(grantee string, key types.DBObjectKey) string {
	return grantee + "#" + key.String()
}

func newGrantDoc(policy types.GrantPolicy) grantDoc {
	return grantDoc{
		ID:         grantID(policy.Grantee, policy.Object.Key),
		Grantee:    policy.Grantee,
		Key:        policy.Object.Key,
		Name:       policy.Object.Name,
		Owner:      policy.Object.Owner,
		Privileges: policy.Object.Privileges,
	}
}

func (d grantDoc) asGrantPolicy() types.GrantPolicy {
	object := types.NewDBObject(d.Key, d.Privileges)
	object.Name = d.Name
	object.Owner = d.Owner
	return types.GrantPolicy{Grantee: d.Grantee, Object: object}
}

func (p *GrantPersister) UpsertGrant(policy types.GrantPolicy) error {
	ss := p.copySession()
	defer ss.closeSession()

	doc := newGrantDoc(policy)
	p.log.V(4).Info("upsert grant", "grantee", policy.Grantee, "key", policy.Object.Key)
	_, err := ss.UpsertId(doc.ID, doc)
	return parseMgoError(err)
}

func (p *GrantPersister) RemoveGrant(grantee string, key types.DBObjectKey) error {
	ss := p.copySession()
	defer ss.closeSession()

	p.log.V(4).Info("remove grant", "grantee", grantee, "key", key)
	return parseMgoError(ss.RemoveId(grantID(grantee, key)))
}

func (p *GrantPersister) ListGrants() ([]types.GrantPolicy, error) {
	ss := p.copySession()
	defer ss.closeSession()

	iter := ss.Find(nil).Iter()
	defer iter.Close()

	policies := make([]types.GrantPolicy, 0)
	var doc grantDoc
	for iter.Next(&doc) {
		policies = append(policies, doc.asGrantPolicy())
		doc = grantDoc{}
	}
	return policies, iter.Err()
}

type grantChangeEvent struct {
	OperationType changeStreamOperationType `bson:"operationType"`
	FullDocument  grantDoc                  `bson:"fullDocument"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
}

func (p *GrantPersister) WatchGrants(ctx context.Context) (<-chan types.GrantPolicyChange, error) {
	changes := make(chan types.GrantPolicyChange)

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

			var event grantChangeEvent
			for cs.Next(&event) {
				var change types.GrantPolicyChange

				switch event.OperationType {
				case opInsert, opUpdate, opReplace:
					change = types.GrantPolicyChange{GrantPolicy: event.FullDocument.asGrantPolicy(), Method: types.PersistUpdate}
				case opDelete:
					change = types.GrantPolicyChange{Method: types.PersistDelete}
				default:
					event = grantChangeEvent{}
					continue
				}

				select {
				case changes <- change:
				case <-ctx.Done():
					closer()
					return
				}
				event = grantChangeEvent{}
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
