package mgo

import (
	"context"
	"time"

	"github.com/globalsign/mgo"

	"github.com/catalogdb/grantee/types"
)

// PrincipalPersister is a types.PrincipalPersister backed by MongoDB.
type PrincipalPersister struct {
	*collection
}

// NewPrincipal uses coll as the backing collection for registered grantees.
func NewPrincipal(coll *mgo.Collection, opts ...collectionOption) (*PrincipalPersister, error) {
	c := &PrincipalPersister{newCollection(coll)}
	for _, opt := range opts {
		opt(c.collection)
	}
	return c, nil
}

type principalDoc struct {
	Name string             `bson:"_id"`
	Kind types.PrincipalKind `bson:"kind"`
}

func (p *PrincipalPersister) InsertPrincipal(policy types.PrincipalPolicy) error {
	ss := p.copySession()
	defer ss.closeSession()

	p.log.V(4).Info("insert principal", "name", policy.Name, "kind", policy.Kind)
	return parseMgoError(ss.Insert(principalDoc{Name: policy.Name, Kind: policy.Kind}))
}

func (p *PrincipalPersister) RemovePrincipal(name string) error {
	ss := p.copySession()
	defer ss.closeSession()

	p.log.V(4).Info("remove principal", "name", name)
	return parseMgoError(ss.RemoveId(name))
}

func (p *PrincipalPersister) ListPrincipals() ([]types.PrincipalPolicy, error) {
	ss := p.copySession()
	defer ss.closeSession()

	iter := ss.Find(nil).Iter()
	defer iter.Close()

	policies := make([]types.PrincipalPolicy, 0)
	var doc principalDoc
	for iter.Next(&doc) {
		policies = append(policies, types.PrincipalPolicy{Name: doc.Name, Kind: doc.Kind})
	}
	return policies, iter.Err()
}

type principalChangeEvent struct {
	OperationType changeStreamOperationType `bson:"operationType"`
	FullDocument  principalDoc              `bson:"fullDocument"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
}

func (p *PrincipalPersister) WatchPrincipals(ctx context.Context) (<-chan types.PrincipalPolicyChange, error) {
	changes := make(chan types.PrincipalPolicyChange)

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

			var event principalChangeEvent
			for cs.Next(&event) {
				switch event.OperationType {
				case opInsert:
					select {
					case changes <- types.PrincipalPolicyChange{
						PrincipalPolicy: types.PrincipalPolicy{Name: event.FullDocument.Name, Kind: event.FullDocument.Kind},
						Method:          types.PersistInsert,
					}:
					case <-ctx.Done():
						closer()
						return
					}
				case opDelete:
					select {
					case changes <- types.PrincipalPolicyChange{
						PrincipalPolicy: types.PrincipalPolicy{Name: event.DocumentKey.ID},
						Method:          types.PersistDelete,
					}:
					case <-ctx.Done():
						closer()
						return
					}
				}
				event = principalChangeEvent{}
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
