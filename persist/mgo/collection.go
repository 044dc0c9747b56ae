// Package mgo persists the catalog to MongoDB via globalsign/mgo, watching
// change streams so out-of-process writes reach every process's in-memory
// graph. It is its own Go module (see go.mod) so that pulling in mgo's
// dependency tree is opt-in for callers who don't need this backend.
package mgo

import (
	"time"

	"github.com/globalsign/mgo"
	"github.com/go-logr/logr"
)

const defaultRetryTimeout = time.Second

type collection struct {
	*mgo.Collection
	log          logr.Logger
	retryTimeout time.Duration
}

func newCollection(coll *mgo.Collection) *collection {
	return &collection{Collection: coll, log: logr.Discard(), retryTimeout: defaultRetryTimeout}
}

// collectionOption configures a persister backed by a mongo collection.
type collectionOption func(*collection)

// WithLogger attaches l to a persister for its diagnostic V-leveled logging.
func WithLogger(l logr.Logger) collectionOption {
	return func(c *collection) { c.log = l }
}

// SetRetryTimeout controls how long a persister waits before reconnecting a
// dropped change stream.
func SetRetryTimeout(d time.Duration) collectionOption {
	return func(c *collection) { c.retryTimeout = d }
}

func (c *collection) copySession() *collection {
	db := c.Database
	cp := *c
	cp.Collection = db.Session.Copy().DB(db.Name).C(c.Name)
	return &cp
}

func (c *collection) closeSession() {
	c.Database.Session.Close()
}

// connectToWatch opens a change stream, returning a closer that releases
// the session copy it made.
func (c *collection) connectToWatch() (*mgo.ChangeStream, func(), error) {
	ss := c.copySession()
	cs, err := ss.Watch(nil, mgo.ChangeStreamOptions{FullDocument: mgo.UpdateLookup})
	if err != nil {
		ss.closeSession()
		return nil, nil, err
	}
	return cs, func() {
		cs.Close()
		ss.closeSession()
	}, nil
}

func parseMgoError(err error) error {
	if err == mgo.ErrNotFound {
		return nil
	}
	return err
}

type changeStreamOperationType string

const (
	opInsert  changeStreamOperationType = "insert"
	opDelete  changeStreamOperationType = "delete"
	opUpdate  changeStreamOperationType = "update"
	opReplace changeStreamOperationType = "replace"
)
