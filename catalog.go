// Package grantee implements an in-memory authorization graph for a
// multi-user database: users and roles connected by role-grant edges, each
// carrying a set of privileges on catalog objects. Privileges granted to a
// role are eagerly propagated to every grantee downstream of it, so a
// privilege check never has to walk the graph itself.
package grantee

import (
	"context"
	"log"
	"os"

	"github.com/go-logr/stdr"

	"github.com/catalogdb/grantee/internal/graph"
	"github.com/catalogdb/grantee/types"
)

// New builds a Catalog. With no options it is a bare in-memory graph; add
// WithPersister for durability and WithSuperusers for a privilege-check
// bypass.
func New(ctx context.Context, opts ...Option) (types.Catalog, error) {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.log.GetSink() == nil {
		cfg.log = stdr.New(log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile))
	}

	var c types.Catalog = newSyncedCatalog(graph.New())

	if cfg.persist != nil {
		var err error
		c, err = newPersistedCatalog(ctx, c, cfg.persist, cfg.log)
		if err != nil {
			return nil, err
		}
	}

	if len(cfg.superusers) > 0 {
		c = newSuperuserCatalog(c, cfg.superusers)
	}

	return newObservedCatalog(c), nil
}
