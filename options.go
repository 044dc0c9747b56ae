package grantee

import (
	"github.com/go-logr/logr"

	"github.com/catalogdb/grantee/types"
)

// Config controls how New builds a Catalog.
type Config struct {
	persist    types.CatalogPersister
	superusers []string
	log        logr.Logger
}

// Option configures a Catalog at construction time.
type Option func(*Config)

// WithPersister makes the catalog durable: policies are replayed from p at
// startup, and principal, grant and role-grant mutations are written to p.
// Each is written before it takes effect in memory, except RevokePrivileges,
// which writes the remaining record after the in-memory revoke. The bulk
// operations (RevokeAllOnDatabase, RenameDBObject, ReassignObjectOwners,
// ReassignObjectOwner) are not written to p. Without this option the
// catalog is purely in-memory and every grant is lost on restart.
func WithPersister(p types.CatalogPersister) Option {
	return func(cfg *Config) {
		cfg.persist = p
	}
}

// WithSuperusers names grantees that bypass every privilege check.
func WithSuperusers(names ...string) Option {
	return func(cfg *Config) {
		cfg.superusers = append(cfg.superusers, names...)
	}
}

// WithLogger attaches l for the catalog's diagnostic V-leveled logging.
func WithLogger(l logr.Logger) Option {
	return func(cfg *Config) {
		cfg.log = l
	}
}
