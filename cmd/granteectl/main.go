// Command granteectl is a small demonstration CLI over the grantee catalog:
// it loads a catalog from a persistence backend, applies GRANT/REVOKE
// statements through sqlcmd, and reports checkPrivileges results.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/catalogdb/grantee"
	"github.com/catalogdb/grantee/persist/fake"
	"github.com/catalogdb/grantee/persist/sqlite"
	"github.com/catalogdb/grantee/types"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "granteectl",
		Short: "Inspect and mutate a grantee authorization graph",
	}
	cmd.AddCommand(newExecCmd(), newCheckCmd(), newInitCmd(), newCreateCmd())
	return cmd
}

// openCatalog loads config, builds the configured persister, and returns a
// ready catalog plus a cleanup func the caller must run before exiting.
func openCatalog(ctx context.Context) (types.Catalog, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, closeLog := newLogger(cfg.Log)

	var persist types.CatalogPersister
	var closeStore func() error
	switch cfg.Store.Driver {
	case "sqlite":
		store, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			closeLog()
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		persist = store
		closeStore = store.Close
	case "fake":
		persist = fake.New(ctx)
	default:
		closeLog()
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	catalog, err := grantee.New(ctx,
		grantee.WithPersister(persist),
		grantee.WithSuperusers(cfg.Superusers...),
		grantee.WithLogger(logger))
	if err != nil {
		closeLog()
		if closeStore != nil {
			closeStore()
		}
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}

	cleanup := func() {
		closeLog()
		if closeStore != nil {
			closeStore()
		}
	}
	return catalog, cleanup, nil
}
