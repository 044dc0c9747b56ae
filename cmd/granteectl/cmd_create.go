package main

import (
	"github.com/spf13/cobra"

	"github.com/catalogdb/grantee/types"
)

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <kind:name>",
		Short: "Register a new grantee, e.g. user:alice or role:admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := types.ParseGranteeRef(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			catalog, cleanup, err := openCatalog(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if ref.Kind == types.RoleKind {
				return catalog.CreateRole(ref.Name)
			}
			return catalog.CreateUser(ref.Name)
		},
	}
	return cmd
}
