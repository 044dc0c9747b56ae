package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catalogdb/grantee/types"
)

func newCheckCmd() *cobra.Command {
	var dbID, objectID, objectType int32
	var privilege string

	cmd := &cobra.Command{
		Use:   "check <principal>",
		Short: "Report whether a principal's effective privileges dominate a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			catalog, cleanup, err := openCatalog(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			flag, ok := types.LookupPrivilege(privilege)
			if !ok {
				return fmt.Errorf("unknown privilege %q", privilege)
			}

			key := types.DBObjectKey{DBID: dbID, ObjectID: objectID, ObjectType: types.ObjectType(objectType)}
			ok, err = catalog.CheckPrivileges(args[0], types.NewDBObject(key, flag))
			if err != nil {
				return err
			}

			fmt.Println(ok)
			return nil
		},
	}

	cmd.Flags().Int32Var(&dbID, "db", 0, "database id")
	cmd.Flags().Int32Var(&objectID, "object", 0, "object id")
	cmd.Flags().Int32Var(&objectType, "object-type", 0, "object type ordinal")
	cmd.Flags().StringVar(&privilege, "privilege", "select", "privilege name to check")
	return cmd
}
