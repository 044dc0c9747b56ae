package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/catalogdb/grantee/sqlcmd"
	"github.com/catalogdb/grantee/types"
)

func newExecCmd() *cobra.Command {
	var dbID int32
	var objectTypes map[string]string // keyword -> ordinal, as strings for the flag parser
	var objects map[string]string     // name -> ordinal id, as strings for the flag parser

	cmd := &cobra.Command{
		Use:   "exec <statement>",
		Short: "Parse and apply a GRANT/REVOKE statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			catalog, cleanup, err := openCatalog(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			resolver, err := buildResolver(dbID, objectTypes, objects)
			if err != nil {
				return err
			}

			return sqlcmd.New(catalog, resolver).Exec(args[0])
		},
	}

	cmd.Flags().Int32Var(&dbID, "db", 0, "database id object names are scoped to")
	cmd.Flags().StringToStringVar(&objectTypes, "object-type", nil,
		"object type keyword to ordinal mapping, e.g. table=0")
	cmd.Flags().StringToStringVar(&objects, "object", nil,
		"object name to id mapping, e.g. orders=7")
	return cmd
}

func buildResolver(dbID int32, objectTypes, objects map[string]string) (*sqlcmd.StaticResolver, error) {
	types_ := make(map[string]types.ObjectType, len(objectTypes))
	for keyword, ordinal := range objectTypes {
		n, err := strconv.Atoi(ordinal)
		if err != nil {
			return nil, err
		}
		types_[keyword] = types.ObjectType(n)
	}

	ids := make(map[string]int32, len(objects))
	for name, ordinal := range objects {
		n, err := strconv.Atoi(ordinal)
		if err != nil {
			return nil, err
		}
		ids[name] = int32(n)
	}

	return sqlcmd.NewStaticResolver(dbID, types_, ids), nil
}
