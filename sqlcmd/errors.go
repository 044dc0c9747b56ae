package sqlcmd

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

func errUnsupportedStatement(stmt *pg_query.Node) error {
	return fmt.Errorf("sqlcmd: unsupported statement: %T", stmt.Node)
}

func errUnknownPrivilege(name string) error {
	return fmt.Errorf("sqlcmd: unknown privilege %q", name)
}

func errUnknownObjectType(objectType string) error {
	return fmt.Errorf("sqlcmd: unknown object type %q", objectType)
}

func errUnknownObject(name string) error {
	return fmt.Errorf("sqlcmd: unknown object %q", name)
}
