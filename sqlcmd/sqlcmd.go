// Package sqlcmd parses the GRANT/REVOKE surface described for this module
// and translates each parsed statement into calls on a types.Catalog. It
// sits at the boundary the core graph package never touches directly: the
// core accepts Go calls, never SQL text.
package sqlcmd

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/catalogdb/grantee/types"
)

// ObjectResolver maps the object-type keyword and name a GRANT/REVOKE
// statement names (e.g. "table", "orders") to the DBObjectKey the core
// graph addresses it by. sqlcmd has no catalog of its own objects — that
// belongs to the surrounding database, not this module — so callers supply
// their own resolver.
type ObjectResolver interface {
	Resolve(objectType, name string) (types.DBObjectKey, error)
}

// Translator parses statements and applies them to a Catalog.
type Translator struct {
	catalog  types.Catalog
	resolver ObjectResolver
}

// New builds a Translator that applies parsed statements to catalog,
// resolving object names via resolver.
func New(catalog types.Catalog, resolver ObjectResolver) *Translator {
	return &Translator{catalog: catalog, resolver: resolver}
}

// Exec parses sql (which may hold multiple ;-separated statements) and
// applies each GRANT/REVOKE statement it contains, in order. A statement
// this package doesn't recognize is an error, not a silent no-op.
func (t *Translator) Exec(sql string) error {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return err
	}

	for _, raw := range result.Stmts {
		if raw.Stmt == nil {
			continue
		}
		if err := t.execOne(raw.Stmt); err != nil {
			return err
		}
	}
	return nil
}

func (t *Translator) execOne(stmt *pg_query.Node) error {
	if grant := stmt.GetGrantStmt(); grant != nil {
		return t.execGrantStmt(grant)
	}
	if grantRole := stmt.GetGrantRoleStmt(); grantRole != nil {
		return t.execGrantRoleStmt(grantRole)
	}
	return errUnsupportedStatement(stmt)
}

// execGrantStmt handles:
//
//	GRANT <priv_list> ON <object_type> <name> TO <principal_list>
//	REVOKE <priv_list> ON <object_type> <name> FROM <principal_list>
func (t *Translator) execGrantStmt(stmt *pg_query.GrantStmt) error {
	objectType := objectTypeKeyword(stmt.Objtype)

	privileges, err := parsePrivileges(stmt.Privileges)
	if err != nil {
		return err
	}

	grantees := granteeNames(stmt.Grantees)

	for _, objectNode := range stmt.Objects {
		name := objectName(objectNode)
		key, err := t.resolver.Resolve(objectType, name)
		if err != nil {
			return err
		}

		object := types.NewDBObject(key, privileges)
		object.SetName(name)

		for _, grantee := range grantees {
			if stmt.IsGrant {
				if err := t.catalog.GrantPrivileges(grantee, object); err != nil {
					return err
				}
				continue
			}
			if _, err := t.catalog.RevokePrivileges(grantee, object); err != nil {
				return err
			}
		}
	}

	return nil
}

// execGrantRoleStmt handles:
//
//	GRANT <role_list> TO <principal_list>
//	REVOKE <role_list> FROM <principal_list>
func (t *Translator) execGrantRoleStmt(stmt *pg_query.GrantRoleStmt) error {
	// the grammar records granted roles as AccessPriv nodes (the role name
	// in PrivName), not RoleSpec nodes like the grantee list
	roles := make([]string, 0, len(stmt.GrantedRoles))
	for _, n := range stmt.GrantedRoles {
		if priv := n.GetAccessPriv(); priv != nil {
			roles = append(roles, priv.PrivName)
		}
	}
	grantees := roleSpecNames(stmt.GranteeRoles)

	for _, grantee := range grantees {
		for _, role := range roles {
			if stmt.IsGrant {
				if err := t.catalog.GrantRole(grantee, role); err != nil {
					return err
				}
				continue
			}
			if err := t.catalog.RevokeRole(grantee, role); err != nil {
				return err
			}
		}
	}

	return nil
}

func parsePrivileges(nodes []*pg_query.Node) (types.PrivilegeSet, error) {
	var privileges types.PrivilegeSet
	for _, n := range nodes {
		priv := n.GetAccessPriv()
		if priv == nil {
			continue
		}
		flag, ok := types.LookupPrivilege(strings.ToLower(priv.PrivName))
		if !ok {
			return types.NoPrivileges, errUnknownPrivilege(priv.PrivName)
		}
		privileges = privileges.Union(flag)
	}
	return privileges, nil
}

func granteeNames(nodes []*pg_query.Node) []string {
	return roleSpecNames(nodes)
}

func roleSpecNames(nodes []*pg_query.Node) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if role := n.GetRoleSpec(); role != nil {
			names = append(names, role.Rolename)
		}
	}
	return names
}

func objectName(n *pg_query.Node) string {
	if rv := n.GetRangeVar(); rv != nil {
		return rv.Relname
	}
	if s := n.GetString_(); s != nil {
		return s.Sval
	}
	return ""
}

// objectTypeKeyword lowercases the grammar's ObjectType enum name into the
// bare keyword a resolver expects, e.g. OBJECT_TABLE -> "table".
func objectTypeKeyword(t pg_query.ObjectType) string {
	name := strings.TrimPrefix(t.String(), "OBJECT_")
	return strings.ToLower(name)
}
