package sqlcmd_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/catalogdb/grantee/internal/graph"
	"github.com/catalogdb/grantee/sqlcmd"
	"github.com/catalogdb/grantee/types"
)

func TestSqlcmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "sqlcmd")
}

var _ = Describe("GRANT/REVOKE translation", func() {
	var (
		catalog  *graph.Catalog
		resolver *sqlcmd.StaticResolver
		tr       *sqlcmd.Translator
	)

	BeforeEach(func() {
		catalog = graph.New()
		Expect(catalog.CreateUser("alice")).To(Succeed())
		Expect(catalog.CreateRole("reader")).To(Succeed())

		resolver = sqlcmd.NewStaticResolver(1,
			map[string]types.ObjectType{"table": 0},
			map[string]int32{"orders": 7})
		tr = sqlcmd.New(catalog, resolver)
	})

	It("grants a table privilege to a principal", func() {
		Expect(tr.Exec(`GRANT SELECT ON TABLE orders TO alice`)).To(Succeed())

		ok, err := catalog.CheckPrivileges("alice", types.NewDBObject(
			types.DBObjectKey{DBID: 1, ObjectID: 7, ObjectType: 0}, types.Select))
		Expect(err).To(Succeed())
		Expect(ok).To(BeTrue())
	})

	It("revokes a table privilege from a principal", func() {
		Expect(tr.Exec(`GRANT SELECT, INSERT ON TABLE orders TO alice`)).To(Succeed())
		Expect(tr.Exec(`REVOKE SELECT ON TABLE orders FROM alice`)).To(Succeed())

		key := types.DBObjectKey{DBID: 1, ObjectID: 7, ObjectType: 0}
		ok, err := catalog.CheckPrivileges("alice", types.NewDBObject(key, types.Select))
		Expect(err).To(Succeed())
		Expect(ok).To(BeFalse())

		ok, err = catalog.CheckPrivileges("alice", types.NewDBObject(key, types.Insert))
		Expect(err).To(Succeed())
		Expect(ok).To(BeTrue())
	})

	It("grants and revokes a role membership", func() {
		Expect(tr.Exec(`GRANT reader TO alice`)).To(Succeed())

		hasRole, err := catalog.HasRole("alice", "reader", true)
		Expect(err).To(Succeed())
		Expect(hasRole).To(BeTrue())

		Expect(tr.Exec(`REVOKE reader FROM alice`)).To(Succeed())
		hasRole, err = catalog.HasRole("alice", "reader", true)
		Expect(err).To(Succeed())
		Expect(hasRole).To(BeFalse())
	})

	It("rejects an unknown privilege name", func() {
		err := tr.Exec(`GRANT EXECUTE ON TABLE orders TO alice`)
		Expect(err).To(HaveOccurred())
	})
})
