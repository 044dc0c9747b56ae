package graph

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/catalogdb/grantee/types"
)

func TestGraph(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "grantee graph test suit")
}

func table(dbID, objID int32, typ types.ObjectType) types.DBObjectKey {
	return types.DBObjectKey{DBID: dbID, ObjectID: objID, ObjectType: typ}
}

func grant(key types.DBObjectKey, privs types.PrivilegeSet) types.DBObject {
	return types.NewDBObject(key, privs)
}

var _ = Describe("grantee graph", func() {
	var c *Catalog

	BeforeEach(func() {
		c = New()
	})

	It("cumulative grant: direct plus inherited union (S1)", func() {
		Expect(c.CreateRole("r1")).To(Succeed())
		Expect(c.CreateUser("u")).To(Succeed())

		key := table(1, 100, 0)
		Expect(c.GrantPrivileges("r1", grant(key, types.Select))).To(Succeed())
		Expect(c.GrantPrivileges("u", grant(key, types.Insert))).To(Succeed())
		Expect(c.GrantRole("u", "r1")).To(Succeed())

		ok, err := c.CheckPrivileges("u", grant(key, types.Select.Union(types.Insert)))
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("propagates through a role chain and stops on revoke (S2)", func() {
		for _, name := range []string{"r1", "r2", "r3"} {
			Expect(c.CreateRole(name)).To(Succeed())
		}
		Expect(c.CreateUser("u")).To(Succeed())

		Expect(c.GrantRole("r2", "r1")).To(Succeed())
		Expect(c.GrantRole("r3", "r2")).To(Succeed())
		Expect(c.GrantRole("u", "r3")).To(Succeed())

		key := table(1, 50, 0)
		Expect(c.GrantPrivileges("r1", grant(key, types.Select))).To(Succeed())

		ok, err := c.CheckPrivileges("u", grant(key, types.Select))
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		Expect(c.RevokeRole("u", "r3")).To(Succeed())
		ok, err = c.CheckPrivileges("u", grant(key, types.Select))
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("rejects a role grant that would close a cycle (S3)", func() {
		for _, name := range []string{"r1", "r2", "r3"} {
			Expect(c.CreateRole(name)).To(Succeed())
		}
		Expect(c.GrantRole("r2", "r1")).To(Succeed())
		Expect(c.GrantRole("r3", "r2")).To(Succeed())

		err := c.GrantRole("r1", "r3")
		Expect(err).To(HaveOccurred())
		kind, ok := types.Classify(err)
		Expect(ok).To(BeTrue())
		Expect(kind).To(Equal(types.KindCycleDetected))
	})

	It("dominates requests via database-wide wildcard promotion (S4)", func() {
		Expect(c.CreateUser("u")).To(Succeed())
		wildcard := table(7, types.Wildcard, 0)
		Expect(c.GrantPrivileges("u", grant(wildcard, types.Select))).To(Succeed())

		ok, err := c.CheckPrivileges("u", grant(table(7, 42, 0), types.Select))
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		ok, err = c.CheckPrivileges("u", grant(table(8, 42, 0), types.Select))
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("keeps inherited privileges live after a revoke with shared provenance (S5)", func() {
		Expect(c.CreateRole("r1")).To(Succeed())
		Expect(c.CreateUser("u")).To(Succeed())

		key := table(1, 9, 0)
		Expect(c.GrantPrivileges("r1", grant(key, types.Select.Union(types.Insert)))).To(Succeed())
		Expect(c.GrantRole("u", "r1")).To(Succeed())
		Expect(c.GrantPrivileges("u", grant(key, types.Insert))).To(Succeed())

		_, err := c.RevokePrivileges("u", grant(key, types.Insert))
		Expect(err).NotTo(HaveOccurred())

		ok, err := c.CheckPrivileges("u", grant(key, types.Select.Union(types.Insert)))
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		_, err = c.GetPrivileges("u", key, true)
		Expect(err).To(HaveOccurred())
		kind, _ := types.Classify(err)
		Expect(kind).To(Equal(types.KindNoPrivileges))
	})

	It("cascades revokeAllOnDatabase to downstream grantees (S6)", func() {
		Expect(c.CreateRole("r1")).To(Succeed())
		Expect(c.CreateUser("u")).To(Succeed())
		Expect(c.GrantRole("u", "r1")).To(Succeed())

		keyDB3 := table(3, 1, 0)
		keyDB4 := table(4, 1, 0)
		Expect(c.GrantPrivileges("r1", grant(keyDB3, types.Select))).To(Succeed())
		Expect(c.GrantPrivileges("r1", grant(keyDB4, types.Select))).To(Succeed())

		Expect(c.RevokeAllOnDatabase("r1", 3)).To(Succeed())

		ok, err := c.HasAnyPrivilegesOnDB("u", 3, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		ok, err = c.HasAnyPrivilegesOnDB("u", 4, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("revokes privileges exactly on an isolated node (P6)", func() {
		Expect(c.CreateUser("u")).To(Succeed())
		key := table(1, 1, 0)
		before, err := c.HasAnyPrivileges("u", grant(key, types.Select), true)
		Expect(err).NotTo(HaveOccurred())
		Expect(before).To(BeFalse())

		Expect(c.GrantPrivileges("u", grant(key, types.Select))).To(Succeed())
		_, err = c.RevokePrivileges("u", grant(key, types.Select))
		Expect(err).NotTo(HaveOccurred())

		after, err := c.HasAnyPrivileges("u", grant(key, types.Select), true)
		Expect(err).NotTo(HaveOccurred())
		Expect(after).To(BeFalse())
	})

	It("rejects AlreadyGranted on a duplicate role grant", func() {
		Expect(c.CreateRole("r1")).To(Succeed())
		Expect(c.CreateUser("u")).To(Succeed())
		Expect(c.GrantRole("u", "r1")).To(Succeed())

		err := c.GrantRole("u", "r1")
		Expect(err).To(HaveOccurred())
		kind, _ := types.Classify(err)
		Expect(kind).To(Equal(types.KindAlreadyGranted))
	})

	It("rejects granting a role that names a user", func() {
		Expect(c.CreateUser("u1")).To(Succeed())
		Expect(c.CreateUser("u2")).To(Succeed())

		err := c.GrantRole("u1", "u2")
		Expect(err).To(HaveOccurred())
		kind, _ := types.Classify(err)
		Expect(kind).To(Equal(types.KindNotARole))
	})

	It("reports NotFound for an unregistered grantee", func() {
		_, err := c.CheckPrivileges("ghost", grant(table(1, 1, 0), types.Select))
		Expect(err).To(HaveOccurred())
		kind, _ := types.Classify(err)
		Expect(kind).To(Equal(types.KindNotFound))
	})

	It("rejects a duplicate CreateUser/CreateRole under the same name", func() {
		Expect(c.CreateUser("dup")).To(Succeed())
		err := c.CreateRole("dup")
		Expect(err).To(HaveOccurred())
		kind, _ := types.Classify(err)
		Expect(kind).To(Equal(types.KindAlreadyExists))
	})

	It("detaches a dropped role from its former grantees", func() {
		Expect(c.CreateRole("r1")).To(Succeed())
		Expect(c.CreateUser("u")).To(Succeed())
		key := table(1, 1, 0)
		Expect(c.GrantPrivileges("r1", grant(key, types.Select))).To(Succeed())
		Expect(c.GrantRole("u", "r1")).To(Succeed())

		ok, err := c.CheckPrivileges("u", grant(key, types.Select))
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		Expect(c.DropGrantee("r1")).To(Succeed())
		Expect(c.Exists("r1")).To(BeFalse())

		roles, err := c.GetRoles("u", true)
		Expect(err).NotTo(HaveOccurred())
		Expect(roles).To(BeEmpty())
	})

	It("renames a record in place and cascades to downstream grantees", func() {
		Expect(c.CreateRole("r1")).To(Succeed())
		Expect(c.CreateUser("u")).To(Succeed())
		key := table(1, 1, 0)
		Expect(c.GrantPrivileges("r1", grant(key, types.Select))).To(Succeed())
		Expect(c.GrantRole("u", "r1")).To(Succeed())

		renamed := types.NewDBObject(key, types.NoPrivileges)
		renamed.Name = "accounts"
		Expect(c.RenameDBObject("r1", renamed)).To(Succeed())

		obj, err := c.GetPrivileges("u", key, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(obj.Name).To(Equal("accounts"))
	})

	It("reassigns ownership of a matching key without touching privileges", func() {
		Expect(c.CreateUser("u")).To(Succeed())
		key := table(1, 1, 0)
		obj := grant(key, types.Select)
		obj.Owner = 10
		Expect(c.GrantPrivileges("u", obj)).To(Succeed())

		Expect(c.ReassignObjectOwner("u", key, 20)).To(Succeed())

		got, err := c.GetPrivileges("u", key, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Owner).To(Equal(int32(20)))
		Expect(got.Privileges).To(Equal(types.Select))
	})

	It("keeps the roles/grantees edge symmetric after grant and revoke (P3)", func() {
		Expect(c.CreateRole("r1")).To(Succeed())
		Expect(c.CreateUser("u")).To(Succeed())

		Expect(c.GrantRole("u", "r1")).To(Succeed())
		u := c.nodes["u"]
		r1 := c.nodes["r1"]
		Expect(u.roles).To(HaveKey(r1))
		Expect(r1.grantees).To(HaveKey(u))

		Expect(c.RevokeRole("u", "r1")).To(Succeed())
		Expect(u.roles).NotTo(HaveKey(r1))
		Expect(r1.grantees).NotTo(HaveKey(u))
	})

	It("never leaves an empty-privilege record behind (P2)", func() {
		Expect(c.CreateUser("u")).To(Succeed())
		key := table(1, 1, 0)
		Expect(c.GrantPrivileges("u", grant(key, types.Select))).To(Succeed())
		_, err := c.RevokePrivileges("u", grant(key, types.Select))
		Expect(err).NotTo(HaveOccurred())

		u := c.nodes["u"]
		Expect(u.direct).NotTo(HaveKey(key))
		Expect(u.effective).NotTo(HaveKey(key))
	})
})
