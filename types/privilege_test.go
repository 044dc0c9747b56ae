package types_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	. "github.com/catalogdb/grantee/types"
)

func TestPrivilege(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "privilege set test suit")
}

var _ = Describe("privilege set", func() {
	DescribeTable("has all",
		func(a, b PrivilegeSet) {
			Expect(a.HasAll(b)).To(BeTrue())
		},
		Entry("select dominates select", Select, Select),
		Entry("select+insert dominates select", Select.Union(Insert), Select),
		Entry("everything dominates select", AllPrivileges, Select),
	)

	DescribeTable("does not have all",
		func(a, b PrivilegeSet) {
			Expect(a.HasAll(b)).To(BeFalse())
		},
		Entry("select does not dominate insert", Select, Insert),
		Entry("select does not dominate select+update", Select, Select.Union(Update)),
	)

	DescribeTable("split",
		func(joined PrivilegeSet, split []interface{}) {
			Expect(joined.Split()).To(ConsistOf(split...))
		},
		Entry("select only", Select, []interface{}{Select}),
		Entry("select insert", Select.Union(Insert), []interface{}{Select, Insert}),
		Entry("no privileges", NoPrivileges, []interface{}(nil)),
	)

	It("subtracts bits", func() {
		rw := Select.Union(Insert)
		Expect(rw.Subtract(Insert)).To(Equal(Select))
		Expect(rw.Subtract(rw).HasAny()).To(BeFalse())
	})

	When("privileges are reset", func() {
		names := ResetPrivileges("read", "write", "execute", "admin")
		read, write, execute, admin := names[0], names[1], names[2], names[3]

		It("rebuilds the vocabulary", func() {
			Expect(AllPrivileges).To(BeEquivalentTo(1<<len(names) - 1))
			Expect(read.HasAll(read)).To(BeTrue())
			Expect(admin.HasAll(write)).To(BeFalse())
			Expect(read.Union(write).HasAll(execute)).To(BeFalse())
		})

		// restore the default vocabulary so later-running specs in this
		// package see the preset privileges again
		AfterEach(func() {
			ResetPrivileges("select", "insert", "update", "delete", "create", "drop", "alter")
		})
	})
})
