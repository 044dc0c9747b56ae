package fake_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/catalogdb/grantee/persist/fake"
	"github.com/catalogdb/grantee/types"
)

func TestFake(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "fake persister test suit")
}

var _ = Describe("fake persister", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		p      *fake.Persister
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		p = fake.New(ctx)
	})

	AfterEach(func() {
		cancel()
	})

	It("records and lists a principal", func() {
		Expect(p.InsertPrincipal(types.PrincipalPolicy{Name: "alice", Kind: types.UserKind})).To(Succeed())

		policies, err := p.ListPrincipals()
		Expect(err).NotTo(HaveOccurred())
		Expect(policies).To(ConsistOf(types.PrincipalPolicy{Name: "alice", Kind: types.UserKind}))
	})

	It("emits a change on insert and on remove", func() {
		changes, err := p.WatchPrincipals(ctx)
		Expect(err).NotTo(HaveOccurred())

		go func() {
			Expect(p.InsertPrincipal(types.PrincipalPolicy{Name: "bob", Kind: types.UserKind})).To(Succeed())
		}()
		Eventually(changes).Should(Receive(Equal(types.PrincipalPolicyChange{
			PrincipalPolicy: types.PrincipalPolicy{Name: "bob", Kind: types.UserKind},
			Method:          types.PersistInsert,
		})))

		go func() {
			Expect(p.RemovePrincipal("bob")).To(Succeed())
		}()
		Eventually(changes).Should(Receive(Equal(types.PrincipalPolicyChange{
			PrincipalPolicy: types.PrincipalPolicy{Name: "bob", Kind: types.UserKind},
			Method:          types.PersistDelete,
		})))
	})

	It("upserts a grant keyed by grantee and object key", func() {
		key := types.DBObjectKey{DBID: 1, ObjectID: 1, ObjectType: 0}
		object := types.NewDBObject(key, types.Select)

		Expect(p.UpsertGrant(types.GrantPolicy{Grantee: "alice", Object: object})).To(Succeed())
		Expect(p.RemoveGrant("alice", key)).To(Succeed())

		grants, err := p.ListGrants()
		Expect(err).NotTo(HaveOccurred())
		Expect(grants).To(BeEmpty())
	})

	It("dedupes a redundant role-grant insert", func() {
		policy := types.RoleGrantPolicy{Grantee: "alice", Role: "admin"}
		Expect(p.InsertRoleGrant(policy)).To(Succeed())
		Expect(p.InsertRoleGrant(policy)).To(Succeed())

		roleGrants, err := p.ListRoleGrants()
		Expect(err).NotTo(HaveOccurred())
		Expect(roleGrants).To(ConsistOf(policy))
	})
})
