// Package test is a reusable conformance suite for types.CatalogPersister
// implementations, meant to be embedded into a backend's own Ginkgo suite
// (see persist/mgo/mgo_test.go for the wiring).
package test

import (
	"context"

	"github.com/catalogdb/grantee/types"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var subject types.CatalogPersister

// TestCatalogPersister points the shared Cases suite at p.
func TestCatalogPersister(p types.CatalogPersister) {
	subject = p
}

// Cases exercises insert/remove idempotency and watch delivery across all
// three record kinds a CatalogPersister carries.
var Cases = Describe("catalog persister", func() {
	It("inserts and removes a principal exactly once", func() {
		policy := types.PrincipalPolicy{Name: "alan", Kind: types.UserKind}
		Expect(subject.InsertPrincipal(policy)).To(Succeed())
		Expect(subject.RemovePrincipal(policy.Name)).To(Succeed())

		// idempotent remove: removing an already absent principal does
		// not error.
		Expect(subject.RemovePrincipal(policy.Name)).To(Succeed())
	})

	It("lists inserted principals", func() {
		policies := []types.PrincipalPolicy{
			{Name: "edison", Kind: types.UserKind},
			{Name: "curie", Kind: types.UserKind},
			{Name: "physicist", Kind: types.RoleKind},
		}
		for _, p := range policies {
			Expect(subject.InsertPrincipal(p)).To(Succeed())
		}

		listed, err := subject.ListPrincipals()
		Expect(err).To(Succeed())
		Expect(listed).To(ContainElements(policies[0], policies[1], policies[2]))

		for _, p := range policies {
			Expect(subject.RemovePrincipal(p.Name)).To(Succeed())
		}
	})

	It("watches principal changes", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := subject.WatchPrincipals(ctx)
		Expect(err).To(Succeed())

		policy := types.PrincipalPolicy{Name: "hedy", Kind: types.UserKind}
		Expect(subject.InsertPrincipal(policy)).To(Succeed())
		Eventually(changes).Should(Receive(Equal(types.PrincipalPolicyChange{
			PrincipalPolicy: policy,
			Method:          types.PersistInsert,
		})))

		Expect(subject.RemovePrincipal(policy.Name)).To(Succeed())
		Eventually(changes).Should(Receive(Equal(types.PrincipalPolicyChange{
			PrincipalPolicy: policy,
			Method:          types.PersistDelete,
		})))
	})

	It("upserts and removes a grant keyed by grantee and object key", func() {
		key := types.DBObjectKey{DBID: 1, ObjectID: 7, ObjectType: 0}
		object := types.NewDBObject(key, types.Select)
		policy := types.GrantPolicy{Grantee: "alan", Object: object}

		Expect(subject.UpsertGrant(policy)).To(Succeed())

		listed, err := subject.ListGrants()
		Expect(err).To(Succeed())
		Expect(listed).To(ContainElement(policy))

		Expect(subject.RemoveGrant(policy.Grantee, key)).To(Succeed())
		listed, err = subject.ListGrants()
		Expect(err).To(Succeed())
		Expect(listed).NotTo(ContainElement(policy))
	})

	It("inserts and removes a role-grant edge exactly once", func() {
		policy := types.RoleGrantPolicy{Grantee: "alan", Role: "physicist"}
		Expect(subject.InsertRoleGrant(policy)).To(Succeed())

		listed, err := subject.ListRoleGrants()
		Expect(err).To(Succeed())
		Expect(listed).To(ContainElement(policy))

		Expect(subject.RemoveRoleGrant(policy)).To(Succeed())
		listed, err = subject.ListRoleGrants()
		Expect(err).To(Succeed())
		Expect(listed).NotTo(ContainElement(policy))
	})
})
