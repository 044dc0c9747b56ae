package sqlite

import (
	"os"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/catalogdb/grantee/persist/test"
)

func TestPersisters(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "sqlite persisters")
}

var store *Store

var _ = BeforeSuite(func() {
	path, err := os.CreateTemp("", "grantee-*.db")
	Expect(err).To(Succeed())
	Expect(path.Close()).To(Succeed())

	store, err = Open(path.Name())
	Expect(err).To(Succeed())
	TestCatalogPersister(store)
})

var _ = AfterSuite(func() {
	Expect(store.Close()).To(Succeed())
})

var _ = Cases
