package mgo

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/globalsign/mgo"
	"github.com/go-logr/stdr"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/catalogdb/grantee/persist/test"
)

func TestPersisters(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "mgo persisters")
}

var db *mgo.Database

var _ = BeforeSuite(func() {
	const dbName = "test-db"
	const testDB = "mongodb://localhost:27017/test-db"
	ss, e := mgo.Dial(testDB)
	Expect(e).To(Succeed())
	db = ss.DB(dbName)

	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile))
	stdr.SetVerbosity(6)

	store, e := NewStore(db, WithLogger(logger.WithName("catalog persister")), SetRetryTimeout(100*time.Microsecond))
	Expect(e).To(Succeed())
	TestCatalogPersister(store)
})

var _ = AfterSuite(func() {
	db.C("principals").RemoveAll(nil)
	db.C("grants").RemoveAll(nil)
	db.C("role_grants").RemoveAll(nil)
})

var _ = Cases
