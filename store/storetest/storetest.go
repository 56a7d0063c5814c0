package storetest

import (
	"testing"

	"github.com/fox-one/pkg/store/db"
)

// Open in-memory sqlite database migrated with every store the test binary imports
func Open(t testing.TB) *db.DB {
	t.Helper()

	database := db.MustOpen(db.SqliteInMemory())
	t.Cleanup(func() {
		_ = database.Close()
	})

	if err := db.Migrate(database); err != nil {
		t.Fatal(err)
	}

	return database
}
