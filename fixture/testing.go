package fixture

import (
	"context"
	"testing"

	"github.com/kbukum/dbprime/database"
)

// MustCreate creates a record and registers its Close with t.Cleanup. A
// creation failure stops the test.
//
//	func TestOrders(t *testing.T) {
//	    customer := fixture.MustCreate(t, drv, args, "customers", "id", map[string]any{"name": "Ada"})
//	    id, _ := customer.PrimaryKey()
//	    // ...
//	}
func MustCreate(t testing.TB, drv database.Driver, args database.Args,
	table, pkColumn string, values map[string]any, opts ...Option) *Record {
	t.Helper()

	rec, err := Create(context.Background(), drv, args, table, pkColumn, values, opts...)
	if err != nil {
		t.Fatalf("failed to create %s fixture: %v", table, err)
		return nil
	}
	t.Cleanup(func() { rec.Close(context.Background()) })
	return rec
}
