// Package testutil ties component lifecycles to Go tests.
//
// Basic usage with automatic cleanup:
//
//	func TestOrders(t *testing.T) {
//	    testutil.T(t).Setup(customer)
//	    // customer is stopped when the test ends
//	}
//
// Manual cleanup:
//
//	cleanup, err := testutil.Setup(customer)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer cleanup()
//
// Several components, stopped in reverse order:
//
//	manager := testutil.NewManager(ctx)
//	manager.Add(customer)
//	manager.Add(order)
//	testutil.T(t).Manage(manager)
//
// Manager operations are safe for concurrent use.
package testutil
