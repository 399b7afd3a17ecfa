package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/kbukum/dbprime/component"
)

// CleanupFunc is a function that performs cleanup, typically stopping a component.
type CleanupFunc func() error

// Setup starts a component and returns a cleanup function that stops it.
//
// Example:
//
//	cleanup, err := testutil.Setup(widget)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer cleanup()
func Setup(c component.Component) (CleanupFunc, error) {
	return SetupWithContext(context.Background(), c)
}

// SetupWithContext starts a component with a custom context and returns a cleanup function.
func SetupWithContext(ctx context.Context, c component.Component) (CleanupFunc, error) {
	if err := c.Start(ctx); err != nil {
		return nil, err
	}

	cleanup := func() error {
		return c.Stop(ctx)
	}

	return cleanup, nil
}

// Teardown stops a component.
func Teardown(c component.Component) error {
	return TeardownWithContext(context.Background(), c)
}

// TeardownWithContext stops a component with a custom context.
func TeardownWithContext(ctx context.Context, c component.Component) error {
	return c.Stop(ctx)
}

// ResetComponent returns a component to a freshly started state. Components
// that do not implement component.Resetter yield an error.
func ResetComponent(c component.Component) error {
	return ResetComponentWithContext(context.Background(), c)
}

// ResetComponentWithContext resets a component with a custom context.
func ResetComponentWithContext(ctx context.Context, c component.Component) error {
	r, ok := c.(component.Resetter)
	if !ok {
		return fmt.Errorf("component %s does not support reset", c.Name())
	}
	return r.Reset(ctx)
}

// THelper provides testing.T integration for easier test setup.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T wraps a testing.TB so components started through it are stopped by
// t.Cleanup when the test ends.
//
// Example:
//
//	func TestOrders(t *testing.T) {
//	    testutil.T(t).Setup(customer)
//	    // customer row is deleted when the test ends
//	}
func T(t testing.TB) *THelper {
	return &THelper{
		t:   t,
		ctx: context.Background(),
	}
}

// WithContext sets a custom context for the helper.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts a component and registers its Stop with t.Cleanup. A start
// failure stops the test.
func (h *THelper) Setup(c component.Component) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start component %s: %v", c.Name(), err)
	}

	h.t.Cleanup(func() {
		if err := c.Stop(h.ctx); err != nil {
			h.t.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
}

// Reset resets a component to its initial state.
func (h *THelper) Reset(c component.Component) {
	h.t.Helper()
	if err := ResetComponentWithContext(h.ctx, c); err != nil {
		h.t.Fatalf("failed to reset component %s: %v", c.Name(), err)
	}
}

// Manage starts every component of m and registers m.StopAll with t.Cleanup.
func (h *THelper) Manage(m *Manager) {
	h.t.Helper()
	if err := m.StartAll(); err != nil {
		h.t.Fatalf("failed to start components: %v", err)
	}

	h.t.Cleanup(func() {
		if err := m.StopAll(); err != nil {
			h.t.Errorf("failed to stop components: %v", err)
		}
	})
}
