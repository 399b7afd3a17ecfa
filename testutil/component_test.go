package testutil_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/kbukum/dbprime/component"
)

// mockComponent records its lifecycle calls.
type mockComponent struct {
	name        string
	started     bool
	stopped     bool
	resetCalled bool
	startErr    error
	stopErr     error
	resetErr    error
	log         *[]string
}

func newMockComponent(name string) *mockComponent {
	return &mockComponent{name: name}
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(ctx context.Context) error {
	m.record("start")
	if m.startErr != nil {
		return m.startErr
	}
	m.started = true
	m.stopped = false
	return nil
}

func (m *mockComponent) Stop(ctx context.Context) error {
	m.record("stop")
	if m.stopErr != nil {
		return m.stopErr
	}
	m.stopped = true
	m.started = false
	return nil
}

func (m *mockComponent) Health(ctx context.Context) component.Health {
	status := component.StatusUnhealthy
	if m.started {
		status = component.StatusHealthy
	}
	return component.Health{Name: m.name, Status: status}
}

func (m *mockComponent) Reset(ctx context.Context) error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resetCalled = true
	return nil
}

func (m *mockComponent) record(op string) {
	if m.log != nil {
		*m.log = append(*m.log, fmt.Sprintf("%s:%s", op, m.name))
	}
}

// plainComponent does not implement component.Resetter.
type plainComponent struct{ name string }

func (p *plainComponent) Name() string                    { return p.name }
func (p *plainComponent) Start(ctx context.Context) error { return nil }
func (p *plainComponent) Stop(ctx context.Context) error  { return nil }
func (p *plainComponent) Health(ctx context.Context) component.Health {
	return component.Health{Name: p.name, Status: component.StatusHealthy}
}

// fakeTB captures failures and cleanups instead of acting on them.
type fakeTB struct {
	testing.TB
	fatal    string
	errors   []string
	cleanups []func()
}

func (f *fakeTB) Helper() {}

func (f *fakeTB) Fatalf(format string, args ...any) {
	f.fatal = fmt.Sprintf(format, args...)
}

func (f *fakeTB) Errorf(format string, args ...any) {
	f.errors = append(f.errors, fmt.Sprintf(format, args...))
}

func (f *fakeTB) Cleanup(fn func()) {
	f.cleanups = append(f.cleanups, fn)
}

// runCleanups runs cleanups last registered first, like testing.T.
func (f *fakeTB) runCleanups() {
	for i := len(f.cleanups) - 1; i >= 0; i-- {
		f.cleanups[i]()
	}
}
