package testutil_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kbukum/dbprime/testutil"
)

func newOrderedManager(names ...string) (*testutil.Manager, []*mockComponent, *[]string) {
	log := &[]string{}
	m := testutil.NewManager(context.Background())
	comps := make([]*mockComponent, 0, len(names))
	for _, name := range names {
		c := newMockComponent(name)
		c.log = log
		m.Add(c)
		comps = append(comps, c)
	}
	return m, comps, log
}

func TestManager_AddComponent(t *testing.T) {
	m, _, _ := newOrderedManager("comp1", "comp2")

	if got := len(m.Components()); got != 2 {
		t.Errorf("Components() = %d, want 2", got)
	}
}

func TestManager_StartStopOrder(t *testing.T) {
	m, comps, log := newOrderedManager("a", "b", "c")

	if err := m.StartAll(); err != nil {
		t.Fatalf("StartAll() failed: %v", err)
	}
	if err := m.StopAll(); err != nil {
		t.Fatalf("StopAll() failed: %v", err)
	}

	want := "start:a,start:b,start:c,stop:c,stop:b,stop:a"
	if got := strings.Join(*log, ","); got != want {
		t.Errorf("lifecycle = %s, want %s", got, want)
	}
	for _, c := range comps {
		if !c.stopped {
			t.Errorf("%s should be stopped", c.name)
		}
	}
}

func TestManager_StopAllIsIdempotent(t *testing.T) {
	m, _, log := newOrderedManager("a")

	if err := m.StartAll(); err != nil {
		t.Fatalf("StartAll() failed: %v", err)
	}
	_ = m.StopAll()
	_ = m.Cleanup()

	if got := strings.Join(*log, ","); got != "start:a,stop:a" {
		t.Errorf("second stop should be a no-op, got %s", got)
	}
}

func TestManager_StartErrorRollsBack(t *testing.T) {
	m, comps, log := newOrderedManager("a", "b", "c")
	comps[2].startErr = errors.New("insert failed")

	err := m.StartAll()
	if err == nil {
		t.Fatal("StartAll() should return error when a component fails")
	}
	if !strings.Contains(err.Error(), "failed to start component c") {
		t.Errorf("unexpected error %v", err)
	}

	want := "start:a,start:b,start:c,stop:b,stop:a"
	if got := strings.Join(*log, ","); got != want {
		t.Errorf("lifecycle = %s, want %s", got, want)
	}
}

func TestManager_StartAllAfterAdd(t *testing.T) {
	m, _, log := newOrderedManager("a")
	if err := m.StartAll(); err != nil {
		t.Fatalf("StartAll() failed: %v", err)
	}

	late := newMockComponent("b")
	late.log = log
	m.Add(late)
	if err := m.StartAll(); err != nil {
		t.Fatalf("StartAll() failed: %v", err)
	}

	if got := strings.Join(*log, ","); got != "start:a,start:b" {
		t.Errorf("only the new component should start, got %s", got)
	}
}

func TestManager_StopErrorContinues(t *testing.T) {
	m, comps, log := newOrderedManager("a", "b")
	comps[1].stopErr = errors.New("stop failed")

	if err := m.StartAll(); err != nil {
		t.Fatalf("StartAll() failed: %v", err)
	}

	err := m.StopAll()
	if err == nil {
		t.Fatal("StopAll() should return error when a component fails")
	}
	if !comps[0].stopped {
		t.Error("a should still be stopped after b failed")
	}
	if got := strings.Join(*log, ","); got != "start:a,start:b,stop:b,stop:a" {
		t.Errorf("lifecycle = %s", got)
	}
}

func TestManager_ResetAll(t *testing.T) {
	m, comps, _ := newOrderedManager("a", "b")

	if err := m.ResetAll(); err != nil {
		t.Fatalf("ResetAll() failed: %v", err)
	}
	for _, c := range comps {
		if !c.resetCalled {
			t.Errorf("%s.Reset() should be called", c.name)
		}
	}
}

func TestManager_ResetError(t *testing.T) {
	m, comps, _ := newOrderedManager("a", "b")
	comps[0].resetErr = errors.New("reset failed")

	if err := m.ResetAll(); err == nil {
		t.Error("ResetAll() should return error when a component fails")
	}
	if comps[1].resetCalled {
		t.Error("ResetAll() should stop at the first failure")
	}
}

func TestManager_GetComponent(t *testing.T) {
	m, _, _ := newOrderedManager("comp1", "comp2")

	got := m.Get("comp1")
	if got == nil || got.Name() != "comp1" {
		t.Errorf("Get('comp1') = %v", got)
	}
	if m.Get("nonexistent") != nil {
		t.Error("Get('nonexistent') should return nil")
	}
}
