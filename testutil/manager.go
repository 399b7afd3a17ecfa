package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kbukum/dbprime/component"
	"github.com/kbukum/dbprime/logger"
)

// Manager starts several components in registration order and stops them
// in reverse order. Fixtures that reference each other (an order row
// pointing at a customer row) are torn down child first.
type Manager struct {
	ctx        context.Context
	components []component.Component
	started    int
	mu         sync.Mutex
}

// NewManager creates a new component manager.
func NewManager(ctx context.Context) *Manager {
	return &Manager{
		ctx:        ctx,
		components: make([]component.Component, 0),
	}
}

// Add registers a component with the manager.
func (m *Manager) Add(c component.Component) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, c)
}

// Components returns all registered components.
func (m *Manager) Components() []component.Component {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]component.Component, len(m.components))
	copy(result, m.components)
	return result
}

// Get retrieves a component by name, or nil.
func (m *Manager) Get(name string) component.Component {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// StartAll starts the components not yet started, in order. When one fails,
// the components already started are stopped in reverse order and the start
// error is returned.
func (m *Manager) StartAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.started < len(m.components) {
		c := m.components[m.started]
		if err := c.Start(m.ctx); err != nil {
			startErr := fmt.Errorf("failed to start component %s: %w", c.Name(), err)
			if stopErr := m.stopLocked(); stopErr != nil {
				return errors.Join(startErr, stopErr)
			}
			return startErr
		}
		m.started++
	}
	return nil
}

// StopAll stops all started components in reverse order. Every component is
// stopped even when an earlier one fails; failures are joined.
func (m *Manager) StopAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked()
}

func (m *Manager) stopLocked() error {
	var errs []error

	for m.started > 0 {
		m.started--
		c := m.components[m.started]
		if err := c.Stop(m.ctx); err != nil {
			logger.Get("testutil").Warn("component stop failed", logger.Fields(
				logger.FieldComponent, c.Name(),
				logger.FieldError, err.Error(),
			))
			errs = append(errs, fmt.Errorf("failed to stop component %s: %w", c.Name(), err))
		}
	}

	return errors.Join(errs...)
}

// ResetAll resets all registered components in order, stopping at the first
// failure.
func (m *Manager) ResetAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.components {
		if err := ResetComponentWithContext(m.ctx, c); err != nil {
			return fmt.Errorf("failed to reset component %s: %w", c.Name(), err)
		}
	}
	return nil
}

// Cleanup is an alias for StopAll, convenient with defer or t.Cleanup.
func (m *Manager) Cleanup() error {
	return m.StopAll()
}
