package fixture

import (
	"context"
	"fmt"

	"github.com/kbukum/dbprime/component"
	"github.com/kbukum/dbprime/database"
)

// Component inserts its row on Start and deletes it on Stop, so a
// testutil.Manager or testutil.T(t).Setup can own the fixture.
type Component struct {
	driver   database.Driver
	args     database.Args
	table    string
	pkColumn string
	values   map[string]any
	opts     []Option

	rec *Record
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Resetter    = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a fixture component. Nothing is inserted until Start.
func NewComponent(drv database.Driver, args database.Args, table, pkColumn string,
	values map[string]any, opts ...Option) *Component {
	return &Component{
		driver:   drv,
		args:     args,
		table:    table,
		pkColumn: pkColumn,
		values:   values,
		opts:     opts,
	}
}

// Name returns the component name.
func (c *Component) Name() string { return "fixture:" + c.table }

// Record returns the current record, or nil before Start.
func (c *Component) Record() *Record { return c.rec }

// Start inserts the row.
func (c *Component) Start(ctx context.Context) error {
	if c.rec != nil && c.rec.State() != StateClosed {
		return fmt.Errorf("fixture %s already started", c.table)
	}
	rec, err := Create(ctx, c.driver, c.args, c.table, c.pkColumn, c.values, c.opts...)
	if err != nil {
		return fmt.Errorf("fixture start: %w", err)
	}
	c.rec = rec
	return nil
}

// Stop deletes the row. Teardown failures are logged by the record and
// available from Record().TeardownErr(); Stop itself does not fail.
func (c *Component) Stop(ctx context.Context) error {
	if c.rec == nil {
		return nil
	}
	c.rec.Close(ctx)
	return nil
}

// Reset replaces the row with a freshly inserted one.
func (c *Component) Reset(ctx context.Context) error {
	if err := c.Stop(ctx); err != nil {
		return err
	}
	return c.Start(ctx)
}

// Health reports whether the row is in place.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name()}
	switch {
	case c.rec == nil:
		h.Status = component.StatusUnhealthy
		h.Message = "fixture not created"
	case c.rec.TeardownErr() != nil:
		h.Status = component.StatusDegraded
		h.Message = c.rec.TeardownErr().Error()
	case c.rec.State() == StateInserted:
		h.Status = component.StatusHealthy
		h.Message = c.rec.String()
	default:
		h.Status = component.StatusUnhealthy
		h.Message = "fixture " + c.rec.State().String()
	}
	return h
}

// Describe returns a one-line summary for logs.
func (c *Component) Describe() component.Description {
	details := c.table + "." + c.pkColumn
	if c.rec != nil {
		details = fmt.Sprintf("%s (%s/%s)", c.rec, c.rec.Driver(), c.rec.Dialect())
	}
	return component.Description{
		Name:    c.Name(),
		Type:    "fixture",
		Details: details,
	}
}
