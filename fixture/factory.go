package fixture

import (
	"context"
	"testing"

	"github.com/kbukum/dbprime/database"
	"github.com/kbukum/dbprime/logger"
)

// Factory creates records against one database with shared options.
type Factory struct {
	driver database.Driver
	args   database.Args
	opts   []Option
}

// NewFactory binds drv, args and opts for later Create calls.
func NewFactory(drv database.Driver, args database.Args, opts ...Option) *Factory {
	return &Factory{driver: drv, args: args, opts: opts}
}

// NewFactoryFromConfig builds the driver named by cfg. Defaults are applied
// and the configuration is validated first; opts are applied after the
// configured logger.
func NewFactoryFromConfig(cfg Config, opts ...Option) (*Factory, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := logger.New(&cfg.Logging, "dbprime")
	drv, err := database.NewDriver(cfg.Driver, cfg.Database, base.WithComponent(logger.ComponentGorm))
	if err != nil {
		return nil, err
	}

	all := append([]Option{WithLogger(base.WithComponent(logger.ComponentFixture))}, opts...)
	return NewFactory(drv, cfg.Connection.Args(), all...), nil
}

// Driver returns the bound driver.
func (f *Factory) Driver() database.Driver { return f.driver }

// Args returns a copy of the bound connection arguments.
func (f *Factory) Args() database.Args {
	out := make(database.Args, len(f.args))
	for k, v := range f.args {
		out[k] = v
	}
	return out
}

// Create inserts a row. See Create.
func (f *Factory) Create(ctx context.Context, table, pkColumn string, values map[string]any) (*Record, error) {
	return Create(ctx, f.driver, f.args, table, pkColumn, values, f.opts...)
}

// MustCreate inserts a row that is deleted when t ends. See MustCreate.
func (f *Factory) MustCreate(t testing.TB, table, pkColumn string, values map[string]any) *Record {
	t.Helper()
	return MustCreate(t, f.driver, f.args, table, pkColumn, values, f.opts...)
}

// Component returns an unstarted Component for one row.
func (f *Factory) Component(table, pkColumn string, values map[string]any) *Component {
	return NewComponent(f.driver, f.args, table, pkColumn, values, f.opts...)
}
