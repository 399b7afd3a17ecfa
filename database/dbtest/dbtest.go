// Package dbtest provides a file-backed SQLite database for tests that need
// a real engine, with row-level assertions.
package dbtest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/dbprime/component"
	"github.com/kbukum/dbprime/database"
	"github.com/kbukum/dbprime/testutil"
)

// BusyTimeout is the _busy_timeout, in milliseconds, used by every
// connection to the file so a fixture's open transaction does not fail
// concurrent assertions.
const BusyTimeout = "5000"

// Component is a SQLite database stored in a file under dir. Fixtures reach
// it through their own connections using Args.
type Component struct {
	dir    string
	schema []string
	path   string
	db     *gorm.DB
	mu     sync.RWMutex
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a database in dir that runs schema statements on
// Start.
func NewComponent(dir string, schema ...string) *Component {
	return &Component{
		dir:    dir,
		schema: schema,
		path:   filepath.Join(dir, "dbprime.db"),
	}
}

// New creates and starts a database in a temporary directory. It is
// stopped when the test ends.
func New(t testing.TB, schema ...string) *Component {
	t.Helper()
	c := NewComponent(t.TempDir(), schema...)
	testutil.T(t).Setup(c)
	return c
}

// Name returns the component name.
func (c *Component) Name() string {
	return "dbtest"
}

// Path returns the database file path.
func (c *Component) Path() string {
	return c.path
}

// Args returns connection arguments for database.SQLite.
func (c *Component) Args() database.Args {
	return database.Args{
		database.ArgDatabase: c.path,
		"_busy_timeout":      BusyTimeout,
		"_foreign_keys":      "1",
	}
}

// DB returns the underlying *gorm.DB, or nil if not started.
func (c *Component) DB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Start opens the database file and applies the schema.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return fmt.Errorf("component already started")
	}

	dsn, err := database.SQLiteDSN(c.Args())
	if err != nil {
		return err
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return fmt.Errorf("failed to open test database: %w", err)
	}

	for _, stmt := range c.schema {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	c.db = db
	return nil
}

// Stop closes the database connection. The file is left for t.TempDir to
// remove.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}

	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}

	c.db = nil
	return sqlDB.Close()
}

// Health returns the health status of the test database.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.db == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "database not started",
		}
	}

	sqlDB, err := c.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}

	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: c.path,
	}
}
