package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	apperrors "github.com/kbukum/dbprime/errors"
	"github.com/kbukum/dbprime/logger"
)

// Driver identities.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Option configures a GORM-backed driver.
type Option func(*gormDriver)

// WithConfig sets the GORM logging configuration.
func WithConfig(cfg Config) Option {
	return func(d *gormDriver) { d.cfg = cfg }
}

// WithLogger sets the logger SQL statements are traced to.
func WithLogger(log *logger.Logger) Option {
	return func(d *gormDriver) {
		if log != nil {
			d.log = log
		}
	}
}

// gormDriver opens one *gorm.DB per connection with its pool pinned to a
// single session, so every statement of a Conn shares one server session.
type gormDriver struct {
	name      string
	dialector func(dsn string) gorm.Dialector
	dsn       func(Args) (string, error)
	cfg       Config
	log       *logger.Logger
}

// Postgres returns a driver for PostgreSQL through pgx.
func Postgres(opts ...Option) Driver {
	return newGormDriver(DriverPostgres, postgres.Open, PostgresDSN, opts)
}

// MySQL returns a driver for MySQL through go-sql-driver/mysql.
func MySQL(opts ...Option) Driver {
	return newGormDriver(DriverMySQL, mysql.Open, MySQLDSN, opts)
}

// SQLite returns a driver for SQLite through mattn/go-sqlite3.
func SQLite(opts ...Option) Driver {
	return newGormDriver(DriverSQLite, sqlite.Open, SQLiteDSN, opts)
}

// NewDriver resolves a driver by identity.
func NewDriver(name string, cfg Config, log *logger.Logger) (Driver, error) {
	opts := []Option{WithConfig(cfg), WithLogger(log)}
	switch name {
	case DriverPostgres:
		return Postgres(opts...), nil
	case DriverMySQL:
		return MySQL(opts...), nil
	case DriverSQLite:
		return SQLite(opts...), nil
	default:
		return nil, apperrors.InvalidInput("driver", fmt.Sprintf("unknown driver %q", name))
	}
}

func newGormDriver(name string, dialector func(string) gorm.Dialector, dsn func(Args) (string, error), opts []Option) *gormDriver {
	d := &gormDriver{
		name:      name,
		dialector: dialector,
		dsn:       dsn,
		log:       logger.Get(logger.ComponentDatabase),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.cfg.ApplyDefaults()
	return d
}

func (d *gormDriver) Name() string { return d.name }

// Connect opens and pings a dedicated connection.
func (d *gormDriver) Connect(ctx context.Context, args Args) (Conn, error) {
	dsn, err := d.dsn(args)
	if err != nil {
		return nil, err
	}

	slowThreshold, _ := time.ParseDuration(d.cfg.SlowQueryThreshold)
	gdb, err := gorm.Open(d.dialector(dsn), &gorm.Config{
		Logger:                 newGormLogger(d.log, slowThreshold, parseLogLevel(d.cfg.LogLevel)),
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", d.name, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB for %s: %w", d.name, err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("pinging %s: %w", d.name, err)
	}

	return &gormConn{db: gdb, sqlDB: sqlDB}, nil
}

// gormConn runs statements inside a lazily started transaction and buffers
// each result set, acting as a client-side cursor.
type gormConn struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *gorm.DB
	rows  [][]any
}

func (c *gormConn) Execute(ctx context.Context, query string) error {
	if c.tx == nil {
		tx := c.db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return fmt.Errorf("begin transaction: %w", tx.Error)
		}
		c.tx = tx
	}
	c.rows = nil

	rows, err := c.tx.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	buffered, err := scanAll(rows)
	if err != nil {
		return err
	}
	c.rows = buffered
	return nil
}

func (c *gormConn) FetchOne(_ context.Context) ([]any, error) {
	if len(c.rows) == 0 {
		return nil, nil
	}
	row := c.rows[0]
	c.rows = c.rows[1:]
	return row, nil
}

func (c *gormConn) Commit(_ context.Context) error {
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	return tx.Commit().Error
}

// Close rolls back any uncommitted statements and closes the pool.
func (c *gormConn) Close() error {
	var errs []error
	if c.tx != nil {
		if err := c.tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
		c.tx = nil
	}
	c.rows = nil
	if err := c.sqlDB.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// scanAll reads every row. Text columns arrive as []byte and are returned as
// strings.
func scanAll(rows *sql.Rows) ([][]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, values)
	}
	return out, rows.Err()
}
