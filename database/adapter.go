package database

import (
	"context"
	"fmt"

	apperrors "github.com/kbukum/dbprime/errors"
	"github.com/kbukum/dbprime/logger"
	"github.com/kbukum/dbprime/util"
)

// Args are connection arguments forwarded to a Driver as given. Recognized
// keys are host, port, user, password, database, sslmode and dsn; other keys
// pass through as driver parameters.
type Args map[string]string

// Well-known Args keys.
const (
	ArgHost     = "host"
	ArgPort     = "port"
	ArgUser     = "user"
	ArgPassword = "password"
	ArgDatabase = "database"
	ArgSSLMode  = "sslmode"
	ArgDSN      = "dsn"
)

// Redacted returns a copy of the arguments with the password and raw DSN
// masked, for logging.
func (a Args) Redacted() map[string]string {
	out := make(map[string]string, len(a))
	for k, v := range a {
		switch k {
		case ArgPassword:
			out[k] = util.MaskSecret(v, 0)
		case ArgDSN:
			out[k] = util.MaskSecret(v, 12)
		default:
			out[k] = v
		}
	}
	return out
}

// Driver opens connections for one database engine. Name is the stable
// identity used to pick a SQL dialect. Connect must return an untyped nil
// Conn together with any error.
type Driver interface {
	Name() string
	Connect(ctx context.Context, args Args) (Conn, error)
}

// Conn is a single exclusively owned connection with cursor semantics:
// Execute runs a statement, FetchOne returns the next row of its result.
type Conn interface {
	Execute(ctx context.Context, query string) error
	// FetchOne returns nil, nil when no row is left.
	FetchOne(ctx context.Context) ([]any, error)
	Commit(ctx context.Context) error
	Close() error
}

// Handle owns one Conn and translates its failures into AppErrors. It is not
// safe for concurrent use.
type Handle struct {
	conn    Conn
	driver  string
	log     *logger.Logger
	lastSQL string
	closed  bool
}

// Open connects through drv. A driver failure yields CONNECTION_FAILED and
// no handle.
func Open(ctx context.Context, drv Driver, args Args, log *logger.Logger) (*Handle, error) {
	if log == nil {
		log = logger.Nop()
	}
	name := drv.Name()

	conn, err := drv.Connect(ctx, args)
	if err == nil && conn == nil {
		err = fmt.Errorf("driver %s returned no connection", name)
	}
	if err != nil {
		log.Debug("connection failed", logger.Fields(
			logger.FieldDriver, name,
			"args", args.Redacted(),
			logger.FieldError, err.Error(),
		))
		return nil, apperrors.ConnectionFailed(name).
			WithCause(err).
			WithDetail("host", args[ArgHost]).
			WithDetail("database", args[ArgDatabase])
	}

	log.Debug("connection opened", logger.Fields(logger.FieldDriver, name))
	return &Handle{conn: conn, driver: name, log: log}, nil
}

// Driver returns the identity of the driver that opened the handle.
func (h *Handle) Driver() string { return h.driver }

// Execute runs query. Failures carry the statement text.
func (h *Handle) Execute(ctx context.Context, query string) error {
	h.lastSQL = query
	if err := h.conn.Execute(ctx, query); err != nil {
		return apperrors.QueryFailed(query).WithCause(err)
	}
	return nil
}

// FetchOne returns the next row of the last statement, or nil when there is none.
func (h *Handle) FetchOne(ctx context.Context) ([]any, error) {
	row, err := h.conn.FetchOne(ctx)
	if err != nil {
		return nil, apperrors.QueryFailed(h.lastSQL).WithCause(err)
	}
	return row, nil
}

// Commit commits the statements executed so far.
func (h *Handle) Commit(ctx context.Context) error {
	if err := h.conn.Commit(ctx); err != nil {
		return apperrors.QueryFailed(h.lastSQL).WithCause(err).WithDetail("phase", "commit")
	}
	return nil
}

// Close closes the connection. Only the first call reaches the driver.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true

	if err := h.conn.Close(); err != nil {
		return fmt.Errorf("closing %s connection: %w", h.driver, err)
	}
	h.log.Debug("connection closed", logger.Fields(logger.FieldDriver, h.driver))
	return nil
}

// LastSQL returns the most recently executed statement.
func (h *Handle) LastSQL() string { return h.lastSQL }

// Closed reports whether Close has been called.
func (h *Handle) Closed() bool { return h.closed }
