package fixture

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kbukum/dbprime/database"
	"github.com/kbukum/dbprime/logger"
)

// spyConn records statements and serves canned rows keyed by statement
// prefix.
type spyConn struct {
	executed []string
	results  map[string][][]any
	failOn   map[string]error
	pending  [][]any

	commitErr error
	closeErr  error
	commits   int
	closes    int
}

func (c *spyConn) Execute(_ context.Context, q string) error {
	c.executed = append(c.executed, q)
	c.pending = nil
	for prefix, err := range c.failOn {
		if strings.HasPrefix(q, prefix) {
			return err
		}
	}
	for prefix, rows := range c.results {
		if strings.HasPrefix(q, prefix) {
			c.pending = append([][]any(nil), rows...)
		}
	}
	return nil
}

func (c *spyConn) FetchOne(_ context.Context) ([]any, error) {
	if len(c.pending) == 0 {
		return nil, nil
	}
	row := c.pending[0]
	c.pending = c.pending[1:]
	return row, nil
}

func (c *spyConn) Commit(_ context.Context) error {
	c.commits++
	return c.commitErr
}

func (c *spyConn) Close() error {
	c.closes++
	return c.closeErr
}

type spyDriver struct {
	name       string
	conn       *spyConn
	connectErr error
	connects   int
	lastArgs   database.Args
}

func (d *spyDriver) Name() string { return d.name }

func (d *spyDriver) Connect(_ context.Context, args database.Args) (database.Conn, error) {
	d.connects++
	d.lastArgs = args
	if d.connectErr != nil {
		return nil, d.connectErr
	}
	if d.conn == nil {
		return nil, nil
	}
	return d.conn, nil
}

func postgresSpy(pk any) *spyDriver {
	return &spyDriver{name: "postgres", conn: &spyConn{
		results: map[string][][]any{"INSERT": {{pk}}},
	}}
}

func mysqlSpy(pk any) *spyDriver {
	return &spyDriver{name: "mysql", conn: &spyConn{
		results: map[string][][]any{"SELECT LAST_INSERT_ID()": {{pk}}},
	}}
}

func captureLogger() (*logger.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return logger.NewWithWriter(buf, &logger.Config{Level: "debug", Format: "json"}, "test"), buf
}

// fakeTB records Fatalf and Cleanup calls without stopping the test.
type fakeTB struct {
	testing.TB
	fatal    string
	cleanups []func()
}

func (f *fakeTB) Helper() {}

func (f *fakeTB) Fatalf(format string, args ...any) {
	f.fatal = fmt.Sprintf(format, args...)
}

func (f *fakeTB) Cleanup(fn func()) {
	f.cleanups = append(f.cleanups, fn)
}
