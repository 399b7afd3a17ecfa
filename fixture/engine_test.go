package fixture

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kbukum/dbprime/database"
	"github.com/kbukum/dbprime/dialect"
	apperrors "github.com/kbukum/dbprime/errors"
	"github.com/kbukum/dbprime/logger"
)

var widget = map[string]any{"name": "bolt", "qty": 5}

func quiet() Option { return WithLogger(logger.Nop()) }

func TestCreateRejectsBeforeConnecting(t *testing.T) {
	tests := []struct {
		name     string
		driver   string
		table    string
		pkColumn string
		values   map[string]any
		code     apperrors.ErrorCode
	}{
		{"unknown driver", "oracle", "widgets", "widget_id", widget, apperrors.ErrCodeUnsupportedDialect},
		{"unknown driver wins over empty values", "oracle", "widgets", "widget_id", nil, apperrors.ErrCodeUnsupportedDialect},
		{"nil values", "postgres", "widgets", "widget_id", nil, apperrors.ErrCodeEmptyRecord},
		{"empty values", "mysql", "widgets", "widget_id", map[string]any{}, apperrors.ErrCodeEmptyRecord},
		{"missing table", "postgres", "", "widget_id", widget, apperrors.ErrCodeInvalidInput},
		{"missing pk column", "postgres", "widgets", "", widget, apperrors.ErrCodeInvalidInput},
		{"unrenderable value", "postgres", "widgets", "widget_id", map[string]any{"tags": []string{"x"}}, apperrors.ErrCodeInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			drv := &spyDriver{name: tc.driver, conn: &spyConn{}}

			rec, err := Create(context.Background(), drv, nil, tc.table, tc.pkColumn, tc.values, quiet())
			if rec != nil {
				t.Fatal("expected no record")
			}
			if !apperrors.HasCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			if drv.connects != 0 {
				t.Errorf("connects = %d, want 0", drv.connects)
			}
		})
	}
}

func TestCreateNilDriver(t *testing.T) {
	_, err := Create(context.Background(), nil, nil, "widgets", "id", widget, quiet())
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestUnsupportedDialectListsRegistered(t *testing.T) {
	drv := &spyDriver{name: "oracle"}

	_, err := Create(context.Background(), drv, nil, "widgets", "id", widget, quiet())
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	registered, _ := appErr.Details["registered"].([]string)
	if strings.Join(registered, ",") != "mysql,postgres,sqlite" {
		t.Errorf("registered = %v", appErr.Details["registered"])
	}
	if !errors.Is(err, apperrors.ErrUnsupportedDialect) {
		t.Error("errors.Is should match the UNSUPPORTED_DIALECT sentinel")
	}
}

func TestCreateConnectionFailed(t *testing.T) {
	drv := &spyDriver{name: "postgres", connectErr: errors.New("connection refused")}
	args := database.Args{database.ArgHost: "db.internal", database.ArgDatabase: "app"}

	rec, err := Create(context.Background(), drv, args, "widgets", "widget_id", widget, quiet())
	if rec != nil {
		t.Fatal("expected no record")
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeConnectionFailed) {
		t.Fatalf("expected CONNECTION_FAILED, got %v", err)
	}
	if drv.connects != 1 {
		t.Errorf("connects = %d, want 1", drv.connects)
	}
	if drv.lastArgs[database.ArgHost] != "db.internal" {
		t.Errorf("args not forwarded: %v", drv.lastArgs)
	}
}

func TestPostgresScenario(t *testing.T) {
	ctx := context.Background()
	drv := postgresSpy(int64(42))
	conn := drv.conn

	rec, err := Create(ctx, drv, nil, "widgets", "widget_id", widget, quiet())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	want := "INSERT INTO widgets (name, qty) VALUES ('bolt', 5) RETURNING widget_id"
	if len(conn.executed) != 1 || conn.executed[0] != want {
		t.Fatalf("executed = %q, want only %q", conn.executed, want)
	}
	if conn.commits != 1 {
		t.Errorf("commits = %d, want 1", conn.commits)
	}
	if conn.closes != 0 {
		t.Errorf("connection closed during create")
	}

	pk, ok := rec.PrimaryKey()
	if !ok || pk != int64(42) {
		t.Errorf("PrimaryKey() = %v, %v", pk, ok)
	}
	if v, _ := rec.ValueOf("widget_id"); v != int64(42) {
		t.Errorf("ValueOf(widget_id) = %v", v)
	}
	if rec.State() != StateInserted {
		t.Errorf("State() = %s", rec.State())
	}
	if rec.Dialect() != "returning" || rec.Driver() != "postgres" {
		t.Errorf("Dialect() = %q, Driver() = %q", rec.Dialect(), rec.Driver())
	}

	rec.Close(ctx)

	if got := conn.executed[len(conn.executed)-1]; got != "DELETE FROM widgets WHERE widget_id = 42" {
		t.Errorf("delete = %q", got)
	}
	if conn.commits != 2 {
		t.Errorf("commits = %d, want 2", conn.commits)
	}
	if conn.closes != 1 {
		t.Errorf("closes = %d, want 1", conn.closes)
	}
	if rec.State() != StateClosed {
		t.Errorf("State() = %s, want closed", rec.State())
	}
	if rec.TeardownErr() != nil {
		t.Errorf("unexpected teardown error: %v", rec.TeardownErr())
	}
}

func TestMySQLScenario(t *testing.T) {
	ctx := context.Background()
	drv := mysqlSpy(uint64(7))
	conn := drv.conn

	rec, err := Create(ctx, drv, nil, "widgets", "widget_id", widget, quiet())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	want := []string{
		"INSERT INTO widgets (name, qty) VALUES ('bolt', 5)",
		"SELECT LAST_INSERT_ID()",
	}
	if strings.Join(conn.executed, ";") != strings.Join(want, ";") {
		t.Fatalf("executed = %q, want %q", conn.executed, want)
	}
	if pk, _ := rec.PrimaryKey(); pk != uint64(7) {
		t.Errorf("PrimaryKey() = %v, want 7", pk)
	}
	if rec.Dialect() != "last_insert_id" {
		t.Errorf("Dialect() = %q", rec.Dialect())
	}

	rec.Close(ctx)

	if got := conn.executed[2]; got != "DELETE FROM widgets WHERE widget_id = 7" {
		t.Errorf("delete = %q", got)
	}
	if conn.closes != 1 {
		t.Errorf("closes = %d, want 1", conn.closes)
	}
}

func TestFailedCreateClosesConnectionOnce(t *testing.T) {
	boom := errors.New("duplicate key")

	tests := []struct {
		name string
		drv  *spyDriver
		sql  string
	}{
		{
			name: "insert fails",
			drv:  &spyDriver{name: "postgres", conn: &spyConn{failOn: map[string]error{"INSERT": boom}}},
			sql:  "INSERT INTO widgets (name, qty) VALUES ('bolt', 5) RETURNING widget_id",
		},
		{
			name: "no key returned",
			drv:  &spyDriver{name: "postgres", conn: &spyConn{}},
			sql:  "INSERT INTO widgets (name, qty) VALUES ('bolt', 5) RETURNING widget_id",
		},
		{
			name: "null key",
			drv:  mysqlSpy(nil),
			sql:  "SELECT LAST_INSERT_ID()",
		},
		{
			name: "follow-up fails",
			drv:  &spyDriver{name: "mysql", conn: &spyConn{failOn: map[string]error{"SELECT": boom}}},
			sql:  "SELECT LAST_INSERT_ID()",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := Create(context.Background(), tc.drv, nil, "widgets", "widget_id", widget, quiet())
			if rec != nil {
				t.Fatal("expected no record")
			}
			if !apperrors.HasCode(err, apperrors.ErrCodeQueryFailed) {
				t.Fatalf("expected QUERY_FAILED, got %v", err)
			}
			if got := apperrors.SQLOf(err); got != tc.sql {
				t.Errorf("SQL = %q, want %q", got, tc.sql)
			}
			if tc.drv.conn.closes != 1 {
				t.Errorf("closes = %d, want 1", tc.drv.conn.closes)
			}
			if tc.drv.conn.commits != 0 {
				t.Errorf("commits = %d, want 0", tc.drv.conn.commits)
			}
		})
	}
}

func TestCommitFailureClosesConnection(t *testing.T) {
	drv := postgresSpy(int64(1))
	drv.conn.commitErr = errors.New("serialization failure")

	rec, err := Create(context.Background(), drv, nil, "widgets", "widget_id", widget, quiet())
	if rec != nil {
		t.Fatal("expected no record")
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeQueryFailed) {
		t.Fatalf("expected QUERY_FAILED, got %v", err)
	}
	if drv.conn.closes != 1 {
		t.Errorf("closes = %d, want 1", drv.conn.closes)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	drv := postgresSpy(int64(3))

	rec, err := Create(ctx, drv, nil, "widgets", "widget_id", widget, quiet())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	rec.Close(ctx)
	rec.Close(ctx)

	deletes := 0
	for _, q := range drv.conn.executed {
		if strings.HasPrefix(q, "DELETE") {
			deletes++
		}
	}
	if deletes != 1 {
		t.Errorf("deletes = %d, want 1", deletes)
	}
	if drv.conn.closes != 1 {
		t.Errorf("closes = %d, want 1", drv.conn.closes)
	}
}

func TestTeardownFailureIsLoggedNotRaised(t *testing.T) {
	ctx := context.Background()
	log, buf := captureLogger()
	drv := postgresSpy(int64(9))
	drv.conn.failOn = map[string]error{"DELETE": errors.New("lock timeout")}

	rec, err := Create(ctx, drv, nil, "widgets", "widget_id", widget, WithLogger(log))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	rec.Close(ctx)

	terr := rec.TeardownErr()
	if !apperrors.HasCode(terr, apperrors.ErrCodeTeardownFailed) {
		t.Fatalf("expected TEARDOWN_FAILED, got %v", terr)
	}
	if appErr, _ := apperrors.AsAppError(terr); appErr.Fatal() {
		t.Error("teardown errors must not be fatal")
	}
	if apperrors.SQLOf(terr) != "DELETE FROM widgets WHERE widget_id = 9" {
		t.Errorf("SQL = %q", apperrors.SQLOf(terr))
	}
	if drv.conn.closes != 1 {
		t.Errorf("connection must still be closed, closes = %d", drv.conn.closes)
	}
	if rec.State() != StateClosed {
		t.Errorf("State() = %s, want closed", rec.State())
	}

	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, "may be left behind") {
		t.Errorf("expected an error log about the leftover row, got:\n%s", out)
	}
	if !strings.Contains(out, `"operation":"delete"`) || !strings.Contains(out, "lock timeout") {
		t.Errorf("expected the delete operation and its error in the log, got:\n%s", out)
	}
}

func TestLifecycleLogsOperationFields(t *testing.T) {
	ctx := context.Background()
	log, buf := captureLogger()

	rec, err := Create(ctx, postgresSpy(int64(4)), nil, "widgets", "widget_id", widget, WithLogger(log))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	rec.Close(ctx)

	if _, err := Create(ctx, &spyDriver{name: "postgres", connectErr: errors.New("refused")}, nil,
		"widgets", "widget_id", widget, WithLogger(log)); err == nil {
		t.Fatal("expected a connection failure")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	find := func(msg string) string {
		for _, line := range lines {
			if strings.Contains(line, msg) {
				return line
			}
		}
		t.Fatalf("no %q log line in:\n%s", msg, buf.String())
		return ""
	}

	inserted := find("Fixture inserted")
	if !strings.Contains(inserted, `"operation":"create"`) || !strings.Contains(inserted, `"duration_ms"`) {
		t.Errorf("insert log lacks operation or duration: %s", inserted)
	}
	deleted := find("Fixture deleted")
	if !strings.Contains(deleted, `"operation":"delete"`) || !strings.Contains(deleted, `"duration_ms"`) {
		t.Errorf("delete log lacks operation or duration: %s", deleted)
	}
	failed := find("Fixture creation failed")
	if !strings.Contains(failed, `"operation":"create"`) || !strings.Contains(failed, `"code":"CONNECTION_FAILED"`) {
		t.Errorf("failure log lacks operation or code: %s", failed)
	}
}

func TestTeardownForeignKeyViolation(t *testing.T) {
	ctx := context.Background()
	log, buf := captureLogger()
	drv := postgresSpy(int64(5))
	drv.conn.failOn = map[string]error{"DELETE": &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}}

	rec, err := Create(ctx, drv, nil, "customers", "id", map[string]any{"name": "Ada"}, WithLogger(log))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	rec.Close(ctx)

	appErr, ok := apperrors.AsAppError(rec.TeardownErr())
	if !ok {
		t.Fatalf("expected AppError, got %v", rec.TeardownErr())
	}
	if appErr.Details["reason"] != "foreign_key" {
		t.Errorf("details = %v", appErr.Details)
	}
	if !strings.Contains(buf.String(), "still referenced") {
		t.Errorf("expected foreign key hint in log, got:\n%s", buf.String())
	}
}

func TestTeardownCloseFailure(t *testing.T) {
	ctx := context.Background()
	drv := postgresSpy(int64(5))
	drv.conn.closeErr = errors.New("broken pipe")

	rec, err := Create(ctx, drv, nil, "widgets", "widget_id", widget, quiet())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	rec.Close(ctx)

	appErr, ok := apperrors.AsAppError(rec.TeardownErr())
	if !ok || appErr.Code != apperrors.ErrCodeTeardownFailed {
		t.Fatalf("expected TEARDOWN_FAILED, got %v", rec.TeardownErr())
	}
	if appErr.Details["phase"] != "close" {
		t.Errorf("details = %v", appErr.Details)
	}
	if rec.State() != StateClosed {
		t.Errorf("State() = %s", rec.State())
	}
}

func TestRecordAccessors(t *testing.T) {
	values := map[string]any{"qty": 5, "name": "bolt", "active": true}
	rec, err := Create(context.Background(), postgresSpy(int64(1)), nil, "widgets", "widget_id", values, quiet())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer rec.Close(context.Background())

	cols := rec.Columns()
	if strings.Join(cols, ",") != "active,name,qty" {
		t.Errorf("Columns() = %v", cols)
	}
	cols[0] = "changed"
	if rec.Columns()[0] != "active" {
		t.Error("Columns() must return a copy")
	}

	values["name"] = "nut"
	if v, _ := rec.ValueOf("name"); v != "bolt" {
		t.Errorf("record must not share the caller's map, got %v", v)
	}
	if _, ok := rec.ValueOf("missing"); ok {
		t.Error("ValueOf(missing) should report false")
	}
	if got := rec.Values(); got["widget_id"] != int64(1) || len(got) != 4 {
		t.Errorf("Values() = %v", got)
	}
	if rec.Table() != "widgets" || rec.PrimaryKeyColumn() != "widget_id" {
		t.Errorf("Table() = %q, PrimaryKeyColumn() = %q", rec.Table(), rec.PrimaryKeyColumn())
	}
	if rec.String() != "widgets.widget_id=1" {
		t.Errorf("String() = %q", rec.String())
	}
	if rec.ID().String() == "" {
		t.Error("expected a record id")
	}
}

func TestCustomRegistry(t *testing.T) {
	reg := dialect.NewRegistry()
	reg.Register("cockroach", dialect.Returning{})
	drv := &spyDriver{name: "cockroach", conn: &spyConn{results: map[string][][]any{"INSERT": {{"a1"}}}}}

	rec, err := Create(context.Background(), drv, nil, "widgets", "id", widget, WithRegistry(reg), quiet())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	rec.Close(context.Background())

	if got := drv.conn.executed[len(drv.conn.executed)-1]; got != "DELETE FROM widgets WHERE id = 'a1'" {
		t.Errorf("delete = %q", got)
	}

	_, err = Create(context.Background(), postgresSpy(int64(1)), nil, "widgets", "id", widget, WithRegistry(reg), quiet())
	if !apperrors.HasCode(err, apperrors.ErrCodeUnsupportedDialect) {
		t.Errorf("expected UNSUPPORTED_DIALECT for a driver missing from the registry, got %v", err)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateUninitialized: "uninitialized",
		StateInserting:     "inserting",
		StateInserted:      "inserted",
		StateDeleting:      "deleting",
		StateClosed:        "closed",
		StateFailed:        "failed",
		State(99):          "unknown",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), s.String(), want)
		}
	}
}

func TestMustCreateRegistersCleanup(t *testing.T) {
	drv := postgresSpy(int64(11))

	t.Run("inner", func(t *testing.T) {
		rec := MustCreate(t, drv, nil, "widgets", "widget_id", widget, quiet())
		if rec.State() != StateInserted {
			t.Errorf("State() = %s", rec.State())
		}
		if drv.conn.closes != 0 {
			t.Error("record closed before the test ended")
		}
	})

	if drv.conn.closes != 1 {
		t.Errorf("closes = %d after the test ended, want 1", drv.conn.closes)
	}
}

func TestMustCreateFailure(t *testing.T) {
	tb := &fakeTB{TB: t}
	drv := &spyDriver{name: "oracle"}

	if rec := MustCreate(tb, drv, nil, "widgets", "id", widget, quiet()); rec != nil {
		t.Error("expected nil record")
	}
	if !strings.Contains(tb.fatal, "UNSUPPORTED_DIALECT") {
		t.Errorf("fatal = %q", tb.fatal)
	}
	if len(tb.cleanups) != 0 {
		t.Error("no cleanup should be registered for a failed create")
	}
}
