package fixture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/dbprime/database"
	"github.com/kbukum/dbprime/dialect"
	apperrors "github.com/kbukum/dbprime/errors"
	"github.com/kbukum/dbprime/logger"
	"github.com/kbukum/dbprime/observability"
)

// Record is one inserted row and the connection that owns it. Its values
// are fixed at creation; the primary key is set once the insert commits.
// Close deletes the row and closes the connection.
type Record struct {
	id       uuid.UUID
	table    string
	pkColumn string
	columns  []string
	values   map[string]any
	driver   string
	dialect  dialect.Dialect

	mu          sync.Mutex
	handle      *database.Handle
	pk          any
	hasPK       bool
	state       State
	teardownErr error

	log     *logger.Logger
	tracer  trace.Tracer
	metrics *observability.Metrics
}

// ID identifies the record in logs and spans.
func (r *Record) ID() uuid.UUID { return r.id }

// Table returns the table the row was inserted into.
func (r *Record) Table() string { return r.table }

// PrimaryKeyColumn returns the name of the key column.
func (r *Record) PrimaryKeyColumn() string { return r.pkColumn }

// Columns returns the inserted column names in sorted order.
func (r *Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Values returns a copy of the inserted values, plus the primary key once
// known.
func (r *Record) Values() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]any, len(r.values)+1)
	for k, v := range r.values {
		out[k] = v
	}
	if r.hasPK {
		out[r.pkColumn] = r.pk
	}
	return out
}

// ValueOf returns the value given for column. The key column reports the
// database-assigned key.
func (r *Record) ValueOf(column string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if column == r.pkColumn && r.hasPK {
		return r.pk, true
	}
	v, ok := r.values[column]
	return v, ok
}

// PrimaryKey returns the key the database assigned, if the insert committed.
func (r *Record) PrimaryKey() (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pk, r.hasPK
}

// State returns the lifecycle state.
func (r *Record) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Driver returns the identity of the driver the record was created with.
func (r *Record) Driver() string { return r.driver }

// Dialect returns the name of the dialect used for the record.
func (r *Record) Dialect() string { return r.dialect.Name() }

// TeardownErr returns the TEARDOWN_FAILED error recorded by Close, if any.
func (r *Record) TeardownErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.teardownErr
}

func (r *Record) String() string {
	if pk, ok := r.PrimaryKey(); ok {
		return fmt.Sprintf("%s.%s=%v", r.table, r.pkColumn, pk)
	}
	return fmt.Sprintf("%s.%s=?", r.table, r.pkColumn)
}

// Close deletes the row and closes the connection. Failures are logged and
// kept for TeardownErr, never returned. Calling Close again is a no-op.
func (r *Record) Close(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateClosed {
		r.log.Debug("Fixture already closed", logger.Fields(logger.FieldState, r.state.String()))
		return
	}

	ctx, span := r.tracer.Start(ctx, observability.SpanFixtureDelete, trace.WithAttributes(
		attribute.String(observability.AttrFixtureID, r.id.String()),
		attribute.String(observability.AttrTable, r.table),
		attribute.String(observability.AttrPKColumn, r.pkColumn),
		attribute.String(observability.AttrDialect, r.dialect.Name()),
		attribute.String(observability.AttrDriver, r.driver),
	))
	defer span.End()

	log := r.log.WithContext(ctx)
	r.state = StateDeleting

	if r.hasPK {
		start := time.Now()
		if err := r.deleteRow(ctx); err != nil {
			r.teardownFailed(ctx, span, log, err, true)
		} else {
			r.metrics.RecordDeleted(ctx, r.table, r.dialect.Name())
			fields := logger.DurationFields(opDelete, time.Since(start))
			fields[logger.FieldPK] = r.pk
			log.Debug("Fixture deleted", fields)
		}
	} else {
		log.Debug("Fixture has no primary key, skipping delete")
	}

	if r.handle != nil {
		if err := r.handle.Close(); err != nil {
			r.teardownFailed(ctx, span, log, err, false)
		}
	}

	r.state = StateClosed
	span.SetAttributes(attribute.String(observability.AttrState, r.state.String()))
}

func (r *Record) deleteRow(ctx context.Context) error {
	stmt, err := r.dialect.RenderDelete(r.table, r.pkColumn, r.pk)
	if err != nil {
		return err
	}
	if err := r.handle.Execute(ctx, stmt); err != nil {
		return err
	}
	return r.handle.Commit(ctx)
}

// teardownFailed records err as TEARDOWN_FAILED. rowLeft marks a failed
// delete, which leaves the row in the table.
func (r *Record) teardownFailed(ctx context.Context, span trace.Span, log *logger.Logger, err error, rowLeft bool) {
	appErr := apperrors.TeardownFailed(r.table, r.pk).
		WithCause(err).
		WithSQL(apperrors.SQLOf(err))

	kind := database.Classify(err)
	fields := logger.MergeWithError(logger.Fields(
		logger.FieldOperation, opDelete,
		logger.FieldPK, r.pk,
		logger.FieldCode, string(appErr.Code),
		"kind", kind,
	), err)
	if appErr.SQL != "" {
		fields[logger.FieldSQL] = appErr.SQL
	}

	switch {
	case rowLeft && kind == database.KindForeignKey:
		appErr.WithDetail("reason", kind)
		log.Error("Fixture row is still referenced by another row and was left behind; "+
			"close dependent fixtures first", fields)
	case rowLeft:
		log.Error("Fixture cleanup failed, the row may be left behind", fields)
	default:
		appErr.WithDetail("phase", "close")
		log.Error("Fixture connection did not close cleanly", fields)
	}

	if rowLeft {
		r.metrics.RecordLeaked(ctx, r.table, r.dialect.Name())
	}
	observability.RecordError(span, appErr)

	if r.teardownErr == nil {
		r.teardownErr = appErr
	}
}
