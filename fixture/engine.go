package fixture

import (
	"context"
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

// Operation names carried in log fields.
const (
	opCreate = "create"
	opDelete = "delete"
)

// Create inserts one row into table and returns the Record that owns it.
// The row is committed on its own connection, which stays open until Close.
//
// Dialect lookup and input checks run before any connection is opened. On
// a failure after connecting, the connection is closed before the error is
// returned and no Record is produced.
func Create(ctx context.Context, drv database.Driver, args database.Args,
	table, pkColumn string, values map[string]any, opts ...Option) (*Record, error) {
	o := newOptions(opts)
	id := uuid.New()

	driverName := ""
	if drv != nil {
		driverName = drv.Name()
	}

	base := o.log.WithFields(logger.Fields(
		logger.FieldFixtureID, id.String(),
		logger.FieldTable, table,
		logger.FieldDriver, driverName,
	))

	ctx, span := o.tracer.Start(ctx, observability.SpanFixtureInsert, trace.WithAttributes(
		attribute.String(observability.AttrFixtureID, id.String()),
		attribute.String(observability.AttrTable, table),
		attribute.String(observability.AttrPKColumn, pkColumn),
		attribute.String(observability.AttrDriver, driverName),
	))
	defer span.End()
	log := base.WithContext(ctx)

	fail := func(err error) (*Record, error) {
		code := "UNKNOWN"
		if appErr, ok := apperrors.AsAppError(err); ok {
			code = string(appErr.Code)
		}
		o.metrics.RecordFailed(ctx, table, code)
		observability.RecordError(span, err)
		span.SetAttributes(attribute.String(observability.AttrState, StateFailed.String()))
		fields := logger.ErrorFields(opCreate, err)
		fields[logger.FieldCode] = code
		fields[logger.FieldState] = StateFailed.String()
		log.Warn("Fixture creation failed", fields)
		return nil, err
	}

	if drv == nil {
		return fail(apperrors.InvalidInput("driver", "a driver is required"))
	}
	d, err := o.registry.Lookup(driverName)
	if err != nil {
		return fail(err)
	}
	span.SetAttributes(attribute.String(observability.AttrDialect, d.Name()))

	if len(values) == 0 {
		return fail(apperrors.EmptyRecord(table))
	}
	if table == "" {
		return fail(apperrors.InvalidInput("table", "a table name is required"))
	}
	if pkColumn == "" {
		return fail(apperrors.InvalidInput("pk_column", "a primary key column is required"))
	}

	columns := dialect.SortedColumns(values)
	insertSQL, err := d.RenderInsert(table, pkColumn, columns, values)
	if err != nil {
		return fail(err)
	}

	rec := &Record{
		id:       id,
		table:    table,
		pkColumn: pkColumn,
		columns:  columns,
		values:   copyValues(values),
		driver:   driverName,
		dialect:  d,
		state:    StateInserting,
		log:      base.WithFields(logger.Fields(logger.FieldPKColumn, pkColumn, logger.FieldDialect, d.Name())),
		tracer:   o.tracer,
		metrics:  o.metrics,
	}

	start := time.Now()
	h, err := database.Open(ctx, drv, args, o.log)
	if err != nil {
		return fail(err)
	}

	pk, err := insertRow(ctx, h, d, insertSQL)
	if err != nil {
		if closeErr := h.Close(); closeErr != nil {
			log.Warn("Closing connection after failed insert", logger.Fields(logger.FieldError, closeErr.Error()))
		}
		return fail(err)
	}

	rec.handle = h
	rec.pk = pk
	rec.hasPK = true
	rec.state = StateInserted

	o.metrics.RecordInserted(ctx, table, d.Name())
	span.SetAttributes(attribute.String(observability.AttrState, rec.state.String()))
	fields := logger.DurationFields(opCreate, time.Since(start))
	fields[logger.FieldPK] = pk
	rec.log.WithContext(ctx).Debug("Fixture inserted", fields)
	return rec, nil
}

// insertRow runs the insert, reads back the key and commits.
func insertRow(ctx context.Context, h *database.Handle, d dialect.Dialect, insertSQL string) (any, error) {
	if err := h.Execute(ctx, insertSQL); err != nil {
		return nil, err
	}

	pk, err := d.ExtractPrimaryKey(ctx, h)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.SQL == "" {
			appErr.WithSQL(h.LastSQL())
		}
		return nil, err
	}

	if err := h.Commit(ctx); err != nil {
		return nil, err
	}
	return pk, nil
}

func copyValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
