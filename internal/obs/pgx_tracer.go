package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxStatementLen = 300

// PGXTracer implements pgx.QueryTracer with one client span per statement.
// Spans are named after the sqlc query name when the statement carries the
// "-- name: X :one" header.
type PGXTracer struct{}

var _ pgx.QueryTracer = PGXTracer{}

// TraceQueryStart opens the span.
func (PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	name, op := describeSQL(data.SQL)
	ctx, span := otel.Tracer("importa/pgx").Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", op),
		attribute.String("db.query.text", truncateSQL(data.SQL)),
	)
	return ctx
}

// TraceQueryEnd closes the span opened by TraceQueryStart.
func (PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if data.Err != nil {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, data.Err.Error())
	} else {
		span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	}
	span.End()
}

// describeSQL returns a span name and the leading SQL verb.
func describeSQL(sql string) (name, op string) {
	trimmed := strings.TrimSpace(sql)
	if strings.HasPrefix(trimmed, "-- name:") {
		header, rest, _ := strings.Cut(trimmed, "\n")
		if fields := strings.Fields(strings.TrimPrefix(header, "-- name:")); len(fields) > 0 {
			name = fields[0]
		}
		trimmed = strings.TrimSpace(rest)
	}
	if fields := strings.Fields(trimmed); len(fields) > 0 {
		op = strings.ToUpper(fields[0])
	}
	if name == "" {
		name = "pgx " + strings.ToLower(op)
	}
	return name, op
}

func truncateSQL(sql string) string {
	trimmed := strings.TrimSpace(sql)
	if len(trimmed) > maxStatementLen {
		return trimmed[:maxStatementLen] + "..."
	}
	return trimmed
}
