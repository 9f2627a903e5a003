package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for service spans
const TracerName = "pm-backend"

// Span attribute keys
var (
	SpanAttrProjectID = attribute.Key("project.id")
	SpanAttrTaskID    = attribute.Key("task.id")
	SpanAttrUserID    = attribute.Key("user.id")
	SpanAttrQuery     = attribute.Key("search.query")
)

// StartServiceSpan starts "<service>.<method>" on the global tracer.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "task", "update_status", telemetry.SpanAttrTaskID.Int(id))
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, service+"."+method, trace.WithAttributes(attrs...))
}

// RecordError marks span failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
