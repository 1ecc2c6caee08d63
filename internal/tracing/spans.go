package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrPickerID     = "picker.id"
	AttrFontFamily   = "font.family"
	AttrFontCount    = "catalog.font_count"
	AttrCatalogSrc   = "catalog.source"
	AttrPreviewUpTo  = "preview.up_to"
	AttrPreviewCount = "preview.loaded"
)

// Span names.
const (
	SpanCatalogInit      = "catalog.init"
	SpanCatalogSetActive = "catalog.set_active_font"
	SpanPreviewDownload  = "catalog.download_previews"
)

// Start opens a span on tracer. A nil tracer yields a non-recording span.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// End closes span, recording err when non-nil.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
