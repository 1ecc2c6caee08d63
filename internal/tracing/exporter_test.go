package tracing

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type closeBuffer struct {
	bytes.Buffer
	closed int
}

func (b *closeBuffer) Close() error {
	b.closed++
	return nil
}

func export(t *testing.T, stubs ...tracetest.SpanStub) []SpanRecord {
	t.Helper()
	var buf closeBuffer
	e := NewJSONLExporter(&buf)
	require.NoError(t, e.ExportSpans(context.Background(), tracetest.SpanStubs(stubs).Snapshots()))

	var out []SpanRecord
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestJSONLExporter_LiftsPickerAttributes(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := export(t, tracetest.SpanStub{
		Name:      SpanCatalogSetActive,
		StartTime: start,
		EndTime:   start.Add(1500 * time.Microsecond),
		Attributes: []attribute.KeyValue{
			attribute.String(AttrPickerID, "heading"),
			attribute.String(AttrFontFamily, "Lato"),
			attribute.Int(AttrFontCount, 40),
		},
	})

	require.Len(t, recs, 1)
	rec := recs[0]
	require.Equal(t, SpanCatalogSetActive, rec.Name)
	require.Equal(t, "heading", rec.PickerID)
	require.Equal(t, "Lato", rec.Family)
	require.Equal(t, 1500*time.Microsecond, rec.Duration)
	require.True(t, rec.Start.Equal(start))
	require.Equal(t, map[string]any{AttrFontCount: float64(40)}, rec.Attributes)
	require.False(t, rec.Failed)
}

func TestJSONLExporter_ErrorFromStatusOrEvent(t *testing.T) {
	recs := export(t,
		tracetest.SpanStub{
			Name:   SpanCatalogInit,
			Status: sdktrace.Status{Code: codes.Error, Description: "catalog unavailable"},
		},
		tracetest.SpanStub{
			Name:   SpanPreviewDownload,
			Status: sdktrace.Status{Code: codes.Error},
			Events: []sdktrace.Event{{
				Name:       exceptionEvent,
				Attributes: []attribute.KeyValue{attribute.String(exceptionMessage, "preview fetch failed")},
			}},
		},
	)

	require.Len(t, recs, 2)
	require.True(t, recs[0].Failed)
	require.Equal(t, "catalog unavailable", recs[0].Error)
	require.True(t, recs[1].Failed)
	require.Equal(t, "preview fetch failed", recs[1].Error)
}

func TestJSONLExporter_Shutdown(t *testing.T) {
	var buf closeBuffer
	e := NewJSONLExporter(&buf)
	require.NoError(t, e.Shutdown(context.Background()))
	require.NoError(t, e.Shutdown(context.Background()))
	require.Equal(t, 1, buf.closed)

	stub := tracetest.SpanStub{Name: "late"}
	err := e.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
	require.ErrorIs(t, err, errExporterClosed)
}

func TestNewFileExporter_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "traces.jsonl")
	e, err := NewFileExporter(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.NoError(t, e.Shutdown(context.Background()))
}
