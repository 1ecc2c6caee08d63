package tracing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Names used by span.RecordError.
const (
	exceptionEvent   = "exception"
	exceptionMessage = "exception.message"
)

var errExporterClosed = errors.New("trace exporter is shut down")

// JSONLExporter appends one SpanRecord per line to a writer.
type JSONLExporter struct {
	mu  sync.Mutex
	out io.WriteCloser
	enc *json.Encoder
}

// NewJSONLExporter writes to w and closes it on Shutdown.
func NewJSONLExporter(w io.WriteCloser) *JSONLExporter {
	return &JSONLExporter{out: w, enc: json.NewEncoder(w)}
}

// NewFileExporter appends to the file at path, creating it and its parent
// directories if needed.
func NewFileExporter(path string) (*JSONLExporter, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- path comes from config
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return NewJSONLExporter(f), nil
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *JSONLExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out == nil {
		return errExporterClosed
	}
	for _, s := range spans {
		if err := e.enc.Encode(newSpanRecord(s)); err != nil {
			return fmt.Errorf("encode span %s: %w", s.Name(), err)
		}
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter. It may be called repeatedly.
func (e *JSONLExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out == nil {
		return nil
	}
	err := e.out.Close()
	e.out, e.enc = nil, nil
	return err
}

// SpanRecord is one line of the trace file. The picker and font
// attributes are lifted out of Attributes so traces can be grepped per
// picker.
type SpanRecord struct {
	Trace      string         `json:"trace_id"`
	Span       string         `json:"span_id"`
	Parent     string         `json:"parent_span_id,omitempty"`
	Name       string         `json:"name"`
	Start      time.Time      `json:"start"`
	Duration   time.Duration  `json:"duration_ns"`
	Failed     bool           `json:"failed,omitempty"`
	Error      string         `json:"error,omitempty"`
	PickerID   string         `json:"picker_id,omitempty"`
	Family     string         `json:"font_family,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func newSpanRecord(s sdktrace.ReadOnlySpan) SpanRecord {
	rec := SpanRecord{
		Trace:    s.SpanContext().TraceID().String(),
		Span:     s.SpanContext().SpanID().String(),
		Name:     s.Name(),
		Start:    s.StartTime(),
		Duration: s.EndTime().Sub(s.StartTime()),
	}
	if p := s.Parent(); p.IsValid() {
		rec.Parent = p.SpanID().String()
	}
	if st := s.Status(); st.Code == codes.Error {
		rec.Failed = true
		rec.Error = st.Description
	}
	if rec.Error == "" {
		rec.Error = recordedError(s)
	}

	for _, kv := range s.Attributes() {
		switch string(kv.Key) {
		case AttrPickerID:
			rec.PickerID = kv.Value.Emit()
		case AttrFontFamily:
			rec.Family = kv.Value.Emit()
		default:
			if rec.Attributes == nil {
				rec.Attributes = make(map[string]any)
			}
			rec.Attributes[string(kv.Key)] = kv.Value.AsInterface()
		}
	}
	return rec
}

// recordedError returns the message of the last exception event, if any.
func recordedError(s sdktrace.ReadOnlySpan) string {
	events := s.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Name != exceptionEvent {
			continue
		}
		for _, kv := range events[i].Attributes {
			if string(kv.Key) == exceptionMessage {
				return kv.Value.Emit()
			}
		}
	}
	return ""
}
