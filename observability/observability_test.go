package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("orders")
	if cfg.ServiceName != "orders" {
		t.Errorf("expected service name orders, got %q", cfg.ServiceName)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected insecure for development defaults")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("orders")
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected 15s interval, got %v", cfg.Interval)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("orders", "1.2.3", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, kv := range res.Attributes() {
		if kv.Key == "service.name" && kv.Value.AsString() == "orders" {
			found = true
		}
	}
	if !found {
		t.Error("expected service.name attribute on resource")
	}
}

func TestStartSpan_RecordsAttributesAndErrors(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), SpanDocumentGet)
	SetSpanAttribute(ctx, AttrDBContainer, "orders")
	SetSpanAttribute(ctx, AttrDBStatusCode, 404)
	SetSpanAttribute(ctx, "int64-key", int64(100))
	SetSpanAttribute(ctx, "float-key", 3.14)
	SetSpanAttribute(ctx, "bool-key", true)
	SetSpanAttribute(ctx, "slice-key", []string{"a", "b"})
	SetSpanAttribute(ctx, "unsupported-key", struct{}{})
	SetSpanError(ctx, fmt.Errorf("boom"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	got := spans[0]
	if got.Name != SpanDocumentGet {
		t.Errorf("expected span %q, got %q", SpanDocumentGet, got.Name)
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range got.Attributes {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrDBContainer].AsString() != "orders" {
		t.Errorf("expected container attribute, got %v", attrs)
	}
	if attrs[AttrDBStatusCode].AsInt64() != 404 {
		t.Errorf("expected status code attribute, got %v", attrs)
	}
	if _, ok := attrs["unsupported-key"]; ok {
		t.Error("unsupported attribute types must be ignored")
	}
	if len(got.Events) != 1 {
		t.Errorf("expected one recorded error event, got %d", len(got.Events))
	}
}

func TestSpanHelpers_NoRecordingSpan(t *testing.T) {
	ctx := context.Background()
	// must not panic
	SetSpanAttribute(ctx, "key", "value")
	SetSpanError(ctx, fmt.Errorf("no span"))
	if SpanFromContext(ctx) == nil {
		t.Fatal("expected noop span")
	}
}

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordRequestStart(ctx, "get")
	m.RecordRequestEnd(ctx, "get", "failure", 15*time.Millisecond)
	m.RecordFailure(ctx, "get", "NotFound")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	seen := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			seen[md.Name] = md.Data
		}
	}

	for _, name := range []string{MetricRequests, MetricRequestDuration, MetricRequestsActive, MetricFailures} {
		if _, ok := seen[name]; !ok {
			t.Errorf("expected metric %s to be recorded", name)
		}
	}

	failures, ok := seen[MetricFailures].(metricdata.Sum[int64])
	if !ok || len(failures.DataPoints) != 1 || failures.DataPoints[0].Value != 1 {
		t.Fatalf("unexpected failures data: %#v", seen[MetricFailures])
	}
	code, _ := failures.DataPoints[0].Attributes.Value("code")
	if code.AsString() != "NotFound" {
		t.Errorf("expected code=NotFound, got %q", code.AsString())
	}

	active, ok := seen[MetricRequestsActive].(metricdata.Sum[int64])
	if !ok || len(active.DataPoints) != 1 || active.DataPoints[0].Value != 0 {
		t.Errorf("expected in-flight gauge back at 0, got %#v", seen[MetricRequestsActive])
	}
}

func TestMeterAndTracerAccessors(t *testing.T) {
	if Tracer("x") == nil {
		t.Fatal("expected non-nil tracer")
	}
	if Meter("x") == nil {
		t.Fatal("expected non-nil meter")
	}
}
