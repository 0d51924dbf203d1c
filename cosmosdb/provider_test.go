package cosmosdb

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/cosmosdb/errors"
	"github.com/kbukum/cosmosdb/observability"
	"github.com/kbukum/cosmosdb/provider"
)

func fastRetry() provider.RetryConfig {
	cfg := provider.DefaultRetryConfig()
	cfg.MaxAttempts = 3
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 2 * time.Millisecond
	return cfg
}

func TestGetProvider_RetryLeavesClassifiedFailuresAlone(t *testing.T) {
	c, rec := newTestClient(t, http.StatusNotFound, "")

	p := provider.Chain(
		provider.WithRetry[GetIn, Result[GetOut[order], GetFailureCode]](fastRetry()),
	)(NewGetProvider[order](c))

	if p.Name() != "cosmosdb.get" || !p.IsAvailable(context.Background()) {
		t.Fatalf("unexpected provider identity %q", p.Name())
	}

	res, err := p.Execute(context.Background(), GetIn{ContainerID: "orders", DocumentID: "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f, failed := res.Failure(); !failed || f.Code != GetNotFound {
		t.Errorf("expected NotFound, got %+v", res)
	}
	if hits := rec.snapshot().hits; hits != 1 {
		t.Errorf("classified failures must not be retried, got %d requests", hits)
	}
}

func TestUpdateProvider_RetriesConnectionFailures(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	c := newClientFor(t, "http://"+addr)
	attempts := 0
	cfg := fastRetry()
	cfg.OnRetry = func(int, error, time.Duration) { attempts++ }

	p := provider.WithRetry[UpdateIn, Result[UpdateOut[order], UpdateFailureCode]](cfg)(NewUpdateProvider[order](c))
	if p.Name() != "cosmosdb.update" {
		t.Errorf("unexpected name %q", p.Name())
	}

	_, err = p.Execute(context.Background(), NewUpdateIn("orders", "42", "p", []Operation{Set("/a", 1)}, ""))
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeConnectionFailed {
		t.Fatalf("expected CONNECTION_FAILED, got %v", err)
	}
	if attempts != cfg.MaxAttempts-1 {
		t.Errorf("expected %d retries, got %d", cfg.MaxAttempts-1, attempts)
	}
	if c.live.Load() != 0 {
		t.Error("signers leaked across retries")
	}
}

func TestGetProvider_CircuitOpensOnThrottling(t *testing.T) {
	c, rec := newTestClient(t, http.StatusTooManyRequests, `{"code":"TooManyRequests","message":"request rate is large"}`)

	cb := provider.NewCircuitBreaker("account", provider.CircuitBreakerConfig{MaxFailures: 2, OpenTimeout: time.Minute})
	p := provider.Chain(
		provider.WithRetry[GetIn, Result[GetOut[order], GetFailureCode]](fastRetry()),
		provider.WithCircuitBreaker[GetIn, Result[GetOut[order], GetFailureCode]](cb, GetThrottled[order]),
	)(NewGetProvider[order](c))

	in := GetIn{ContainerID: "orders", DocumentID: "42"}
	for i := 0; i < 2; i++ {
		res, err := p.Execute(context.Background(), in)
		if err != nil || !GetThrottled(res) {
			t.Fatalf("call %d: expected throttled result, got %+v, %v", i, res, err)
		}
	}

	_, err := p.Execute(context.Background(), in)
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeCircuitOpen {
		t.Fatalf("expected CIRCUIT_OPEN, got %v", err)
	}
	if hits := rec.snapshot().hits; hits != 2 {
		t.Errorf("open circuit must not send, and retry must not retry it; got %d requests", hits)
	}
}

func TestThrottledPredicates(t *testing.T) {
	throttledGet := Fail[GetOut[order]](Failure[GetFailureCode]{Code: GetTooManyRequests})
	notFound := Fail[GetOut[order]](Failure[GetFailureCode]{Code: GetNotFound})
	if !GetThrottled(throttledGet) || GetThrottled(notFound) || GetThrottled(Success[GetOut[order], GetFailureCode](GetOut[order]{})) {
		t.Error("GetThrottled must only match TooManyRequests failures")
	}

	throttledUpdate := Fail[UpdateOut[order]](Failure[UpdateFailureCode]{Code: UpdateTooManyRequests})
	precondition := Fail[UpdateOut[order]](Failure[UpdateFailureCode]{Code: UpdatePreconditionFailed})
	if !UpdateThrottled(throttledUpdate) || UpdateThrottled(precondition) {
		t.Error("UpdateThrottled must only match TooManyRequests failures")
	}
}

func TestClient_Telemetry(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	c, _ := newTestClient(t, http.StatusPreconditionFailed, `{"code":"PreconditionFailed","message":"etag mismatch"}`, WithMetrics(metrics))
	in := NewUpdateIn("orders", "42", "p", []Operation{Set("/a", 1), Remove("/b")}, `"stale"`)
	if _, err := UpdateDocument[order](context.Background(), c, in); err != nil {
		t.Fatal(err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != observability.SpanDocumentUpdate {
		t.Errorf("unexpected span name %q", spans[0].Name)
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes {
		attrs[kv.Key] = kv.Value
	}
	if attrs[observability.AttrFailureCode].AsString() != "PreconditionFailed" {
		t.Errorf("expected failure code attribute, got %v", attrs)
	}
	if attrs[observability.AttrDBStatusCode].AsInt64() != http.StatusPreconditionFailed {
		t.Errorf("expected status attribute, got %v", attrs)
	}
	if attrs[observability.AttrOperationCount].AsInt64() != 2 {
		t.Errorf("expected operation count attribute, got %v", attrs)
	}
	if attrs[observability.AttrDBName].AsString() != "app" {
		t.Errorf("expected database attribute, got %v", attrs)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	var failures metricdata.Sum[int64]
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name == observability.MetricFailures {
				failures, _ = md.Data.(metricdata.Sum[int64])
			}
		}
	}
	if len(failures.DataPoints) != 1 {
		t.Fatalf("expected one failure series, got %#v", failures)
	}
	code, _ := failures.DataPoints[0].Attributes.Value("code")
	if code.AsString() != "PreconditionFailed" {
		t.Errorf("expected failure code PreconditionFailed, got %q", code.AsString())
	}
}
