package offline

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func spanAttr(s sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range s.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestWorker_Spans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	o := newOrigin(t, map[string]string{"/app.js": "js"})
	w, err := NewWorker(NewMemoryStorage(0), Options{
		Prefix:  "app",
		Version: 1,
		Origin:  o.srv.URL,
		Assets:  []string{"/app.js", "/gone.js"},
		Client:  o.srv.Client(),
		Logger:  quietLogger(),
		Tracer:  tp.Tracer("test"),
	})
	if err != nil {
		t.Fatal(err)
	}
	activate(t, w)
	if _, _, err := get(t, w, o.srv.URL+"/app.js", nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := get(t, w, o.srv.URL+"/missing.js", nil); err != nil {
		t.Fatal(err)
	}

	spans := rec.Ended()
	var names []string
	for _, s := range spans {
		names = append(names, s.Name())
	}
	want := []string{"offline.install", "offline.activate", "offline.fetch", "offline.fetch"}
	if len(names) != len(want) {
		t.Fatalf("spans = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("spans = %v, want %v", names, want)
		}
	}

	if v, ok := spanAttr(spans[0], "offline.failed"); !ok || v.AsInt64() != 1 {
		t.Errorf("install offline.failed = %v, want 1", v.Emit())
	}
	if v, _ := spanAttr(spans[2], "offline.source"); v.AsString() != "hit" {
		t.Errorf("first fetch source = %q, want hit", v.AsString())
	}
	if v, _ := spanAttr(spans[3], "http.response.status_code"); v.AsInt64() != 404 {
		t.Errorf("second fetch status = %d, want 404", v.AsInt64())
	}
	for _, s := range spans {
		if s.Status().Code == codes.Error {
			t.Errorf("span %s has error status: %s", s.Name(), s.Status().Description)
		}
	}
}
