package events

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	ts := time.Date(2025, 11, 16, 10, 30, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func TestFormatterAssignsTimestamp(t *testing.T) {
	f := NewFormatterWithClock(fixedClock())

	ev := f.Format(SourceClientRequest)

	if ev.Timestamp != "2025-11-16T10:30:00Z" {
		t.Errorf("Timestamp = %q, want 2025-11-16T10:30:00Z", ev.Timestamp)
	}
	if ev.Source != SourceClientRequest {
		t.Errorf("Source = %q, want client_request", ev.Source)
	}
}

func TestAbsentOptionalFieldsAreOmitted(t *testing.T) {
	f := NewFormatterWithClock(fixedClock())

	ev := f.Format(SourceServerResponse, WithStatus(200))
	data, err := ev.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, absent := range []string{"method", "url", "request_payload", "response_payload", "detail"} {
		if _, ok := raw[absent]; ok {
			t.Errorf("serialized event contains absent field %q: %s", absent, data)
		}
	}
	for _, present := range []string{"source", "status", "timestamp"} {
		if _, ok := raw[present]; !ok {
			t.Errorf("serialized event missing field %q: %s", present, data)
		}
	}
}

func TestSerializedFieldOrder(t *testing.T) {
	f := NewFormatterWithClock(fixedClock())

	ev := f.Format(SourceOllamaResponse,
		WithMethod("POST"),
		WithURL("http://localhost:11434/api/generate"),
		WithStatus(200),
		WithRequestPayload(map[string]string{"prompt": "hi"}),
		WithResponsePayload(map[string]string{"response": "hello"}),
		WithDetail("ok"),
	)
	data, err := ev.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	s := string(data)
	order := []string{`"source"`, `"method"`, `"url"`, `"status"`, `"request_payload"`, `"response_payload"`, `"detail"`, `"timestamp"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(s, key)
		if idx < 0 {
			t.Fatalf("field %s missing from %s", key, s)
		}
		if idx < last {
			t.Errorf("field %s out of order in %s", key, s)
		}
		last = idx
	}

	if !strings.HasPrefix(s, `{"source"`) {
		t.Errorf("source is not the first field: %s", s)
	}
	if !strings.HasSuffix(s, `"}`) || strings.Index(s, `"timestamp"`) < strings.LastIndex(s, `"detail"`) {
		t.Errorf("timestamp is not the last field: %s", s)
	}
}

func TestZeroStatusIsOmitted(t *testing.T) {
	f := NewFormatterWithClock(fixedClock())

	ev := f.Format(SourceOllamaError, WithDetail("connection refused"))
	data, err := ev.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), `"status"`) {
		t.Errorf("unset status serialized: %s", data)
	}
}

func TestOpaquePayloadPassthrough(t *testing.T) {
	f := NewFormatterWithClock(fixedClock())

	// Malformed or unusual payload values are carried opaquely.
	ev := f.Format(SourceOllamaResponse, WithResponsePayload(map[string]any{
		"raw_response": "<html>not json</html>",
	}))
	data, err := ev.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), "raw_response") {
		t.Errorf("payload not passed through: %s", data)
	}
}
