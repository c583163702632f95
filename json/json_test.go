package json

import (
	"bytes"
	stdjson "encoding/json"
	"strings"
	"testing"
)

type testReport struct {
	RunID    string   `json:"run_id"`
	Workers  int      `json:"workers" default:"4"`
	Format   string   `json:"format" default:"png"`
	Failures []string `json:"failures"`
}

func TestMarshalAppliesDefaults(t *testing.T) {
	report := &testReport{RunID: "r1"}

	data, err := Marshal(report)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if report.Workers != 4 || report.Format != "png" {
		t.Fatalf("defaults not applied: %+v", report)
	}

	var decoded testReport
	if err := stdjson.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("encoded JSON should be valid, got error: %v", err)
	}
	if decoded.RunID != "r1" || decoded.Workers != 4 {
		t.Fatalf("unexpected round trip: %+v", decoded)
	}
}

func TestUnmarshalAppliesDefaultsForMissingFields(t *testing.T) {
	var report testReport
	if err := Unmarshal([]byte(`{"run_id":"r2","workers":2}`), &report); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if report.Workers != 2 {
		t.Fatalf("explicit value overwritten: %d", report.Workers)
	}
	if report.Format != "png" {
		t.Fatalf("expected default format, got %q", report.Format)
	}
}

func TestEncoderIndents(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(&testReport{RunID: "r3"}); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"run_id\": \"r3\"") {
		t.Fatalf("expected indented output, got %s", buf.String())
	}

	var decoded testReport
	if err := NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if decoded.Format != "png" {
		t.Fatalf("unexpected decode: %+v", decoded)
	}
}

func TestNonStructValuesPassThrough(t *testing.T) {
	data, err := Marshal(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("Marshal map: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("unexpected map encoding %s", data)
	}

	data, err = MarshalIndent([]int{1, 2}, "", " ")
	if err != nil {
		t.Fatalf("MarshalIndent slice: %v", err)
	}
	if string(data) != "[\n 1,\n 2\n]" {
		t.Fatalf("unexpected slice encoding %q", data)
	}
}
