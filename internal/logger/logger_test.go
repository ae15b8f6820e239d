package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestContextFieldsFlowThroughSlogBridge(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug"}, &buf)
	log := NewSlog(&zl)

	ctx := WithRequestID(context.Background(), "abc123")
	ctx = WithComponent(ctx, "kafka_consumer")
	ctx = WithCacheSource(ctx, "cache")

	log.InfoContext(ctx, "served", "count", 10)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v\nraw: %s", err, buf.String())
	}
	if line["request_id"] != "abc123" {
		t.Fatalf("request_id = %v", line["request_id"])
	}
	if line["component"] != "kafka_consumer" {
		t.Fatalf("component = %v", line["component"])
	}
	if line["cache_source"] != "cache" {
		t.Fatalf("cache_source = %v", line["cache_source"])
	}
	if line["msg"] != "served" {
		t.Fatalf("msg = %v", line["msg"])
	}
}

func TestEmptyContextValuesAreNotAttached(t *testing.T) {
	ctx := WithComponent(context.Background(), "")
	ctx = WithCacheSource(ctx, "")

	var buf bytes.Buffer
	zl := Build(Config{}, &buf)
	FromContext(ctx, &zl).Info().Msg("bare")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if _, ok := line["component"]; ok {
		t.Fatalf("component should be absent: %s", buf.String())
	}
	if _, ok := line["cache_source"]; ok {
		t.Fatalf("cache_source should be absent: %s", buf.String())
	}
}
