package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	kv := sanitizeKVs([]interface{}{
		"gemini_api_key", "AIzaSyExampleExampleExample",
		"model", "gemini-2.5-pro",
		"error", "AIzaSyExampleExampleExample",
		"dangling",
	})
	if len(kv) != 7 {
		t.Fatalf("unexpected length: got=%d want=%d", len(kv), 7)
	}
	if kv[1] != "[REDACTED]" {
		t.Fatalf("api key not redacted: got=%v", kv[1])
	}
	if kv[3] != "gemini-2.5-pro" {
		t.Fatalf("model should pass through: got=%v", kv[3])
	}
	if kv[5] != "[REDACTED]" {
		t.Fatalf("key-looking value not redacted: got=%v", kv[5])
	}
	if kv[6] != "dangling" {
		t.Fatalf("odd trailing key dropped: got=%v", kv[6])
	}
}

func TestSanitizeValueNestedMap(t *testing.T) {
	got := sanitizeValue("payload", map[string]interface{}{
		"Authorization": "Bearer abc",
		"customer":      "ПАО \"Газпром\"",
	})
	m, ok := got.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map, got %T", got)
	}
	if m["Authorization"] != "[REDACTED]" {
		t.Fatalf("nested authorization not redacted: %v", m["Authorization"])
	}
	if m["customer"] != "ПАО \"Газпром\"" {
		t.Fatalf("customer changed: %v", m["customer"])
	}
}

func TestNopLogger(t *testing.T) {
	log := Nop().With("service", "test")
	log.Info("hello", "k", "v")
	log.Sync()
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	if got := levelFromEnv(); got != zapcore.WarnLevel {
		t.Fatalf("want=%v got=%v", zapcore.WarnLevel, got)
	}
	t.Setenv("LOG_LEVEL", "loud")
	if got := levelFromEnv(); got != zapcore.DebugLevel {
		t.Fatalf("unparsable level: want=%v got=%v", zapcore.DebugLevel, got)
	}
}
