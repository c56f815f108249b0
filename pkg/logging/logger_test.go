package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log JSON %q: %v", buf.String(), err)
	}
	return entry
}

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected slog.Level
	}{
		{"debug_level", "DEBUG", slog.LevelDebug},
		{"warning_alias", "WARNING", slog.LevelWarn},
		{"error_level", "error", slog.LevelError},
		{"invalid_falls_back_to_info", "LOUD", slog.LevelInfo},
		{"empty_falls_back_to_info", "", slog.LevelInfo},
	}

	original, had := os.LookupEnv(LevelEnvVar)
	defer func() {
		if had {
			os.Setenv(LevelEnvVar, original)
		} else {
			os.Unsetenv(LevelEnvVar)
		}
	}()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv(LevelEnvVar, tt.envValue)
			if got := getLogLevelFromEnv(); got != tt.expected {
				t.Errorf("getLogLevelFromEnv() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLoggerWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelDebug)
	ctx := WithCorrelationID(context.Background(), "tick-42")

	t.Run("info_carries_correlation_id", func(t *testing.T) {
		buf.Reset()
		logger.Info(ctx, "broadphase rebuilt", "objects", 12)
		entry := decodeEntry(t, &buf)
		if entry["msg"] != "broadphase rebuilt" {
			t.Errorf("msg = %v", entry["msg"])
		}
		if entry["correlation_id"] != "tick-42" {
			t.Errorf("correlation_id = %v, want tick-42", entry["correlation_id"])
		}
		if entry["objects"] != float64(12) {
			t.Errorf("objects = %v, want 12", entry["objects"])
		}
	})

	t.Run("error_includes_error_text", func(t *testing.T) {
		buf.Reset()
		logger.Error(ctx, "narrow phase failed", errors.New("unsupported shape pair"))
		entry := decodeEntry(t, &buf)
		if entry["level"] != "ERROR" {
			t.Errorf("level = %v, want ERROR", entry["level"])
		}
		if entry["error"] != "unsupported shape pair" {
			t.Errorf("error = %v", entry["error"])
		}
	})

	t.Run("sensitive_keys_are_redacted", func(t *testing.T) {
		buf.Reset()
		logger.Warn(ctx, "config loaded", "api_token", "abc")
		entry := decodeEntry(t, &buf)
		if entry["api_token"] != "[REDACTED]" {
			t.Errorf("api_token = %v, want [REDACTED]", entry["api_token"])
		}
	})

	t.Run("domain_keys_are_kept", func(t *testing.T) {
		buf.Reset()
		logger.Info(ctx, "pair", "shape_key", "poly", "author", "demo")
		entry := decodeEntry(t, &buf)
		if entry["shape_key"] != "poly" || entry["author"] != "demo" {
			t.Errorf("entry = %v, want keys left intact", entry)
		}
	})

	t.Run("no_correlation_id_without_context_value", func(t *testing.T) {
		buf.Reset()
		logger.Debug(context.Background(), "plain")
		entry := decodeEntry(t, &buf)
		if _, ok := entry["correlation_id"]; ok {
			t.Error("correlation_id should be absent")
		}
	})
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelWarn)
	logger.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at WARN level, got %q", buf.String())
	}

	Discard().Error(context.Background(), "dropped", errors.New("x"))
}

func TestCorrelationID(t *testing.T) {
	id := GetCorrelationID(WithCorrelationID(context.Background(), ""))
	if len(id) != 16 {
		t.Errorf("generated correlation ID length = %d, want 16", len(id))
	}
	if GenerateCorrelationID() == GenerateCorrelationID() {
		t.Error("GenerateCorrelationID() returned duplicate IDs")
	}
	if got := GetCorrelationID(context.Background()); got != "" {
		t.Errorf("GetCorrelationID() = %q, want empty", got)
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "ctx") != nil {
		t.Error("WrapError(nil) should return nil")
	}
	base := errors.New("degenerate polygon")
	wrapped := WrapError(base, "body %d shape %d", 7, 1)
	if wrapped.Error() != "body 7 shape 1: degenerate polygon" {
		t.Errorf("WrapError() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("WrapError() should preserve the original error")
	}
}
