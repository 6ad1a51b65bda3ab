package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestRedactHandlerMasksPIIKeys tests that identity attribute keys are
// masked regardless of value.
func TestRedactHandlerMasksPIIKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "email key", key: "email", value: "someone"},
		{name: "full name key", key: "full_name", value: "anything"},
		{name: "data preview key", key: "data_preview", value: "lives in Austin"},
		{name: "dob key", key: "date_of_birth", value: "whatever"},
		{name: "token key", key: "access_token", value: "abc"},
		{name: "embedded keyword", key: "user_email_primary", value: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, false)
			logger.Info("test", tt.key, tt.value)

			out := buf.String()
			if strings.Contains(out, tt.value) {
				t.Errorf("value leaked into log output: %s", out)
			}
			if !strings.Contains(out, MaskValue) {
				t.Errorf("expected mask in output: %s", out)
			}
		})
	}
}

// TestRedactHandlerMasksPIIValues tests value-pattern masking for benign keys.
func TestRedactHandlerMasksPIIValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
	}{
		{name: "email value", value: "jane.doe@example.com"},
		{name: "ssn value", value: "123-45-6789"},
		{name: "e164 phone", value: "+15125550143"},
		{name: "national phone", value: "(512) 555-0143"},
		{name: "iso dob", value: "1987-03-14"},
		{name: "bearer token", value: "Bearer abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, false)
			logger.Info("test", "detail", tt.value)

			if strings.Contains(buf.String(), tt.value) {
				t.Errorf("value leaked into log output: %s", buf.String())
			}
		})
	}
}

// TestRedactHandlerKeepsOperationalAttrs tests that scanner and source
// identifiers pass through unmasked.
func TestRedactHandlerKeepsOperationalAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, false)
	logger.Info("scan complete",
		"scanner_name", "spokeo",
		"source", "beenverified",
		"status", "SUCCESS",
		"result_count", 3,
	)

	out := buf.String()
	for _, want := range []string{"spokeo", "beenverified", "SUCCESS", "result_count=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output: %s", want, out)
		}
	}
	if strings.Contains(out, MaskValue) {
		t.Errorf("operational attrs should not be masked: %s", out)
	}
}

// TestRedactHandlerGroups tests recursive masking inside groups.
func TestRedactHandlerGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, false)
	logger.Info("test", slog.Group("identity",
		slog.String("email", "jane@example.com"),
		slog.String("source", "spokeo"),
	))

	out := buf.String()
	if strings.Contains(out, "jane@example.com") {
		t.Errorf("grouped PII leaked: %s", out)
	}
	if !strings.Contains(out, "spokeo") {
		t.Errorf("grouped operational attr missing: %s", out)
	}
}

// TestRedactHandlerWithAttrs tests that pre-bound attributes are masked.
func TestRedactHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, false).With("email", "jane@example.com")
	logger.Info("test")

	if strings.Contains(buf.String(), "jane@example.com") {
		t.Errorf("With-bound PII leaked: %s", buf.String())
	}
}

// TestVerboseLevels tests level selection.
func TestVerboseLevels(t *testing.T) {
	t.Parallel()

	var quiet bytes.Buffer
	NewLogger(&quiet, false).Debug("hidden")
	if quiet.Len() != 0 {
		t.Errorf("debug output at default level: %s", quiet.String())
	}

	var verbose bytes.Buffer
	NewLogger(&verbose, true).Debug("visible")
	if verbose.Len() == 0 {
		t.Error("verbose logger suppressed debug output")
	}
}

// TestNewJSONLogger tests the JSON variant masks the same way.
func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, false)
	logger.Info("test", "phone", "+15125550143")

	out := buf.String()
	if strings.Contains(out, "+15125550143") {
		t.Errorf("PII leaked in JSON output: %s", out)
	}
	if !strings.Contains(out, `"msg":"test"`) {
		t.Errorf("expected JSON shape: %s", out)
	}
}
