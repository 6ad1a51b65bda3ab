package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// piiKeys contains attribute keys that always carry user identity data.
// A privacy product must never write the data it scrubs into its own logs,
// so these values are masked before the record reaches the sink.
var piiKeys = map[string]bool{
	// Identity fields
	"full_name":     true,
	"fullname":      true,
	"name":          true,
	"alias":         true,
	"aliases":       true,
	"email":         true,
	"emails":        true,
	"phone":         true,
	"phones":        true,
	"address":       true,
	"addresses":     true,
	"street":        true,
	"zip":           true,
	"zip_code":      true,
	"date_of_birth": true,
	"dob":           true,
	"ssn":           true,
	"username":      true,
	"usernames":     true,

	// Scan pipeline fields that embed identity data
	"data_preview": true,
	"preview":      true,
	"matched":      true,
	"hit":          true,

	// Secrets
	"password":      true,
	"passwd":        true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"access_token":  true,
	"refresh_token": true,
	"private_key":   true,
	"encryption_key": true,
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
}

// piiPatterns contains regex patterns that indicate identity values.
// Values matching these are masked regardless of attribute key.
var piiPatterns = []*regexp.Regexp{
	// Email addresses
	regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),

	// US SSN (with or without dashes)
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	regexp.MustCompile(`\b\d{9}\b`),

	// Phone numbers (E.164 and common national formats)
	regexp.MustCompile(`\+\d{10,15}\b`),
	regexp.MustCompile(`\b\(\d{3}\)\s?\d{3}-\d{4}\b`),
	regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`),

	// ISO dates of birth in pipeline shape
	regexp.MustCompile(`\b(19|20)\d{2}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])\b`),

	// Bearer tokens and JWTs
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
}

// MaskValue is the string used to replace redacted values.
const MaskValue = "***REDACTED***"

// RedactHandler wraps an slog.Handler and masks personal data before records
// reach the underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because it integrates with standard slog APIs, works with any underlying
// handler (text, JSON), and covers third-party libraries that accept a
// *slog.Logger.
type RedactHandler struct {
	// handler is the underlying slog handler that receives masked records.
	handler slog.Handler
}

// NewRedactHandler creates a RedactHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewRedactHandler(handler slog.Handler) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it on.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.redactAttr(a))
		return true
	})

	return h.handler.Handle(ctx, masked)
}

// WithAttrs returns a new handler with the given attributes added, masked.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		maskedAttrs[i] = h.redactAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(maskedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name)}
}

// redactAttr masks a single attribute, recursively handling groups.
func (h *RedactHandler) redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		maskedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			maskedAttrs[i] = h.redactAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if piiKeys[keyLower] || containsPIIKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		if isPIIValue(a.Value.String()) {
			return slog.String(a.Key, MaskValue)
		}
	}

	return a
}

// containsPIIKeyword checks whether the key embeds an identity keyword.
// Bare "name" is matched only exactly (via piiKeys), not as a substring,
// because "scanner_name" and "source_name" are operational identifiers,
// not user data.
func containsPIIKeyword(key string) bool {
	keywords := []string{
		"email", "phone", "address", "birth", "ssn",
		"password", "secret", "token", "credential", "private",
	}

	for _, keyword := range keywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isPIIValue checks whether a value matches an identity pattern.
func isPIIValue(value string) bool {
	for _, pattern := range piiPatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// NewLogger creates a *slog.Logger with PII redaction over a text handler.
// verbose selects Debug level; otherwise Info.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactHandler(textHandler))
}

// NewJSONLogger creates a *slog.Logger with PII redaction over a JSON
// handler, for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactHandler(jsonHandler))
}
