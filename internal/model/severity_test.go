package model

import "testing"

// TestSeverityString tests severity string conversion.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		severity Severity
		want     string
	}{
		{name: "info", severity: SeverityInfo, want: "INFO"},
		{name: "low", severity: SeverityLow, want: "LOW"},
		{name: "medium", severity: SeverityMedium, want: "MEDIUM"},
		{name: "high", severity: SeverityHigh, want: "HIGH"},
		{name: "critical", severity: SeverityCritical, want: "CRITICAL"},
		{name: "unknown", severity: Severity(99), want: "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestParseSeverity tests round-tripping severity through its stored form.
func TestParseSeverity(t *testing.T) {
	t.Parallel()

	for _, s := range []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if got := ParseSeverity(s.String()); got != s {
			t.Errorf("ParseSeverity(%q) = %v, want %v", s.String(), got, s)
		}
	}

	if got := ParseSeverity("bogus"); got != SeverityInfo {
		t.Errorf("ParseSeverity(bogus) = %v, want SeverityInfo", got)
	}
}

// TestSeverityOrdering verifies severities sort from least to most damaging.
func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	if !(SeverityInfo < SeverityLow && SeverityLow < SeverityMedium &&
		SeverityMedium < SeverityHigh && SeverityHigh < SeverityCritical) {
		t.Error("severity constants are not in ascending order")
	}
}

// TestInfoForDataType tests data type assessment lookup.
func TestInfoForDataType(t *testing.T) {
	t.Parallel()

	t.Run("known type", func(t *testing.T) {
		t.Parallel()

		info := InfoForDataType(DataTypeSSN)
		if info.Severity != SeverityCritical {
			t.Errorf("SSN severity = %v, want critical", info.Severity)
		}
		if info.Impact == "" || info.Recommendation == "" {
			t.Error("expected non-empty impact and recommendation")
		}
	})

	t.Run("unknown type falls back", func(t *testing.T) {
		t.Parallel()

		info := InfoForDataType(DataType("tarot_reading"))
		if info.Severity != SeverityMedium {
			t.Errorf("fallback severity = %v, want medium", info.Severity)
		}
	})
}
