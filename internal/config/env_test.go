package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name       string
		setValue   *string
		defaultVal string
		want       string
	}{
		{"unset returns default", nil, "fallback", "fallback"},
		{"set returns value", strPtr("from-env"), "fallback", "from-env"},
		{"empty returns default", strPtr(""), "fallback", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "ROADCAM_TEST_STRING"
			if tt.setValue != nil {
				t.Setenv(key, *tt.setValue)
			}
			if got := ParseString(key, tt.defaultVal); got != tt.want {
				t.Errorf("ParseString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		name       string
		setValue   *string
		defaultVal int
		want       int
	}{
		{"unset returns default", nil, 7, 7},
		{"valid integer", strPtr("42"), 7, 42},
		{"negative integer", strPtr("-3"), 7, -3},
		{"garbage returns default", strPtr("not-a-number"), 7, 7},
		{"empty returns default", strPtr(""), 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "ROADCAM_TEST_INT"
			if tt.setValue != nil {
				t.Setenv(key, *tt.setValue)
			}
			if got := ParseInt(key, tt.defaultVal); got != tt.want {
				t.Errorf("ParseInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		name       string
		setValue   *string
		defaultVal bool
		want       bool
	}{
		{"unset returns default", nil, true, true},
		{"true", strPtr("true"), false, true},
		{"one", strPtr("1"), false, true},
		{"yes uppercase", strPtr("YES"), false, true},
		{"false", strPtr("false"), true, false},
		{"zero", strPtr("0"), true, false},
		{"no", strPtr("no"), true, false},
		{"garbage returns default", strPtr("maybe"), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "ROADCAM_TEST_BOOL"
			if tt.setValue != nil {
				t.Setenv(key, *tt.setValue)
			}
			if got := ParseBool(key, tt.defaultVal); got != tt.want {
				t.Errorf("ParseBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name       string
		setValue   *string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"unset returns default", nil, 5 * time.Second, 5 * time.Second},
		{"valid duration", strPtr("750ms"), 5 * time.Second, 750 * time.Millisecond},
		{"hours", strPtr("2h"), 5 * time.Second, 2 * time.Hour},
		{"garbage returns default", strPtr("soon"), 5 * time.Second, 5 * time.Second},
		{"bare number returns default", strPtr("10"), 5 * time.Second, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "ROADCAM_TEST_DURATION"
			if tt.setValue != nil {
				t.Setenv(key, *tt.setValue)
			}
			if got := ParseDuration(key, tt.defaultVal); got != tt.want {
				t.Errorf("ParseDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	t.Setenv("ROADCAM_TEST_FLOAT", "0.25")
	if got := ParseFloat("ROADCAM_TEST_FLOAT", 1.0); got != 0.25 {
		t.Errorf("ParseFloat() = %v, want 0.25", got)
	}
	if got := ParseFloat("ROADCAM_TEST_FLOAT_UNSET", 1.0); got != 1.0 {
		t.Errorf("ParseFloat() unset = %v, want 1.0", got)
	}
}

func TestParseStringSlice(t *testing.T) {
	tests := []struct {
		name       string
		setValue   *string
		defaultVal []string
		want       []string
	}{
		{"unset returns default", nil, []string{"a.example"}, []string{"a.example"}},
		{"single value", strPtr("www.quebec511.info"), nil, []string{"www.quebec511.info"}},
		{
			"list with spaces",
			strPtr("a.example, b.example ,c.example"),
			nil,
			[]string{"a.example", "b.example", "c.example"},
		},
		{"only commas returns default", strPtr(",,"), []string{"d.example"}, []string{"d.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "ROADCAM_TEST_SLICE"
			if tt.setValue != nil {
				t.Setenv(key, *tt.setValue)
			}
			got := ParseStringSlice(key, tt.defaultVal)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseStringSlice() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
