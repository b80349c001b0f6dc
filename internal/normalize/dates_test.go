package normalize

import (
	"testing"
	"time"
)

func TestParseDate_Formats(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-05", "2024-01-05"},
		{"01/05/2024", "2024-01-05"},
		{"1/5/2024", "2024-01-05"},
		{"01-05-2024", "2024-01-05"},
		{"2024/01/05", "2024-01-05"},
		{"January 5, 2024", "2024-01-05"},
		{"Jan 5, 2024", "2024-01-05"},
		{"2024-01-05T13:45:00Z", "2024-01-05"},
		{"2024-01-05 13:45:00", "2024-01-05"},
		{"  2024-01-05  ", "2024-01-05"},
		{"2024-1-5", "2024-01-05"},
		{"2024-1-5 08:30:00", "2024-01-05"},
		{"2024-1-5T08:30:00", "2024-01-05"},
		{"2024-01-05 08:30:00.000", "2024-01-05"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseDate(tt.in)
			if got == nil {
				t.Fatalf("ParseDate(%q) = nil", tt.in)
			}
			if s := got.Format(DayLayout); s != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, s, tt.want)
			}
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date", "2024-13-45"} {
		if got := ParseDate(in); got != nil {
			t.Errorf("ParseDate(%q) = %v, want nil", in, got)
		}
	}
}

func TestParseDay_IgnoresTimeOfDay(t *testing.T) {
	morning, ok := ParseDay("2024-01-05 08:00:00")
	if !ok {
		t.Fatal("expected morning to parse")
	}
	evening, ok := ParseDay("2024-01-05T22:30:00Z")
	if !ok {
		t.Fatal("expected evening to parse")
	}
	if !morning.Equal(evening) {
		t.Errorf("same-day values differ: %v vs %v", morning, evening)
	}
	if morning.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", morning.Location())
	}
	if FormatDay(morning) != "2024-01-05" {
		t.Errorf("FormatDay = %s", FormatDay(morning))
	}
}

func TestRowKey_Separates(t *testing.T) {
	if RowKey("ab", "c") == RowKey("a", "bc") {
		t.Error("expected different keys for differently split values")
	}
	if RowKey("x", "y") != RowKey("x", "y") {
		t.Error("expected equal keys for equal values")
	}
}

func TestCell(t *testing.T) {
	if got := Cell("\ufeffpatient_id "); got != "patient_id" {
		t.Errorf("Cell = %q", got)
	}
}
