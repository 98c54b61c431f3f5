package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"05-03-2024", "05-03-2024", true},
		{"5-3-2024", "05-03-2024", true},
		{"05.03.2024", "05-03-2024", true},
		{"5/3/2024", "05-03-2024", true},
		{"2024-03-05", "05-03-2024", true},
		{"2024-03-05T10:30:00", "05-03-2024", true},
		{"2024-03-05 23:59:59", "05-03-2024", true},
		{"5 Mar 2024", "05-03-2024", true},
		{"  05-03-2024  ", "05-03-2024", true},
		{"05.03.24", "05-03-2024", true},
		{"", "", false},
		{"soon", "", false},
		{"32-01-2024", "", false},
		{"2024-13-01", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && FormatDate(got) != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, FormatDate(got), tt.want)
			}
		})
	}
}

func TestParseDate_TwoDigitYearPivot(t *testing.T) {
	future := time.Now().Year() + TwoDigitYearPivot + 1
	input := "01-01-" + FormatDate(time.Date(future, 1, 1, 0, 0, 0, 0, time.UTC))[8:]

	got, ok := ParseDate(input)
	if !ok {
		t.Fatalf("ParseDate(%q) failed", input)
	}
	if got.Year() != future-100 {
		t.Errorf("ParseDate(%q) year = %d, want %d", input, got.Year(), future-100)
	}
}
