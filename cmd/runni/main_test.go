package main

import (
	"strings"
	"testing"
)

func TestResolveMetrics(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
		wantErr  bool
	}{
		{
			name:     "no names selects all",
			input:    nil,
			expected: []string{"distance", "duration", "pace"},
		},
		{
			name:     "exact name",
			input:    []string{"distance"},
			expected: []string{"distance"},
		},
		{
			name:     "fuzzy abbreviation",
			input:    []string{"dist"},
			expected: []string{"distance"},
		},
		{
			name:     "fuzzy pace",
			input:    []string{"pc"},
			expected: []string{"pace"},
		},
		{
			name:     "case insensitive",
			input:    []string{"DURATION"},
			expected: []string{"duration"},
		},
		{
			name:     "duplicates collapse",
			input:    []string{"dist", "distance"},
			expected: []string{"distance"},
		},
		{
			name:    "unknown name",
			input:   []string{"elevation"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected, err := resolveMetrics(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("resolveMetrics succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveMetrics failed: %v", err)
			}

			var keys []string
			for _, m := range selected {
				keys = append(keys, m.key)
			}
			if strings.Join(keys, ",") != strings.Join(tt.expected, ",") {
				t.Errorf("resolveMetrics(%v) = %v, want %v", tt.input, keys, tt.expected)
			}
		})
	}
}

func TestMetricDefinitionsComplete(t *testing.T) {
	for _, m := range metrics {
		if m.title == "" || m.yLabel == "" || m.series == "" {
			t.Errorf("metric %q has empty labels", m.key)
		}
		if m.daily == nil || m.weekly == nil {
			t.Errorf("metric %q has no series accessors", m.key)
		}
	}
}
