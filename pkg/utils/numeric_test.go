package utils

import "testing"

func TestSafeInt(t *testing.T) {
	cases := []struct {
		in       string
		def      int
		expected int
	}{
		{"", 0, 0},
		{"None", 0, 0},
		{"None", 7, 7},
		{"3", 0, 3},
		{"3.0", 0, 3},
		{"3.9", 0, 3},
		{"-3.9", 0, -3},
		{" 42 ", 0, 42},
		{"1e3", 0, 1000},
		{"garbage", 5, 5},
		{"1,5", 0, 0},
		{"NaN", 1, 1},
		{"inf", 1, 1},
		{"1e400", 2, 2},
	}
	for _, tc := range cases {
		if got := SafeInt(tc.in, tc.def); got != tc.expected {
			t.Errorf("SafeInt(%q, %d) = %d, expected %d", tc.in, tc.def, got, tc.expected)
		}
	}
}

func TestSafeFloat(t *testing.T) {
	cases := []struct {
		in       string
		def      float64
		expected float64
	}{
		{"", 0, 0},
		{"None", 0, 0},
		{"None", 1.25, 1.25},
		{"1,5", 0, 1.5},
		{"1.5", 0, 1.5},
		{"100.004", 0, 100.004},
		{"-12,75", 0, -12.75},
		{"garbage", 0, 0},
		{"1,234.50", 9, 9},
		{"NaN", 3, 3},
	}
	for _, tc := range cases {
		if got := SafeFloat(tc.in, tc.def); got != tc.expected {
			t.Errorf("SafeFloat(%q, %v) = %v, expected %v", tc.in, tc.def, got, tc.expected)
		}
	}
}
