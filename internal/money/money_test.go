package money

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"5000", 5000, false},
		{"5.000", 5000, false},
		{"Rp 2.000", 2000, false},
		{" 1250000 ", 1250000, false},
		{"0", 0, false},
		{"", 0, true},
		{"12,50", 0, true},
		{"-100", 0, true},
		{"abc", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseAmount(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseAmount(%q): unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAmount(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		value int64
		want  string
	}{
		{0, "Rp 0"},
		{500, "Rp 500"},
		{5000, "Rp 5.000"},
		{1250000, "Rp 1.250.000"},
		{-2000, "-Rp 2.000"},
	}
	for _, tc := range cases {
		if got := FormatRupiah(tc.value); got != tc.want {
			t.Fatalf("FormatRupiah(%d) = %q, want %q", tc.value, got, tc.want)
		}
	}
}
