package util

import "testing"

func TestFormatSeconds(t *testing.T) {
	cases := map[float64]string{
		2:         "2s",
		0.5:       "500ms",
		0.0000015: "1.5us",
		0:         "0s",
	}
	for in, want := range cases {
		if got := FormatSeconds(in); got != want {
			t.Fatalf("FormatSeconds(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatHz(t *testing.T) {
	cases := map[float64]string{
		440:     "440 Hz",
		48000:   "48 kHz",
		2400000: "2.4 MHz",
		-1500:   "-1.5 kHz",
		5.8e9:   "5.8 GHz",
	}
	for in, want := range cases {
		if got := FormatHz(in); got != want {
			t.Fatalf("FormatHz(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestParseHz(t *testing.T) {
	cases := map[string]float64{
		"2000000": 2e6,
		"2M":      2e6,
		"2.4 MHz": 2.4e6,
		"48k":     48e3,
		"1000hz":  1000,
		"10GHz":   10e9,
	}
	for in, want := range cases {
		got, err := ParseHz(in)
		if err != nil {
			t.Fatalf("ParseHz(%q) error = %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseHz(%q) = %v, want %v", in, got, want)
		}
	}
	for _, bad := range []string{"", "abc", "-5k", "0"} {
		if _, err := ParseHz(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
