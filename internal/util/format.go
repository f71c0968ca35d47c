package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatSeconds renders a span in seconds with the largest unit that keeps
// the value at or above one (s, ms, us, ns), rounded to six decimals.
func FormatSeconds(s float64) string {
	units := []string{"s", "ms", "us", "ns"}
	unit := units[0]
	for _, u := range units[1:] {
		if s >= 1 || s == 0 {
			break
		}
		s *= 1000
		unit = u
	}
	return trimFloat(math.Round(s*1e6)/1e6) + unit
}

// FormatHz renders a frequency with Hz, kHz, MHz or GHz.
func FormatHz(f float64) string {
	a := math.Abs(f)
	switch {
	case a < 1e3:
		return trimFloat(math.Round(f*1e3)/1e3) + " Hz"
	case a < 1e6:
		return trimFloat(math.Round(f)/1e3) + " kHz"
	case a < 1e9:
		return trimFloat(math.Round(f/1e3)/1e3) + " MHz"
	default:
		return trimFloat(math.Round(f/1e6)/1e3) + " GHz"
	}
}

// ParseHz accepts values like "2000000", "2M", "2.4 MHz", "48k" or "1000hz".
func ParseHz(s string) (float64, error) {
	str := strings.ToLower(strings.TrimSpace(s))
	str = strings.TrimSuffix(str, "hz")
	str = strings.TrimSpace(str)
	mult := 1.0
	if n := len(str); n > 0 {
		switch str[n-1] {
		case 'k':
			mult = 1e3
		case 'm':
			mult = 1e6
		case 'g':
			mult = 1e9
		}
		if mult != 1 {
			str = strings.TrimSpace(str[:n-1])
		}
	}
	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency %q", s)
	}
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("frequency must be positive, got %q", s)
	}
	return v * mult, nil
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
