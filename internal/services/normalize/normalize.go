// Package normalize turns raw spreadsheet cells into canonical numbers and
// folds free text for case and accent insensitive comparisons.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	hoursPattern   = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*h`)
	minutesPattern = regexp.MustCompile(`(?i)(\d+)\s*min`)
	numberCleaner  = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "")
)

// Number returns raw as a float64. Blank or unparsable input yields 0.
func Number(raw any) float64 {
	if v, ok := numeric(raw); ok {
		return v
	}
	s, ok := raw.(string)
	if !ok {
		return 0
	}
	v, ok := parseNumber(s)
	if !ok {
		return 0
	}
	return v
}

// Duration returns raw as a decimal hour count. Bare numbers are already
// hours; strings such as "10h 20min" are split into their hour and minute
// parts. Anything else yields 0.
func Duration(raw any) float64 {
	if v, ok := numeric(raw); ok {
		return v
	}
	s, ok := raw.(string)
	if !ok {
		return 0
	}
	if v, ok := parseNumber(s); ok {
		return v
	}

	var hours, minutes float64
	if m := hoursPattern.FindStringSubmatch(s); m != nil {
		hours, _ = strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	}
	if m := minutesPattern.FindStringSubmatch(s); m != nil {
		minutes, _ = strconv.ParseFloat(m[1], 64)
	}
	return hours + minutes/60
}

// Int rounds Number(raw) to the nearest integer.
func Int(raw any) int64 {
	return int64(math.Round(Number(raw)))
}

func numeric(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, true
	case float64:
		return finite(v), true
	case float32:
		return finite(float64(v)), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func parseNumber(s string) (float64, bool) {
	s = numberCleaner.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(v), true
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
