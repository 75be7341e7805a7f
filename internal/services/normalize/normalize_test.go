package normalize

import (
	"math"
	"testing"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want float64
	}{
		{"hours and minutes", "10h 20min", 10 + 20.0/60},
		{"empty", "", 0},
		{"nil", nil, 0},
		{"bare number string", "7", 7},
		{"bare float", 3.5, 3.5},
		{"bare int", 4, 4},
		{"hours only", "2h", 2},
		{"minutes only", "45min", 0.75},
		{"uppercase with spaces", "1 H 30 MIN", 1.5},
		{"decimal hours", "1,5h", 1.5},
		{"garbage", "n/a", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Duration(tc.raw)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Duration(%v) got=%v want=%v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNumber(t *testing.T) {
	cases := []struct {
		raw  any
		want float64
	}{
		{"", 0},
		{"  12 ", 12},
		{"36 000", 36000},
		{"-250", -250},
		{int64(99), 99},
		{"abc", 0},
		{"10h 20min", 0},
		{[]string{"x"}, 0},
	}
	for _, tc := range cases {
		if got := Number(tc.raw); got != tc.want {
			t.Fatalf("Number(%v) got=%v want=%v", tc.raw, got, tc.want)
		}
	}
}

func TestInt(t *testing.T) {
	if got := Int("12.6"); got != 13 {
		t.Fatalf("Int got=%d want=13", got)
	}
}

func TestFoldAndCompact(t *testing.T) {
	if got := Fold("Créateur Éloïse"); got != "createur eloise" {
		t.Fatalf("Fold got=%q", got)
	}
	if got := Compact("Jean-Pierre_ Dupré!"); got != "jeanpierredupre" {
		t.Fatalf("Compact got=%q", got)
	}
}
