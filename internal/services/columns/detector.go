// Package columns maps free-text spreadsheet headers to the fields the
// importer understands.
package columns

import (
	"strings"

	"creator-performance-ledger/internal/services/normalize"
)

// Find returns the index of the header matching one of keywords. Exact
// matches win over substring matches, and within each pass the keyword
// order decides, not the header order.
func Find(headers []string, keywords []string) (int, bool) {
	folded := make([]string, len(headers))
	for i, h := range headers {
		folded[i] = fold(h)
	}
	keys := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = fold(k); k != "" {
			keys = append(keys, k)
		}
	}

	for _, k := range keys {
		for i, h := range folded {
			if h == k {
				return i, true
			}
		}
	}
	for _, k := range keys {
		for i, h := range folded {
			if strings.Contains(h, k) {
				return i, true
			}
		}
	}
	return -1, false
}

// Mapping holds the detected column index per field, -1 when absent.
type Mapping struct {
	Identity int `json:"identity"`
	Balance  int `json:"balance"`
	Hours    int `json:"hours"`
	Days     int `json:"days"`
}

func (m Mapping) HasBalance() bool { return m.Balance >= 0 }
func (m Mapping) HasHours() bool   { return m.Hours >= 0 }
func (m Mapping) HasDays() bool    { return m.Days >= 0 }

// Detect runs Find for every field. ok is false when no identity column
// exists; the other fields are optional.
func Detect(headers []string, kw Keywords) (Mapping, bool) {
	m := Mapping{Identity: -1, Balance: -1, Hours: -1, Days: -1}
	var ok bool
	if m.Identity, ok = Find(headers, kw.Identity); !ok {
		return m, false
	}
	m.Balance = findExcept(headers, kw.Balance, m.Identity)
	m.Hours = findExcept(headers, kw.Hours, m.Identity, m.Balance)
	m.Days = findExcept(headers, kw.Days, m.Identity, m.Balance, m.Hours)
	return m, true
}

// findExcept hides already claimed columns so one header never feeds two fields.
func findExcept(headers []string, keywords []string, taken ...int) int {
	masked := make([]string, len(headers))
	copy(masked, headers)
	for _, i := range taken {
		if i >= 0 && i < len(masked) {
			masked[i] = ""
		}
	}
	i, ok := Find(masked, keywords)
	if !ok {
		return -1
	}
	return i
}

func fold(s string) string {
	return strings.TrimSpace(normalize.Fold(s))
}
