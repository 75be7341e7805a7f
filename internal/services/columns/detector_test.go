package columns

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindExactBeforeSubstringInKeywordOrder(t *testing.T) {
	headers := []string{"Diamants", "diamonds"}
	i, ok := Find(headers, []string{"diamonds", "Diamants"})
	if !ok || headers[i] != "diamonds" {
		t.Fatalf("Find got=%d,%v want header diamonds", i, ok)
	}
}

func TestFindSubstringFallback(t *testing.T) {
	headers := []string{"Rank", "Total Diamonds (month)", "Creator"}
	i, ok := Find(headers, []string{"diamonds"})
	if !ok || i != 1 {
		t.Fatalf("Find got=%d,%v want=1", i, ok)
	}
}

func TestFindIgnoresAccentsAndCase(t *testing.T) {
	headers := []string{"DURÉE DE LIVE"}
	if _, ok := Find(headers, []string{"duree de live"}); !ok {
		t.Fatal("expected accent-insensitive match")
	}
}

func TestFindNone(t *testing.T) {
	if i, ok := Find([]string{"a", "b"}, []string{"diamonds"}); ok || i != -1 {
		t.Fatalf("Find got=%d,%v want none", i, ok)
	}
}

func TestDetect(t *testing.T) {
	headers := []string{"Créateur", "Diamants", "Durée de LIVE", "Jours valides de LIVE"}
	m, ok := Detect(headers, DefaultKeywords())
	if !ok {
		t.Fatal("identity column not detected")
	}
	want := Mapping{Identity: 0, Balance: 1, Hours: 2, Days: 3}
	if m != want {
		t.Fatalf("Detect got=%+v want=%+v", m, want)
	}
}

func TestDetectMissingIdentity(t *testing.T) {
	if _, ok := Detect([]string{"Diamonds", "Hours"}, DefaultKeywords()); ok {
		t.Fatal("expected identity column to be missing")
	}
}

func TestDetectOptionalColumnsAbsent(t *testing.T) {
	m, ok := Detect([]string{"username", "Diamonds"}, DefaultKeywords())
	if !ok {
		t.Fatal("identity column not detected")
	}
	if m.HasHours() || m.HasDays() || !m.HasBalance() {
		t.Fatalf("unexpected mapping %+v", m)
	}
}

func TestLoadKeywordsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "columns.yaml")
	if err := os.WriteFile(path, []byte("balance:\n  - gems\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	kw, err := LoadKeywords(path)
	if err != nil {
		t.Fatalf("LoadKeywords: %v", err)
	}
	if len(kw.Balance) != 1 || kw.Balance[0] != "gems" {
		t.Fatalf("balance keywords got=%v", kw.Balance)
	}
	if len(kw.Identity) == 0 {
		t.Fatal("identity defaults dropped")
	}
}
