package matching

import (
	"testing"

	"creator-performance-ledger/internal/models"

	"github.com/google/uuid"
)

func member(name string) models.Member {
	return models.Member{ID: uuid.New(), Username: name, Role: models.RoleCreator}
}

func TestMatchExactIsCaseInsensitive(t *testing.T) {
	m := member("LunaLive")
	r := NewRoster([]models.Member{member("other"), m})

	res := r.Match("  lunalive ")
	if res.Kind != MatchExact || res.CreatorID != m.ID {
		t.Fatalf("Match got=%+v want exact %s", res, m.ID)
	}
}

func TestMatchFuzzyStripsPunctuation(t *testing.T) {
	m := member("JeanPierre")
	r := NewRoster([]models.Member{m})

	res := r.Match("jean-pierre")
	if res.Kind != MatchFuzzy || res.CreatorID != m.ID {
		t.Fatalf("Match got=%+v want fuzzy %s", res, m.ID)
	}
}

func TestMatchFuzzyStripsAccentsAndUnderscores(t *testing.T) {
	m := member("elodie_gaming")
	r := NewRoster([]models.Member{m})

	if res := r.Match("Élodie Gaming"); res.Kind != MatchFuzzy {
		t.Fatalf("Match got=%+v want fuzzy", res)
	}
}

func TestMatchPrefixIsNotAMatch(t *testing.T) {
	r := NewRoster([]models.Member{member("jeanne")})

	if res := r.Match("jean"); res.Matched() {
		t.Fatalf("Match got=%+v want unmatched", res)
	}
}

func TestMatchFuzzyFirstEntryWinsAndFlagsAmbiguity(t *testing.T) {
	first := member("max.power")
	second := member("max_power")
	r := NewRoster([]models.Member{first, second})

	res := r.Match("Max Power")
	if res.Kind != MatchFuzzy || res.CreatorID != first.ID {
		t.Fatalf("Match got=%+v want first entry", res)
	}
	if len(res.Ambiguous) != 1 || res.Ambiguous[0] != "max_power" {
		t.Fatalf("Ambiguous got=%v", res.Ambiguous)
	}
}

func TestMatchBlankIdentity(t *testing.T) {
	r := NewRoster([]models.Member{member("x")})
	if res := r.Match("  -- "); res.Matched() {
		t.Fatalf("Match got=%+v want unmatched", res)
	}
}
