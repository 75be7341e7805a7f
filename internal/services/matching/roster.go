package matching

import (
	"strings"

	"creator-performance-ledger/internal/models"
	"creator-performance-ledger/internal/services/normalize"

	"github.com/google/uuid"
)

type MatchKind string

const (
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
	MatchNone  MatchKind = "unmatched"
)

// Roster is a read-only snapshot of creators taken once per batch.
// Iteration order is the order members were passed to NewRoster.
type Roster struct {
	members []models.Member
	exact   map[string]int
	compact []string
}

func NewRoster(members []models.Member) *Roster {
	r := &Roster{
		members: make([]models.Member, 0, len(members)),
		exact:   make(map[string]int, len(members)),
		compact: make([]string, 0, len(members)),
	}
	for _, m := range members {
		key := exactKey(m.Username)
		if key == "" {
			continue
		}
		if _, dup := r.exact[key]; dup {
			continue
		}
		r.exact[key] = len(r.members)
		r.members = append(r.members, m)
		r.compact = append(r.compact, normalize.Compact(m.Username))
	}
	return r
}

func (r *Roster) Len() int { return len(r.members) }

type Result struct {
	Kind      MatchKind
	CreatorID uuid.UUID
	Username  string
	Raw       string
	// Ambiguous is set when more than one roster entry shares the
	// compacted form; the first one in roster order is returned.
	Ambiguous []string
}

func (res Result) Matched() bool { return res.Kind == MatchExact || res.Kind == MatchFuzzy }

// Match resolves identity against the roster: a case-insensitive exact
// lookup first, then a comparison of compacted forms (no accents,
// whitespace, underscores or punctuation).
func (r *Roster) Match(identity string) Result {
	res := Result{Kind: MatchNone, Raw: identity}

	if i, ok := r.exact[exactKey(identity)]; ok {
		res.Kind = MatchExact
		res.CreatorID = r.members[i].ID
		res.Username = r.members[i].Username
		return res
	}

	target := normalize.Compact(identity)
	if target == "" {
		return res
	}
	for i, c := range r.compact {
		if c != target {
			continue
		}
		if res.Kind == MatchNone {
			res.Kind = MatchFuzzy
			res.CreatorID = r.members[i].ID
			res.Username = r.members[i].Username
			continue
		}
		res.Ambiguous = append(res.Ambiguous, r.members[i].Username)
	}
	return res
}

func exactKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
