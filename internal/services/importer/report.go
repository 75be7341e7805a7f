package importer

import (
	"fmt"
	"strings"
	"time"

	"creator-performance-ledger/internal/services/matching"

	"github.com/google/uuid"
)

type DetailKind string

const (
	DetailSuccess DetailKind = "success"
	DetailInfo    DetailKind = "info"
	DetailWarning DetailKind = "warning"
	DetailError   DetailKind = "error"
)

type Detail struct {
	Line    int        `json:"line"`
	Kind    DetailKind `json:"kind"`
	Message string     `json:"message"`
}

type ProfileUpdate struct {
	Line          int                `json:"line"`
	CreatorID     uuid.UUID          `json:"creator_id"`
	Username      string             `json:"username"`
	MatchKind     matching.MatchKind `json:"match_kind"`
	Fields        []string           `json:"fields"`
	LifetimeTotal *int64             `json:"lifetime_total,omitempty"`
	MonthlyTotal  *int64             `json:"monthly_total,omitempty"`
	HoursPerDay   *string            `json:"hours_per_day,omitempty"`
	DaysPerWeek   *int               `json:"days_per_week,omitempty"`
}

// Report is the outcome of one batch. It is returned to the caller and not
// stored.
type Report struct {
	BatchID           uuid.UUID         `json:"batch_id"`
	Filename          string            `json:"filename"`
	Mode              BalanceMode       `json:"mode"`
	Columns           map[string]string `json:"columns"`
	TotalRows         int               `json:"total_rows"`
	SuccessCount      int               `json:"success_count"`
	ErrorCount        int               `json:"error_count"`
	UnmatchedCreators []string          `json:"unmatched_creators"`
	UpdatedProfiles   []ProfileUpdate   `json:"updated_profiles"`
	Details           []Detail          `json:"details"`
	StartedAt         time.Time         `json:"started_at"`
	FinishedAt        time.Time         `json:"finished_at"`
}

func newReport(filename string, mode BalanceMode, started time.Time) *Report {
	return &Report{
		BatchID:           uuid.New(),
		Filename:          filename,
		Mode:              mode,
		Columns:           map[string]string{},
		UnmatchedCreators: []string{},
		UpdatedProfiles:   []ProfileUpdate{},
		Details:           []Detail{},
		StartedAt:         started,
	}
}

func (r *Report) UnmatchedCount() int { return len(r.UnmatchedCreators) }

func (r *Report) add(line int, kind DetailKind, format string, args ...any) {
	r.Details = append(r.Details, Detail{Line: line, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// HumanSummary renders the report as plain text for the upload response.
func HumanSummary(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch %s (%s, mode=%s)\n", r.BatchID, r.Filename, r.Mode)
	fmt.Fprintf(&b, "Total rows: %d\n", r.TotalRows)
	fmt.Fprintf(&b, "Succeeded: %d\n", r.SuccessCount)
	fmt.Fprintf(&b, "Failed: %d\n", r.ErrorCount)
	fmt.Fprintf(&b, "Unmatched creators: %d\n", r.UnmatchedCount())
	if len(r.UnmatchedCreators) > 0 {
		fmt.Fprintf(&b, "\nUnmatched:\n")
		for _, u := range r.UnmatchedCreators {
			fmt.Fprintf(&b, "- %s\n", u)
		}
	}
	if len(r.Details) > 0 {
		fmt.Fprintf(&b, "\nLog:\n")
		for _, d := range r.Details {
			fmt.Fprintf(&b, "[%s] line %d: %s\n", d.Kind, d.Line, d.Message)
		}
	}
	return b.String()
}
