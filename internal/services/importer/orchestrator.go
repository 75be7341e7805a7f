// Package importer runs one spreadsheet import batch: it detects columns,
// matches every row to a creator and applies schedule and balance updates,
// collecting per-row outcomes into a Report.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"creator-performance-ledger/internal/metrics"
	"creator-performance-ledger/internal/models"
	"creator-performance-ledger/internal/services/columns"
	"creator-performance-ledger/internal/services/ledger"
	"creator-performance-ledger/internal/services/matching"
	"creator-performance-ledger/internal/services/normalize"
	"creator-performance-ledger/internal/services/notify"
	"creator-performance-ledger/internal/services/schedule"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrIdentityColumnMissing = errors.New("no creator identity column found in header row")
	ErrBalanceOutOfRange     = errors.New("balance value out of range")
)

// maxBalanceCell is 2^63; rounded cells at or beyond it do not fit an int64.
const maxBalanceCell = float64(math.MaxInt64)

const notifyTimeout = 10 * time.Second

// BalanceMode says how the balance column is read: as a signed delta or as
// the new absolute lifetime total.
type BalanceMode string

const (
	ModeAdd BalanceMode = "add"
	ModeSet BalanceMode = "set"
)

func ParseMode(s string) (BalanceMode, error) {
	switch BalanceMode(s) {
	case "", ModeAdd:
		return ModeAdd, nil
	case ModeSet:
		return ModeSet, nil
	}
	return "", fmt.Errorf("unknown balance mode %q", s)
}

type RosterSource interface {
	ListCreators(ctx context.Context) ([]models.Member, error)
}

type BalanceApplier interface {
	Apply(ctx context.Context, m ledger.Mutation) (ledger.Outcome, error)
}

type ScheduleApplier interface {
	Apply(ctx context.Context, creatorID uuid.UUID, u schedule.Update) (*models.ScheduleRecord, error)
}

type Service struct {
	roster    RosterSource
	balances  BalanceApplier
	schedules ScheduleApplier
	notifier  notify.Notifier
	keywords  columns.Keywords
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewService(
	roster RosterSource,
	balances BalanceApplier,
	schedules ScheduleApplier,
	notifier notify.Notifier,
	keywords columns.Keywords,
	log logrus.FieldLogger,
) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		roster:    roster,
		balances:  balances,
		schedules: schedules,
		notifier:  notifier,
		keywords:  keywords,
		log:       log,
		now:       time.Now,
	}
}

type Batch struct {
	Filename string
	Table    Table
	Mode     BalanceMode
	Actor    models.Actor
}

// ImportRow is one data row resolved through the detected columns. Nil
// fields were absent from the file or blank in this row.
type ImportRow struct {
	Line     int
	Identity string
	Balance  *float64
	Hours    *float64
	Days     *int
}

// Rejected reports whether err is a batch-level rejection caused by the
// uploaded file itself rather than by the service.
func Rejected(err error) bool {
	for _, target := range []error{ErrUnsupportedFile, ErrUnreadableFile, ErrNoHeaderRow, ErrNoDataRows, ErrIdentityColumnMissing} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// RunFile decodes the upload and runs it as one batch.
func (s *Service) RunFile(ctx context.Context, filename string, r io.Reader, mode BalanceMode, actor models.Actor) (*Report, error) {
	table, err := ReadTable(filename, r)
	if err != nil {
		metrics.ImportBatches.WithLabelValues("rejected").Inc()
		return nil, err
	}
	return s.Run(ctx, Batch{Filename: filename, Table: table, Mode: mode, Actor: actor})
}

// Run processes every row in file order. Errors returned here are fatal to
// the whole batch and happen before any row is touched; row failures are
// recorded in the report instead.
func (s *Service) Run(ctx context.Context, b Batch) (*Report, error) {
	started := s.now()
	if b.Mode == "" {
		b.Mode = ModeAdd
	}
	if len(b.Table.Headers) == 0 {
		metrics.ImportBatches.WithLabelValues("rejected").Inc()
		return nil, ErrNoHeaderRow
	}
	if len(b.Table.Rows) == 0 {
		metrics.ImportBatches.WithLabelValues("rejected").Inc()
		return nil, ErrNoDataRows
	}

	mapping, ok := columns.Detect(b.Table.Headers, s.keywords)
	if !ok {
		metrics.ImportBatches.WithLabelValues("rejected").Inc()
		return nil, ErrIdentityColumnMissing
	}

	creators, err := s.roster.ListCreators(ctx)
	if err != nil {
		metrics.ImportBatches.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("load roster: %w", err)
	}
	roster := matching.NewRoster(creators)

	report := newReport(b.Filename, b.Mode, started)
	report.TotalRows = len(b.Table.Rows)
	describeColumns(report, b.Table.Headers, mapping)

	log := s.log.WithFields(logrus.Fields{
		"batch_id": report.BatchID,
		"filename": b.Filename,
		"actor":    b.Actor.String(),
	})
	log.WithFields(logrus.Fields{"rows": report.TotalRows, "roster": roster.Len(), "mode": b.Mode}).Info("import batch started")

	for _, row := range b.Table.Rows {
		s.processRow(ctx, log, report, roster, b, extract(row, mapping))
	}

	report.FinishedAt = s.now()
	metrics.ImportBatches.WithLabelValues("completed").Inc()
	metrics.ImportDuration.Observe(report.FinishedAt.Sub(started).Seconds())
	log.WithFields(logrus.Fields{
		"succeeded": report.SuccessCount,
		"failed":    report.ErrorCount,
		"unmatched": report.UnmatchedCount(),
	}).Info("import batch finished")

	s.notifyAsync(log, report)
	return report, nil
}

func (s *Service) processRow(ctx context.Context, log logrus.FieldLogger, report *Report, roster *matching.Roster, b Batch, row ImportRow) {
	defer func() {
		if p := recover(); p != nil {
			report.ErrorCount++
			report.add(row.Line, DetailError, "unexpected error: %v", p)
			metrics.ImportRows.WithLabelValues("error").Inc()
			log.WithField("line", row.Line).Errorf("panic while processing row: %v", p)
		}
	}()

	if row.Identity == "" {
		report.ErrorCount++
		report.add(row.Line, DetailError, "missing identity")
		metrics.ImportRows.WithLabelValues("error").Inc()
		return
	}

	match := roster.Match(row.Identity)
	if !match.Matched() {
		report.ErrorCount++
		report.UnmatchedCreators = append(report.UnmatchedCreators, row.Identity)
		report.add(row.Line, DetailError, "creator %q not found in roster", row.Identity)
		metrics.ImportRows.WithLabelValues("unmatched").Inc()
		return
	}
	if match.Kind == matching.MatchFuzzy {
		report.add(row.Line, DetailInfo, "%q matched to %q by normalized name", row.Identity, match.Username)
	}
	if len(match.Ambiguous) > 0 {
		report.add(row.Line, DetailWarning, "%q also normalizes like %v; used %q", row.Identity, match.Ambiguous, match.Username)
	}

	rowLog := log.WithFields(logrus.Fields{"line": row.Line, "creator_id": match.CreatorID})
	update := ProfileUpdate{
		Line:      row.Line,
		CreatorID: match.CreatorID,
		Username:  match.Username,
		MatchKind: match.Kind,
	}
	failed := false

	if su := (schedule.Update{HoursPerDay: row.Hours, DaysPerWeek: row.Days}); !su.Empty() {
		rec, err := s.schedules.Apply(ctx, match.CreatorID, su)
		if err != nil {
			failed = true
			report.add(row.Line, DetailError, "%s: schedule update failed: %v", match.Username, err)
			rowLog.WithError(err).Warn("schedule update failed")
		} else if rec != nil {
			hours := rec.HoursPerDay.String()
			days := rec.DaysPerWeek
			if row.Hours != nil {
				update.Fields = append(update.Fields, "hours_per_day")
				update.HoursPerDay = &hours
			}
			if row.Days != nil {
				update.Fields = append(update.Fields, "days_per_week")
				update.DaysPerWeek = &days
			}
		}
	}

	if row.Balance != nil {
		op, amount, err := balanceMutation(b.Mode, *row.Balance)
		var out ledger.Outcome
		if err == nil {
			out, err = s.balances.Apply(ctx, ledger.Mutation{CreatorID: match.CreatorID, Op: op, Amount: amount, Actor: b.Actor})
		}
		if err != nil {
			failed = true
			report.add(row.Line, DetailError, "%s: balance update failed: %v", match.Username, err)
			rowLog.WithError(err).Warn("balance update failed")
		} else {
			update.Fields = append(update.Fields, "diamonds")
			update.LifetimeTotal = &out.Record.LifetimeTotal
			update.MonthlyTotal = &out.Record.MonthlyTotal
			if out.Path == ledger.PathFallback {
				report.add(row.Line, DetailWarning, "%s: balance written without the atomic procedure", match.Username)
			}
		}
	}

	if len(update.Fields) > 0 {
		report.UpdatedProfiles = append(report.UpdatedProfiles, update)
	}
	if failed {
		report.ErrorCount++
		metrics.ImportRows.WithLabelValues("error").Inc()
		return
	}
	report.SuccessCount++
	metrics.ImportRows.WithLabelValues("success").Inc()
	if len(update.Fields) == 0 {
		report.add(row.Line, DetailSuccess, "%s: matched, nothing to update", match.Username)
		return
	}
	report.add(row.Line, DetailSuccess, "%s: updated %v", match.Username, update.Fields)
}

func (s *Service) notifyAsync(log logrus.FieldLogger, report *Report) {
	ev := notify.Event{
		BatchID:      report.BatchID,
		Filename:     report.Filename,
		SuccessCount: report.SuccessCount,
		ErrorCount:   report.ErrorCount,
		FinishedAt:   report.FinishedAt,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.StatsRecompute(ctx, ev); err != nil {
			log.WithError(err).Warn("stats recompute notification failed")
		}
	}()
}

func extract(row Row, m columns.Mapping) ImportRow {
	out := ImportRow{Line: row.Line, Identity: row.Cell(m.Identity)}
	if raw := row.Cell(m.Balance); m.HasBalance() && raw != "" {
		v := normalize.Number(raw)
		out.Balance = &v
	}
	if raw := row.Cell(m.Hours); m.HasHours() && raw != "" {
		v := normalize.Duration(raw)
		out.Hours = &v
	}
	if raw := row.Cell(m.Days); m.HasDays() && raw != "" {
		v := int(math.Round(normalize.Number(raw)))
		out.Days = &v
	}
	return out
}

// balanceMutation turns a balance cell into a ledger operation. In add mode
// negative deltas subtract; in set mode negative values clamp to zero.
func balanceMutation(mode BalanceMode, v float64) (models.BalanceOp, int64, error) {
	r := math.Round(v)
	if math.Abs(r) >= maxBalanceCell {
		return "", 0, fmt.Errorf("%w: %v", ErrBalanceOutOfRange, v)
	}
	amount := int64(r)
	if mode == ModeSet {
		if amount < 0 {
			amount = 0
		}
		return models.OpSet, amount, nil
	}
	if amount < 0 {
		return models.OpSubtract, -amount, nil
	}
	return models.OpAdd, amount, nil
}

func describeColumns(r *Report, headers []string, m columns.Mapping) {
	for field, idx := range map[string]int{
		"identity": m.Identity,
		"balance":  m.Balance,
		"hours":    m.Hours,
		"days":     m.Days,
	} {
		if idx >= 0 {
			r.Columns[field] = headers[idx]
		}
	}
}
