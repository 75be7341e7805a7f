package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Spreadsheet rows processed, labeled by outcome",
	}, []string{"outcome"})

	ImportBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "import_batches_total",
		Help: "Import batches run, labeled by result",
	}, []string{"result"})

	ImportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "import_batch_duration_seconds",
		Help:    "Wall time of one import batch",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	LedgerWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_writes_total",
		Help: "Balance mutations, labeled by write path and result",
	}, []string{"path", "result"})

	MonthlyResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monthly_resets_total",
		Help: "Balance records whose monthly total was zeroed",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests, labeled by method, route template and status code",
	}, []string{"method", "route", "status"})
)
