package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsProcessed prometheus.Counter
	TransactionsRejected  *prometheus.CounterVec
	TransactionDuration   prometheus.Histogram

	// Account metrics
	AccountsCreated   prometheus.Counter
	AccountOperations *prometheus.CounterVec

	// Currency metrics
	CurrenciesRegistered prometheus.Counter

	// Backlog metrics
	BacklogDepth    *prometheus.GaugeVec
	BacklogReplayed prometheus.Counter
	BacklogEnqueued prometheus.Counter

	// Database metrics
	DBErrors *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		TransactionsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goeconomy_transactions_processed_total",
			Help: "Total number of transactions committed",
		}),
		TransactionsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goeconomy_transactions_rejected_total",
				Help: "Total number of transactions rejected by check",
			},
			[]string{"check"},
		),
		TransactionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "goeconomy_transaction_duration_seconds",
			Help:    "Duration of transaction processing",
			Buckets: prometheus.DefBuckets,
		}),

		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goeconomy_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goeconomy_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		CurrenciesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goeconomy_currencies_registered_total",
			Help: "Total number of currencies registered",
		}),

		BacklogDepth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "goeconomy_backlog_depth",
				Help: "Messages queued for a remote node",
			},
			[]string{"node"},
		),
		BacklogReplayed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goeconomy_backlog_replayed_total",
			Help: "Total backlog messages replayed to remote nodes",
		}),
		BacklogEnqueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goeconomy_backlog_enqueued_total",
			Help: "Total messages queued after failed delivery",
		}),

		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goeconomy_db_errors_total",
				Help: "Total database errors by kind",
			},
			[]string{"kind"},
		),
	}
}
