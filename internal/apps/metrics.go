package apps

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	applicationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphgate_applications_created_total",
		Help: "Applications created.",
	})
	tokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphgate_tokens_issued_total",
		Help: "API tokens issued.",
	})
	tokensRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphgate_tokens_revoked_total",
		Help: "API tokens revoked.",
	})
	duplicateRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphgate_duplicate_records_total",
		Help: "Unique-key lookups that returned more than one row.",
	})
	exportFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphgate_export_failures_total",
		Help: "Export sink calls that failed (swallowed, best-effort).",
	})
)
