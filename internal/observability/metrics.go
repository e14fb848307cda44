// Package observability provides Prometheus metrics for a single CLI invocation.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "solana_cli"

// Metrics holds the counters of one invocation. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// RPC metrics
	RPCCalls       *prometheus.CounterVec
	RPCCallLatency *prometheus.HistogramVec

	// Price feed metrics
	PriceLookups *prometheus.CounterVec

	// Analysis metrics
	TokenAccountsScanned prometheus.Counter
	HoldersAggregated    prometheus.Gauge
	HoldingsSkipped      *prometheus.CounterVec

	// Transaction metrics
	TransactionsSent    *prometheus.CounterVec
	ConfirmationLatency prometheus.Histogram
}

// NewMetrics creates metrics registered on a fresh registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RPCCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "JSON-RPC calls by service, method and status",
		}, []string{"service", "method", "status"}),
		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_latency_seconds",
			Help:      "JSON-RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "method"}),

		PriceLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "price",
			Name:      "lookups_total",
			Help:      "Price feed requests by result",
		}, []string{"result"}),

		TokenAccountsScanned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "token_accounts_scanned_total",
			Help:      "Token accounts considered during holder aggregation",
		}),
		HoldersAggregated: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "holders_aggregated",
			Help:      "Distinct owners after aggregation",
		}),
		HoldingsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "holdings_skipped_total",
			Help:      "Other-token holdings omitted from the report by reason",
		}, []string{"reason"}),

		TransactionsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "transactions_sent_total",
			Help:      "Transactions submitted by kind",
		}, []string{"kind"}),
		ConfirmationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "confirmation_latency_seconds",
			Help:      "Time from submission to confirmation",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
	}
}

// Registry returns the registry holding these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RPCObserver returns a per-call hook for the JSON-RPC transport of service.
func (m *Metrics) RPCObserver(service string) func(method string, elapsed time.Duration, err error) {
	return func(method string, elapsed time.Duration, err error) {
		if m == nil {
			return
		}
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.RPCCalls.WithLabelValues(service, method, status).Inc()
		m.RPCCallLatency.WithLabelValues(service, method).Observe(elapsed.Seconds())
	}
}

// RecordPriceLookup counts one price feed request. result is hit, miss or error.
func (m *Metrics) RecordPriceLookup(result string) {
	if m == nil {
		return
	}
	m.PriceLookups.WithLabelValues(result).Inc()
}

// RecordAggregation records the size of a holder aggregation pass.
func (m *Metrics) RecordAggregation(accounts, holders int) {
	if m == nil {
		return
	}
	m.TokenAccountsScanned.Add(float64(accounts))
	m.HoldersAggregated.Set(float64(holders))
}

// RecordHoldingSkipped counts a holding omitted from the enrichment report.
func (m *Metrics) RecordHoldingSkipped(reason string) {
	if m == nil {
		return
	}
	m.HoldingsSkipped.WithLabelValues(reason).Inc()
}

// RecordTransaction counts a submitted transaction and its confirmation time.
func (m *Metrics) RecordTransaction(kind string, confirmation time.Duration) {
	if m == nil {
		return
	}
	m.TransactionsSent.WithLabelValues(kind).Inc()
	m.ConfirmationLatency.Observe(confirmation.Seconds())
}

// WriteSummary prints every non-zero counter and gauge, plus histogram
// counts and sums, one sample per line in name{labels} value form.
func (m *Metrics) WriteSummary(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			labels := formatLabels(metric.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				if v := metric.GetCounter().GetValue(); v != 0 {
					lines = append(lines, fmt.Sprintf("%s%s %g", mf.GetName(), labels, v))
				}
			case dto.MetricType_GAUGE:
				if v := metric.GetGauge().GetValue(); v != 0 {
					lines = append(lines, fmt.Sprintf("%s%s %g", mf.GetName(), labels, v))
				}
			case dto.MetricType_HISTOGRAM:
				h := metric.GetHistogram()
				if h.GetSampleCount() == 0 {
					continue
				}
				lines = append(lines,
					fmt.Sprintf("%s_count%s %d", mf.GetName(), labels, h.GetSampleCount()),
					fmt.Sprintf("%s_sum%s %.3f", mf.GetName(), labels, h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)

	if _, err := fmt.Fprintln(w, "=== Run statistics ==="); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
