// Package metrics defines the prometheus collectors exported by the daemon.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theirongolddev/danak/internal/model"
)

const (
	metricPrefix = "danak_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	monthlyIncome  prometheus.Gauge
	socialSecurity prometheus.Gauge
	incomeTax      prometheus.Gauge
	netIncome      prometheus.Gauge
	vatProgress    prometheus.Gauge
	records        prometheus.Gauge

	pollsTotal   *prometheus.CounterVec
	pollLatency  prometheus.Histogram
	httpRequests *prometheus.CounterVec
	exportsTotal *prometheus.CounterVec
)

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Name: metricPrefix + name, Help: help})
}

// Init registers the collectors with the default registry. Repeated
// calls are no-ops.
func Init() {
	registerOnce.Do(func() {
		monthlyIncome = gauge("monthly_income", "Gross income of the current month in EUR")
		socialSecurity = gauge("social_security", "Social-security contribution of the current month in EUR")
		incomeTax = gauge("income_tax", "Income tax of the current month in EUR")
		netIncome = gauge("net_income", "Net income of the current month in EUR")
		vatProgress = gauge("vat_progress_percent", "Yearly turnover as a percentage of the VAT threshold")
		records = gauge("records", "Number of stored records")

		pollsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "polls_total",
				Help: "Total store polls by result",
			},
			[]string{"result"},
		)
		pollLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "poll_latency_seconds",
				Help:    "Store poll and recompute latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		)
		exportsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Total report exports by format",
			},
			[]string{"format"},
		)

		prometheus.MustRegister(
			monthlyIncome,
			socialSecurity,
			incomeTax,
			netIncome,
			vatProgress,
			records,
			pollsTotal,
			pollLatency,
			httpRequests,
			exportsTotal,
		)
	})
}

// SetSummary publishes the current month's summary.
func SetSummary(s model.TaxSummary, recordCount int) {
	if monthlyIncome == nil {
		return
	}
	monthlyIncome.Set(s.TotalIncome.InexactFloat64())
	socialSecurity.Set(s.SocialSecurity.InexactFloat64())
	incomeTax.Set(s.IncomeTax.InexactFloat64())
	netIncome.Set(s.NetIncome.InexactFloat64())
	vatProgress.Set(s.VATProgressPercent.InexactFloat64())
	records.Set(float64(recordCount))
}

// ObservePoll records poll duration and result.
func ObservePoll(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if pollsTotal != nil {
		pollsTotal.WithLabelValues(result).Inc()
	}
	if pollLatency != nil {
		pollLatency.Observe(duration.Seconds())
	}
}

// IncHTTPRequest counts one served request.
func IncHTTPRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	}
}

// IncExport counts one rendered report.
func IncExport(format string) {
	if format == "" {
		format = "unknown"
	}
	if exportsTotal != nil {
		exportsTotal.WithLabelValues(format).Inc()
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
