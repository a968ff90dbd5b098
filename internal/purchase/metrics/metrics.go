package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the purchase coordinator.
type Metrics struct {
	Granted          *prometheus.CounterVec
	Rejected         *prometheus.CounterVec
	ApprovalReplays  prometheus.Counter
	TokensExpired    prometheus.Counter
	ApproveDuration  prometheus.Histogram
	InitiateDuration prometheus.Histogram
}

// New creates and registers purchase metrics.
func New() *Metrics {
	return &Metrics{
		Granted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eshmarket_purchases_granted_total",
			Help: "Total entitlements granted by verification path",
		}, []string{"path"}),
		Rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eshmarket_purchases_rejected_total",
			Help: "Total purchase attempts rejected by path and reason",
		}, []string{"path", "reason"}),
		ApprovalReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eshmarket_approval_replays_total",
			Help: "Approve calls that lost the token-consumption race",
		}),
		TokensExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eshmarket_review_tokens_expired_total",
			Help: "Review tokens expired by the sweep worker",
		}),
		ApproveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "eshmarket_approve_duration_seconds",
			Help:    "Duration of approve operations including fulfillment delivery",
			Buckets: prometheus.DefBuckets,
		}),
		InitiateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "eshmarket_initiate_duration_seconds",
			Help:    "Duration of purchase initiation including notification delivery",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveApprove records approve latency.
func (m *Metrics) ObserveApprove(start time.Time) {
	m.ApproveDuration.Observe(time.Since(start).Seconds())
}

// ObserveInitiate records initiate latency.
func (m *Metrics) ObserveInitiate(start time.Time) {
	m.InitiateDuration.Observe(time.Since(start).Seconds())
}
