package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ledger module.
type Metrics struct {
	DonationsCreated    prometheus.Counter
	DonationsClaimed    prometheus.Counter
	DonationsCompleted  prometheus.Counter
	DonationsCancelled  prometheus.Counter
	AdminOverrides      prometheus.Counter
	CreateDuration      prometheus.Histogram
	TransitionDurations prometheus.Histogram
}

// New creates a Metrics instance with all ledger metrics registered.
func New() *Metrics {
	return &Metrics{
		DonationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "foodshare_donations_created_total",
			Help: "Total number of donations created",
		}),
		DonationsClaimed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "foodshare_donations_claimed_total",
			Help: "Total number of donations claimed",
		}),
		DonationsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "foodshare_donations_completed_total",
			Help: "Total number of donations completed (including forced)",
		}),
		DonationsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "foodshare_donations_cancelled_total",
			Help: "Total number of donations cancelled (including forced)",
		}),
		AdminOverrides: promauto.NewCounter(prometheus.CounterOpts{
			Name: "foodshare_admin_overrides_total",
			Help: "Total number of administrative force transitions",
		}),
		CreateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "foodshare_donation_create_duration_seconds",
			Help:    "Duration of createDonation operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		TransitionDurations: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "foodshare_donation_transition_duration_seconds",
			Help:    "Duration of lifecycle transition operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveCreate records the duration of a createDonation operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreate(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}

// ObserveTransition records the duration of a lifecycle transition.
func (m *Metrics) ObserveTransition(start time.Time) {
	m.TransitionDurations.Observe(time.Since(start).Seconds())
}
