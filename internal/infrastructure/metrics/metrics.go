package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"onec-traders.backend/internal/domain/entities"
)

// Recorder holds the service's prometheus collectors
type Recorder struct {
	AccrualRuns         prometheus.Counter
	AccrualProcessed    prometheus.Counter
	AccrualPaid         prometheus.Counter
	AccrualMatured      prometheus.Counter
	AccrualErrors       prometheus.Counter
	SweepDuration       prometheus.Histogram
	CommissionPaid      *prometheus.CounterVec
	CommissionFailures  *prometheus.CounterVec
	HttpRequestsTotal   *prometheus.CounterVec
	ResponseTimeSeconds *prometheus.HistogramVec
}

// NewRecorder registers every collector on reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		AccrualRuns: f.NewCounter(prometheus.CounterOpts{
			Name: "accrual_runs_total",
			Help: "Total number of daily accrual sweeps",
		}),
		AccrualProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "accrual_investments_processed_total",
			Help: "Total number of investments paid by the accrual engine",
		}),
		AccrualPaid: f.NewCounter(prometheus.CounterOpts{
			Name: "accrual_paid_amount_total",
			Help: "Total ROI paid out, in dollars",
		}),
		AccrualMatured: f.NewCounter(prometheus.CounterOpts{
			Name: "accrual_matured_total",
			Help: "Total number of investments that matured",
		}),
		AccrualErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "accrual_errors_total",
			Help: "Total number of failed investment accruals",
		}),
		SweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "accrual_sweep_duration_seconds",
			Help:    "Histogram of daily accrual sweep durations",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		CommissionPaid: f.NewCounterVec(prometheus.CounterOpts{
			Name: "referral_commission_paid_amount_total",
			Help: "Total referral commission paid, in dollars",
		}, []string{"level"}),
		CommissionFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "referral_commission_failures_total",
			Help: "Total number of referral commission credits that failed",
		}, []string{"level"}),
		HttpRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		ResponseTimeSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// ObserveAccrual records one successful accrual
func (r *Recorder) ObserveAccrual(paid decimal.Decimal, matured bool) {
	r.AccrualProcessed.Inc()
	r.AccrualPaid.Add(paid.InexactFloat64())
	if matured {
		r.AccrualMatured.Inc()
	}
}

func (r *Recorder) ObserveAccrualError() {
	r.AccrualErrors.Inc()
}

func (r *Recorder) ObserveCommission(level int, amount decimal.Decimal) {
	r.CommissionPaid.WithLabelValues(strconv.Itoa(level)).Add(amount.InexactFloat64())
}

func (r *Recorder) ObserveCommissionFailure(level int) {
	r.CommissionFailures.WithLabelValues(strconv.Itoa(level)).Inc()
}

// ObserveSweep records a finished sweep
func (r *Recorder) ObserveSweep(_ *entities.AccrualRunResult, elapsed time.Duration) {
	r.AccrualRuns.Inc()
	r.SweepDuration.Observe(elapsed.Seconds())
}

// ObserveHTTP records one served request
func (r *Recorder) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	r.HttpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.ResponseTimeSeconds.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
