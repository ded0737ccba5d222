package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Simulation metrics
	pathsSimulated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mc_portfolio_paths_simulated_total",
			Help: "Total number of GBM paths simulated",
		},
		[]string{"ticker"},
	)

	samplingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mc_portfolio_sampling_duration_seconds",
			Help:    "Time spent building a return matrix",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Optimizer metrics
	optimizerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mc_portfolio_optimizer_runs_total",
			Help: "Total number of optimizer runs by method and outcome",
		},
		[]string{"method", "converged"},
	)

	optimizerIterations = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mc_portfolio_optimizer_iterations",
			Help:    "Iterations used by the optimizer",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 500},
		},
		[]string{"method"},
	)

	// Result metrics
	assetWeight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mc_portfolio_asset_weight",
			Help: "Weight of each asset in the last optimized allocation",
		},
		[]string{"ticker"},
	)

	// Data metrics
	providerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mc_portfolio_provider_requests_total",
			Help: "Price history requests by provider and cache outcome",
		},
		[]string{"provider", "outcome"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mc_portfolio_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(pathsSimulated)
	prometheus.MustRegister(samplingDuration)
	prometheus.MustRegister(optimizerRuns)
	prometheus.MustRegister(optimizerIterations)
	prometheus.MustRegister(assetWeight)
	prometheus.MustRegister(providerRequests)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordPaths adds n simulated paths for ticker
func RecordPaths(ticker string, n int) {
	pathsSimulated.WithLabelValues(ticker).Add(float64(n))
}

// ObserveSampling records how long a return matrix took to build
func ObserveSampling(seconds float64) {
	samplingDuration.Observe(seconds)
}

// RecordOptimizerRun records the outcome of one optimizer run
func RecordOptimizerRun(method string, converged bool, iterations int) {
	label := "false"
	if converged {
		label = "true"
	}
	optimizerRuns.WithLabelValues(method, label).Inc()
	optimizerIterations.WithLabelValues(method).Observe(float64(iterations))
}

// UpdateWeight updates the weight gauge of ticker
func UpdateWeight(ticker string, weight float64) {
	assetWeight.WithLabelValues(ticker).Set(weight)
}

// RecordProviderRequest records a price history lookup
func RecordProviderRequest(provider, outcome string) {
	providerRequests.WithLabelValues(provider, outcome).Inc()
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
