// Package metrics exposes the sampler's run-time state as Prometheus
// instrumentation: one gauge/counter set per rank plus a handful of
// sampler-wide gauges, served over HTTP when enabled.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the registry and the instrument set the sampler updates
// once per reporting interval. A nil *Collector is valid and every method
// on it is a no-op, so callers can build one unconditionally and only
// start the HTTP server when metrics are enabled.
type Collector struct {
	registry *prometheus.Registry

	acceptRate     *prometheus.GaugeVec
	swapAcceptRate *prometheus.GaugeVec
	iterations     *prometheus.CounterVec
	effectiveN     prometheus.Gauge
	jumpAcceptRate prometheus.Gauge

	server *http.Server
}

// New creates a Collector with its own registry, so sampler metrics never
// collide with anything registered against prometheus's global
// DefaultRegisterer.
func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		acceptRate: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "ptmcmc_accept_rate",
			Help: "Running Metropolis-Hastings acceptance rate for this rank.",
		}, []string{"rank"}),
		swapAcceptRate: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "ptmcmc_swap_accept_rate",
			Help: "Running swap-acceptance rate for the link below this rank.",
		}, []string{"rank"}),
		iterations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ptmcmc_iterations_total",
			Help: "Completed sampler iterations per rank.",
		}, []string{"rank"}),
		effectiveN: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "ptmcmc_effective_samples",
			Help: "Latest cold-chain effective sample size estimate (min over parameters).",
		}),
		jumpAcceptRate: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "ptmcmc_rjmcmc_jump_accept_rate",
			Help: "Running trans-dimensional jump acceptance rate (RJMCMC mode only).",
		}),
	}
	return c
}

// ObserveRank records one rank's running statistics.
func (c *Collector) ObserveRank(rank int, acceptRate, swapAcceptRate float64, iterDelta int64) {
	if c == nil {
		return
	}
	label := fmt.Sprintf("%d", rank)
	c.acceptRate.WithLabelValues(label).Set(acceptRate)
	c.swapAcceptRate.WithLabelValues(label).Set(swapAcceptRate)
	if iterDelta > 0 {
		c.iterations.WithLabelValues(label).Add(float64(iterDelta))
	}
}

// ObserveEffectiveN records the most recent effective-sample-size estimate.
func (c *Collector) ObserveEffectiveN(neff float64) {
	if c == nil {
		return
	}
	c.effectiveN.Set(neff)
}

// ObserveJumpAcceptRate records the RJMCMC wrapper's running jump-acceptance rate.
func (c *Collector) ObserveJumpAcceptRate(rate float64) {
	if c == nil {
		return
	}
	c.jumpAcceptRate.Set(rate)
}

// Serve starts the /metrics HTTP endpoint in the background. Call Shutdown
// to stop it. A zero-value listenAddr is rejected, so callers should only
// invoke Serve when metrics are actually enabled in configuration.
func (c *Collector) Serve(listenAddr string) error {
	if c == nil {
		return nil
	}
	if listenAddr == "" {
		return errors.New("metrics listen address is empty")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	c.server = &http.Server{Addr: listenAddr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Shutdown stops the metrics HTTP server, if one was started.
func (c *Collector) Shutdown(ctx context.Context) error {
	if c == nil || c.server == nil {
		return nil
	}
	return c.server.Shutdown(ctx)
}
