// Package metrics exposes the deployment pipeline counters to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Collector holds the pipeline metrics. A nil *Collector is valid and records
// nothing.
type Collector struct {
	logger zerolog.Logger

	broadcasts       prometheus.Counter
	rejections       *prometheus.CounterVec
	resyncs          prometheus.Counter
	pollAttempts     prometheus.Counter
	artifactsStored  prometheus.Counter
	artifactsSkipped prometheus.Counter

	confirmationLatency prometheus.Histogram

	registry *prometheus.Registry
}

func NewCollector(logger zerolog.Logger) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		logger:   logger,
		registry: registry,

		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storecode_broadcasts_total",
			Help: "Total number of MsgStoreCode transactions broadcast",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storecode_rejections_total",
			Help: "Broadcasts rejected by the node, by rejection class",
		}, []string{"class"}),
		resyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storecode_sequence_resyncs_total",
			Help: "Number of times the account sequence was refetched after a rejection",
		}),
		pollAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storecode_poll_attempts_total",
			Help: "Number of tx info queries issued while awaiting confirmation",
		}),
		artifactsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storecode_artifacts_stored_total",
			Help: "Number of artifacts stored and recorded in the ledger",
		}),
		artifactsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storecode_artifacts_skipped_total",
			Help: "Number of artifacts skipped because the ledger already held them",
		}),
		confirmationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storecode_confirmation_latency_seconds",
			Help:    "Time from broadcast acceptance to confirmed tx info",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4m
		}),
	}

	registry.MustRegister(
		c.broadcasts,
		c.rejections,
		c.resyncs,
		c.pollAttempts,
		c.artifactsStored,
		c.artifactsSkipped,
		c.confirmationLatency,
	)
	registry.MustRegister(prometheus.NewGoCollector())

	return c
}

// Registry returns the registry the collector's metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	c.logger.Info().Str("addr", addr).Msg("Starting Prometheus metrics server")
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}

func (c *Collector) RecordBroadcast() {
	if c == nil {
		return
	}
	c.broadcasts.Inc()
}

// RecordRejection counts a rejected broadcast under the given class.
func (c *Collector) RecordRejection(class string) {
	if c == nil {
		return
	}
	c.rejections.WithLabelValues(class).Inc()
}

func (c *Collector) RecordResync() {
	if c == nil {
		return
	}
	c.resyncs.Inc()
}

func (c *Collector) RecordPollAttempt() {
	if c == nil {
		return
	}
	c.pollAttempts.Inc()
}

func (c *Collector) RecordArtifactStored() {
	if c == nil {
		return
	}
	c.artifactsStored.Inc()
}

func (c *Collector) RecordArtifactSkipped() {
	if c == nil {
		return
	}
	c.artifactsSkipped.Inc()
}

func (c *Collector) RecordConfirmationLatency(d time.Duration) {
	if c == nil {
		return
	}
	c.confirmationLatency.Observe(d.Seconds())
}
