package lib

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

/* This file implements dev-ops telemetry for the engine in the form of prometheus metrics */

const metricsPattern = "/metrics"

// Metrics represents a server that exposes Prometheus metrics
type Metrics struct {
	server   *http.Server         // the http prometheus server
	config   MetricsConfig        // the configuration
	registry *prometheus.Registry // per instance registry
	log      LoggerI              // the logger

	FleetMetrics   // wallet fleet telemetry
	MonitorMetrics // ledger synchronization telemetry
	RPCMetrics     // websocket api telemetry
}

// FleetMetrics represents the telemetry of the wallet manager
type FleetMetrics struct {
	FleetSize    prometheus.Gauge       // how many live wallets?
	TotalBalance prometheus.Gauge       // sum of all wallet balances
	PendingTxs   prometheus.Gauge       // signed transactions waiting for broadcast
	Operations   *prometheus.CounterVec // fleet operations by name and outcome
}

// MonitorMetrics represents the telemetry of the monitor
type MonitorMetrics struct {
	Running      prometheus.Gauge     // is the monitor loop running?
	SyncPasses   prometheus.Counter   // completed sync passes
	SyncFailures prometheus.Counter   // failed sync passes
	SyncDuration prometheus.Histogram // how long a sync pass takes
	Broadcasts   prometheus.Counter   // transactions accepted by the ledger
}

// RPCMetrics represents the telemetry of the websocket api
type RPCMetrics struct {
	Connections prometheus.Gauge       // open websocket connections
	Requests    *prometheus.CounterVec // requests by type and outcome
}

// NewMetricsServer() creates a new telemetry server
func NewMetricsServer(config MetricsConfig, logger LoggerI) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(registry)
	mux := http.NewServeMux()
	mux.Handle(metricsPattern, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &Metrics{
		server:   &http.Server{Addr: config.PrometheusAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		config:   config,
		registry: registry,
		log:      logger,
		FleetMetrics: FleetMetrics{
			FleetSize: factory.NewGauge(prometheus.GaugeOpts{
				Name: "aum_fleet_size",
				Help: "Number of live wallets in the fleet",
			}),
			TotalBalance: factory.NewGauge(prometheus.GaugeOpts{
				Name: "aum_fleet_total_balance",
				Help: "Sum of all wallet balances",
			}),
			PendingTxs: factory.NewGauge(prometheus.GaugeOpts{
				Name: "aum_fleet_pending_transactions",
				Help: "Signed transactions waiting to be broadcast",
			}),
			Operations: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "aum_fleet_operations_total",
				Help: "Fleet operations by name and outcome",
			}, []string{"operation", "outcome"}),
		},
		MonitorMetrics: MonitorMetrics{
			Running: factory.NewGauge(prometheus.GaugeOpts{
				Name: "aum_monitor_running",
				Help: "Monitor loop status (1 for running, 0 for stopped)",
			}),
			SyncPasses: factory.NewCounter(prometheus.CounterOpts{
				Name: "aum_monitor_sync_passes_total",
				Help: "Completed sync passes",
			}),
			SyncFailures: factory.NewCounter(prometheus.CounterOpts{
				Name: "aum_monitor_sync_failures_total",
				Help: "Failed sync passes",
			}),
			SyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
				Name: "aum_monitor_sync_duration_seconds",
				Help: "Time to complete a sync pass in seconds",
			}),
			Broadcasts: factory.NewCounter(prometheus.CounterOpts{
				Name: "aum_monitor_broadcasts_total",
				Help: "Transactions accepted by the ledger",
			}),
		},
		RPCMetrics: RPCMetrics{
			Connections: factory.NewGauge(prometheus.GaugeOpts{
				Name: "aum_rpc_connections",
				Help: "Open websocket connections",
			}),
			Requests: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "aum_rpc_requests_total",
				Help: "Requests by type and outcome",
			}, []string{"type", "outcome"}),
		},
	}
}

// Start() starts the telemetry server
func (m *Metrics) Start() {
	// exit if empty
	if m == nil {
		return
	}
	// if the metrics server is enabled
	if m.config.Enabled {
		go func() {
			m.log.Infof("Starting metrics server on %s", m.config.PrometheusAddress)
			// run the server
			if err := m.server.ListenAndServe(); err != nil {
				if err != http.ErrServerClosed {
					m.log.Errorf("Metrics server failed with err: %s", err.Error())
				}
			}
		}()
	}
}

// Stop() gracefully stops the telemetry server
func (m *Metrics) Stop() {
	// exit if empty
	if m == nil {
		return
	}
	// if the metrics server isn't enabled
	if m.config.Enabled {
		// shutdown the server
		if err := m.server.Shutdown(context.Background()); err != nil {
			m.log.Error(err.Error())
		}
	}
}

// Registry() exposes the registry for scraping in-process
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// UpdateFleet() is a setter for the fleet gauges
func (m *Metrics) UpdateFleet(size, pending int, totalBalance float64) {
	// exit if empty
	if m == nil {
		return
	}
	m.FleetSize.Set(float64(size))
	m.PendingTxs.Set(float64(pending))
	m.TotalBalance.Set(totalBalance)
}

// ObserveOperation() counts a fleet operation
func (m *Metrics) ObserveOperation(operation string, err error) {
	// exit if empty
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome(err)).Inc()
}

// SetMonitorRunning() updates the monitor status gauge
func (m *Metrics) SetMonitorRunning(running bool) {
	// exit if empty
	if m == nil {
		return
	}
	if running {
		m.Running.Set(1)
	} else {
		m.Running.Set(0)
	}
}

// ObserveSync() records the outcome and duration of a sync pass
func (m *Metrics) ObserveSync(duration time.Duration, broadcasts int, err error) {
	// exit if empty
	if m == nil {
		return
	}
	if err != nil {
		m.SyncFailures.Inc()
	} else {
		m.SyncPasses.Inc()
	}
	m.Broadcasts.Add(float64(broadcasts))
	m.SyncDuration.Observe(duration.Seconds())
}

// ObserveRequest() counts an rpc request
func (m *Metrics) ObserveRequest(requestType string, err error) {
	// exit if empty
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(requestType, outcome(err)).Inc()
}

// UpdateConnections() adds delta to the open connection gauge
func (m *Metrics) UpdateConnections(delta int) {
	// exit if empty
	if m == nil {
		return
	}
	m.Connections.Add(float64(delta))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
