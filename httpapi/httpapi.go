// Package httpapi exposes the small in-process HTTP surface spec.md
// §4.6/§6.3 describes: trigger-now and status endpoints an external
// scheduler uses to shorten the live-monitor interval around races,
// plus a Prometheus metrics endpoint for the ambient stack.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raceingest/core/coordinator"
)

// Metrics is the ambient Prometheus instrumentation for one running
// coordinator. Registering it is the caller's responsibility so tests
// can use independent registries.
type Metrics struct {
	Fetched  prometheus.Gauge
	Imported prometheus.Gauge
	Failed   prometheus.Gauge
	Batches  prometheus.Counter
	Retries  prometheus.Counter
}

// NewMetrics builds and registers the gauge/counter set against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Fetched:  prometheus.NewGauge(prometheus.GaugeOpts{Name: "raceingest_records_fetched", Help: "Records fetched from the vendor session in the current run."}),
		Imported: prometheus.NewGauge(prometheus.GaugeOpts{Name: "raceingest_records_imported", Help: "Records successfully written in the current run."}),
		Failed:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "raceingest_records_failed", Help: "Records rejected or failed to write in the current run."}),
		Batches:  prometheus.NewCounter(prometheus.CounterOpts{Name: "raceingest_batches_flushed_total", Help: "Batches flushed to the destination database."}),
		Retries:  prometheus.NewCounter(prometheus.CounterOpts{Name: "raceingest_session_retries_total", Help: "Vendor session retries across all runs."}),
	}
	reg.MustRegister(m.Fetched, m.Imported, m.Failed, m.Batches, m.Retries)
	return m
}

// Sync updates the gauges from a Stats snapshot. Counters only move
// forward, so Sync adds the delta since the last observed total.
func (m *Metrics) Sync(prevBatches, prevRetries int, s coordinator.Stats) (int, int) {
	m.Fetched.Set(float64(s.Fetched))
	m.Imported.Set(float64(s.Imported))
	m.Failed.Set(float64(s.Failed))
	if s.Batches > prevBatches {
		m.Batches.Add(float64(s.Batches - prevBatches))
	}
	if s.Retries > prevRetries {
		m.Retries.Add(float64(s.Retries - prevRetries))
	}
	return s.Batches, s.Retries
}

// Trigger is implemented by whatever owns the coordinator and can
// start an out-of-cycle run on demand.
type Trigger interface {
	TriggerHistorical() error
	TriggerRealtime() error
	Status() coordinator.Stats
}

// NewRouter builds the chi router exposing /status, /trigger,
// /trigger/historical, /trigger/realtime, and /metrics.
func NewRouter(t Trigger, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, t.Status())
	})
	r.Get("/trigger", func(w http.ResponseWriter, req *http.Request) {
		if err := t.TriggerRealtime(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
	r.Get("/trigger/historical", func(w http.ResponseWriter, req *http.Request) {
		if err := t.TriggerHistorical(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
	r.Get("/trigger/realtime", func(w http.ResponseWriter, req *http.Request) {
		if err := t.TriggerRealtime(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
