// Package metrics exposes Prometheus counters for the marker use cases.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "markermap"

// Recorder implements app.Recorder on top of a Prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	loads             prometheus.Counter
	mirrorSize        prometheus.Gauge
	markersCreated    prometheus.Counter
	markersDeleted    prometheus.Counter
	createFailures    *prometheus.CounterVec
	orphanedBlobs     prometheus.Counter
	blobDeleteFailure prometheus.Counter
}

// NewRecorder registers the marker metrics, plus Go and process collectors, on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		loads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "markers",
			Name:      "loads_total",
			Help:      "Completed initial loads of the marker list",
		}),
		mirrorSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "markers",
			Name:      "loaded_count",
			Help:      "Markers returned by the most recent load",
		}),
		markersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "markers",
			Name:      "created_total",
			Help:      "Markers created",
		}),
		markersDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "markers",
			Name:      "deleted_total",
			Help:      "Markers deleted",
		}),
		createFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "markers",
			Name:      "create_failures_total",
			Help:      "Failed marker creations by stage",
		}, []string{"stage"}),
		orphanedBlobs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "blobs",
			Name:      "orphaned_total",
			Help:      "Uploaded images left without a marker document",
		}),
		blobDeleteFailure: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "blobs",
			Name:      "delete_failures_total",
			Help:      "Image deletes that failed and were ignored",
		}),
	}
}

func (r *Recorder) LoadCompleted(markerCount int) {
	r.loads.Inc()
	r.mirrorSize.Set(float64(markerCount))
}

func (r *Recorder) MarkerCreated()            { r.markersCreated.Inc() }
func (r *Recorder) MarkerDeleted()            { r.markersDeleted.Inc() }
func (r *Recorder) CreateFailed(stage string) { r.createFailures.WithLabelValues(stage).Inc() }
func (r *Recorder) OrphanedBlob()             { r.orphanedBlobs.Inc() }
func (r *Recorder) BlobDeleteFailed()         { r.blobDeleteFailure.Inc() }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
