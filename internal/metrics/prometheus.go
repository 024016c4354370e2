package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once     sync.Once
	registry *Registry
)

// Registry holds all tuntap metrics.
type Registry struct {
	// Allocation
	Allocations *prometheus.CounterVec
	ControlOps  *prometheus.CounterVec

	// Queues
	QueuesOpen   *prometheus.GaugeVec
	QueuePackets *prometheus.CounterVec
	QueueBytes   *prometheus.CounterVec
	QueueErrors  *prometheus.CounterVec
}

// Get returns the global metrics registry, creating it if necessary.
func Get() *Registry {
	once.Do(func() {
		registry = newRegistry(prometheus.DefaultRegisterer)
	})
	return registry
}

// NewRegistry creates a registry whose collectors are registered with reg.
// Tests use it with a private prometheus.Registry.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return newRegistry(reg)
}

func newRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{}
	factory := promauto.With(reg)

	r.Allocations = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "tuntap_allocations_total",
		Help: "Device allocations by kind and result",
	}, []string{"kind", "result"})

	r.ControlOps = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "tuntap_control_ops_total",
		Help: "Interface control calls by operation and result",
	}, []string{"op", "result"})

	r.QueuesOpen = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tuntap_queues_open",
		Help: "Open packet queues per interface",
	}, []string{"interface"})

	r.QueuePackets = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "tuntap_queue_packets_total",
		Help: "Packets read from or written to packet queues",
	}, []string{"interface", "direction"})

	r.QueueBytes = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "tuntap_queue_bytes_total",
		Help: "Bytes read from or written to packet queues",
	}, []string{"interface", "direction"})

	r.QueueErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "tuntap_queue_errors_total",
		Help: "Failed packet queue reads and writes",
	}, []string{"interface", "direction"})

	return r
}

// RecordAllocation records the outcome of one allocation.
func (r *Registry) RecordAllocation(kind string, err error) {
	r.Allocations.WithLabelValues(kind, result(err)).Inc()
}

// RecordControlOp records the outcome of one control call.
func (r *Registry) RecordControlOp(op string, err error) {
	r.ControlOps.WithLabelValues(op, result(err)).Inc()
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
