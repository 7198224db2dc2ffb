package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/usuarios-api/internal/application/account"
)

var _ account.Recorder = (*Recorder)(nil)

// Recorder métricas Prometheus de los flujos de cuenta.
type Recorder struct {
	workflows     *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	compensations *prometheus.CounterVec
}

// NewRecorder crea las métricas sin registrarlas.
func NewRecorder() *Recorder {
	return &Recorder{
		workflows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_workflows_total",
			Help: "Flujos de cuenta ejecutados, por operación y resultado (OK o código de error)",
		}, []string{"op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "account_workflow_duration_ms",
			Help:    "Duración de los flujos de cuenta en milisegundos",
			Buckets: prometheus.ExponentialBuckets(5, 2, 12),
		}, []string{"op"}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_compensations_total",
			Help: "Pasos de compensación ejecutados, por operación, paso y resultado",
		}, []string{"op", "step", "result"}),
	}
}

// Register registra las métricas en reg (o en el registro por defecto si es nil).
// Una métrica ya registrada no es error.
func (r *Recorder) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{r.workflows, r.latency, r.compensations} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// ObserveWorkflow implementa account.Recorder.
func (r *Recorder) ObserveWorkflow(op, outcome string, elapsed time.Duration) {
	r.workflows.WithLabelValues(op, outcome).Inc()
	r.latency.WithLabelValues(op).Observe(float64(elapsed.Microseconds()) / 1000)
}

// ObserveCompensation implementa account.Recorder.
func (r *Recorder) ObserveCompensation(op, step string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.compensations.WithLabelValues(op, step, result).Inc()
}
