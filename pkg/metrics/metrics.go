// Package metrics exports monitor readings as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/itohio/mq135/pkg/monitor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gauges updated from readings.
type Metrics struct {
	ppm        *prometheus.GaugeVec
	resistance prometheus.Gauge
	r0         prometheus.Gauge
	ratio      prometheus.Gauge
	calibrated prometheus.Gauge
	raw        prometheus.Gauge
	errors     prometheus.Counter
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ppm: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mq135_gas_ppm",
			Help: "Estimated gas concentration (units: ppm)",
		}, []string{"gas"}),
		resistance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mq135_resistance_kohm",
			Help: "Sensor resistance Rs (units: kOhm)",
		}),
		r0: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mq135_r0_kohm",
			Help: "Clean air baseline resistance R0 (units: kOhm)",
		}),
		ratio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mq135_ratio",
			Help: "Rs/R0 ratio",
		}),
		calibrated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mq135_calibrated",
			Help: "1 if R0 comes from a calibration, 0 if it is the default",
		}),
		raw: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mq135_raw",
			Help: "Last raw ADC code",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mq135_read_errors_total",
			Help: "Number of failed sensor reads",
		}),
	}

	reg.MustRegister(m.ppm, m.resistance, m.r0, m.ratio, m.calibrated, m.raw, m.errors)
	return m
}

// Observe updates the gauges from r. Only the gases listed in r are exported.
func (m *Metrics) Observe(r monitor.Reading) {
	for _, gas := range r.Gases {
		m.ppm.WithLabelValues(gas.String()).Set(float64(r.PPM[gas]))
	}
	m.resistance.Set(float64(r.Resistance))
	m.r0.Set(float64(r.R0))
	m.ratio.Set(float64(r.Ratio))
	m.raw.Set(float64(r.Raw))
	if r.Calibrated {
		m.calibrated.Set(1)
	} else {
		m.calibrated.Set(0)
	}
}

// ObserveError counts a failed read.
func (m *Metrics) ObserveError(error) {
	m.errors.Inc()
}

// Attach subscribes m to the readings and errors of mon.
func (m *Metrics) Attach(mon *monitor.Monitor) {
	mon.OnUpdate(m.Observe)
	mon.OnError(m.ObserveError)
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		// Opt into OpenMetrics to support exemplars.
		EnableOpenMetrics: true,
	})
}
