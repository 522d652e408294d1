// Package monitor polls an MQ135 sensor and publishes gas concentration readings.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/itohio/mq135/pkg/config"
	"github.com/itohio/mq135/pkg/link"
	"github.com/itohio/mq135/pkg/mq135"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultBufferSize is the size of the readings channel returned by Run.
	DefaultBufferSize = 16
	// retryPause is how long to wait before asking the ADC again after ErrWouldBlock.
	retryPause = 5 * time.Millisecond
)

// Reading is a single sensor acquisition evaluated for the monitored gases.
type Reading struct {
	Timestamp  time.Time
	Raw        uint32
	Resistance float32 // Rs, kOhm
	R0         float32 // Baseline used for Ratio, kOhm
	Ratio      float32
	Calibrated bool
	Gases      []mq135.Gas
	PPM        [mq135.NumGases]float32 // Indexed by gas
}

// waitADC turns ErrWouldBlock into a wait bounded by ctx.
type waitADC struct {
	adc mq135.ADC[link.Channel]
	ctx context.Context
}

func (w *waitADC) Read(ch link.Channel) (uint32, error) {
	for {
		raw, err := w.adc.Read(ch)
		if !errors.Is(err, mq135.ErrWouldBlock) {
			return raw, err
		}

		select {
		case <-w.ctx.Done():
			return 0, w.ctx.Err()
		case <-time.After(retryPause):
		}
	}
}

// Monitor owns a sensor and serialises calibration and reads on it.
type Monitor struct {
	mu     sync.Mutex
	wait   *waitADC
	sensor mq135.Device[link.Channel]
	last   Reading
	valid  bool

	gases    []mq135.Gas
	interval time.Duration

	callbacks    []func(Reading)
	errCallbacks []func(error)
	cbMu         sync.RWMutex
}

// New creates a monitor reading the sensor wired as described by cfg through adc.
func New(adc mq135.ADC[link.Channel], cfg *config.Config) (*Monitor, error) {
	gases := make([]mq135.Gas, 0, len(cfg.Monitor.Gases))
	for _, name := range cfg.Monitor.Gases {
		gas, err := mq135.ParseGas(name)
		if err != nil {
			return nil, errors.Wrapf(err, "monitor.gases: %q", name)
		}
		gases = append(gases, gas)
	}

	wait := &waitADC{adc: adc, ctx: context.Background()}
	sensor := mq135.New[link.Channel](wait, link.Channel(cfg.Sensor.Channel), float32(cfg.Sensor.LoadResistance))
	err := sensor.Configure(mq135.Config{
		SupplyVoltage: float32(cfg.Sensor.SupplyVoltage),
		FullScale:     cfg.Sensor.FullScale,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to configure sensor")
	}

	return &Monitor{
		wait:     wait,
		sensor:   sensor,
		gases:    gases,
		interval: cfg.Monitor.Interval,
	}, nil
}

// Calibrate establishes the clean-air baseline. The sensor must be in clean air.
func (m *Monitor) Calibrate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.wait.ctx = ctx
	defer func() { m.wait.ctx = context.Background() }()

	if err := m.sensor.Calibrate(); err != nil {
		return errors.Wrap(err, "calibration failed")
	}

	log.WithField("r0", m.sensor.R0()).Info("sensor calibrated")
	return nil
}

// R0 returns the current baseline and whether it comes from a calibration.
func (m *Monitor) R0() (float32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sensor.R0(), m.sensor.Calibrated()
}

// Measure performs one acquisition.
func (m *Monitor) Measure(ctx context.Context) (Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.wait.ctx = ctx
	defer func() { m.wait.ctx = context.Background() }()

	meas, err := m.sensor.Measure()
	if err != nil {
		return Reading{}, errors.Wrap(err, "measurement failed")
	}

	r := Reading{
		Timestamp:  time.Now(),
		Raw:        meas.Raw,
		Resistance: meas.Resistance,
		R0:         m.sensor.R0(),
		Ratio:      meas.Ratio,
		Calibrated: m.sensor.Calibrated(),
		Gases:      m.gases,
		PPM:        meas.PPM,
	}
	m.last = r
	m.valid = true

	return r, nil
}

// Last returns the most recent successful reading.
func (m *Monitor) Last() (Reading, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.valid
}

// Run polls the sensor every interval until ctx is done, then closes the returned channel.
// Readings are also delivered to OnUpdate callbacks; a full channel drops readings.
func (m *Monitor) Run(ctx context.Context) <-chan Reading {
	out := make(chan Reading, DefaultBufferSize)

	go func() {
		defer close(out)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			r, err := m.Measure(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.WithError(err).Warn("failed to read sensor")
				m.notifyError(err)
				continue
			}

			m.notifyCallbacks(r)

			select {
			case out <- r:
			default:
				log.Warn("readings channel full, dropping reading")
			}
		}
	}()

	return out
}

// OnUpdate registers a callback invoked with every successful reading made by Run.
func (m *Monitor) OnUpdate(callback func(Reading)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// OnError registers a callback invoked with every failed read made by Run.
func (m *Monitor) OnError(callback func(error)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.errCallbacks = append(m.errCallbacks, callback)
}

func (m *Monitor) notifyCallbacks(r Reading) {
	m.cbMu.RLock()
	callbacks := make([]func(Reading), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(r)
		}
	}
}

func (m *Monitor) notifyError(err error) {
	m.cbMu.RLock()
	callbacks := make([]func(error), len(m.errCallbacks))
	copy(callbacks, m.errCallbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(err)
		}
	}
}
