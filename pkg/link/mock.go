package link

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/itohio/mq135/pkg/config"
	"github.com/itohio/mq135/pkg/mq135"
)

// Mock simulates a board with an MQ135 on every channel.
type Mock struct {
	cfg       *config.MockConfig
	fullScale uint32

	slots     slots
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
	startTime time.Time
}

// NewMock creates a new mocked device producing codes below fullScale.
func NewMock(cfg *config.MockConfig, fullScale uint32) *Mock {
	if cfg == nil {
		def := config.Default()
		cfg = &def.Mock
	}
	if fullScale == 0 {
		fullScale = mq135.DefaultFullScale
	}
	if cfg.SampleRate <= 0 {
		c := *cfg
		c.SampleRate = config.Default().Mock.SampleRate
		cfg = &c
	}

	return &Mock{
		cfg:       cfg,
		fullScale: fullScale,
	}
}

// Connect starts generating samples.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.done = make(chan struct{})
	m.startTime = time.Now()
	m.slots.reset()
	m.connected = true

	go m.generateSamples(m.ctx, m.done)

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	<-m.done
	m.connected = false

	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Read returns the newest unread sample of ch, or mq135.ErrWouldBlock if there is none.
func (m *Mock) Read(ch Channel) (uint32, error) {
	if !m.IsConnected() {
		return 0, ErrNotConnected
	}
	return m.slots.take(ch)
}

// generateSamples publishes a sample on every channel at the configured rate.
func (m *Mock) generateSamples(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			raw := m.rawAt(now.Sub(m.startTime))
			for ch := Channel(0); ch < MaxChannels; ch++ {
				m.slots.put(RawSample{Timestamp: now, Channel: ch, Raw: raw})
			}
		}
	}
}

// rawAt returns the simulated code at elapsed time since Connect.
//
// The sensor idles at CleanAirRaw. Every PollutionPeriod a pollution event ramps the
// code linearly up to PollutionRaw and back down over the first fifth of the period
// (a higher code is a lower sensor resistance, i.e. more gas).
func (m *Mock) rawAt(elapsed time.Duration) uint32 {
	value := float64(m.cfg.CleanAirRaw)

	if period := m.cfg.PollutionPeriod; period > 0 {
		event := period / 5
		phase := elapsed % period
		if phase < event {
			// Triangle: 0 -> 1 -> 0 over the event
			x := float64(phase) / float64(event)
			peak := 1 - math.Abs(2*x-1)
			value += peak * (float64(m.cfg.PollutionRaw) - float64(m.cfg.CleanAirRaw))
		}
	}

	t := elapsed.Seconds()
	value += (math.Sin(t*7.1) + math.Cos(t*2.3)) * m.cfg.Noise * 0.5

	// Keep clear of the codes the driver rejects, whatever the configured codes are
	if value < 1 {
		value = 1
	} else if value > float64(m.fullScale-1) {
		value = float64(m.fullScale - 1)
	}
	return uint32(math.Round(value))
}
