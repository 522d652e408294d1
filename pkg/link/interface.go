package link

import (
	"sync"
	"time"

	"github.com/itohio/mq135/pkg/mq135"
	"github.com/pkg/errors"
)

// MaxChannels is the number of ADC channels a link can carry.
const MaxChannels = 4

var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrInvalidChannel   = errors.New("invalid channel")
)

// Channel identifies an ADC input on the remote board.
type Channel uint8

// RawSample is a raw ADC code received from the board.
type RawSample struct {
	Timestamp time.Time
	Channel   Channel
	Raw       uint32
}

// Device is an ADC reachable from the host, real or mocked.
// Read returns mq135.ErrWouldBlock until a sample newer than the last one read arrives.
type Device interface {
	Connect() error
	Close() error
	IsConnected() bool
	Read(ch Channel) (uint32, error)
}

// Ensure Device can drive an MQ135.
var _ mq135.ADC[Channel] = Device(nil)

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)

// slots keeps the newest sample per channel until it is read.
type slots struct {
	mu     sync.Mutex
	latest [MaxChannels]RawSample
	fresh  [MaxChannels]bool
}

func (s *slots) put(sample RawSample) {
	if int(sample.Channel) >= MaxChannels {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[sample.Channel] = sample
	s.fresh[sample.Channel] = true
}

func (s *slots) take(ch Channel) (uint32, error) {
	if int(ch) >= MaxChannels {
		return 0, errors.Wrapf(ErrInvalidChannel, "channel %d", ch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fresh[ch] {
		return 0, mq135.ErrWouldBlock
	}
	s.fresh[ch] = false
	return s.latest[ch].Raw, nil
}

func (s *slots) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fresh = [MaxChannels]bool{}
}
