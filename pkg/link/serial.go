package link

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// DefaultBaudRate is the UART rate used by the firmware.
const DefaultBaudRate = 115200

// MaxRaw is the largest code accepted on the wire (16-bit ADC).
const MaxRaw = 0xFFFF

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads samples streamed by the firmware over a serial port.
type Serial struct {
	port     string
	baudRate int

	conn      serial.Port
	slots     slots
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
}

// New creates a new Serial link for the given port and baud rate.
func New(port string, baudRate int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list serial ports")
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	port, err := serial.Open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return errors.Wrapf(err, "failed to open serial port %s", d.port)
	}

	d.start(port)
	d.conn = port

	log.WithFields(log.Fields{"port": d.port, "baud": d.baudRate}).Info("serial link connected")
	return nil
}

// start launches the reader goroutine on r. Callers hold d.mu.
func (d *Serial) start(r io.Reader) {
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.done = make(chan struct{})
	d.slots.reset()
	d.connected = true

	go d.readSamples(d.ctx, r, d.done)
}

// Close closes the port and stops reading samples.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.WithError(err).Warn("error closing serial port")
		}
		d.conn = nil
	}
	<-d.done

	d.connected = false
	return nil
}

// IsConnected returns whether the link is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Read returns the newest unread sample of ch, or mq135.ErrWouldBlock if there is none.
func (d *Serial) Read(ch Channel) (uint32, error) {
	if !d.IsConnected() {
		return 0, ErrNotConnected
	}
	return d.slots.take(ch)
}

// readSamples reads lines from r and stores them until ctx is cancelled or r ends.
func (d *Serial) readSamples(ctx context.Context, r io.Reader, done chan<- struct{}) {
	defer close(done)
	defer func() {
		if p := recover(); p != nil {
			log.Errorf("panic in readSamples: %v", p)
		}
	}()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sample, err := parseLine(line)
		if err != nil {
			log.WithError(err).WithField("line", line).Warn("failed to parse line")
			continue
		}
		d.slots.put(sample)
	}

	if err := scanner.Err(); err != nil && err != io.EOF && ctx.Err() == nil {
		log.WithError(err).Error("error reading from serial port")
	}
}

// parseLine parses a line from the MCU into a RawSample.
// Format: unix_micros,channel,raw
// Example: 1234567890123,0,2048
func parseLine(line string) (RawSample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return RawSample{}, errors.Errorf("invalid line format: expected 3 comma-separated values, got %d", len(parts))
	}

	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return RawSample{}, errors.Wrap(err, "invalid timestamp")
	}

	channel, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return RawSample{}, errors.Wrap(err, "invalid channel")
	}
	if channel >= MaxChannels {
		return RawSample{}, errors.Wrapf(ErrInvalidChannel, "channel %d (max %d)", channel, MaxChannels-1)
	}

	raw, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return RawSample{}, errors.Wrap(err, "invalid raw value")
	}
	if raw > MaxRaw {
		return RawSample{}, errors.Errorf("raw value out of range: %d (max %d)", raw, MaxRaw)
	}

	return RawSample{
		Timestamp: time.UnixMicro(timestampMicros),
		Channel:   Channel(channel),
		Raw:       uint32(raw),
	}, nil
}
