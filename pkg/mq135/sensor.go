// Package mq135 implements a driver for MQ135 resistive gas sensors.
//
// The driver converts a raw ADC sample into the sensor resistance Rs, calibrates the
// clean-air baseline R0 and estimates gas concentrations from the Rs/R0 ratio with the
// datasheet power-law curves. It performs no allocation and no locking, so it runs on
// TinyGo targets as well as on a host reading a remote ADC.
package mq135

const (
	// DefaultR0 is the baseline used until Calibrate succeeds. Estimates made with it are rough.
	DefaultR0 = 10.0
	// CleanAirRatio is the datasheet Rs/R0 ratio in clean air.
	CleanAirRatio = 3.6
	// DefaultSupplyVoltage is the divider supply and ADC reference in volts.
	DefaultSupplyVoltage = 3.3
	// DefaultFullScale is the full-scale code of a 12-bit ADC.
	DefaultFullScale = 4095
)

// ADC is the single capability the driver consumes: sample pin and return the raw code.
// Implementations that cannot produce a sample immediately may return ErrWouldBlock; see Block.
type ADC[P any] interface {
	Read(pin P) (uint32, error)
}

// Config describes the ADC and supply the sensor divider is wired to.
// Zero values keep the defaults.
type Config struct {
	SupplyVoltage float32 // volts
	FullScale     uint32  // ADC code at SupplyVoltage
}

// Measurement is the result of a single acquisition evaluated against every gas curve.
type Measurement struct {
	Raw        uint32
	Resistance float32 // Rs, in the unit of the load resistance
	Ratio      float32 // Rs/R0
	PPM        [NumGases]float32
}

// Device is an MQ135 sensor read through an ADC pin.
// It is not safe for concurrent use.
type Device[P any] struct {
	adc ADC[P]
	pin P

	r0         float32
	rl         float32
	supply     float32
	fullScale  uint32
	calibrated bool
}

// New creates a sensor reading pin through adc with load resistance rl (usually 10 kOhm).
// R0 starts at DefaultR0 and should be calibrated in clean air.
func New[P any](adc ADC[P], pin P, rl float32) Device[P] {
	return Device[P]{
		adc:       adc,
		pin:       pin,
		r0:        DefaultR0,
		rl:        rl,
		supply:    DefaultSupplyVoltage,
		fullScale: DefaultFullScale,
	}
}

// Configure sets the supply voltage and ADC full scale.
func (d *Device[P]) Configure(cfg Config) error {
	if cfg.SupplyVoltage < 0 {
		return ErrInvalidParameter
	}
	if cfg.SupplyVoltage != 0 {
		d.supply = cfg.SupplyVoltage
	}
	if cfg.FullScale != 0 {
		d.fullScale = cfg.FullScale
	}
	return nil
}

// R0 returns the current baseline resistance.
func (d *Device[P]) R0() float32 {
	return d.r0
}

// RL returns the load resistance.
func (d *Device[P]) RL() float32 {
	return d.rl
}

// Calibrated reports whether R0 comes from a successful calibration.
func (d *Device[P]) Calibrated() bool {
	return d.calibrated
}

// Calibrate samples the sensor, which must be sitting in clean air, and stores
// R0 = Rs / CleanAirRatio. Each call replaces the previous baseline.
// On failure R0 is left unchanged and ADC errors are returned as is.
func (d *Device[P]) Calibrate() error {
	rs, _, err := d.resistance()
	if err != nil {
		return err
	}

	d.r0 = rs / CleanAirRatio
	d.calibrated = true
	return nil
}

// ReadPPM samples the sensor and estimates the concentration of gas in ppm.
func (d *Device[P]) ReadPPM(gas Gas) (float32, error) {
	if !gas.Valid() {
		return 0, ErrUnknownGas
	}

	rs, _, err := d.resistance()
	if err != nil {
		return 0, err
	}

	ppm := gas.Curve().PPM(rs / d.r0)
	if !finite(ppm) {
		return 0, ErrOutOfRange
	}
	return ppm, nil
}

// Measure samples the sensor once and evaluates every gas curve against that sample.
func (d *Device[P]) Measure() (Measurement, error) {
	rs, raw, err := d.resistance()
	if err != nil {
		return Measurement{}, err
	}

	m := Measurement{
		Raw:        raw,
		Resistance: rs,
		Ratio:      rs / d.r0,
	}
	for i, gas := range Gases {
		m.PPM[i] = gas.Curve().PPM(m.Ratio)
		if !finite(m.PPM[i]) {
			return Measurement{}, ErrOutOfRange
		}
	}
	return m, nil
}

// resistance performs one acquisition and converts it.
func (d *Device[P]) resistance() (float32, uint32, error) {
	raw, err := d.adc.Read(d.pin)
	if err != nil {
		return 0, 0, err
	}

	rs, err := Resistance(raw, d.fullScale, d.supply, d.rl)
	if err != nil {
		return 0, raw, err
	}
	return rs, raw, nil
}
