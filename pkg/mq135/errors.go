package mq135

// Error is a constant driver error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrOutOfRange is returned for a zero or saturated raw sample, or whenever the
	// conversion would otherwise yield a non-finite value.
	ErrOutOfRange = Error("sensor reading out of range")
	// ErrInvalidParameter is returned when the divider parameters cannot describe a circuit.
	ErrInvalidParameter = Error("invalid divider parameter")
	// ErrUnknownGas is returned for a Gas value outside the supported set.
	ErrUnknownGas = Error("unknown gas")
	// ErrWouldBlock may be returned by an ADC that has no sample ready yet.
	ErrWouldBlock = Error("would block")
)
