package mq135

import "errors"

type blocking[P any] struct {
	adc ADC[P]
}

// Block wraps adc so that Read retries while it reports ErrWouldBlock.
// There is no timeout; callers that need one must impose it on the wrapped ADC.
func Block[P any](adc ADC[P]) ADC[P] {
	return blocking[P]{adc: adc}
}

func (b blocking[P]) Read(pin P) (uint32, error) {
	for {
		raw, err := b.adc.Read(pin)
		if errors.Is(err, ErrWouldBlock) {
			continue
		}
		return raw, err
	}
}
