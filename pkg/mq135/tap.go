package mq135

// Tap is an ADC that remembers the last code it handed to the driver.
type Tap[P any] struct {
	adc  ADC[P]
	last uint32
	ok   bool
}

// NewTap wraps adc.
func NewTap[P any](adc ADC[P]) Tap[P] {
	return Tap[P]{adc: adc}
}

func (t *Tap[P]) Read(pin P) (uint32, error) {
	raw, err := t.adc.Read(pin)
	if err != nil {
		return raw, err
	}
	t.last, t.ok = raw, true
	return raw, nil
}

// Last returns the last code read successfully and whether there was one.
func (t *Tap[P]) Last() (uint32, bool) {
	return t.last, t.ok
}
