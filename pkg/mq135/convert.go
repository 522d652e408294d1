package mq135

import "github.com/chewxy/math32"

// Resistance converts a raw ADC code into the sensor resistance Rs of a voltage divider
// with load resistor rl, in the same unit as rl.
//
// The sensor sits between supply and the ADC input, rl between the input and ground:
//
//	voltage = raw / fullScale * supply
//	Rs      = rl * (supply - voltage) / voltage
//
// A raw code of 0 (no voltage) or >= fullScale (saturated, Rs = 0) is rejected with
// ErrOutOfRange.
func Resistance(raw, fullScale uint32, supply, rl float32) (float32, error) {
	if fullScale == 0 || !(supply > 0) || !(rl > 0) {
		return 0, ErrInvalidParameter
	}
	if raw == 0 || raw >= fullScale {
		return 0, ErrOutOfRange
	}

	voltage := float32(raw) / float32(fullScale) * supply
	rs := rl * (supply - voltage) / voltage
	if !finite(rs) || !(rs > 0) {
		return 0, ErrOutOfRange
	}
	return rs, nil
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
