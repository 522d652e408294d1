package mq135

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTap_SharesDriverSample(t *testing.T) {
	adc := newFake(2048, 1024, 0)
	tap := NewTap[uint8](adc)
	dev := New[uint8](&tap, 0, 10)

	_, ok := tap.Last()
	assert.False(t, ok)

	require.NoError(t, dev.Calibrate())
	raw, ok := tap.Last()
	assert.True(t, ok)
	assert.Equal(t, uint32(2048), raw)

	m, err := dev.Measure()
	require.NoError(t, err)
	raw, _ = tap.Last()
	assert.Equal(t, m.Raw, raw)
	assert.Equal(t, 2, adc.reads, "no extra acquisition")

	// Rejected samples are still reported
	_, err = dev.ReadPPM(CO2)
	assert.ErrorIs(t, err, ErrOutOfRange)
	raw, _ = tap.Last()
	assert.Equal(t, uint32(0), raw)
}

func TestTap_KeepsLastOnError(t *testing.T) {
	adc := newFake(1500)
	tap := NewTap[uint8](adc)
	dev := New[uint8](&tap, 0, 10)
	require.NoError(t, dev.Calibrate())

	adcErr := errors.New("timeout")
	adc.err = adcErr
	assert.Same(t, adcErr, dev.Calibrate())

	raw, ok := tap.Last()
	assert.True(t, ok)
	assert.Equal(t, uint32(1500), raw)
}
