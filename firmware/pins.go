//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 100  // Sensor read interval in milliseconds
	CHANNEL            = 0    // Channel index reported to the host
	WARMUP_SECONDS     = 60   // Heater warm-up before the on-board calibration
	CO2_ALARM_PPM      = 1000 // Alarm LED threshold

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits
	// machine.ADC.Get scales every resolution to 16 bits.
	ADC_FULL_SCALE = 0xFFFF

	// MQ135 module load resistor in kOhm
	LOAD_RESISTANCE = 10.0

	// Pins
	PIN_ADC   = machine.A1
	PIN_ALARM = machine.LED

	// Serial configuration
	// Line format "unix_micros,channel,raw\n", at most ~26 bytes.
	// 10 lines/sec * 26 bytes = 260 bytes/sec, far below 115200 8N1 (11,520 bytes/sec).
	UART_BAUD_RATE = 115200
)
