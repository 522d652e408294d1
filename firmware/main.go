//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"

	"github.com/itohio/mq135/pkg/mq135"
)

var (
	uart = machine.UART0

	bootTime    time.Time
	lastRead    time.Time
	calibrated  bool
	lastCO2     float32
	lastReadErr error
)

// analogIn samples a machine.ADC pin. The conversion is synchronous and cannot fail.
type analogIn struct{}

func (analogIn) Read(pin machine.ADC) (uint32, error) {
	return uint32(pin.Get()), nil
}

func main() {
	PIN_ALARM.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})

	machine.InitADC()
	adc := machine.ADC{Pin: PIN_ADC}
	adc.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// The host and the alarm judge the same acquisition: the tap keeps the
	// code the driver sampled and that code is what gets streamed.
	tap := mq135.NewTap[machine.ADC](analogIn{})
	sensor := mq135.New[machine.ADC](&tap, adc, LOAD_RESISTANCE)
	err := sensor.Configure(mq135.Config{
		SupplyVoltage: ADC_REFERENCE_MV / 1000.0,
		FullScale:     ADC_FULL_SCALE,
	})
	if err != nil {
		halt()
	}

	bootTime = time.Now()
	lastRead = bootTime

	for {
		now := time.Now()

		if now.Sub(lastRead) >= time.Duration(SAMPLE_INTERVAL_MS)*time.Millisecond {
			lastRead = now

			if !calibrated && now.Sub(bootTime) >= WARMUP_SECONDS*time.Second {
				// Assumes the board is powered up in clean air.
				calibrated = sensor.Calibrate() == nil
			} else {
				var m mq135.Measurement
				m, lastReadErr = sensor.Measure()
				lastCO2 = m.PPM[mq135.CO2]
				if calibrated {
					updateAlarm()
				}
			}

			if raw, ok := tap.Last(); ok {
				outputSample(now, raw)
			}
		}

		time.Sleep(time.Millisecond)
	}
}

// halt blinks the alarm LED forever.
func halt() {
	for {
		PIN_ALARM.Set(!PIN_ALARM.Get())
		time.Sleep(100 * time.Millisecond)
	}
}

func updateAlarm() {
	if lastReadErr != nil {
		// Blink on errors
		PIN_ALARM.Set(!PIN_ALARM.Get())
		return
	}
	PIN_ALARM.Set(lastCO2 >= CO2_ALARM_PPM)
}

func outputSample(now time.Time, raw uint32) {
	// Output format: "unix_micros,channel,raw\n"
	// Example: "1234567890123,0,2048\n"
	print(now.UnixMicro())
	print(",")
	print(CHANNEL)
	print(",")
	print(raw)
	print("\n")
}
