package mq135

import (
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

// Gas selects the empirical curve used to estimate a concentration.
type Gas uint8

const (
	CO2 Gas = iota
	NH3
	Benzene
	Smoke

	// NumGases is the number of supported gases.
	NumGases = int(Smoke) + 1
)

// Gases lists every supported gas in curve order.
var Gases = [NumGases]Gas{CO2, NH3, Benzene, Smoke}

// Curve holds the datasheet constants of ppm = A * ratio^B.
type Curve struct {
	A float32
	B float32
}

var curves = [NumGases]Curve{
	CO2:     {A: 110.47, B: -2.862},
	NH3:     {A: 102.2, B: -2.473},
	Benzene: {A: 44.947, B: -3.445},
	Smoke:   {A: 26.572, B: -2.265},
}

var names = [NumGases]string{
	CO2:     "CO2",
	NH3:     "NH3",
	Benzene: "Benzene",
	Smoke:   "Smoke",
}

// Valid reports whether g is one of the supported gases.
func (g Gas) Valid() bool {
	return int(g) < NumGases
}

func (g Gas) String() string {
	if !g.Valid() {
		return "Gas(" + strconv.Itoa(int(g)) + ")"
	}
	return names[g]
}

// Curve returns the constants for g. The zero Curve is returned for an invalid gas.
func (g Gas) Curve() Curve {
	if !g.Valid() {
		return Curve{}
	}
	return curves[g]
}

// ParseGas returns the gas named s, ignoring case.
func ParseGas(s string) (Gas, error) {
	for i, name := range names {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return Gas(i), nil
		}
	}
	return 0, ErrUnknownGas
}

// PPM evaluates the curve at the given Rs/R0 ratio.
func (c Curve) PPM(ratio float32) float32 {
	return c.A * math32.Pow(ratio, c.B)
}

