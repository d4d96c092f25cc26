// Package keithley provides drivers for Keithley test and measurement
// equipment.
package keithley

import (
	"fmt"

	"github.com/gotmc/query"

	"github.com/qmlab/instruments"
)

// Analog filter window and integration-rate limits of the 2182A.
var (
	filterWindowLimits = instruments.Range{Min: 0, Max: 10}
	nplcLimits         = instruments.Range{Min: 0.01, Max: 50}
)

// Keithley2182A drives the Keithley 2182A nanovoltmeter.
//
//	nvm := keithley.New2182A(conn)
//	nvm.Reset()
//	nvm.SetRate(5)                // slow, quiet readings
//	v, err := nvm.MeasureVoltage()
type Keithley2182A struct {
	conn instruments.Connection
}

// New2182A returns a driver for the 2182A reachable over conn.
func New2182A(conn instruments.Connection) *Keithley2182A {
	return &Keithley2182A{conn: conn}
}

// Reset restores the instrument's power-on defaults.
func (k *Keithley2182A) Reset() error {
	return k.conn.Command("*RST")
}

// SetFilterWindow sets the digital filter window as a percentage of range,
// 0 to 10.
func (k *Keithley2182A) SetFilterWindow(percent float64) error {
	if err := filterWindowLimits.Check(percent); err != nil {
		return fmt.Errorf("keithley2182a: filter window: %w", err)
	}
	return k.conn.Command(":SENSe:VOLTage:DFILter %g", percent)
}

// SetRate sets the integration rate in power-line cycles: 0.1 is fast, 1
// medium, and 5 slow.
func (k *Keithley2182A) SetRate(nplc float64) error {
	if err := nplcLimits.Check(nplc); err != nil {
		return fmt.Errorf("keithley2182a: integration rate: %w", err)
	}
	return k.conn.Command(":SENSe:VOLTage:NPLCycles %g", nplc)
}

// MeasureVoltage triggers a reading and returns it in volts.
func (k *Keithley2182A) MeasureVoltage() (float64, error) {
	return query.Float64(k.conn, ":READ?")
}
