// Package agilent provides drivers for Agilent/Keysight RF test
// equipment.
package agilent

import (
	"fmt"

	"github.com/qmlab/instruments"
)

// Output limits of the N5183A MXG.
var (
	frequencyLimitsGHz = instruments.Range{Min: 100e-6, Max: 40}
	powerLimitsDBM     = instruments.Range{Min: -130, Max: 30}
)

// N5183A drives the Agilent N5183A MXG microwave signal generator.
//
//	gen := agilent.NewN5183A(conn)
//	gen.Initialize()
//	gen.ConfigureCW()
//	gen.SetFrequency(2.5) // GHz
//	gen.SetPower(-10)     // dBm
//	gen.EnableOutput()
type N5183A struct {
	conn instruments.Connection
}

// NewN5183A returns a driver for the N5183A reachable over conn.
func NewN5183A(conn instruments.Connection) *N5183A {
	return &N5183A{conn: conn}
}

// Initialize restores the instrument's power-on defaults.
func (g *N5183A) Initialize() error {
	return g.conn.Command("*RST")
}

// ConfigureCW selects continuous-wave frequency mode with fixed power.
func (g *N5183A) ConfigureCW() error {
	if err := g.conn.Command(":FREQ:MODE CW"); err != nil {
		return err
	}
	return g.conn.Command(":POW:MODE FIX")
}

// SetFrequency sets the output frequency in GHz.
func (g *N5183A) SetFrequency(ghz float64) error {
	if err := frequencyLimitsGHz.Check(ghz); err != nil {
		return fmt.Errorf("n5183a: frequency: %w", err)
	}
	return g.conn.Command(":FREQ %g GHz", ghz)
}

// SetPower sets the output power in dBm.
func (g *N5183A) SetPower(dbm float64) error {
	if err := powerLimitsDBM.Check(dbm); err != nil {
		return fmt.Errorf("n5183a: power: %w", err)
	}
	return g.conn.Command(":POW %g DBM", dbm)
}

// EnableOutput switches the RF output on.
func (g *N5183A) EnableOutput() error {
	return g.conn.Command("OUTP ON")
}

// DisableOutput switches the RF output off.
func (g *N5183A) DisableOutput() error {
	return g.conn.Command("OUTP OFF")
}

// Shutdown disables the output and resets the instrument.
func (g *N5183A) Shutdown() error {
	if err := g.DisableOutput(); err != nil {
		return err
	}
	return g.conn.Command("*RST")
}
