// Package adcmt provides drivers for ADCMT source and measurement
// equipment.
package adcmt

import (
	"github.com/gotmc/query"
	"github.com/sirupsen/logrus"

	"github.com/qmlab/instruments"
)

// Adcmt6240A drives the ADCMT 6240A DC voltage/current source-meter.
//
//	smu := adcmt.New6240A(conn)
//	smu.Initialize()
//	smu.ApplyVoltage(1.5, 0.1) // 1.5 V, 100 mA compliance
//	smu.EnableSource()
//	v, err := smu.Voltage()
//	smu.Shutdown()
type Adcmt6240A struct {
	conn instruments.Connection
	log  logrus.FieldLogger
}

// New6240A returns a driver for the 6240A reachable over conn.
func New6240A(conn instruments.Connection) *Adcmt6240A {
	return &Adcmt6240A{conn: conn, log: logrus.StandardLogger()}
}

// Initialize restores the instrument's power-on defaults.
func (a *Adcmt6240A) Initialize() error {
	return a.conn.Command("*RST")
}

// EnableSource switches the output on (operate).
func (a *Adcmt6240A) EnableSource() error {
	return a.conn.Command("OPR")
}

// DisableSource switches the output off (standby).
func (a *Adcmt6240A) DisableSource() error {
	return a.conn.Command("SBY")
}

// ApplyVoltage sources the given voltage with the given compliance
// current limit.
func (a *Adcmt6240A) ApplyVoltage(volts, complianceAmps float64) error {
	a.log.Infof("adcmt 6240a sourcing %g V with %g A compliance", volts, complianceAmps)
	return a.conn.Command("SOV%g,LMI%g", volts, complianceAmps)
}

// Voltage reads back the sourced voltage in volts.
func (a *Adcmt6240A) Voltage() (float64, error) {
	return query.Float64(a.conn, "SOV?")
}

// Shutdown turns the sourced voltage to zero, disables the output, and
// resets the instrument.
func (a *Adcmt6240A) Shutdown() error {
	a.log.Info("shutting down adcmt 6240a")
	if err := a.ApplyVoltage(0, 0.1); err != nil {
		return err
	}
	if err := a.DisableSource(); err != nil {
		return err
	}
	return a.conn.Command("*RST")
}
