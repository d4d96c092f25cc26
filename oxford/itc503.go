// Package oxford provides drivers for Oxford Instruments cryogenic
// equipment. The ITC503 Intelligent Temperature Controller is addressed
// with its ISOBUS ASCII command set; numeric replies echo the command
// letter as a one-character prefix which is stripped during decoding.
package oxford

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/qmlab/instruments"
)

// Errors callers of the ITC503 driver branch on.
var (
	// ErrNotRemote is returned when an operation requires remote control
	// mode and the front panel has local control.
	ErrNotRemote = errors.New("itc503: not in remote control mode")

	// ErrSetpointTimeout is returned when the set-point temperature is not
	// reached within the configured wall-clock budget.
	ErrSetpointTimeout = errors.New("itc503: timed out waiting for the set-point temperature")

	// ErrCommBudget is returned when consecutive polling reads fail more
	// often than the configured communication-error budget allows.
	ErrCommBudget = errors.New("itc503: too many communication errors")
)

// ControlMode is the state of the ITC503's LOC/REM button.
type ControlMode int

// Control modes of the ITC503.
const (
	LocalLocked    ControlMode = iota // front panel control, button locked
	RemoteLocked                      // remote control, button locked
	LocalUnlocked                     // front panel control, button unlocked
	RemoteUnlocked                    // remote control, button unlocked
)

// Remote reports whether the mode allows remote control.
func (m ControlMode) Remote() bool {
	return m == RemoteLocked || m == RemoteUnlocked
}

func (m ControlMode) String() string {
	switch m {
	case LocalLocked:
		return "local & locked"
	case RemoteLocked:
		return "remote & locked"
	case LocalUnlocked:
		return "local & unlocked"
	case RemoteUnlocked:
		return "remote & unlocked"
	}
	return fmt.Sprintf("control mode %d", int(m))
}

// HeaterGasMode selects automatic or manual control of the heater output
// and the gas flow.
type HeaterGasMode int

// Heater and gas flow control modes.
const (
	HeaterManualGasManual HeaterGasMode = iota
	HeaterAutoGasManual
	HeaterManualGasAuto
	HeaterAutoGasAuto
)

// DefaultTemperatureLimits is the full set-point range of the controller
// in Kelvin.
var DefaultTemperatureLimits = instruments.Range{Min: 0, Max: 1677.7}

// tableTimeLimits bounds sweep and hold times in the sweep table, in
// minutes.
var tableTimeLimits = instruments.Range{Min: 0, Max: 1339.9}

// ITC503 drives an Oxford Instruments ITC503 temperature controller.
//
//	itc, err := oxford.New(conn)
//	itc.SetControlMode(oxford.RemoteUnlocked)
//	itc.SetHeaterGasMode(oxford.HeaterAutoGasAuto)
//	itc.SetTemperatureSetpoint(300)
//	err = itc.WaitForTemperature(ctx, oxford.WaitConfig{})
type ITC503 struct {
	conn       instruments.Connection
	log        logrus.FieldLogger
	clearOnNew bool

	// Register records. Built per instance so that set-point limits stay
	// instance-owned configuration.
	controlMode   instruments.DigitControl
	heaterGasMode instruments.DigitControl
	autoPID       instruments.DigitControl
	sweepStatus   instruments.DigitControl
	heater        instruments.FloatControl
	heaterVoltage instruments.FloatControl
	gasFlow       instruments.FloatControl
	propBand      instruments.FloatControl
	integralTime  instruments.FloatControl
	derivTime     instruments.FloatControl
	setpoint      instruments.FloatControl
	temperature   [3]instruments.FloatControl
	tempError     instruments.FloatControl
	xPointer      instruments.IntSetting
	yPointer      instruments.IntSetting
	sweepTable    instruments.FloatControl
}

// Option configures an ITC503 during construction.
type Option func(*ITC503) error

// WithTemperatureLimits bounds the set-point range for this instance, e.g.
// to protect a sample that must stay below a safe temperature.
func WithTemperatureLimits(min, max float64) Option {
	return func(itc *ITC503) error {
		if min >= max {
			return fmt.Errorf("itc503: invalid temperature limits %g to %g", min, max)
		}
		itc.setpoint.Limits = &instruments.Range{Min: min, Max: max}
		return nil
	}
}

// WithLogger replaces the standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(itc *ITC503) error {
		itc.log = log
		return nil
	}
}

// WithoutClear skips flushing the command channel during construction.
func WithoutClear() Option {
	return func(itc *ITC503) error {
		itc.clearOnNew = false
		return nil
	}
}

// New returns a driver for the ITC503 reachable over conn. The command
// channel is cleared first to flush any half-finished exchange, unless
// WithoutClear is given.
func New(conn instruments.Connection, opts ...Option) (*ITC503, error) {
	limits := DefaultTemperatureLimits
	itc := &ITC503{
		conn:       conn,
		log:        logrus.StandardLogger(),
		clearOnNew: true,

		controlMode:   instruments.DigitControl{Get: "X", Set: "$C%d", Offset: 5, Width: 1, Limits: instruments.IntRange{Min: 0, Max: 3}},
		heaterGasMode: instruments.DigitControl{Get: "X", Set: "$A%d", Offset: 3, Width: 1, Limits: instruments.IntRange{Min: 0, Max: 3}},
		autoPID:       instruments.DigitControl{Get: "X", Set: "$L%d", Offset: 12, Width: 1, Limits: instruments.IntRange{Min: 0, Max: 1}},
		sweepStatus:   instruments.DigitControl{Get: "X", Set: "$S%d", Offset: 7, Width: 2, Limits: instruments.IntRange{Min: 0, Max: 32}},
		heater:        instruments.FloatControl{Get: "R5", Set: "$O%f", Strip: 1, Limits: &instruments.Range{Min: 0, Max: 99.9}, Truncate: true},
		heaterVoltage: instruments.FloatControl{Get: "R6", Strip: 1},
		gasFlow:       instruments.FloatControl{Get: "R7", Set: "$G%f", Strip: 1, Limits: &instruments.Range{Min: 0, Max: 99.9}, Truncate: true},
		propBand:      instruments.FloatControl{Get: "R8", Set: "$P%f", Strip: 1, Limits: &instruments.Range{Min: 0, Max: 1677.7}, Truncate: true},
		integralTime:  instruments.FloatControl{Get: "R9", Set: "$I%f", Strip: 1, Limits: &instruments.Range{Min: 0, Max: 140}, Truncate: true},
		derivTime:     instruments.FloatControl{Get: "R10", Set: "$D%f", Strip: 1, Limits: &instruments.Range{Min: 0, Max: 273}, Truncate: true},
		setpoint:      instruments.FloatControl{Get: "R0", Set: "$T%f", Strip: 1, Limits: &limits, Truncate: true},
		temperature: [3]instruments.FloatControl{
			{Get: "R1", Strip: 1},
			{Get: "R2", Strip: 1},
			{Get: "R3", Strip: 1},
		},
		tempError:  instruments.FloatControl{Get: "R4", Strip: 1},
		xPointer:   instruments.IntSetting{Set: "$x%d", Limits: instruments.IntRange{Min: 0, Max: 128}},
		yPointer:   instruments.IntSetting{Set: "$y%d", Limits: instruments.IntRange{Min: 0, Max: 128}},
		sweepTable: instruments.FloatControl{Get: "r", Set: "$s%f", Strip: 1},
	}

	for _, opt := range opts {
		if err := opt(itc); err != nil {
			return nil, err
		}
	}

	if itc.clearOnNew {
		if err := conn.Clear(); err != nil {
			return nil, fmt.Errorf("itc503: clearing command channel: %w", err)
		}
	}

	return itc, nil
}

// ControlMode reads the state of the LOC/REM button.
func (itc *ITC503) ControlMode() (ControlMode, error) {
	v, err := itc.controlMode.Read(itc.conn)
	return ControlMode(v), err
}

// SetControlMode sets the instrument to local or remote control and locks
// or unlocks the LOC/REM button.
func (itc *ITC503) SetControlMode(m ControlMode) error {
	return itc.controlMode.Write(itc.conn, int(m))
}

// HeaterGasMode reads the heater and gas flow control mode.
func (itc *ITC503) HeaterGasMode() (HeaterGasMode, error) {
	v, err := itc.heaterGasMode.Read(itc.conn)
	return HeaterGasMode(v), err
}

// SetHeaterGasMode sets the heater and gas flow control to auto or manual.
func (itc *ITC503) SetHeaterGasMode(m HeaterGasMode) error {
	return itc.heaterGasMode.Write(itc.conn, int(m))
}

// AutoPID reads whether auto-PID mode is on.
func (itc *ITC503) AutoPID() (bool, error) {
	v, err := itc.autoPID.Read(itc.conn)
	return v == 1, err
}

// SetAutoPID turns auto-PID mode on or off.
func (itc *ITC503) SetAutoPID(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return itc.autoPID.Write(itc.conn, v)
}

// SweepStatus reads the sweep state: 0 when not running, 1 while sweeping
// to the first set-point, 2P-1 while sweeping to set-point P, and 2P while
// holding at set-point P.
func (itc *ITC503) SweepStatus() (int, error) {
	return itc.sweepStatus.Read(itc.conn)
}

// SetSweepStatus sets the sweep state register directly. StartSweep and
// StopSweep cover the common cases.
func (itc *ITC503) SetSweepStatus(status int) error {
	return itc.sweepStatus.Write(itc.conn, status)
}

// StartSweep starts the programmed sweep from its first set-point.
func (itc *ITC503) StartSweep() error { return itc.SetSweepStatus(1) }

// StopSweep stops a running sweep.
func (itc *ITC503) StopSweep() error { return itc.SetSweepStatus(0) }

// Heater reads the heater output as a percentage of the maximum voltage.
func (itc *ITC503) Heater() (float64, error) {
	return itc.heater.Read(itc.conn)
}

// SetHeater sets the heater output as a percentage of the maximum voltage,
// 0 to 99.9. Settable only with the heater in manual mode.
func (itc *ITC503) SetHeater(percent float64) error {
	return itc.heater.Write(itc.conn, percent)
}

// HeaterVoltage reads the heater output in volts.
func (itc *ITC503) HeaterVoltage() (float64, error) {
	return itc.heaterVoltage.Read(itc.conn)
}

// GasFlow reads the gas flow as a percentage of the maximum flow.
func (itc *ITC503) GasFlow() (float64, error) {
	return itc.gasFlow.Read(itc.conn)
}

// SetGasFlow sets the gas flow as a percentage of the maximum flow, 0 to
// 99.9. Settable only with the gas flow in manual mode.
func (itc *ITC503) SetGasFlow(percent float64) error {
	return itc.gasFlow.Write(itc.conn, percent)
}

// ProportionalBand reads the PID proportional band in Kelvin.
func (itc *ITC503) ProportionalBand() (float64, error) {
	return itc.propBand.Read(itc.conn)
}

// SetProportionalBand sets the PID proportional band in Kelvin, 0 to
// 1677.7.
func (itc *ITC503) SetProportionalBand(kelvin float64) error {
	return itc.propBand.Write(itc.conn, kelvin)
}

// IntegralActionTime reads the PID integral action time in minutes.
func (itc *ITC503) IntegralActionTime() (float64, error) {
	return itc.integralTime.Read(itc.conn)
}

// SetIntegralActionTime sets the PID integral action time in minutes, 0 to
// 140.
func (itc *ITC503) SetIntegralActionTime(minutes float64) error {
	return itc.integralTime.Write(itc.conn, minutes)
}

// DerivativeActionTime reads the PID derivative action time in minutes.
func (itc *ITC503) DerivativeActionTime() (float64, error) {
	return itc.derivTime.Read(itc.conn)
}

// SetDerivativeActionTime sets the PID derivative action time in minutes,
// 0 to 273.
func (itc *ITC503) SetDerivativeActionTime(minutes float64) error {
	return itc.derivTime.Write(itc.conn, minutes)
}

// TemperatureSetpoint reads the set-point in Kelvin.
func (itc *ITC503) TemperatureSetpoint() (float64, error) {
	return itc.setpoint.Read(itc.conn)
}

// SetTemperatureSetpoint sets the set-point in Kelvin, truncated to the
// instance's temperature limits.
func (itc *ITC503) SetTemperatureSetpoint(kelvin float64) error {
	return itc.setpoint.Write(itc.conn, kelvin)
}

// Temperature reads sensor 1, 2, or 3 in Kelvin.
func (itc *ITC503) Temperature(sensor int) (float64, error) {
	if sensor < 1 || sensor > 3 {
		return 0, fmt.Errorf("itc503: no temperature sensor %d", sensor)
	}
	return itc.temperature[sensor-1].Read(itc.conn)
}

// TemperatureError reads the difference between the set-point and the
// measured temperature in Kelvin. Positive when the set-point is larger
// than the measured temperature.
func (itc *ITC503) TemperatureError() (float64, error) {
	return itc.tempError.Read(itc.conn)
}

// SetXPointer sets the x table pointer. The instrument addresses its
// internal tables through the last-written pointer pair, so the pointer
// writes must precede the table access they select.
func (itc *ITC503) SetXPointer(x int) error {
	return itc.xPointer.Write(itc.conn, x)
}

// SetYPointer sets the y table pointer.
func (itc *ITC503) SetYPointer(y int) error {
	return itc.yPointer.Write(itc.conn, y)
}

// SetPointer sets both table pointers, x then y. Both must be in 0 to 128.
func (itc *ITC503) SetPointer(x, y int) error {
	if err := itc.SetXPointer(x); err != nil {
		return err
	}
	return itc.SetYPointer(y)
}

// SweepTable reads the sweep-table cell selected by the current pointer
// pair.
func (itc *ITC503) SweepTable() (float64, error) {
	return itc.sweepTable.Read(itc.conn)
}

// SetSweepTable writes the sweep-table cell selected by the current
// pointer pair.
func (itc *ITC503) SetSweepTable(v float64) error {
	return itc.sweepTable.Write(itc.conn, v)
}
