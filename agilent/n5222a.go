package agilent

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/qmlab/instruments"
)

// SweepType selects how the N5222A sweeps its stimulus.
type SweepType string

// Supported sweep types.
const (
	SweepLinear SweepType = "LIN"
	SweepCW     SweepType = "CW"
)

// SweepConfig parameterizes ConfigureSweep.
type SweepConfig struct {
	Type        SweepType
	StartHz     float64 // linear sweep start frequency
	StopHz      float64 // linear sweep stop frequency
	CWHz        float64 // fixed frequency for CW sweeps
	SweepTime   float64 // seconds, linear sweeps only
	Points      int     // number of stimulus points
	BandwidthHz float64 // IF bandwidth
}

// Trace is one S-parameter trace read back from the analyzer.
type Trace struct {
	Frequencies []float64 // Hz
	Magnitudes  []float64 // linear magnitude
	Phases      []float64 // radians
}

// sParameters the analyzer can measure on two ports.
var sParameters = map[string]bool{
	"S11": true, "S12": true, "S21": true, "S22": true,
}

// N5222A drives the Agilent N5222A PNA network analyzer.
//
//	pna := agilent.NewN5222A(conn)
//	pna.Preset()
//	pna.SetupSParameter(1, "S21")
//	pna.ConfigureSweep(1, agilent.SweepConfig{
//		Type:    agilent.SweepLinear,
//		StartHz: 5e8, StopHz: 1e9, Points: 201, BandwidthHz: 1e3,
//	})
//	trace, err := pna.TraceData(1)
type N5222A struct {
	conn instruments.Connection
}

// NewN5222A returns a driver for the N5222A reachable over conn.
func NewN5222A(conn instruments.Connection) *N5222A {
	return &N5222A{conn: conn}
}

// Preset performs a factory preset, deleting all measurements.
func (p *N5222A) Preset() error {
	return p.conn.Command("SYST:FPReset")
}

// SetupSParameter defines an S-parameter measurement in the given window
// and feeds it to a trace.
func (p *N5222A) SetupSParameter(window int, sparam string) error {
	sparam = strings.ToUpper(sparam)
	if !sParameters[sparam] {
		return fmt.Errorf("n5222a: unknown S-parameter %q", sparam)
	}
	cmds := []string{
		fmt.Sprintf("DISPlay:WINDow%d:STATE ON", window),
		fmt.Sprintf("CALCulate%d:PARameter:DEFine:EXT 'Meas%d',%s", window, window, sparam),
		fmt.Sprintf("DISPlay:WINDow%d:TRACe%d:FEED 'Meas%d'", window, window, window),
	}
	for _, cmd := range cmds {
		if err := p.conn.Command(cmd); err != nil {
			return err
		}
	}
	return nil
}

// ConfigureSweep sets up the stimulus sweep on the given channel.
func (p *N5222A) ConfigureSweep(ch int, cfg SweepConfig) error {
	if err := p.conn.Command("SENS%d:SWE:TYPE %s", ch, cfg.Type); err != nil {
		return err
	}
	switch cfg.Type {
	case SweepLinear:
		if cfg.StartHz >= cfg.StopHz {
			return fmt.Errorf("n5222a: sweep start %g Hz not below stop %g Hz", cfg.StartHz, cfg.StopHz)
		}
		if err := p.conn.Command("SENS%d:FREQ:STAR %g", ch, cfg.StartHz); err != nil {
			return err
		}
		if err := p.conn.Command("SENS%d:FREQ:STOP %g", ch, cfg.StopHz); err != nil {
			return err
		}
		if cfg.SweepTime > 0 {
			if err := p.conn.Command("SENS%d:SWE:TIME %g", ch, cfg.SweepTime); err != nil {
				return err
			}
		}
	case SweepCW:
		if err := p.conn.Command("SENS%d:FREQ:CW %g", ch, cfg.CWHz); err != nil {
			return err
		}
	default:
		return fmt.Errorf("n5222a: unknown sweep type %q", cfg.Type)
	}
	if cfg.Points > 0 {
		if err := p.conn.Command("SENS%d:SWE:POIN %d", ch, cfg.Points); err != nil {
			return err
		}
	}
	if cfg.BandwidthHz > 0 {
		if err := p.conn.Command("SENS%d:BWID %g", ch, cfg.BandwidthHz); err != nil {
			return err
		}
	}
	return nil
}

// SetPower sets the stimulus power in dBm.
func (p *N5222A) SetPower(port int, dbm float64) error {
	return p.conn.Command("SOUR:POW%d %g", port, dbm)
}

// AutoScale autoscales the y axis of the trace in the given window.
func (p *N5222A) AutoScale(window int) error {
	return p.conn.Command("DISP:WIND%d:TRAC:Y:SCAL:AUTO", window)
}

// SetAveraging clears and restarts sweep averaging over the given number
// of sweeps, 1 to 65536.
func (p *N5222A) SetAveraging(ch, count int) error {
	if count < 1 || count > 1<<16 {
		return fmt.Errorf("n5222a: averaging count %d out of range 1 to %d", count, 1<<16)
	}
	if err := p.conn.Command("SENS%d:AVER:CLE", ch); err != nil {
		return err
	}
	if err := p.conn.Command("SENS%d:AVER:COUN %d", ch, count); err != nil {
		return err
	}
	return p.conn.Command("SENS%d:AVER ON", ch)
}

// OutputOff switches the stimulus power off.
func (p *N5222A) OutputOff() error {
	return p.conn.Command("OUTP OFF")
}

// TraceData selects the channel's measurement and reads back the stimulus
// axis and the complex S-parameter data, returned as magnitude and phase
// per stimulus point.
func (p *N5222A) TraceData(ch int) (Trace, error) {
	var tr Trace

	if err := p.conn.Command("CALC%d:PAR:SEL 'Meas%d'", ch, ch); err != nil {
		return tr, err
	}
	if err := p.conn.Command("FORM:DATA ASCII"); err != nil {
		return tr, err
	}

	xReply, err := p.conn.Query(fmt.Sprintf("SENS%d:X?", ch))
	if err != nil {
		return tr, fmt.Errorf("n5222a: reading stimulus axis: %w", err)
	}
	tr.Frequencies, err = parseFloats(xReply)
	if err != nil {
		return tr, fmt.Errorf("n5222a: stimulus axis: %w", err)
	}

	yReply, err := p.conn.Query(fmt.Sprintf("CALC%d:DATA? SDATA", ch))
	if err != nil {
		return tr, fmt.Errorf("n5222a: reading trace data: %w", err)
	}
	pairs, err := parseFloats(yReply)
	if err != nil {
		return tr, fmt.Errorf("n5222a: trace data: %w", err)
	}
	if len(pairs)%2 != 0 {
		return tr, fmt.Errorf("n5222a: odd trace data length %d, want re/im pairs", len(pairs))
	}
	if len(pairs)/2 != len(tr.Frequencies) {
		return tr, fmt.Errorf("n5222a: %d trace points for %d stimulus points",
			len(pairs)/2, len(tr.Frequencies))
	}

	tr.Magnitudes = make([]float64, 0, len(pairs)/2)
	tr.Phases = make([]float64, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		re, im := pairs[i], pairs[i+1]
		tr.Magnitudes = append(tr.Magnitudes, math.Hypot(re, im))
		tr.Phases = append(tr.Phases, math.Atan2(im, re))
	}
	return tr, nil
}

// parseFloats parses a comma-separated ASCII data block.
func parseFloats(s string) ([]float64, error) {
	fields := strings.Split(strings.TrimSpace(s), ",")
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", f, err)
		}
		out = append(out, v)
	}
	return out, nil
}
