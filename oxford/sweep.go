package oxford

import (
	"errors"
	"fmt"
	"math"
)

// sweepSteps is the fixed size of the instrument-resident sweep table.
const sweepSteps = 16

// Sweep-table y-pointer fields.
const (
	fieldSetpoint  = 1
	fieldSweepTime = 2
	fieldHoldTime  = 3
)

// SweepStep is one line of the instrument's sweep table.
type SweepStep struct {
	Setpoint  float64 // Kelvin
	SweepTime float64 // minutes to ramp to the set-point
	HoldTime  float64 // minutes to hold at the set-point
}

// ProgramSweep loads a multi-step temperature ramp into the controller's
// 16-slot sweep table and stops any sweep that is running. Start the
// programmed sweep with StartSweep.
//
// The three input slices may have independent lengths; each is resampled
// by nearest-step interpolation onto the common step grid, so a scalar
// time can be passed as a one-element slice and broadcast across all
// steps. steps selects the grid size, defaulting to len(temperatures)
// when zero; more than 16 steps cannot fit the table and are rejected.
// Unused slots are padded with the last set-point and zero times.
//
// The instrument must be in remote control mode; otherwise ErrNotRemote is
// returned before anything is written. Writes are issued slot by slot with
// no rollback: an error mid-table leaves the lower slots reprogrammed and
// the upper ones stale, and the caller repairs it by reissuing the whole
// program.
func (itc *ITC503) ProgramSweep(temperatures, sweepTimes, holdTimes []float64, steps int) error {
	mode, err := itc.ControlMode()
	if err != nil {
		return fmt.Errorf("itc503: reading control mode: %w", err)
	}
	if !mode.Remote() {
		return ErrNotRemote
	}

	if len(temperatures) == 0 {
		return errors.New("itc503: no sweep set-points given")
	}
	if len(sweepTimes) == 0 || len(holdTimes) == 0 {
		return errors.New("itc503: sweep and hold times must have at least one element")
	}
	if steps == 0 {
		steps = len(temperatures)
	}
	if steps < 0 || steps > sweepSteps {
		return fmt.Errorf("itc503: %d steps do not fit the %d-slot sweep table", steps, sweepSteps)
	}
	for _, m := range sweepTimes {
		if err := tableTimeLimits.Check(m); err != nil {
			return fmt.Errorf("itc503: sweep time: %w", err)
		}
	}
	for _, m := range holdTimes {
		if err := tableTimeLimits.Check(m); err != nil {
			return fmt.Errorf("itc503: hold time: %w", err)
		}
	}

	// The table cannot be rewritten while a sweep is running.
	if err := itc.StopSweep(); err != nil {
		return err
	}

	setpoints := resample(temperatures, steps)
	sweeps := resample(sweepTimes, steps)
	holds := resample(holdTimes, steps)

	setpoints = pad(setpoints, sweepSteps, setpoints[len(setpoints)-1])
	sweeps = pad(sweeps, sweepSteps, 0)
	holds = pad(holds, sweepSteps, 0)

	for line := 1; line <= sweepSteps; line++ {
		if err := itc.SetXPointer(line); err != nil {
			return err
		}
		cells := [...]struct {
			field int
			value float64
		}{
			{fieldSetpoint, setpoints[line-1]},
			{fieldSweepTime, sweeps[line-1]},
			{fieldHoldTime, holds[line-1]},
		}
		for _, c := range cells {
			if err := itc.SetYPointer(c.field); err != nil {
				return err
			}
			if err := itc.SetSweepTable(c.value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadSweepStep reads back one line of the sweep table, step 1 to 16.
func (itc *ITC503) ReadSweepStep(step int) (SweepStep, error) {
	var s SweepStep
	if step < 1 || step > sweepSteps {
		return s, fmt.Errorf("itc503: sweep step %d out of range 1 to %d", step, sweepSteps)
	}
	for _, c := range []struct {
		field int
		dst   *float64
	}{
		{fieldSetpoint, &s.Setpoint},
		{fieldSweepTime, &s.SweepTime},
		{fieldHoldTime, &s.HoldTime},
	} {
		if err := itc.SetPointer(step, c.field); err != nil {
			return s, err
		}
		v, err := itc.SweepTable()
		if err != nil {
			return s, err
		}
		*c.dst = v
	}
	return s, nil
}

// resample maps values of arbitrary length onto a grid of 1..steps by
// nearest-step interpolation: the source points are placed on a rounded,
// evenly spaced virtual index sequence over the grid, and the grid points
// are linearly interpolated between them.
func resample(values []float64, steps int) []float64 {
	grid := make([]float64, len(values))
	for i := range grid {
		grid[i] = math.Round(linstep(1, float64(steps), len(values), i))
	}
	out := make([]float64, steps)
	for i := range out {
		out[i] = interp(float64(i+1), grid, values)
	}
	return out
}

// linstep returns the i-th of n points evenly spaced from start to stop,
// inclusive.
func linstep(start, stop float64, n, i int) float64 {
	if n == 1 {
		return start
	}
	return start + (stop-start)*float64(i)/float64(n-1)
}

// interp linearly interpolates y(x) over the sample points (xs, ys) with
// xs non-decreasing, clamping x outside the sampled range. Where xs holds
// duplicates the last occurrence wins.
func interp(x float64, xs, ys []float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	j := 0
	for i := 1; i < n; i++ {
		if xs[i] <= x {
			j = i
		}
	}
	if xs[j] == x {
		return ys[j]
	}
	t := (x - xs[j]) / (xs[j+1] - xs[j])
	return ys[j] + t*(ys[j+1]-ys[j])
}

// pad extends values to length n with the fill value.
func pad(values []float64, n int, fill float64) []float64 {
	for len(values) < n {
		values = append(values, fill)
	}
	return values
}
