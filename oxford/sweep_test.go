package oxford

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramSweep_WriteTrace(t *testing.T) {
	itc, sim := newTestITC(t)
	sim.Reply("X", statusRemote)

	err := itc.ProgramSweep([]float64{100, 200, 300}, []float64{5}, []float64{2}, 3)
	require.NoError(t, err)

	// Stop the running sweep, then program slots 1..3 with the requested
	// triples and slots 4..16 with the constant-padded set-point and zero
	// times.
	want := []string{"$S0"}
	appendSlot := func(line int, setpoint, sweep, hold float64) {
		want = append(want,
			fmt.Sprintf("$x%d", line),
			"$y1", fmt.Sprintf("$s%f", setpoint),
			"$y2", fmt.Sprintf("$s%f", sweep),
			"$y3", fmt.Sprintf("$s%f", hold),
		)
	}
	appendSlot(1, 100, 5, 2)
	appendSlot(2, 200, 5, 2)
	appendSlot(3, 300, 5, 2)
	for line := 4; line <= 16; line++ {
		appendSlot(line, 300, 0, 0)
	}

	assert.Equal(t, want, sim.Writes())
}

func TestProgramSweep_DefaultStepCount(t *testing.T) {
	itc, sim := newTestITC(t)
	sim.Reply("X", statusRemote)

	err := itc.ProgramSweep([]float64{50, 150}, []float64{10, 20}, []float64{1, 2}, 0)
	require.NoError(t, err)

	writes := sim.Writes()
	// Stop command plus 16 slots of 7 writes each.
	require.Len(t, writes, 1+16*7)
	assert.Equal(t, "$S0", writes[0])
	assert.Equal(t, "$s50.000000", writes[3])   // slot 1 set-point
	assert.Equal(t, "$s150.000000", writes[10]) // slot 2 set-point
	assert.Equal(t, "$s150.000000", writes[17]) // slot 3 padded set-point
	assert.Equal(t, "$s0.000000", writes[19])   // slot 3 zero sweep time
}

func TestProgramSweep_NotRemote(t *testing.T) {
	itc, sim := newTestITC(t)
	sim.Reply("X", statusLocal)

	err := itc.ProgramSweep([]float64{100}, []float64{5}, []float64{2}, 0)
	assert.ErrorIs(t, err, ErrNotRemote)
	assert.Empty(t, sim.Writes(), "precondition failures must not write")
}

func TestProgramSweep_TooManySteps(t *testing.T) {
	itc, sim := newTestITC(t)
	sim.Repeat("X", statusRemote)

	temps := make([]float64, 17)
	for i := range temps {
		temps[i] = float64(10 * (i + 1))
	}

	// Explicit step count beyond the table.
	err := itc.ProgramSweep(temps, []float64{5}, []float64{2}, 17)
	assert.Error(t, err)

	// Implicit step count from the set-point array.
	err = itc.ProgramSweep(temps, []float64{5}, []float64{2}, 0)
	assert.Error(t, err)

	assert.Empty(t, sim.Writes())
}

func TestProgramSweep_InputValidation(t *testing.T) {
	itc, sim := newTestITC(t)
	sim.Repeat("X", statusRemote)

	assert.Error(t, itc.ProgramSweep(nil, []float64{5}, []float64{2}, 0))
	assert.Error(t, itc.ProgramSweep([]float64{100}, nil, []float64{2}, 0))
	assert.Error(t, itc.ProgramSweep([]float64{100}, []float64{5}, nil, 0))

	// Table times are bounded at 1339.9 minutes.
	assert.Error(t, itc.ProgramSweep([]float64{100}, []float64{2000}, []float64{2}, 0))
	assert.Error(t, itc.ProgramSweep([]float64{100}, []float64{5}, []float64{-1}, 0))

	assert.Empty(t, sim.Writes())
}

func TestProgramSweep_MidTableFailure(t *testing.T) {
	itc, sim := newTestITC(t)
	sim.Reply("X", statusRemote)
	boom := errors.New("bus error")
	sim.FailCommands("$s", boom)

	err := itc.ProgramSweep([]float64{100}, []float64{5}, []float64{2}, 0)
	assert.ErrorIs(t, err, boom)

	// No rollback: the stop command and the pointers written before the
	// failing cell remain issued.
	assert.Equal(t, []string{"$S0", "$x1", "$y1"}, sim.Writes())
}

func TestReadSweepStep(t *testing.T) {
	itc, sim := newTestITC(t)
	sim.Reply("r", "R100.0", "R5.0", "R2.0")

	step, err := itc.ReadSweepStep(3)
	require.NoError(t, err)
	assert.Equal(t, SweepStep{Setpoint: 100, SweepTime: 5, HoldTime: 2}, step)
	assert.Equal(t,
		[]string{"$x3", "$y1", "$x3", "$y2", "$x3", "$y3"},
		sim.Writes())

	_, err = itc.ReadSweepStep(0)
	assert.Error(t, err)
	_, err = itc.ReadSweepStep(17)
	assert.Error(t, err)
}

func TestResample(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		steps  int
		want   []float64
	}{
		{
			name:   "identity",
			values: []float64{100, 200, 300},
			steps:  3,
			want:   []float64{100, 200, 300},
		},
		{
			name:   "scalar broadcast",
			values: []float64{7},
			steps:  3,
			want:   []float64{7, 7, 7},
		},
		{
			name:   "upsample interpolates between set-points",
			values: []float64{100, 300},
			steps:  4,
			want:   []float64{100, 100 + 200.0/3, 100 + 400.0/3, 300},
		},
		{
			name:   "downsample decimates",
			values: []float64{1, 2, 3, 4, 5},
			steps:  3,
			want:   []float64{1, 3, 5},
		},
		{
			name:   "two points onto five steps",
			values: []float64{0, 100},
			steps:  5,
			want:   []float64{0, 25, 50, 75, 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resample(tt.values, tt.steps)
			require.Len(t, got, tt.steps)
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-9, "step %d", i+1)
			}
		})
	}
}

func TestPad(t *testing.T) {
	assert.Equal(t,
		[]float64{1, 2, 2, 2},
		pad([]float64{1, 2}, 4, 2))
	assert.Equal(t,
		[]float64{1, 2, 0, 0},
		pad([]float64{1, 2}, 4, 0))
	assert.Equal(t,
		[]float64{1, 2, 3},
		pad([]float64{1, 2, 3}, 3, 9))
}
