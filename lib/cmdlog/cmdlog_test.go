package cmdlog

import (
	"testing"

	"github.com/qmlab/instruments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPassesThrough(t *testing.T) {
	sim := instruments.NewSim()
	sim.Reply("R0", "R123.4")
	conn := Wrap(sim)

	require.NoError(t, conn.Command("$T%f", 300.0))
	reply, err := conn.Query("R0")
	require.NoError(t, err)
	assert.Equal(t, "R123.4", reply)
	require.NoError(t, conn.Clear())

	assert.Equal(t, []string{"$T300.000000"}, sim.Writes())
	assert.Equal(t, 1, sim.Cleared())
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"ascii", "R234.5\r\n", "R234.5"},
		{"binary", "\x01\xff", "01 ff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(tt.reply))
		})
	}
}
