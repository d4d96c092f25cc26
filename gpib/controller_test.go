package gpib

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// link is an in-memory stand-in for the serial link to the adapter.
type link struct {
	in  bytes.Buffer // bytes the adapter will reply with
	out bytes.Buffer // bytes written by the controller
}

func (l *link) Read(p []byte) (int, error)  { return l.in.Read(p) }
func (l *link) Write(p []byte) (int, error) { return l.out.Write(p) }

func newTestController(t *testing.T) (*Controller, *link) {
	t.Helper()
	l := &link{}
	c, err := New(l, 24, false)
	require.NoError(t, err)
	l.out.Reset() // drop the init sequence; tests assert on traffic after setup
	return c, l
}

func TestNew_InitSequence(t *testing.T) {
	l := &link{}
	_, err := New(l, 24, true)
	require.NoError(t, err)

	got := l.out.String()
	assert.Contains(t, got, "++addr 24\n")
	assert.Contains(t, got, "++mode 1\n")
	assert.Contains(t, got, "++auto 0\n")
	assert.Contains(t, got, "++read_tmo_ms 500\n")
	assert.Contains(t, got, "++clr\n")
}

func TestNew_AddressValidation(t *testing.T) {
	_, err := New(&link{}, 31, false)
	assert.Error(t, err)

	_, err = New(&link{}, -1, false)
	assert.Error(t, err)

	_, err = New(&link{}, 24, false, WithSecondaryAddress(42))
	assert.Error(t, err)

	c, err := New(&link{}, 24, false, WithSecondaryAddress(96))
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestNew_SecondaryAddressCommand(t *testing.T) {
	l := &link{}
	_, err := New(l, 4, false, WithSecondaryAddress(101))
	require.NoError(t, err)
	assert.Contains(t, l.out.String(), "++addr 4 101\n")
}

func TestCommand(t *testing.T) {
	c, l := newTestController(t)

	require.NoError(t, c.Command("$T%f", 300.0))
	assert.Equal(t, "$T300.000000\n", l.out.String())
}

func TestCommand_TrimsWhitespace(t *testing.T) {
	c, l := newTestController(t)

	require.NoError(t, c.Command("  *RST  "))
	assert.Equal(t, "*RST\n", l.out.String())
}

func TestQuery(t *testing.T) {
	c, l := newTestController(t)
	l.in.WriteString("R234.5\n")

	s, err := c.Query("R0")
	require.NoError(t, err)
	assert.Equal(t, "R234.5\n", s)

	// With auto 0 the controller must explicitly address the instrument
	// to talk.
	assert.Equal(t, "R0\n++read eoi\n", l.out.String())
}

func TestQuery_EOFReturnsPartialReply(t *testing.T) {
	c, l := newTestController(t)
	l.in.WriteString("R77.3") // no terminator before EOF

	s, err := c.Query("R0")
	require.NoError(t, err)
	assert.Equal(t, "R77.3", s)
}

func TestQuery_DebugLogsEOFReply(t *testing.T) {
	var logged bytes.Buffer
	log.SetOutput(&logged)
	defer log.SetOutput(os.Stderr)

	l := &link{}
	c, err := New(l, 24, false, WithDebug())
	require.NoError(t, err)
	l.in.WriteString("R77.3") // no terminator before EOF

	_, err = c.Query("R0")
	require.NoError(t, err)
	assert.Contains(t, logged.String(), `gpib reply "R77.3"`)
}

func TestClear(t *testing.T) {
	c, l := newTestController(t)

	require.NoError(t, c.Clear())
	assert.Equal(t, "++clr\n", l.out.String())
}

func TestFrontPanel(t *testing.T) {
	c, l := newTestController(t)

	require.NoError(t, c.FrontPanel(true))
	require.NoError(t, c.FrontPanel(false))
	assert.Equal(t, "++loc\n++llo\n", l.out.String())
}

func TestVersion(t *testing.T) {
	c, l := newTestController(t)
	l.in.WriteString("Prologix GPIB-USB Controller version 6.107\n")

	v, err := c.Version()
	require.NoError(t, err)
	assert.Equal(t, "Prologix GPIB-USB Controller version 6.107", v)
	assert.True(t, strings.HasPrefix(l.out.String(), "++ver\n"))
}
