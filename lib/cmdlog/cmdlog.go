// Package cmdlog decorates a Connection so that every command and reply
// is echoed to the terminal, styled for readability. Useful when bringing
// up a new instrument and the exchange needs to be watched.
package cmdlog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/qmlab/instruments"
)

var (
	cmdStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))
	replyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))
	errStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E06C75"))
)

// Conn wraps another Connection, logging each exchange before passing it
// through unchanged.
type Conn struct {
	inner instruments.Connection
}

var _ instruments.Connection = (*Conn)(nil)

// Wrap returns a logging Connection around inner.
func Wrap(inner instruments.Connection) *Conn {
	return &Conn{inner: inner}
}

func (c *Conn) Command(format string, a ...any) error {
	cmd := format
	if len(a) > 0 {
		cmd = fmt.Sprintf(format, a...)
	}
	fmt.Println(cmdStyle.Render(">> " + cmd))
	err := c.inner.Command(format, a...)
	if err != nil {
		fmt.Println(errStyle.Render("!! " + err.Error()))
	}
	return err
}

func (c *Conn) Query(cmd string) (string, error) {
	fmt.Println(cmdStyle.Render(">> " + cmd))
	reply, err := c.inner.Query(cmd)
	if err != nil {
		fmt.Println(errStyle.Render("!! " + err.Error()))
		return reply, err
	}
	fmt.Println(replyStyle.Render("<< " + render(reply)))
	return reply, nil
}

func (c *Conn) Clear() error {
	fmt.Println(cmdStyle.Render(">> <clear>"))
	return c.inner.Clear()
}

// render shows printable replies verbatim and falls back to a hex dump
// when the instrument returns binary data.
func render(reply string) string {
	if isPrintable(reply) {
		return strings.TrimRight(reply, "\r\n")
	}
	var b strings.Builder
	for i := 0; i < len(reply); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02x", reply[i])
	}
	return b.String()
}

func isPrintable(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\r' || c == '\n' || c == '\t' {
			continue
		}
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
