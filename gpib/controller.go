// Copyright (c) 2020–2024 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/prologix
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package gpib drives instruments through a Prologix-style GPIB
// controller-in-charge attached over a serial (VCP, USB) or Ethernet link.
// A Controller addresses exactly one instrument and satisfies the
// instruments.Connection interface the drivers in this module depend on.
package gpib

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/qmlab/instruments"
)

// Controller is a GPIB controller-in-charge bound to one primary (and
// optionally secondary) instrument address.
type Controller struct {
	rw               io.ReadWriter
	br               *bufio.Reader
	primaryAddr      int
	hasSecondaryAddr bool
	secondaryAddr    int
	auto             bool
	term             byte
	readTimeout      time.Duration
	debug            bool
}

// Option applies an option to the controller.
type Option func(*Controller)

// WithSecondaryAddress sets a secondary address, which must be in the range
// of 96 and 126, inclusive.
func WithSecondaryAddress(addr int) Option {
	return func(c *Controller) {
		c.hasSecondaryAddr = true
		c.secondaryAddr = addr
	}
}

// WithDebug causes commands and replies to be logged.
func WithDebug() Option { return func(c *Controller) { c.debug = true } }

// WithReadTimeout sets the adapter's GPIB read timeout. The default is
// 500 ms.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Controller) { c.readTimeout = d }
}

// New creates a GPIB controller-in-charge for the instrument at the given
// address using the given adapter link, which can be a Virtual COM Port,
// USB direct, or Ethernet. Enable clear to send the Selected Device Clear
// (SDC) message during setup.
func New(rw io.ReadWriter, addr int, clear bool, opts ...Option) (*Controller, error) {
	c := Controller{
		rw:          rw,
		br:          bufio.NewReader(rw),
		primaryAddr: addr,
		auto:        false,
		term:        '\n',
		readTimeout: 500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.primaryAddr < 0 || c.primaryAddr > 30 {
		return nil, fmt.Errorf("invalid primary address %d (must be 0-30)", c.primaryAddr)
	}
	addrCmd := fmt.Sprintf("addr %d", c.primaryAddr)
	if c.hasSecondaryAddr {
		if c.secondaryAddr < 96 || c.secondaryAddr > 126 {
			return nil, fmt.Errorf("invalid secondary address %d (must be 96-126)", c.secondaryAddr)
		}
		addrCmd = fmt.Sprintf("addr %d %d", c.primaryAddr, c.secondaryAddr)
	}

	// Configure the adapter before any instrument traffic.
	cmds := []string{
		"savecfg 0", // don't wear out the adapter's EPROM
		addrCmd,
		"mode 1", // controller-in-charge
		"auto 0", // no read-after-write; instruments are addressed to listen
		"eoi 1",  // assert EOI with the last character
		"eos 0",  // CR+LF GPIB termination
		fmt.Sprintf("read_tmo_ms %d", c.readTimeout.Milliseconds()),
		"eot_enable 1",
		fmt.Sprintf("eot_char %d", c.term),
	}
	if clear {
		cmds = append(cmds, "clr")
	}
	for _, cmd := range cmds {
		if err := c.CommandAdapter(cmd); err != nil {
			return nil, err
		}
	}

	return &c, nil
}

// Command formats according to a format specifier if arguments are provided
// and sends the resulting SCPI/ASCII command to the addressed instrument.
// Leading and trailing whitespace is removed before the terminator is
// appended.
func (c *Controller) Command(format string, a ...any) error {
	cmd := format
	if len(a) > 0 {
		cmd = fmt.Sprintf(format, a...)
	}
	cmd = fmt.Sprintf("%s%c", strings.TrimSpace(cmd), c.term)
	if c.debug {
		log.Printf("gpib cmd %q", cmd)
	}
	_, err := fmt.Fprint(c.rw, cmd)
	return err
}

// Query sends the given command to the addressed instrument and returns its
// single-line reply. With read-after-write disabled the adapter must be
// told explicitly to address the instrument to talk.
func (c *Controller) Query(cmd string) (string, error) {
	if err := c.Command(cmd); err != nil {
		return "", fmt.Errorf("error writing command: %w", err)
	}
	if !c.auto {
		if _, err := fmt.Fprintf(c.rw, "++read eoi%c", c.term); err != nil {
			return "", fmt.Errorf("error sending read command: %w", err)
		}
	}
	s, err := c.br.ReadString(c.term)
	if c.debug {
		log.Printf("gpib reply %q", s)
	}
	if err == io.EOF {
		return s, nil
	}
	return s, err
}

// Clear sends the Selected Device Clear (SDC) message to the addressed
// instrument, flushing its pending I/O state.
func (c *Controller) Clear() error {
	return c.CommandAdapter("clr")
}

// FrontPanel enables or disables local control of the instrument's front
// panel.
func (c *Controller) FrontPanel(local bool) error {
	if local {
		return c.CommandAdapter("loc")
	}
	return c.CommandAdapter("llo")
}

// CommandAdapter sends the given command to the GPIB adapter itself rather
// than to the instrument; two plus signs are prepended to mark it as
// adapter-local.
func (c *Controller) CommandAdapter(cmd string) error {
	cmd = fmt.Sprintf("++%s%c", strings.ToLower(strings.TrimSpace(cmd)), c.term)
	if c.debug {
		log.Printf("gpib adapter cmd %q", cmd)
	}
	_, err := c.rw.Write([]byte(cmd))
	return err
}

// QueryAdapter sends the given command to the GPIB adapter and returns its
// reply.
func (c *Controller) QueryAdapter(cmd string) (string, error) {
	if err := c.CommandAdapter(cmd); err != nil {
		return "", err
	}
	return c.br.ReadString(c.term)
}

// Version returns the adapter's version string.
func (c *Controller) Version() (string, error) {
	v, err := c.QueryAdapter("ver")
	return strings.TrimSpace(v), err
}

var _ instruments.Connection = (*Controller)(nil)
