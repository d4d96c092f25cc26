// Package connutil holds the flag plumbing and serial-port setup shared
// by the example programs.
package connutil

import (
	"flag"
	"log"

	"go.uber.org/multierr"

	"github.com/qmlab/instruments"
	"github.com/qmlab/instruments/gpib"
	"github.com/qmlab/instruments/gpib/vcp"
	"github.com/qmlab/instruments/lib/cmdlog"
	"github.com/qmlab/instruments/lib/find"
)

type Conn struct {
	SerialPort string
	GPIBAddr   int
	GPIBSecond int
	Debug      bool

	tty     string
	finderr error
}

// AddFlags registers the connection flags. Call before [flag.Parse].
// The default serial port is discovered by scanning for a Prologix
// adapter; discovery failure only matters if the flag is not given.
func (c *Conn) AddFlags() {
	c.tty, c.finderr = find.Find(find.PrologixFilter)
	if c.finderr != nil {
		c.tty = "/dev/ttyUSB0"
	}

	if c.GPIBAddr == 0 {
		c.GPIBAddr = 24
	}

	flag.StringVar(&c.SerialPort, "port", c.tty, "serial port of the Prologix VCP GPIB controller")
	flag.IntVar(&c.GPIBAddr, "pad", c.GPIBAddr, "GPIB primary address of the instrument")
	flag.IntVar(&c.GPIBSecond, "sad", c.GPIBSecond, "GPIB secondary address, 0 for none")
	flag.BoolVar(&c.Debug, "debug", c.Debug, "echo every command and reply")
}

// Setup opens the serial port and brings up the GPIB controller. Call
// after [flag.Parse]. The returned cleanup restores front-panel control
// and closes the port; it is safe to call on the error path too.
func (c *Conn) Setup(opts ...gpib.Option) (instruments.Connection, func() error, error) {
	nocleanup := func() error { return nil }

	if c.finderr != nil && !flagSet("port") {
		log.Printf("locating serial port failed, guessing %s: %s", c.tty, c.finderr)
	}
	log.Printf("serial port = %s", c.SerialPort)

	port, err := vcp.New(c.SerialPort)
	if err != nil {
		return nil, nocleanup, err
	}

	if c.GPIBSecond != 0 {
		opts = append(opts, gpib.WithSecondaryAddress(c.GPIBSecond))
	}

	ctrl, err := gpib.New(port, c.GPIBAddr, false, opts...)
	if err != nil {
		return nil, nocleanup, multierr.Append(err, port.Close())
	}

	cleanup := func() error {
		return multierr.Append(ctrl.FrontPanel(true), port.Close())
	}

	var conn instruments.Connection = ctrl
	if c.Debug {
		conn = cmdlog.Wrap(conn)
	}
	return conn, cleanup, nil
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
