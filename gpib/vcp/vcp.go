// Package vcp opens the Virtual COM Port (VCP) serial link to a Prologix
// GPIB-USB adapter.
package vcp

import (
	"fmt"

	"go.bug.st/serial"
	"go.uber.org/multierr"
)

// VCP is an open serial connection to the adapter.
type VCP struct {
	port serial.Port
}

// New opens the named serial port at the adapter's fixed 115200 baud rate.
func New(name string) (*VCP, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: 115200})
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", name, err)
	}
	return &VCP{port: port}, nil
}

// Read reads from the serial port.
func (v *VCP) Read(p []byte) (int, error) { return v.port.Read(p) }

// Write writes to the serial port.
func (v *VCP) Write(p []byte) (int, error) { return v.port.Write(p) }

// Flush discards unread input and unsent output on the port.
func (v *VCP) Flush() error {
	return multierr.Combine(
		v.port.ResetInputBuffer(),
		v.port.ResetOutputBuffer(),
	)
}

// Close flushes and closes the serial port.
func (v *VCP) Close() error {
	return multierr.Append(v.Flush(), v.port.Close())
}
