// Package instruments collects drivers for laboratory test equipment that
// speaks SCPI-like ASCII command sets over a GPIB or serial command channel.
// Each driver maps instrument registers onto typed accessor methods; the
// gpib subpackage provides a Prologix-style controller that satisfies the
// Connection interface the drivers depend on.
package instruments

import (
	"fmt"
	"strconv"
	"strings"
)

// Connection is the command channel to a single instrument. Implementations
// are synchronous and blocking with at most one command in flight; drivers
// sharing one Connection across goroutines need external mutual exclusion.
type Connection interface {
	// Command formats according to a format specifier if arguments are
	// provided and sends the resulting command. No reply is expected.
	Command(format string, a ...any) error

	// Query sends a command and returns the single-line ASCII reply.
	Query(cmd string) (string, error)

	// Clear flushes any pending I/O state on the channel.
	Clear() error
}

// DecodeFloat parses a numeric reply that carries a fixed-width
// status-letter prefix, e.g. "R234.5" with strip=1 decodes to 234.5. The
// prefix width is property-specific and must match the instrument's
// documented reply format.
func DecodeFloat(reply string, strip int) (float64, error) {
	reply = strings.TrimSpace(reply)
	if len(reply) <= strip {
		return 0, fmt.Errorf("reply %q too short for %d-character prefix", reply, strip)
	}
	v, err := strconv.ParseFloat(reply[strip:], 64)
	if err != nil {
		return 0, fmt.Errorf("decoding reply %q: %w", reply, err)
	}
	return v, nil
}

// DecodeDigits extracts an integer encoded at a fixed character offset in a
// status reply, reading width characters. Status replies such as the ITC503
// examine response pack several fields into one fixed-position string.
func DecodeDigits(reply string, offset, width int) (int, error) {
	reply = strings.TrimRight(reply, "\r\n")
	if len(reply) < offset+width {
		return 0, fmt.Errorf("status reply %q shorter than offset %d", reply, offset+width)
	}
	v, err := strconv.Atoi(reply[offset : offset+width])
	if err != nil {
		return 0, fmt.Errorf("decoding status reply %q at offset %d: %w", reply, offset, err)
	}
	return v, nil
}
