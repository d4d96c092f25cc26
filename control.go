package instruments

// FloatControl describes a numeric instrument register as an explicit
// record: the command pair, the reply decode, and the validator. Drivers
// declare a table of these and expose typed accessor methods on top.
type FloatControl struct {
	Get      string // query command; empty for set-only registers
	Set      string // printf-style set format; empty for read-only registers
	Strip    int    // status-letter prefix width on replies
	Limits   *Range // optional limits applied on writes
	Truncate bool   // clamp writes to Limits instead of rejecting them
}

// Read queries the register and decodes the reply.
func (c FloatControl) Read(conn Connection) (float64, error) {
	reply, err := conn.Query(c.Get)
	if err != nil {
		return 0, err
	}
	return DecodeFloat(reply, c.Strip)
}

// Write validates v against the record's limits and sets the register.
func (c FloatControl) Write(conn Connection, v float64) error {
	if c.Limits != nil {
		if c.Truncate {
			v = c.Limits.Clamp(v)
		} else if err := c.Limits.Check(v); err != nil {
			return err
		}
	}
	return conn.Command(c.Set, v)
}

// IntSetting describes a set-only integer register.
type IntSetting struct {
	Set    string
	Limits IntRange
}

// Write validates v and sets the register.
func (s IntSetting) Write(conn Connection, v int) error {
	if err := s.Limits.Check(v); err != nil {
		return err
	}
	return conn.Command(s.Set, v)
}

// DigitControl describes an integer register whose value is read from a
// fixed character offset of a packed status reply and written with its own
// set command. The ITC503 examine response ("X") packs every mode field
// into one such status string.
type DigitControl struct {
	Get    string
	Set    string
	Offset int // character offset of the field in the status reply
	Width  int // field width in characters
	Limits IntRange
}

// Read queries the status string and extracts the record's field.
func (c DigitControl) Read(conn Connection) (int, error) {
	reply, err := conn.Query(c.Get)
	if err != nil {
		return 0, err
	}
	return DecodeDigits(reply, c.Offset, c.Width)
}

// Write validates v and sets the register.
func (c DigitControl) Write(conn Connection, v int) error {
	if err := c.Limits.Check(v); err != nil {
		return err
	}
	return conn.Command(c.Set, v)
}
