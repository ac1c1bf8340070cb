package protocol

import "fmt"

// BitField is a named bit range [Lower, Upper] of a register value.
type BitField struct {
	// Name is the field name shown next to the value
	Name string

	// Upper is the most significant bit of the field (inclusive)
	Upper uint8

	// Lower is the least significant bit of the field (inclusive)
	Lower uint8
}

// Valid reports whether Lower <= Upper < 64.
func (f BitField) Valid() bool {
	return f.Lower <= f.Upper && f.Upper < 64
}

// Width returns the number of bits in the field.
func (f BitField) Width() int {
	return int(f.Upper) - int(f.Lower) + 1
}

// Value extracts the field from a register snapshot.
func (f BitField) Value(reg uint64) uint32 {
	if !f.Valid() {
		return 0
	}
	v := reg >> f.Lower
	if w := f.Width(); w < 64 {
		v &= 1<<uint(w) - 1
	}
	return uint32(v)
}

func (f BitField) String() string {
	if f.Upper == f.Lower {
		return fmt.Sprintf("%s[%d]", f.Name, f.Lower)
	}
	return fmt.Sprintf("%s[%d:%d]", f.Name, f.Upper, f.Lower)
}

// Register describes a device register carried by register commands.
type Register struct {
	// Name identifies the register within its command set
	Name string

	// Bits is the register length (8, 16, ...)
	Bits int

	// Fields are kept in declaration order, which is display order
	Fields []BitField
}

// Describe renders the fields of a register value, e.g. "SRP0=0 WEL=1 BUSY=0".
func (r *Register) Describe(value uint64) string {
	s := ""
	for i, f := range r.Fields {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%d", f.Name, f.Value(value))
	}
	return s
}

// Command is one flash command descriptor. Commands are built once by a
// Builder and are immutable afterwards.
type Command struct {
	// Opcode is the instruction byte
	Opcode byte

	// Widths lists the bus widths the opcode is recognised in
	Widths WidthMask

	// Names holds short to long display names; the longest is last
	Names []string

	// HasAddress is set when an address phase follows the opcode
	HasAddress bool

	// AddressBits is the address width, or UseDefaultAddressBits
	AddressBits int

	// ContinuousRead is set when an M byte follows the address
	ContinuousRead bool

	// Dummy selects the dummy phase kind and DummyCount its length
	Dummy      DummyKind
	DummyCount int

	// ArgsWidth switches the bus width right after the opcode (1-2-2, 1-4-4)
	ArgsWidth BusWidth

	// DataWidth switches the bus width after the M byte and dummy phase (1-1-2, 1-1-4)
	DataWidth BusWidth

	// ModeChange permanently switches the default bus width (enter/exit QPI)
	ModeChange BusWidth

	// Op is the data phase kind
	Op Op

	// Registers are consumed in order, wrapping, during register operations
	Registers []*Register
}

// Name returns the canonical display name: the longest declared one.
func (c *Command) Name() string {
	name := ""
	for _, n := range c.Names {
		if len(n) > len(name) {
			name = n
		}
	}
	return name
}

// ShortName returns the first declared name.
func (c *Command) ShortName() string {
	if len(c.Names) == 0 {
		return ""
	}
	return c.Names[0]
}

// ValidFor reports whether the command is recognised at bus width w.
func (c *Command) ValidFor(w BusWidth) bool {
	return c.Widths.Has(w)
}

// ResolveAddressBits returns the address width given the configured default.
func (c *Command) ResolveAddressBits(defaultBits int) int {
	if !c.HasAddress {
		return 0
	}
	if c.AddressBits == UseDefaultAddressBits {
		return defaultBits
	}
	return c.AddressBits
}

// Register returns the register the ix-th register byte belongs to.
// Registers repeat when more bytes flow than registers were declared.
func (c *Command) Register(ix int) *Register {
	if len(c.Registers) == 0 || ix < 0 {
		return nil
	}
	return c.Registers[ix%len(c.Registers)]
}

// RegisterCount returns the number of declared registers.
func (c *Command) RegisterCount() int {
	return len(c.Registers)
}

func (c *Command) String() string {
	return fmt.Sprintf("0x%02X %s", c.Opcode, c.Name())
}
