package protocol

import "fmt"

// BusWidth is the number of data lines carrying bits simultaneously.
type BusWidth uint8

// Bus widths.
const (
	// WidthUndefined means "no change" when used as an override
	WidthUndefined BusWidth = 0

	// Single uses one line per direction (MOSI out, MISO in)
	Single BusWidth = 1

	// Dual uses IO0-IO1
	Dual BusWidth = 2

	// Quad uses IO0-IO3
	Quad BusWidth = 4
)

func (w BusWidth) String() string {
	switch w {
	case WidthUndefined:
		return "undefined"
	case Single:
		return "single"
	case Dual:
		return "dual"
	case Quad:
		return "quad"
	default:
		return fmt.Sprintf("BusWidth(%d)", uint8(w))
	}
}

// Valid reports whether w is one of Single, Dual or Quad.
func (w BusWidth) Valid() bool {
	return w == Single || w == Dual || w == Quad
}

// ParseBusWidth accepts "1", "2", "4", "single", "dual" or "quad".
func ParseBusWidth(s string) (BusWidth, error) {
	switch s {
	case "1", "single":
		return Single, nil
	case "2", "dual":
		return Dual, nil
	case "4", "quad":
		return Quad, nil
	}
	return WidthUndefined, fmt.Errorf("invalid bus width %q", s)
}

// WidthMask is the set of bus widths a command is valid for.
type WidthMask uint8

// Width masks. The digits name the widths included.
const (
	Widths1   = WidthMask(Single)
	Widths2   = WidthMask(Dual)
	Widths4   = WidthMask(Quad)
	Widths12  = WidthMask(Single | Dual)
	Widths14  = WidthMask(Single | Quad)
	Widths124 = WidthMask(Single | Dual | Quad)
)

// Has reports whether the mask includes w.
func (m WidthMask) Has(w BusWidth) bool {
	return w.Valid() && m&WidthMask(w) != 0
}

// Widths returns the widths in the mask in ascending order.
func (m WidthMask) Widths() []BusWidth {
	var ws []BusWidth
	for _, w := range []BusWidth{Single, Dual, Quad} {
		if m.Has(w) {
			ws = append(ws, w)
		}
	}
	return ws
}

func (m WidthMask) String() string {
	s := ""
	for _, w := range m.Widths() {
		s += fmt.Sprint(uint8(w))
	}
	if s == "" {
		return "none"
	}
	return s
}

// ParseWidthMask parses the digit notation used by Widths12 and friends.
func ParseWidthMask(s string) (WidthMask, error) {
	var m WidthMask
	for _, r := range s {
		w, err := ParseBusWidth(string(r))
		if err != nil {
			return 0, fmt.Errorf("invalid width mask %q", s)
		}
		m |= WidthMask(w)
	}
	if m == 0 {
		return 0, fmt.Errorf("invalid width mask %q", s)
	}
	return m, nil
}

// Op is the kind of data phase a command has.
type Op uint8

// Data phase kinds.
const (
	OpNone Op = iota
	OpRegisterRead
	OpRegisterWrite
	OpDataRead
	OpDataWrite
)

func (o Op) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpRegisterRead:
		return "register_read"
	case OpRegisterWrite:
		return "register_write"
	case OpDataRead:
		return "data_read"
	case OpDataWrite:
		return "data_write"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// ParseOp is the inverse of Op.String.
func ParseOp(s string) (Op, error) {
	for o := OpNone; o <= OpDataWrite; o++ {
		if o.String() == s {
			return o, nil
		}
	}
	return OpNone, fmt.Errorf("invalid data operation %q", s)
}

// IsRead reports whether data flows out of the flash device.
func (o Op) IsRead() bool {
	return o == OpRegisterRead || o == OpDataRead
}

// IsRegister reports whether the data phase carries register bytes.
func (o Op) IsRegister() bool {
	return o == OpRegisterRead || o == OpRegisterWrite
}

// DummyKind selects how a dummy phase is counted.
type DummyKind uint8

// Dummy phase kinds.
const (
	DummyNone DummyKind = iota
	DummyBytes
	DummyCycles
)

// SpiMode is the clock polarity/phase mode of the bus.
// Only modes 0 and 3 are used by flash devices.
type SpiMode uint8

// SPI modes.
const (
	Mode0 SpiMode = iota
	Mode3
	ModeAuto
)

func (m SpiMode) String() string {
	switch m {
	case Mode0:
		return "mode0"
	case Mode3:
		return "mode3"
	case ModeAuto:
		return "auto"
	default:
		return fmt.Sprintf("SpiMode(%d)", uint8(m))
	}
}

// ParseSpiMode accepts "0", "3" or "auto".
func ParseSpiMode(s string) (SpiMode, error) {
	switch s {
	case "0", "mode0":
		return Mode0, nil
	case "3", "mode3":
		return Mode3, nil
	case "auto":
		return ModeAuto, nil
	}
	return Mode0, fmt.Errorf("invalid SPI mode %q", s)
}

// IdleClockHigh reports the idle clock level for the mode.
// ModeAuto reports false; callers adopt the observed level instead.
func (m SpiMode) IdleClockHigh() bool {
	return m == Mode3
}

// Addressing constants.
const (
	// UseDefaultAddressBits marks a command whose address width comes from
	// the configured default rather than the command itself
	UseDefaultAddressBits = 0

	// DefaultAddressBits is the address width used when nothing else is configured
	DefaultAddressBits = 24

	// MaxAddressBits is the widest address a command can carry
	MaxAddressBits = 32
)

// Continuous read ("M" byte) constants.
const (
	// ContinuousReadMask selects bits 5:4 of the M byte
	ContinuousReadMask = 0x30

	// ContinuousReadEnable is the value of bits 5:4 that keeps continuous read active
	ContinuousReadEnable = 0x20

	// ModeByteContinue is the M byte a host sends to stay in continuous read
	ModeByteContinue = 0xAF

	// ModeByteExit is the M byte a host sends to leave continuous read
	ModeByteExit = 0xFF
)

// ContinuesRead reports whether an M byte re-arms continuous read mode.
func ContinuesRead(m byte) bool {
	return m&ContinuousReadMask == ContinuousReadEnable
}

// Manufacturer (command set) identifiers. These are the JEDEC manufacturer
// ID bytes of the vendors with dedicated command sets.
const (
	// ManufacturerGeneric is the baseline command set all vendors derive from
	ManufacturerGeneric = 0x00

	// ManufacturerWinbond is Winbond's JEDEC ID
	ManufacturerWinbond = 0xEF

	// ManufacturerMacronix is Macronix's JEDEC ID
	ManufacturerMacronix = 0xC2

	// NoParent marks a command set without a parent
	NoParent = -1
)

// Common opcodes shared by most serial flash devices.
const (
	// CmdWriteEnable sets the write enable latch
	CmdWriteEnable = 0x06

	// CmdWriteDisable clears the write enable latch
	CmdWriteDisable = 0x04

	// CmdReadStatus1 reads status register 1
	CmdReadStatus1 = 0x05

	// CmdReadStatus2 reads status register 2
	CmdReadStatus2 = 0x35

	// CmdWriteStatus writes status registers 1 and 2
	CmdWriteStatus = 0x01

	// CmdReadData reads data without dummy cycles
	CmdReadData = 0x03

	// CmdFastRead reads data after one dummy byte
	CmdFastRead = 0x0B

	// CmdFastReadDualOutput is a 1-1-2 read
	CmdFastReadDualOutput = 0x3B

	// CmdFastReadQuadOutput is a 1-1-4 read
	CmdFastReadQuadOutput = 0x6B

	// CmdFastReadDualIO is a 1-2-2 read with M byte
	CmdFastReadDualIO = 0xBB

	// CmdFastReadQuadIO is a 1-4-4 read with M byte
	CmdFastReadQuadIO = 0xEB

	// CmdPageProgram programs up to one page
	CmdPageProgram = 0x02

	// CmdSectorErase erases a 4KB sector
	CmdSectorErase = 0x20

	// CmdChipErase erases the whole device
	CmdChipErase = 0xC7

	// CmdReadJedecID reads manufacturer and device ID
	CmdReadJedecID = 0x9F

	// CmdEnterQPI switches the bus to quad for all following commands (Winbond)
	CmdEnterQPI = 0x38

	// CmdExitQPI switches the bus back to single (Winbond)
	CmdExitQPI = 0xFF
)
