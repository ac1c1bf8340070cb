package analyzer

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/moffa90/go-spiflash/protocol"
)

// FrameKind tags what a Frame carries. The meaning of Data1 and Data2
// depends on the kind.
type FrameKind uint8

// Frame kinds.
const (
	// FrameOpcode is the command byte. Data1 = opcode.
	FrameOpcode FrameKind = iota

	// FrameCommand summarises a transaction over its whole range.
	// Data1 = address<<24 | byte count, Data2 = opcode. Command is nil when
	// the opcode is unknown.
	FrameCommand

	// FrameAddress is the address phase. Data1 = address, Data2 = bits.
	FrameAddress

	// FrameMode is the continuous read M byte. Data1 = M.
	FrameMode

	// FrameDummy is the dummy phase. Data1 = bits clocked.
	FrameDummy

	// FrameDataIn is a byte read from the device. Data1 = byte.
	FrameDataIn

	// FrameDataOut is a byte written to the device. Data1 = byte.
	FrameDataOut

	// FrameRegisterIn is a register byte read from the device.
	// Data1 = byte, Data2 = register index within the command.
	FrameRegisterIn

	// FrameRegisterOut is a register byte written to the device.
	// Data1 = byte, Data2 = register index within the command.
	FrameRegisterOut

	// FrameRaw is an undecoded byte after an unknown opcode.
	// Data1 = MOSI byte, Data2 = MISO byte.
	FrameRaw
)

func (k FrameKind) String() string {
	switch k {
	case FrameOpcode:
		return "opcode"
	case FrameCommand:
		return "command"
	case FrameAddress:
		return "address"
	case FrameMode:
		return "mode"
	case FrameDummy:
		return "dummy"
	case FrameDataIn:
		return "data-in"
	case FrameDataOut:
		return "data-out"
	case FrameRegisterIn:
		return "register-in"
	case FrameRegisterOut:
		return "register-out"
	case FrameRaw:
		return "raw"
	default:
		return fmt.Sprintf("FrameKind(%d)", uint8(k))
	}
}

// Frame is one decoded unit of output covering samples [Start, End].
type Frame struct {
	Start uint64
	End   uint64
	Kind  FrameKind
	Data1 uint64
	Data2 uint64

	// Width is the bus width the frame was clocked at
	Width protocol.BusWidth

	// Command is the resolved command (summary frames)
	Command *protocol.Command

	// Register is the register a register byte belongs to
	Register *protocol.Register

	// Truncated marks a summary whose transaction ended mid-extraction
	Truncated bool
}

// Address returns the address stored in a summary frame.
func (f Frame) Address() uint64 {
	return f.Data1 >> 24
}

// ByteCount returns the number of data or register bytes stored in a summary frame.
func (f Frame) ByteCount() int {
	return int(f.Data1 & 0xFFFFFF)
}

// Describe renders the frame contents without its sample range.
func (f Frame) Describe() string {
	var s string
	switch f.Kind {
	case FrameOpcode:
		s = fmt.Sprintf("opcode 0x%02X", f.Data1)
	case FrameCommand:
		name := "unknown"
		if f.Command != nil {
			name = f.Command.Name()
		}
		s = fmt.Sprintf("0x%02X %s", f.Data2, name)
		if f.Command != nil && f.Command.HasAddress {
			s += fmt.Sprintf(" addr=0x%06X", f.Address())
		}
		s += fmt.Sprintf(" bytes=%d", f.ByteCount())
		if f.Truncated {
			s += " (truncated)"
		}
	case FrameAddress:
		s = fmt.Sprintf("address 0x%0*X (%d bits, %s)", int(f.Data2+3)/4, f.Data1, f.Data2, f.Width)
	case FrameMode:
		state := "exit"
		if protocol.ContinuesRead(byte(f.Data1)) {
			state = "continue"
		}
		s = fmt.Sprintf("M 0x%02X %s", f.Data1, state)
	case FrameDummy:
		s = fmt.Sprintf("dummy %d bits", f.Data1)
	case FrameDataIn:
		s = fmt.Sprintf("in 0x%02X", f.Data1)
	case FrameDataOut:
		s = fmt.Sprintf("out 0x%02X", f.Data1)
	case FrameRegisterIn, FrameRegisterOut:
		dir := "in"
		if f.Kind == FrameRegisterOut {
			dir = "out"
		}
		s = fmt.Sprintf("%s 0x%02X", dir, f.Data1)
		if f.Register != nil {
			s += " " + f.Register.Name
			if desc := f.Register.Describe(f.Data1); desc != "" {
				s += ": " + desc
			}
		}
	case FrameRaw:
		s = fmt.Sprintf("raw mosi=0x%02X miso=0x%02X", f.Data1, f.Data2)
	default:
		s = fmt.Sprintf("%s 0x%X 0x%X", f.Kind, f.Data1, f.Data2)
	}
	return s
}

func (f Frame) String() string {
	return fmt.Sprintf("[%d-%d] %s", f.Start, f.End, f.Describe())
}

// MarkerKind tags a Marker.
type MarkerKind uint8

// Marker kinds.
const (
	// MarkerClockPolarity flags a clock idle level that disagrees with the SPI mode
	MarkerClockPolarity MarkerKind = iota
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerClockPolarity:
		return "clock-polarity"
	default:
		return fmt.Sprintf("MarkerKind(%d)", uint8(k))
	}
}

// Marker is a point annotation on one capture channel.
type Marker struct {
	Sample  uint64
	Channel int
	Kind    MarkerKind
}

// Sink receives the decoder output in order.
type Sink interface {
	AddFrame(f Frame)
	AddMarker(m Marker)
}

// Results is a Sink that keeps everything in memory.
type Results struct {
	Frames  []Frame
	Markers []Marker
}

// AddFrame implements Sink.
func (r *Results) AddFrame(f Frame) {
	r.Frames = append(r.Frames, f)
}

// AddMarker implements Sink.
func (r *Results) AddMarker(m Marker) {
	r.Markers = append(r.Markers, m)
}

// Filter returns the frames of the given kinds, in order.
func (r *Results) Filter(kinds ...FrameKind) []Frame {
	return slices.DeleteFunc(slices.Clone(r.Frames), func(f Frame) bool {
		return !slices.Contains(kinds, f.Kind)
	})
}

// Summaries returns one FrameCommand per decoded transaction.
func (r *Results) Summaries() []Frame {
	return r.Filter(FrameCommand)
}
