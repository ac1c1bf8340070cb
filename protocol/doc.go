// Package protocol describes the SPI flash command protocol: bus widths,
// command descriptors, registers and the per-manufacturer command sets that
// a decoder or traffic generator looks commands up in.
//
// # Command Sets
//
// Each manufacturer has a CommandSet. A set may have a parent; lookups that
// miss in a set continue in its parent, so a vendor set only declares the
// commands it adds or overrides:
//
//	dict := protocol.Default()
//	winbond, err := dict.Select(protocol.ManufacturerWinbond)
//	cmd := winbond.Command(protocol.Single, 0x9F) // inherited from the baseline set
//
// Commands are keyed by opcode and bus width, because the same opcode can
// mean different things in single and quad (QPI) mode.
//
// # Declaring Commands
//
// Dictionaries are built with a Builder. Every declaration returns a builder
// for what it declared:
//
//	b := protocol.NewBuilder()
//	s := b.CommandSet(0x20, "Micron", protocol.NoParent)
//	s.Register("Flag Status Register", 8).Bit(7, "READY")
//	s.Command(0x70, protocol.Widths14, "RFSR", "Read flag status register").
//	    RegisterRead("Flag Status Register")
//	s.Command(0x0B, protocol.Widths1, "R", "Fast Read").
//	    Address(protocol.UseDefaultAddressBits).DummyBytes(1).Op(protocol.OpDataRead)
//	dict := b.Build()
//
// A built Dictionary is never modified, so it can be shared between
// goroutines without locking.
//
// # Transaction Shape
//
// A command on the wire is:
//
//	[OPCODE][ADDRESS][M][DUMMY][DATA...]
//
// Where:
//   - OPCODE is omitted while continuous read mode is active
//   - ADDRESS is present when HasAddress is set
//   - M is present for continuous read commands; bits 5:4 = 0b10 keep the mode
//   - DUMMY is DummyCount bytes or clock cycles
//   - ArgsWidth applies from ADDRESS on, DataWidth from DATA on
package protocol
