package simulation

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/moffa90/go-spiflash/protocol"
)

func mustSet(t *testing.T, id int) *protocol.CommandSet {
	t.Helper()
	set, err := protocol.Default().Select(id)
	if err != nil {
		t.Fatalf("Select(0x%02X): %v", id, err)
	}
	return set
}

// cycles returns the clock cycles in a step list.
func cycles(steps []Step) int {
	n := 0
	for _, st := range steps {
		if st.Clock {
			n++
		}
	}
	return n
}

func TestGenerateStepCounts(t *testing.T) {
	set := mustSet(t, protocol.ManufacturerGeneric)

	tests := []struct {
		name   string
		opcode byte
		data   []byte
		cycles int
	}{
		{
			name:   "write enable is one byte",
			opcode: protocol.CmdWriteEnable,
			cycles: 8,
		},
		{
			name:   "jedec id with three bytes",
			opcode: protocol.CmdReadJedecID,
			data:   []byte{0xEF, 0x40, 0x18},
			cycles: 8 + 3*8,
		},
		{
			name:   "read data with 24-bit address",
			opcode: protocol.CmdReadData,
			data:   []byte{0x01, 0x02},
			cycles: 8 + 24 + 2*8,
		},
		{
			name:   "fast read quad io",
			opcode: protocol.CmdFastReadQuadIO,
			data:   []byte{0x12, 0x34, 0x56, 0x78},
			// opcode single, address/M/dummy/data at quad
			cycles: 8 + 24/4 + 8/4 + 16/4 + 4*8/4,
		},
		{
			name:   "dual output read",
			opcode: protocol.CmdFastReadDualOutput,
			data:   []byte{0xAA},
			cycles: 8 + 24 + 8 + 8/2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(set, WithSeed(3))
			cmd := set.Command(protocol.Single, tt.opcode)
			tx := gen.Generate(cmd, tt.data)

			if !tx.OpcodeSent || tx.Opcode != tt.opcode {
				t.Errorf("opcode = 0x%02X sent=%v", tx.Opcode, tx.OpcodeSent)
			}
			if got := cycles(tx.Steps); got != tt.cycles {
				t.Errorf("cycles = %d, want %d", got, tt.cycles)
			}
			if len(tx.Steps)%2 != 0 {
				t.Errorf("odd step count %d", len(tx.Steps))
			}
			if tx.Delay < MinDelay || tx.Delay >= MinDelay+DelaySpread {
				t.Errorf("Delay = %d out of range", tx.Delay)
			}
			if gen.cur != gen.def {
				t.Errorf("bus width %v not restored to %v", gen.cur, gen.def)
			}
		})
	}
}

func TestGenerateOpcodeBits(t *testing.T) {
	set := mustSet(t, protocol.ManufacturerGeneric)
	gen := NewGenerator(set)

	tx := gen.Generate(set.Command(protocol.Single, protocol.CmdReadJedecID), []byte{0x5A})

	// 0x9F on IO0, then 0x5A read back on IO1.
	want := []uint8{1, 0, 0, 1, 1, 1, 1, 1, 0, 2, 0, 2, 2, 0, 2, 0}
	var got []uint8
	for i := 0; i < len(tx.Steps); i += 2 {
		lo, hi := tx.Steps[i], tx.Steps[i+1]
		if lo.Clock || !hi.Clock || lo.IO != hi.IO {
			t.Fatalf("step pair %d malformed: %s", i/2, spew.Sdump(lo, hi))
		}
		got = append(got, hi.IO)
	}
	if len(got) != len(want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("group %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestGenerateQuadGroups(t *testing.T) {
	set := mustSet(t, protocol.ManufacturerWinbond)
	gen := NewGenerator(set, WithBusWidth(protocol.Quad))

	tx := gen.Generate(set.Command(protocol.Quad, protocol.CmdReadJedecID), []byte{0xC3})

	// 0x9F then 0xC3, one nibble per cycle, high nibble first.
	want := []uint8{0x9, 0xF, 0xC, 0x3}
	for i, w := range want {
		if io := tx.Steps[2*i+1].IO; io != w {
			t.Errorf("group %d = 0x%X, want 0x%X", i, io, w)
		}
	}
}

func TestGenerateModeChange(t *testing.T) {
	set := mustSet(t, protocol.ManufacturerWinbond)
	gen := NewGenerator(set)

	gen.Generate(set.Command(protocol.Single, protocol.CmdEnterQPI), nil)
	if gen.BusWidth() != protocol.Quad || gen.cur != protocol.Quad {
		t.Fatalf("after enter QPI: def=%v cur=%v", gen.def, gen.cur)
	}

	tx := gen.Generate(set.Command(protocol.Quad, protocol.CmdWriteEnable), nil)
	if got := cycles(tx.Steps); got != 2 {
		t.Errorf("quad WREN cycles = %d, want 2", got)
	}

	gen.Generate(set.Command(protocol.Quad, protocol.CmdExitQPI), nil)
	if gen.BusWidth() != protocol.Single {
		t.Errorf("after exit QPI: %v", gen.BusWidth())
	}
}

func TestGenerateRegisterBytes(t *testing.T) {
	set := mustSet(t, protocol.ManufacturerGeneric)
	gen := NewGenerator(set, WithSeed(11))

	for i := 0; i < 20; i++ {
		tx := gen.Generate(set.Command(protocol.Single, protocol.CmdWriteStatus), nil)
		if len(tx.Data) != 2 {
			t.Fatalf("WS1 carried %d bytes, want 2", len(tx.Data))
		}
		tx = gen.Generate(set.Command(protocol.Single, protocol.CmdReadStatus1), nil)
		if len(tx.Data) != 1 {
			t.Fatalf("RDSR carried %d bytes, want 1", len(tx.Data))
		}
	}
}

func TestContinuousReadLock(t *testing.T) {
	set := mustSet(t, protocol.ManufacturerGeneric)
	gen := NewGenerator(set, WithSeed(5))
	cmd := set.Command(protocol.Single, protocol.CmdFastReadQuadIO)
	other := set.Command(protocol.Single, protocol.CmdWriteEnable)

	var continued, exited int
	prev := gen.Generate(cmd, []byte{0x00})
	for i := 0; i < 200; i++ {
		var tx *Transaction
		if gen.Locked() != nil {
			tx = gen.Generate(other, []byte{0x00})
		} else {
			tx = gen.Generate(cmd, []byte{0x00})
		}

		switch prev.Mode {
		case protocol.ModeByteContinue:
			continued++
			if tx.OpcodeSent || tx.Command != cmd {
				t.Fatalf("transaction after M=0x%02X sent an opcode: %s", prev.Mode, spew.Sdump(tx.Command))
			}
		case protocol.ModeByteExit:
			exited++
			if !tx.OpcodeSent {
				t.Fatal("transaction after exit M byte must send its opcode")
			}
		default:
			t.Fatalf("unexpected M byte 0x%02X", prev.Mode)
		}
		prev = tx
	}

	if continued == 0 || exited == 0 {
		t.Errorf("continued=%d exited=%d, want both", continued, exited)
	}
}

func TestNextIsDeterministic(t *testing.T) {
	set := mustSet(t, protocol.ManufacturerWinbond)
	a := NewGenerator(set, WithSeed(99))
	b := NewGenerator(set, WithSeed(99))

	for i := 0; i < 50; i++ {
		ta, tb := a.Next(), b.Next()
		if ta.Opcode != tb.Opcode || len(ta.Steps) != len(tb.Steps) || ta.Delay != tb.Delay {
			t.Fatalf("transaction %d differs: 0x%02X/%d vs 0x%02X/%d",
				i, ta.Opcode, len(ta.Steps), tb.Opcode, len(tb.Steps))
		}
	}
}

func TestNextWithEmptySet(t *testing.T) {
	b := protocol.NewBuilder()
	b.CommandSet(0, "empty", protocol.NoParent)
	set := b.Build().CommandSet(0)

	tx := NewGenerator(set).Next()
	if tx.Command != nil || len(tx.Steps) != 0 {
		t.Errorf("empty set produced %s", spew.Sdump(tx))
	}
}

func TestOptionsIgnoreInvalid(t *testing.T) {
	set := mustSet(t, protocol.ManufacturerGeneric)
	gen := NewGenerator(set, WithAddressBits(12), WithBusWidth(3))

	if gen.config.AddressBits != protocol.DefaultAddressBits {
		t.Errorf("AddressBits = %d", gen.config.AddressBits)
	}
	if gen.BusWidth() != protocol.Single {
		t.Errorf("BusWidth = %v", gen.BusWidth())
	}
}

func TestNewGeneratorPanicsOnNilSet(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewGenerator(nil)
}
