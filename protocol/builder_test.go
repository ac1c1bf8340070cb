package protocol

import (
	"testing"
)

func TestBuilderCommandFeatures(t *testing.T) {
	b := NewBuilder()
	s := b.CommandSet(0, "base", NoParent)
	cmd := s.Command(0xEB, Widths1, "R", "R 1-4-4", "Fast Read Quad I/O").
		ArgsWidth(Quad).Address(32).ContinuousRead().DummyBytes(2).Op(OpDataRead).
		Declared()
	b.Build()

	if cmd == nil {
		t.Fatal("Declared() returned nil")
	}
	if !cmd.HasAddress || cmd.AddressBits != 32 {
		t.Errorf("address = %v/%d, want true/32", cmd.HasAddress, cmd.AddressBits)
	}
	if !cmd.ContinuousRead {
		t.Error("ContinuousRead not set")
	}
	if cmd.Dummy != DummyBytes || cmd.DummyCount != 2 {
		t.Errorf("dummy = %v/%d, want bytes/2", cmd.Dummy, cmd.DummyCount)
	}
	if cmd.ArgsWidth != Quad || cmd.DataWidth != WidthUndefined {
		t.Errorf("widths = %v/%v", cmd.ArgsWidth, cmd.DataWidth)
	}
	if cmd.Op != OpDataRead {
		t.Errorf("Op = %v", cmd.Op)
	}
}

func TestBuilderDummyKindsReplaceEachOther(t *testing.T) {
	b := NewBuilder()
	cmd := b.CommandSet(0, "base", NoParent).
		Command(0x0B, Widths1, "R").DummyBytes(1).DummyCycles(8).Declared()

	if cmd.Dummy != DummyCycles || cmd.DummyCount != 8 {
		t.Errorf("dummy = %v/%d, want cycles/8", cmd.Dummy, cmd.DummyCount)
	}
}

func TestBuilderRegisters(t *testing.T) {
	b := NewBuilder()
	s := b.CommandSet(0, "base", NoParent)
	s.Register("Status Register-1", 8).Bit(7, "SRP0").Bits(4, 2, "BPB").Bits(2, 4, "ignored")

	wrsr := s.Command(0x01, Widths14, "WS1").
		RegisterWrite("Status Register-1").
		RegisterWrite("Config").
		Declared()
	dict := b.Build()

	sr1 := dict.CommandSet(0).Register("Status Register-1")
	if sr1 == nil {
		t.Fatal("Status Register-1 not declared")
	}
	if len(sr1.Fields) != 2 {
		t.Errorf("fields = %d, want 2 (invalid range dropped)", len(sr1.Fields))
	}

	cfg := dict.CommandSet(0).Register("Config")
	if cfg == nil {
		t.Fatal("unknown register reference should create a register")
	}
	if cfg.Bits != 8 {
		t.Errorf("auto-created register has %d bits, want 8", cfg.Bits)
	}

	if wrsr.Op != OpRegisterWrite {
		t.Errorf("Op = %v, want register write", wrsr.Op)
	}
	if wrsr.RegisterCount() != 2 || wrsr.Register(0) != sr1 || wrsr.Register(1) != cfg {
		t.Errorf("registers not attached in order")
	}
}

func TestBuilderSilentNoOps(t *testing.T) {
	b := NewBuilder()

	// Unknown parent: set is created as a root.
	s := b.CommandSet(5, "orphan", 99)

	// Empty register reference: ignored.
	cmd := s.Command(0x05, Widths1, "RDSR").RegisterRead("").Declared()

	// No widths: nothing declared.
	none := s.Command(0x07, 0, "NOPE")
	none.Address(24).DummyBytes(1).RegisterRead("X")

	// Reopening an unknown set declares nothing.
	b.Extend(42).Command(0x01, Widths1, "ghost")

	dict := b.Build()

	// Declarations after Build are ignored.
	b.CommandSet(6, "late", NoParent).Command(0x06, Widths1, "WREN")

	orphan := dict.CommandSet(5)
	if orphan == nil {
		t.Fatal("orphan set missing")
	}
	if orphan.Parent() != nil {
		t.Error("set with unknown parent should be a root")
	}
	if len(cmd.Registers) != 0 || cmd.Op != OpNone {
		t.Errorf("empty register reference changed the command: %+v", cmd)
	}
	if none.Declared() != nil {
		t.Error("command without widths should not be declared")
	}
	if orphan.Command(Single, 0x07) != nil {
		t.Error("opcode 0x07 should not be registered")
	}
	if len(orphan.Registers()) != 0 {
		t.Errorf("no registers expected, got %d", len(orphan.Registers()))
	}
	if dict.CommandSet(42) != nil || dict.CommandSet(6) != nil {
		t.Error("no-op declarations created sets")
	}
}

func TestBuilderDuplicateSetReturnsExisting(t *testing.T) {
	b := NewBuilder()
	b.CommandSet(0, "base", NoParent).Command(0x06, Widths1, "WREN")
	b.CommandSet(0, "again", NoParent).Command(0x04, Widths1, "WRDI")
	dict := b.Build()

	if n := len(dict.CommandSets()); n != 1 {
		t.Fatalf("sets = %d, want 1", n)
	}
	cs := dict.CommandSet(0)
	if cs.Name != "base" {
		t.Errorf("Name = %q, want first declaration", cs.Name)
	}
	if cs.Command(Single, 0x06) == nil || cs.Command(Single, 0x04) == nil {
		t.Error("both declarations should land in the same set")
	}
}

func TestBuilderExtend(t *testing.T) {
	b := NewDefaultBuilder()
	b.Extend(ManufacturerMacronix).Command(0x5B, Widths1, "X", "Extension")
	dict := b.Build()

	if dict.CommandSet(ManufacturerMacronix).Command(Single, 0x5B) == nil {
		t.Error("extended command missing")
	}
}
