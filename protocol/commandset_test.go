package protocol

import (
	"bytes"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func newFamily() *Dictionary {
	b := NewBuilder()

	base := b.CommandSet(0, "base", NoParent)
	base.Command(0x06, Widths14, "WREN", "Write Enable")
	base.Command(0x9F, Widths1, "JID", "Read JEDEC ID").Op(OpDataRead)
	base.Command(0x03, Widths1, "R", "Read Data").Address(UseDefaultAddressBits).Op(OpDataRead)

	vendor := b.CommandSet(0x10, "vendor", 0)
	vendor.Command(0x9F, Widths1, "JID", "Vendor JEDEC ID").Op(OpDataRead)
	vendor.Command(0x38, Widths1, "QPI", "Enter QPI").ModeChange(Quad)
	vendor.Command(0x0B, Widths4, "R", "Fast Read QPI").Address(UseDefaultAddressBits).DummyBytes(1).Op(OpDataRead)

	b.CommandSet(0x11, "sibling", 0)

	return b.Build()
}

func TestCommandSetFallback(t *testing.T) {
	dict := newFamily()
	base := dict.CommandSet(0)
	vendor := dict.CommandSet(0x10)
	sibling := dict.CommandSet(0x11)

	tests := []struct {
		name   string
		set    *CommandSet
		width  BusWidth
		opcode byte
		want   *Command
	}{
		{
			name:   "own command",
			set:    vendor,
			width:  Single,
			opcode: 0x38,
			want:   vendor.Commands()[1],
		},
		{
			name:   "override hides parent",
			set:    vendor,
			width:  Single,
			opcode: 0x9F,
			want:   vendor.Commands()[0],
		},
		{
			name:   "inherited from parent",
			set:    vendor,
			width:  Single,
			opcode: 0x06,
			want:   base.Commands()[0],
		},
		{
			name:   "inherited at quad width",
			set:    sibling,
			width:  Quad,
			opcode: 0x06,
			want:   base.Commands()[0],
		},
		{
			name:   "width selects entry",
			set:    vendor,
			width:  Quad,
			opcode: 0x0B,
			want:   vendor.Commands()[2],
		},
		{
			name:   "missing at width",
			set:    vendor,
			width:  Single,
			opcode: 0x0B,
			want:   nil,
		},
		{
			name:   "missing everywhere",
			set:    vendor,
			width:  Single,
			opcode: 0x42,
			want:   nil,
		},
		{
			name:   "sibling does not see vendor commands",
			set:    sibling,
			width:  Single,
			opcode: 0x38,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.set.Command(tt.width, tt.opcode)
			if got != tt.want {
				t.Errorf("Command(%v, 0x%02X) = %s, want %s", tt.width, tt.opcode, spew.Sdump(got), spew.Sdump(tt.want))
			}
		})
	}
}

func TestValidOpcodes(t *testing.T) {
	dict := newFamily()
	vendor := dict.CommandSet(0x10)

	tests := []struct {
		name  string
		set   *CommandSet
		width BusWidth
		want  []byte
	}{
		{
			name:  "single unions parent and dedups override",
			set:   vendor,
			width: Single,
			want:  []byte{0x03, 0x06, 0x38, 0x9F},
		},
		{
			name:  "quad",
			set:   vendor,
			width: Quad,
			want:  []byte{0x06, 0x0B},
		},
		{
			name:  "dual has nothing",
			set:   vendor,
			width: Dual,
			want:  nil,
		},
		{
			name:  "root only",
			set:   dict.CommandSet(0),
			width: Single,
			want:  []byte{0x03, 0x06, 0x9F},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.set.ValidOpcodes(tt.width)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ValidOpcodes(%v) = % X, want % X", tt.width, got, tt.want)
			}
		})
	}
}

func TestDictionarySelect(t *testing.T) {
	dict := newFamily()

	cs, err := dict.Select(0x10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs.Name != "vendor" {
		t.Errorf("Name = %q, want vendor", cs.Name)
	}
	if cs.Parent() != dict.CommandSet(0) {
		t.Error("vendor parent should be the base set")
	}
	if dict.CommandSet(0).Parent() != nil {
		t.Error("base set should have no parent")
	}

	_, err = dict.Select(0x77)
	if err == nil {
		t.Fatal("expected error for unknown set")
	}
	if !IsUnknownCommandSet(err) {
		t.Errorf("error = %v, want UnknownCommandSetError", err)
	}

	if n := len(dict.CommandSets()); n != 3 {
		t.Errorf("CommandSets() has %d sets, want 3", n)
	}
}
