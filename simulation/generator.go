package simulation

import (
	"math/rand"

	"github.com/moffa90/go-spiflash/protocol"
)

// Generator limits.
const (
	// MinDelay is the shortest idle gap before a transaction, in half clock periods
	MinDelay = 3

	// DelaySpread is the random extra idle gap, in half clock periods
	DelaySpread = 10

	// MaxDataBytes is the longest random data phase
	MaxDataBytes = 50

	// MaxRegisterBytes is the longest random register phase of a command
	// without declared registers
	MaxRegisterBytes = 2

	// continueOdds is the chance, out of 4, that an M byte keeps continuous read
	continueOdds = 3
)

// Step is the state of the bus for one half clock period.
type Step struct {
	// Clock is the SCLK level
	Clock bool

	// IO holds the data line levels, bit i = IOi
	IO uint8
}

// Transaction is one generated chip select window.
type Transaction struct {
	// Command is the command sent, nil when none could be chosen
	Command *protocol.Command

	// Opcode is the command opcode, sent only when OpcodeSent is set
	Opcode     byte
	OpcodeSent bool

	// Address and AddressBits describe the address phase
	Address     uint64
	AddressBits int

	// Mode is the M byte of a continuous read command
	Mode byte

	// Data holds the data or register bytes
	Data []byte

	// Delay is the idle gap before chip select falls, in half clock periods
	Delay int

	// Steps is the clocked bus activity while chip select is low
	Steps []Step
}

// Generator produces random, legal SPI flash traffic from a command set.
// It tracks bus width and continuous read mode the same way the analyzer
// does, so its output is a decoder test oracle.
//
// A Generator is not safe for concurrent use.
type Generator struct {
	set    *protocol.CommandSet
	config Config
	rng    *rand.Rand

	cur    protocol.BusWidth
	def    protocol.BusWidth
	dirIn  bool
	locked *protocol.Command
}

// NewGenerator creates a generator drawing commands from set.
//
// Example:
//
//	dict := protocol.Default()
//	set, _ := dict.Select(protocol.ManufacturerWinbond)
//	gen := simulation.NewGenerator(set, simulation.WithSeed(42))
//	tx := gen.Next()
func NewGenerator(set *protocol.CommandSet, opts ...Option) *Generator {
	if set == nil {
		panic("command set cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Generator{
		set:    set,
		config: cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		cur:    cfg.BusWidth,
		def:    cfg.BusWidth,
	}
}

// BusWidth returns the default bus width transactions start in.
func (g *Generator) BusWidth() protocol.BusWidth {
	return g.def
}

// Locked returns the command continuous read mode is locked to, or nil.
func (g *Generator) Locked() *protocol.Command {
	return g.locked
}

// Next generates a transaction for a random command valid at the current
// bus width, or continues the locked continuous read command.
func (g *Generator) Next() *Transaction {
	cmd := g.locked
	if cmd == nil {
		ops := g.set.ValidOpcodes(g.cur)
		if len(ops) > 0 {
			cmd = g.set.Command(g.cur, ops[g.rng.Intn(len(ops))])
		}
	}
	if cmd == nil {
		return &Transaction{Delay: g.delay()}
	}
	return g.Generate(cmd, nil)
}

// Generate produces a transaction for cmd with the given data bytes, or
// a random amount of random data when data is nil. While continuous read
// mode is locked the locked command is generated instead of cmd.
func (g *Generator) Generate(cmd *protocol.Command, data []byte) *Transaction {
	if g.locked != nil {
		cmd = g.locked
	}

	tx := &Transaction{
		Command: cmd,
		Opcode:  cmd.Opcode,
		Delay:   g.delay(),
	}
	g.dirIn = false

	if g.locked == nil {
		tx.OpcodeSent = true
		g.emit(tx, uint64(cmd.Opcode), 8)
	}

	if w := cmd.ArgsWidth; w.Valid() {
		g.cur = w
	}

	if cmd.HasAddress {
		tx.AddressBits = cmd.ResolveAddressBits(g.config.AddressBits)
		tx.Address = g.rng.Uint64()
		if tx.AddressBits < 64 {
			tx.Address &= 1<<uint(tx.AddressBits) - 1
		}
		g.emit(tx, tx.Address, tx.AddressBits)
	}

	if cmd.ContinuousRead {
		if g.rng.Intn(4) < continueOdds {
			tx.Mode = protocol.ModeByteContinue
			g.locked = cmd
		} else {
			tx.Mode = protocol.ModeByteExit
			g.locked = nil
		}
		g.emit(tx, uint64(tx.Mode), 8)
	}

	switch cmd.Dummy {
	case protocol.DummyBytes:
		g.emitDummy(tx, cmd.DummyCount*8/int(g.cur))
	case protocol.DummyCycles:
		g.emitDummy(tx, cmd.DummyCount)
	}

	if w := cmd.DataWidth; w.Valid() {
		g.cur = w
	}
	g.dirIn = cmd.Op.IsRead()

	if cmd.Op != protocol.OpNone {
		if data == nil {
			data = g.randomData(cmd)
		}
		tx.Data = append([]byte(nil), data...)
		for _, b := range tx.Data {
			g.emit(tx, uint64(b), 8)
		}
	}

	if w := cmd.ModeChange; w.Valid() {
		g.def = w
	}
	g.cur = g.def
	g.dirIn = false

	return tx
}

func (g *Generator) delay() int {
	return MinDelay + g.rng.Intn(DelaySpread)
}

// randomData returns the data phase for cmd. Register operations carry
// one byte per declared register.
func (g *Generator) randomData(cmd *protocol.Command) []byte {
	var n int
	switch {
	case cmd.Op.IsRegister() && cmd.RegisterCount() > 0:
		n = cmd.RegisterCount()
	case cmd.Op.IsRegister():
		n = 1 + g.rng.Intn(MaxRegisterBytes)
	default:
		n = 1 + g.rng.Intn(MaxDataBytes)
	}

	data := make([]byte, n)
	g.rng.Read(data)
	return data
}

// emit serialises the low bits of value MSB first, one bit group per
// clock cycle at the current bus width.
func (g *Generator) emit(tx *Transaction, value uint64, bits int) {
	w := int(g.cur)
	mask := uint64(1)<<uint(w) - 1
	for shift := bits - w; shift >= 0; shift -= w {
		io := g.place(uint8(value >> uint(shift) & mask))
		tx.Steps = append(tx.Steps, Step{Clock: false, IO: io}, Step{Clock: true, IO: io})
	}
}

// emitDummy clocks n cycles with every data line held high.
func (g *Generator) emitDummy(tx *Transaction, n int) {
	for i := 0; i < n; i++ {
		tx.Steps = append(tx.Steps, Step{Clock: false, IO: 0x0F}, Step{Clock: true, IO: 0x0F})
	}
}

// place maps a bit group to data lines. In single mode the host drives
// IO0 and the device answers on IO1.
func (g *Generator) place(group uint8) uint8 {
	switch g.cur {
	case protocol.Dual:
		return group & 0x03
	case protocol.Quad:
		return group & 0x0F
	default:
		if g.dirIn {
			return (group & 1) << 1
		}
		return group & 1
	}
}
