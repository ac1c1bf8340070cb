package protocol

// Builder assembles a Dictionary. Each declaration returns a builder for
// the thing it declared, so features are attached to an explicit command or
// register instead of an implicit "current" one.
//
// Mistakes in declarations (unknown parent, empty register name, invalid
// widths) are ignored rather than reported; Dictionary.Validate catches the
// ones that matter.
type Builder struct {
	dict *Dictionary
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		dict: &Dictionary{byID: make(map[int]int)},
	}
}

// CommandSet declares a command set. parentID names an already declared set
// or NoParent. Declaring an id twice returns the existing set.
func (b *Builder) CommandSet(id int, name string, parentID int) *SetBuilder {
	if b.dict == nil {
		return &SetBuilder{}
	}
	if ix, ok := b.dict.byID[id]; ok {
		return &SetBuilder{set: b.dict.sets[ix]}
	}

	parent := NoParent
	if ix, ok := b.dict.byID[parentID]; ok {
		parent = ix
	}

	cs := &CommandSet{
		ID:     id,
		Name:   name,
		dict:   b.dict,
		parent: parent,
		byKey:  make(map[Key]*Command),
	}
	b.dict.byID[id] = len(b.dict.sets)
	b.dict.sets = append(b.dict.sets, cs)

	return &SetBuilder{set: cs}
}

// Extend reopens a declared set for further declarations. It returns a
// builder whose declarations are no-ops when id is unknown.
func (b *Builder) Extend(id int) *SetBuilder {
	if b.dict == nil {
		return &SetBuilder{}
	}
	if ix, ok := b.dict.byID[id]; ok {
		return &SetBuilder{set: b.dict.sets[ix]}
	}
	return &SetBuilder{}
}

// Build finishes the dictionary. The builder must not be used afterwards;
// further declarations are ignored.
func (b *Builder) Build() *Dictionary {
	d := b.dict
	b.dict = nil
	if d == nil {
		return &Dictionary{byID: make(map[int]int)}
	}
	return d
}

// SetBuilder declares registers and commands in one command set.
type SetBuilder struct {
	set *CommandSet
}

// Set returns the set being built, or nil for a no-op builder.
func (sb *SetBuilder) Set() *CommandSet {
	return sb.set
}

// Register declares a register of the given length.
func (sb *SetBuilder) Register(name string, bits int) *RegisterBuilder {
	if sb.set == nil || name == "" {
		return &RegisterBuilder{sb: sb}
	}
	reg := &Register{Name: name, Bits: bits}
	sb.set.registers = append(sb.set.registers, reg)
	return &RegisterBuilder{sb: sb, reg: reg}
}

// register finds a register by name, creating an 8-bit one when unseen.
func (sb *SetBuilder) register(name string) *Register {
	if sb.set == nil || name == "" {
		return nil
	}
	if r := sb.set.Register(name); r != nil {
		return r
	}
	sb.Register(name, 8)
	return sb.set.registers[len(sb.set.registers)-1]
}

// Command declares a command valid for the given widths. names are short to
// long display names.
func (sb *SetBuilder) Command(opcode byte, widths WidthMask, names ...string) *CommandBuilder {
	if sb.set == nil || widths == 0 {
		return &CommandBuilder{sb: sb}
	}
	cmd := &Command{
		Opcode: opcode,
		Widths: widths,
		Names:  append([]string(nil), names...),
	}
	sb.set.commands = append(sb.set.commands, cmd)
	for _, w := range widths.Widths() {
		sb.set.byKey[Key{Opcode: opcode, Width: w}] = cmd
	}
	return &CommandBuilder{sb: sb, cmd: cmd}
}

// RegisterBuilder adds bit fields to one register.
type RegisterBuilder struct {
	sb  *SetBuilder
	reg *Register
}

// Bit declares a single-bit field.
func (rb *RegisterBuilder) Bit(bit uint8, name string) *RegisterBuilder {
	return rb.Bits(bit, bit, name)
}

// Bits declares the field [lower, upper].
func (rb *RegisterBuilder) Bits(upper, lower uint8, name string) *RegisterBuilder {
	if rb.reg == nil {
		return rb
	}
	f := BitField{Name: name, Upper: upper, Lower: lower}
	if f.Valid() {
		rb.reg.Fields = append(rb.reg.Fields, f)
	}
	return rb
}

// Register declares the next register of the same set.
func (rb *RegisterBuilder) Register(name string, bits int) *RegisterBuilder {
	return rb.sb.Register(name, bits)
}

// Command declares a command in the same set.
func (rb *RegisterBuilder) Command(opcode byte, widths WidthMask, names ...string) *CommandBuilder {
	return rb.sb.Command(opcode, widths, names...)
}

// CommandBuilder sets the features of one command.
type CommandBuilder struct {
	sb  *SetBuilder
	cmd *Command
}

// Declared returns the declared command, or nil for a no-op builder.
func (cb *CommandBuilder) Declared() *Command {
	return cb.cmd
}

// Address adds an address phase. Pass UseDefaultAddressBits to follow the
// configured default.
func (cb *CommandBuilder) Address(bits int) *CommandBuilder {
	if cb.cmd != nil {
		cb.cmd.HasAddress = true
		cb.cmd.AddressBits = bits
	}
	return cb
}

// ContinuousRead adds the M byte after the address.
func (cb *CommandBuilder) ContinuousRead() *CommandBuilder {
	if cb.cmd != nil {
		cb.cmd.ContinuousRead = true
	}
	return cb
}

// DummyBytes adds n dummy bytes before the data phase.
func (cb *CommandBuilder) DummyBytes(n int) *CommandBuilder {
	if cb.cmd != nil {
		cb.cmd.Dummy = DummyBytes
		cb.cmd.DummyCount = n
	}
	return cb
}

// DummyCycles adds n dummy clock cycles before the data phase. The count
// is in clock cycles, not bits: at quad width n cycles carry 4n bits.
func (cb *CommandBuilder) DummyCycles(n int) *CommandBuilder {
	if cb.cmd != nil {
		cb.cmd.Dummy = DummyCycles
		cb.cmd.DummyCount = n
	}
	return cb
}

// ArgsWidth switches the bus width for everything after the opcode.
func (cb *CommandBuilder) ArgsWidth(w BusWidth) *CommandBuilder {
	if cb.cmd != nil && w.Valid() {
		cb.cmd.ArgsWidth = w
	}
	return cb
}

// DataWidth switches the bus width for the data phase.
func (cb *CommandBuilder) DataWidth(w BusWidth) *CommandBuilder {
	if cb.cmd != nil && w.Valid() {
		cb.cmd.DataWidth = w
	}
	return cb
}

// ModeChange makes w the default bus width once the command completes.
func (cb *CommandBuilder) ModeChange(w BusWidth) *CommandBuilder {
	if cb.cmd != nil && w.Valid() {
		cb.cmd.ModeChange = w
	}
	return cb
}

// Op sets the data phase kind.
func (cb *CommandBuilder) Op(op Op) *CommandBuilder {
	if cb.cmd != nil {
		cb.cmd.Op = op
	}
	return cb
}

// RegisterRead attaches a register read from the device. Unknown register
// names create an 8-bit register.
func (cb *CommandBuilder) RegisterRead(name string) *CommandBuilder {
	return cb.registerOp(name, OpRegisterRead)
}

// RegisterWrite attaches a register written to the device.
func (cb *CommandBuilder) RegisterWrite(name string) *CommandBuilder {
	return cb.registerOp(name, OpRegisterWrite)
}

func (cb *CommandBuilder) registerOp(name string, op Op) *CommandBuilder {
	if cb.cmd == nil {
		return cb
	}
	reg := cb.sb.register(name)
	if reg == nil {
		return cb
	}
	cb.cmd.Registers = append(cb.cmd.Registers, reg)
	cb.cmd.Op = op
	return cb
}

// Command declares the next command of the same set.
func (cb *CommandBuilder) Command(opcode byte, widths WidthMask, names ...string) *CommandBuilder {
	return cb.sb.Command(opcode, widths, names...)
}

// Register declares a register in the same set.
func (cb *CommandBuilder) Register(name string, bits int) *RegisterBuilder {
	return cb.sb.Register(name, bits)
}
