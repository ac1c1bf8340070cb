package script

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/moffa90/go-spiflash/protocol"
)

// DeclarationError describes an invalid command set declaration.
type DeclarationError struct {
	// Set is the ID of the command set being declared
	Set int

	// Opcode is the command being declared, or -1 outside a command
	Opcode int

	// Reason describes the problem
	Reason string
}

func (e *DeclarationError) Error() string {
	if e.Opcode >= 0 {
		return fmt.Sprintf("command set 0x%02X opcode 0x%02X: %s", e.Set, e.Opcode, e.Reason)
	}
	return fmt.Sprintf("command set 0x%02X: %s", e.Set, e.Reason)
}

// IsDeclarationError returns true if the error is a DeclarationError.
func IsDeclarationError(err error) bool {
	_, ok := err.(*DeclarationError)
	return ok
}

var commandKeys = map[string]bool{
	"opcode": true, "widths": true, "names": true, "address": true,
	"continuous_read": true, "dummy_bytes": true, "dummy_cycles": true,
	"op": true, "args_width": true, "data_width": true, "mode_change": true,
	"register_read": true, "register_write": true,
}

var setKeys = map[string]bool{
	"id": true, "name": true, "parent": true, "registers": true, "commands": true,
}

// LoadFile runs the Lua script at path against b.
func LoadFile(ctx context.Context, b *protocol.Builder, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	return Load(ctx, b, f, path)
}

// Load runs a Lua script that declares command sets on b. name labels the
// chunk in error messages. Only the base, table, string and math libraries
// are available to the script.
//
// Example:
//
//	b := protocol.NewDefaultBuilder()
//	if err := script.LoadFile(ctx, b, "micron.lua"); err != nil {
//	    return err
//	}
//	dict := b.Build()
func Load(ctx context.Context, b *protocol.Builder, r io.Reader, name string) error {
	if b == nil {
		panic("builder cannot be nil")
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			return fmt.Errorf("open %s library: %w", lib.name, err)
		}
	}

	L.SetContext(ctx)

	ld := &loader{b: b}
	L.SetGlobal("command_set", L.NewFunction(ld.commandSet))

	fn, err := L.Load(r, name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, 0, nil); err != nil {
		if ld.err != nil {
			return fmt.Errorf("%s: %w", name, ld.err)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

type loader struct {
	b   *protocol.Builder
	err error
}

// commandSet is the Lua command_set{...} function.
func (ld *loader) commandSet(L *lua.LState) int {
	t := L.CheckTable(1)
	if err := ld.declareSet(t); err != nil {
		ld.err = err
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (ld *loader) declareSet(t *lua.LTable) error {
	id, ok, err := intField(t, "id")
	if err != nil || !ok {
		return &DeclarationError{Set: -1, Opcode: -1, Reason: "id must be an integer"}
	}
	fail := func(format string, args ...interface{}) error {
		return &DeclarationError{Set: id, Opcode: -1, Reason: fmt.Sprintf(format, args...)}
	}

	if key := unknownKey(t, setKeys); key != "" {
		return fail("unknown key %q", key)
	}

	name, ok := t.RawGetString("name").(lua.LString)
	if !ok || name == "" {
		return fail("name must be a non-empty string")
	}

	parent, ok, err := intField(t, "parent")
	if err != nil {
		return fail("parent: %v", err)
	}
	if !ok {
		parent = protocol.NoParent
	}

	sb := ld.b.CommandSet(id, string(name), parent)
	set := sb.Set()
	if set == nil {
		return fail("builder already finished")
	}
	if parent != protocol.NoParent && (set.Parent() == nil || set.Parent().ID != parent) {
		return fail("unknown parent 0x%02X", parent)
	}

	if err := eachTable(t, "registers", func(rt *lua.LTable) error {
		return declareRegister(sb, rt)
	}); err != nil {
		return fail("%v", err)
	}

	err = eachTable(t, "commands", func(ct *lua.LTable) error {
		op, ok, err := intField(ct, "opcode")
		if err != nil || !ok || op < 0 || op > 0xFF {
			return fail("command opcode must be a byte")
		}
		if err := declareCommand(sb, byte(op), ct); err != nil {
			return &DeclarationError{Set: id, Opcode: op, Reason: err.Error()}
		}
		return nil
	})
	if err != nil && !IsDeclarationError(err) {
		return fail("%v", err)
	}
	return err
}

func declareRegister(sb *protocol.SetBuilder, t *lua.LTable) error {
	name, ok := t.RawGetString("name").(lua.LString)
	if !ok || name == "" {
		return fmt.Errorf("register name must be a non-empty string")
	}
	bits, ok, err := intField(t, "bits")
	if err != nil {
		return fmt.Errorf("register %q bits: %w", name, err)
	}
	if !ok {
		bits = 8
	}
	if bits <= 0 || bits > 64 {
		return fmt.Errorf("register %q has %d bits", name, bits)
	}

	rb := sb.Register(string(name), bits)

	// Each field is {bit, "NAME"} or {upper, lower, "NAME"}.
	return eachTable(t, "fields", func(ft *lua.LTable) error {
		var nums []int
		var fieldName string
		for i := 1; i <= ft.Len(); i++ {
			switch v := ft.RawGetInt(i).(type) {
			case lua.LNumber:
				n, err := toInt(v)
				if err != nil {
					return fmt.Errorf("register %q field: %w", name, err)
				}
				nums = append(nums, n)
			case lua.LString:
				fieldName = string(v)
			}
		}
		if fieldName == "" || len(nums) == 0 || len(nums) > 2 {
			return fmt.Errorf("register %q: field must be {bit, name} or {upper, lower, name}", name)
		}
		upper, lower := nums[0], nums[0]
		if len(nums) == 2 {
			lower = nums[1]
		}
		if lower < 0 || upper < lower || upper >= bits {
			return fmt.Errorf("register %q: field %s out of range", name, fieldName)
		}
		rb.Bits(uint8(upper), uint8(lower), fieldName)
		return nil
	})
}

func declareCommand(sb *protocol.SetBuilder, opcode byte, t *lua.LTable) error {
	if key := unknownKey(t, commandKeys); key != "" {
		return fmt.Errorf("unknown key %q", key)
	}

	wv := t.RawGetString("widths")
	if wv == lua.LNil {
		return fmt.Errorf("widths missing")
	}
	widths, err := protocol.ParseWidthMask(lua.LVAsString(wv))
	if err != nil {
		return err
	}

	names, err := stringList(t, "names")
	if err != nil {
		return err
	}
	cb := sb.Command(opcode, widths, names...)

	switch v := t.RawGetString("address").(type) {
	case *lua.LNilType:
	case lua.LBool:
		if v {
			cb.Address(protocol.UseDefaultAddressBits)
		}
	case lua.LNumber:
		bits, err := toInt(v)
		if err != nil || bits <= 0 || bits%8 != 0 || bits > 32 {
			return fmt.Errorf("address must be true or 8, 16, 24 or 32 bits")
		}
		cb.Address(bits)
	default:
		return fmt.Errorf("address must be true or a bit count")
	}

	if lua.LVAsBool(t.RawGetString("continuous_read")) {
		cb.ContinuousRead()
	}

	if n, ok, err := intField(t, "dummy_bytes"); err != nil {
		return fmt.Errorf("dummy_bytes: %w", err)
	} else if ok {
		cb.DummyBytes(n)
	}
	if n, ok, err := intField(t, "dummy_cycles"); err != nil {
		return fmt.Errorf("dummy_cycles: %w", err)
	} else if ok {
		cb.DummyCycles(n)
	}

	for _, f := range []struct {
		key string
		set func(protocol.BusWidth) *protocol.CommandBuilder
	}{
		{"args_width", cb.ArgsWidth},
		{"data_width", cb.DataWidth},
		{"mode_change", cb.ModeChange},
	} {
		v := t.RawGetString(f.key)
		if v == lua.LNil {
			continue
		}
		w, err := protocol.ParseBusWidth(lua.LVAsString(v))
		if err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
		f.set(w)
	}

	if v := t.RawGetString("op"); v != lua.LNil {
		op, err := protocol.ParseOp(lua.LVAsString(v))
		if err != nil {
			return err
		}
		if op.IsRegister() {
			return fmt.Errorf("use register_read or register_write for %s", op)
		}
		cb.Op(op)
	}

	reads, err := stringList(t, "register_read")
	if err != nil {
		return err
	}
	for _, r := range reads {
		cb.RegisterRead(r)
	}
	writes, err := stringList(t, "register_write")
	if err != nil {
		return err
	}
	for _, r := range writes {
		cb.RegisterWrite(r)
	}
	if len(reads) > 0 && len(writes) > 0 {
		return fmt.Errorf("command both reads and writes registers")
	}

	return nil
}

// intField reads an integer field. ok is false when the key is absent.
func intField(t *lua.LTable, key string) (n int, ok bool, err error) {
	v := t.RawGetString(key)
	if v == lua.LNil {
		return 0, false, nil
	}
	num, isNum := v.(lua.LNumber)
	if !isNum {
		return 0, true, fmt.Errorf("%s is not a number", key)
	}
	n, err = toInt(num)
	return n, true, err
}

func toInt(v lua.LNumber) (int, error) {
	f := float64(v)
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int(f), nil
}

// stringList reads a string or an array of strings.
func stringList(t *lua.LTable, key string) ([]string, error) {
	switch v := t.RawGetString(key).(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LString:
		return []string{string(v)}, nil
	case *lua.LTable:
		var out []string
		for i := 1; i <= v.Len(); i++ {
			s, ok := v.RawGetInt(i).(lua.LString)
			if !ok {
				return nil, fmt.Errorf("%s[%d] is not a string", key, i)
			}
			out = append(out, string(s))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a string or a list of strings", key)
	}
}

// eachTable calls fn for every table in the array under key.
func eachTable(t *lua.LTable, key string, fn func(*lua.LTable) error) error {
	switch v := t.RawGetString(key).(type) {
	case *lua.LNilType:
		return nil
	case *lua.LTable:
		for i := 1; i <= v.Len(); i++ {
			item, ok := v.RawGetInt(i).(*lua.LTable)
			if !ok {
				return fmt.Errorf("%s[%d] is not a table", key, i)
			}
			if err := fn(item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%s must be a list of tables", key)
	}
}

// unknownKey returns the first string key of t not in allowed.
func unknownKey(t *lua.LTable, allowed map[string]bool) string {
	var bad string
	t.ForEach(func(k, _ lua.LValue) {
		if s, ok := k.(lua.LString); ok && bad == "" && !allowed[string(s)] {
			bad = string(s)
		}
	})
	return bad
}
