package protocol

import (
	"golang.org/x/exp/slices"
)

// Key identifies a command inside a command set.
type Key struct {
	Opcode byte
	Width  BusWidth
}

// CommandSet is the catalogue of one manufacturer. Lookups that miss fall
// back to the parent set, so a vendor set only declares what it adds or
// overrides.
type CommandSet struct {
	// ID is the manufacturer ID the set is selected by
	ID int

	// Name is the display name of the set
	Name string

	dict      *Dictionary
	parent    int // arena index, NoParent when root
	commands  []*Command
	byKey     map[Key]*Command
	registers []*Register
}

// Parent returns the parent set, or nil for a root set.
func (s *CommandSet) Parent() *CommandSet {
	if s.parent == NoParent || s.dict == nil {
		return nil
	}
	return s.dict.sets[s.parent]
}

// Command returns the command for opcode at bus width w, looking through
// the parent chain. It returns nil when no set in the chain declares it.
func (s *CommandSet) Command(w BusWidth, opcode byte) *Command {
	key := Key{Opcode: opcode, Width: w}
	for cs := s; cs != nil; cs = cs.Parent() {
		if cmd, ok := cs.byKey[key]; ok {
			return cmd
		}
	}
	return nil
}

// ValidOpcodes returns the sorted, de-duplicated opcodes recognised at bus
// width w by this set and its ancestors.
func (s *CommandSet) ValidOpcodes(w BusWidth) []byte {
	var ops []byte
	for cs := s; cs != nil; cs = cs.Parent() {
		for _, cmd := range cs.commands {
			if cmd.ValidFor(w) {
				ops = append(ops, cmd.Opcode)
			}
		}
	}
	slices.Sort(ops)
	return slices.Compact(ops)
}

// Commands returns the commands declared directly in this set, in
// declaration order.
func (s *CommandSet) Commands() []*Command {
	return s.commands
}

// Registers returns the registers declared directly in this set.
func (s *CommandSet) Registers() []*Register {
	return s.registers
}

// Register looks a register up by name in this set only.
func (s *CommandSet) Register(name string) *Register {
	for _, r := range s.registers {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Dictionary owns every command set. It is built once by a Builder and is
// read-only afterwards, so one Dictionary may be shared by any number of
// analyzers and generators.
type Dictionary struct {
	sets []*CommandSet
	byID map[int]int
}

// CommandSet returns the set registered under id, or nil.
func (d *Dictionary) CommandSet(id int) *CommandSet {
	ix, ok := d.byID[id]
	if !ok {
		return nil
	}
	return d.sets[ix]
}

// Select returns the set registered under id as the active set for a
// decoder or generator.
func (d *Dictionary) Select(id int) (*CommandSet, error) {
	cs := d.CommandSet(id)
	if cs == nil {
		return nil, &UnknownCommandSetError{ID: id}
	}
	return cs, nil
}

// CommandSets returns all sets in declaration order.
func (d *Dictionary) CommandSets() []*CommandSet {
	return d.sets
}
