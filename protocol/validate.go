package protocol

// Validate reports declaration mistakes that the builder silently accepted.
// It is meant for tests over built-in and scripted dictionaries.
func (d *Dictionary) Validate() error {
	var problems []Problem

	// Parents are declared before their children, so the set graph is a
	// tree by construction and needs no cycle check.
	for _, cs := range d.sets {
		for _, cmd := range cs.commands {
			report := func(reason string) {
				problems = append(problems, Problem{Set: cs.ID, Opcode: cmd.Opcode, Reason: reason})
			}

			if len(cmd.Names) == 0 {
				report("command has no name")
			}
			if cmd.HasAddress && cmd.AddressBits != UseDefaultAddressBits &&
				(cmd.AddressBits%8 != 0 || cmd.AddressBits > MaxAddressBits || cmd.AddressBits < 0) {
				report("address width must be a multiple of 8 up to 32 bits")
			}
			if cmd.Dummy != DummyNone && cmd.DummyCount <= 0 {
				report("dummy phase without a count")
			}
			if cmd.Op.IsRegister() && len(cmd.Registers) == 0 {
				report("register operation without registers")
			}
			if !cmd.Op.IsRegister() && len(cmd.Registers) > 0 {
				report("registers attached to a non-register operation")
			}
			if cmd.ContinuousRead && !cmd.HasAddress {
				report("continuous read without an address phase")
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
