// Package script declares extra command sets from Lua.
//
// A script calls command_set once per set. Sets may derive from the
// built-in ones, so a new vendor only lists what differs from its parent:
//
//	command_set{
//	    id = 0x20, name = "Micron", parent = 0,
//	    registers = {
//	        { name = "Flag Status Register", bits = 8,
//	          fields = { {7, "READY"}, {5, 4, "ERASE/PROG"} } },
//	    },
//	    commands = {
//	        { opcode = 0x70, widths = "14", names = {"RFSR", "Read flag status register"},
//	          register_read = "Flag Status Register" },
//	        { opcode = 0xEB, widths = "1", names = {"4READ"}, address = true,
//	          args_width = 4, continuous_read = true, dummy_bytes = 2, op = "data_read" },
//	    },
//	}
//
// # Command Keys
//
//   - opcode: command byte (required)
//   - widths: bus widths the command is valid at, "1", "14", "124" (required)
//   - names: short to long display names, a string or a list
//   - address: true for the configured default width, or 8, 16, 24, 32
//   - continuous_read: the address is followed by an M byte
//   - dummy_bytes, dummy_cycles: dummy phase length
//   - op: "data_read" or "data_write"
//   - args_width, data_width, mode_change: 1, 2 or 4
//   - register_read, register_write: register names, a string or a list
//
// Unknown keys are errors, so misspelled keys do not silently drop a feature.
package script
