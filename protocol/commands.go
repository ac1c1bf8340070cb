package protocol

// Default returns a dictionary holding the built-in command sets.
func Default() *Dictionary {
	return NewDefaultBuilder().Build()
}

// NewDefaultBuilder returns a builder preloaded with the built-in command
// sets, ready for further declarations (for example from a script).
func NewDefaultBuilder() *Builder {
	b := NewBuilder()
	declareGeneric(b)
	declareWinbond(b)
	declareMacronix(b)
	return b
}

// declareGeneric declares the baseline command set every vendor set derives from.
func declareGeneric(b *Builder) {
	s := b.CommandSet(ManufacturerGeneric, "not set", NoParent)

	s.Register("Status Register-1", 8).Bit(7, "SRP0").Bit(1, "WEL").Bit(0, "BUSY")
	s.Register("Status Register-2", 8).Bit(7, "SUS").Bit(1, "QE").Bit(0, "SRP1")

	s.Command(CmdWriteEnable, Widths14, "WREN", "Write Enable")
	s.Command(CmdWriteDisable, Widths14, "WRDI", "Write Disable")
	s.Command(CmdReadStatus1, Widths14, "RDSR", "Read status register-1").RegisterRead("Status Register-1")
	s.Command(CmdReadStatus2, Widths14, "RS2", "Read status register-2").RegisterRead("Status Register-2")
	s.Command(CmdWriteStatus, Widths14, "WS1", "Write status register-1").
		RegisterWrite("Status Register-1").
		RegisterWrite("Status Register-2")
	s.Command(0x31, Widths14, "WS2", "Write status register-2").RegisterWrite("Status Register-2")
	s.Command(CmdReadData, Widths1, "R", "Read Data").Address(UseDefaultAddressBits).Op(OpDataRead)
	s.Command(CmdFastRead, Widths1, "R", "Fast Read").Address(UseDefaultAddressBits).DummyBytes(1).Op(OpDataRead)
	s.Command(CmdFastReadDualOutput, Widths1, "R", "R 1-1-2", "Fast Read Dual Output").
		Address(UseDefaultAddressBits).DummyBytes(1).DataWidth(Dual).Op(OpDataRead)
	s.Command(CmdFastReadQuadOutput, Widths1, "R", "R 1-1-4", "Fast Read Quad Output").
		Address(UseDefaultAddressBits).DummyBytes(1).DataWidth(Quad).Op(OpDataRead)
	s.Command(CmdFastReadDualIO, Widths1, "R", "R 1-2-2", "Fast Read Dual I/O").
		ArgsWidth(Dual).Address(UseDefaultAddressBits).ContinuousRead().DummyBytes(1).Op(OpDataRead)
	s.Command(CmdFastReadQuadIO, Widths1, "R", "R 1-4-4", "Fast Read Quad I/O").
		ArgsWidth(Quad).Address(UseDefaultAddressBits).ContinuousRead().DummyBytes(2).Op(OpDataRead)
	s.Command(CmdPageProgram, Widths14, "PP", "Page Program").Address(UseDefaultAddressBits).Op(OpDataWrite)
	s.Command(CmdSectorErase, Widths14, "SE", "Sector erase").Address(UseDefaultAddressBits)
	s.Command(0x52, Widths14, "BE", "Block erase").Address(UseDefaultAddressBits)
	s.Command(0xD8, Widths14, "BE", "BE64", "64KB Block erase").Address(UseDefaultAddressBits)
	s.Command(0x60, Widths14, "CE", "Chip erase")
	s.Command(CmdChipErase, Widths14, "CE", "Chip erase")
	s.Command(0x5A, Widths1, "SFDP", "Read SFDP Register").Address(UseDefaultAddressBits).DummyBytes(1).Op(OpDataRead)
	s.Command(0x75, Widths14, "SUSP", "Erase/Program Suspend")
	s.Command(0x7A, Widths14, "RESM", "Erase/Program Resume")
	s.Command(0xB9, Widths14, "DN", "Power Down")
	s.Command(CmdReadJedecID, Widths14, "JID", "Read JEDEC ID").Op(OpDataRead)
	s.Command(0x90, Widths1, "MFID", "Read manufacturer, Device ID").Address(UseDefaultAddressBits).Op(OpDataRead)
	s.Command(0x66, Widths14, "RSTEN", "Enable Reset")
	s.Command(0x99, Widths14, "RST", "Reset")
	s.Command(0xAB, Widths14, "UP", "Release Power Down").DummyBytes(3).Op(OpDataRead)
}

func declareWinbond(b *Builder) {
	s := b.CommandSet(ManufacturerWinbond, "Winbond", ManufacturerGeneric)

	s.Register("Status Register-1", 8).
		Bit(7, "SRP0").Bit(6, "TPB").Bit(5, "TP").Bits(4, 2, "BPB").Bit(1, "WEL").Bit(0, "BUSY")
	s.Register("Status Register-2", 8).
		Bit(7, "SUS").Bit(6, "CMP").Bits(5, 3, "LB").Bit(1, "QE").Bit(0, "SRP1")
	s.Register("Status Register-3", 8).
		Bit(7, "HOLD/RESET").Bits(6, 5, "DRV").Bit(2, "WPS")

	s.Command(0x50, Widths14, "WRENVSR", "Write Enable for Volatile Status Register")
	s.Command(CmdReadStatus1, Widths14, "RDSR", "Read status register-1").RegisterRead("Status Register-1")
	s.Command(CmdReadStatus2, Widths14, "RS2", "Read status register-2").RegisterRead("Status Register-2")
	s.Command(0x15, Widths14, "RS3", "Read status register-3").RegisterRead("Status Register-3")
	s.Command(CmdWriteStatus, Widths14, "WS1", "Write status register-1").
		RegisterWrite("Status Register-1").
		RegisterWrite("Status Register-2")
	s.Command(0x31, Widths14, "WS2", "Write status register-2").RegisterWrite("Status Register-2")
	s.Command(0x11, Widths14, "WS3", "Write status register-3").RegisterWrite("Status Register-3")
	s.Command(CmdFastReadQuadIO, Widths4, "R", "R 1-4-4", "Fast Read Quad I/O").
		ArgsWidth(Quad).Address(UseDefaultAddressBits).ContinuousRead().Op(OpDataRead)
	s.Command(0xE7, Widths14, "R", "R 1-4-4", "Word Read Quad I/O").
		ArgsWidth(Quad).Address(UseDefaultAddressBits).ContinuousRead().DummyBytes(1).Op(OpDataRead)
	s.Command(0xE3, Widths14, "R", "R 1-4-4", "Octal Word Read Quad I/O").
		ArgsWidth(Quad).Address(UseDefaultAddressBits).ContinuousRead().Op(OpDataRead)
	s.Command(0x36, Widths14, "Individual Block/Sector Lock").Address(UseDefaultAddressBits)
	s.Command(0x39, Widths14, "Individual Block/Sector Unlock").Address(UseDefaultAddressBits)
	s.Command(0x3D, Widths14, "Read Block/Sector Lock").Address(UseDefaultAddressBits)
	s.Command(0x7E, Widths14, "Global Block/Sector Lock")
	s.Command(0x98, Widths14, "Global Block/Sector Unlock")

	s.Command(0x77, Widths1, "Set Burst with Wrap").ArgsWidth(Quad).DummyBytes(3).Op(OpDataWrite)
	s.Command(0x32, Widths1, "QPP", "Quad Input Page Program").
		DataWidth(Quad).Address(UseDefaultAddressBits).Op(OpDataWrite)
	s.Command(0x92, Widths1, "MFID", "Read manufacturer, Device ID DUAL I/O").
		ArgsWidth(Dual).Address(UseDefaultAddressBits).ContinuousRead().Op(OpDataRead)
	s.Command(0x94, Widths1, "MFID", "Read manufacturer, Device ID QUAD I/O").
		ArgsWidth(Quad).Address(UseDefaultAddressBits).ContinuousRead().DummyBytes(2).Op(OpDataRead)
	s.Command(0x4B, Widths1, "ID", "Read Unique ID number").DummyBytes(4).Op(OpDataRead)
	s.Command(0x44, Widths1, "Erase Security Registers").Address(UseDefaultAddressBits)
	s.Command(0x42, Widths1, "Program Security Registers").Address(UseDefaultAddressBits).Op(OpDataWrite)
	s.Command(0x48, Widths1, "Read Security Registers").Address(UseDefaultAddressBits).DummyBytes(1).Op(OpDataRead)
	s.Command(CmdEnterQPI, Widths1, "*4", "QPI", "Enter QPI Mode").ModeChange(Quad)

	s.Command(CmdFastRead, Widths4, "R", "R 4-4-4", "Fast Read").Address(UseDefaultAddressBits).DummyBytes(1).Op(OpDataRead)
	s.Command(0xC0, Widths4, "SRP", "Set Read Parameters").Op(OpDataWrite)
	s.Command(0x0C, Widths4, "BRW", "Burst Read with Wrap").
		Address(UseDefaultAddressBits).ContinuousRead().DummyBytes(1).Op(OpDataRead)

	s.Command(CmdExitQPI, Widths14, "*1", "Exit QPI Mode").ModeChange(Single)
}

func declareMacronix(b *Builder) {
	s := b.CommandSet(ManufacturerMacronix, "Macronix", ManufacturerGeneric)

	s.Register("Configuration Register", 8).Bits(7, 6, "DC").Bit(3, "TB").Bits(2, 0, "ODS")
	s.Register("Security Register", 8).Bit(6, "E_FAIL").Bit(5, "P_FAIL").Bit(1, "LDSO").Bit(0, "SOI")

	s.Command(0x15, Widths1, "RDCR", "Read configuration register").RegisterRead("Configuration Register")
	s.Command(0xB0, Widths1, "SUSP", "Erase/Program Suspend")
	s.Command(0x30, Widths1, "RESM", "Erase/Program Resume")
	s.Command(0xC0, Widths1, "SBL", "Set Burst Length").Op(OpDataWrite)
	s.Command(0xB1, Widths1, "ENSO", "Enter Secured OTP")
	s.Command(0xC1, Widths1, "EXSO", "Exit Secured OTP")
	s.Command(0x2B, Widths1, "RDSCUR", "Read Security Register").RegisterRead("Security Register")
	s.Command(0x2F, Widths1, "WRSCUR", "Write Security Register")
	s.Command(0xAB, Widths1, "RES", "Read Electronic ID").DummyBytes(3).Op(OpDataRead)
	s.Command(0x32, Widths1, "QPP", "Quad Input Page Program").
		DataWidth(Quad).Address(UseDefaultAddressBits).Op(OpDataWrite)
}
