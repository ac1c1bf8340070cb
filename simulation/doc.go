// Package simulation generates random SPI flash traffic from a command set
// and renders it as recorded logic lines.
//
// The generator follows the same rules the analyzer decodes by: bus width
// switches after the opcode and before the data phase, permanent mode
// changes, and continuous read mode, where an M byte with bits 5:4 = 0b10
// makes the next transaction skip the opcode. Decoding rendered traffic
// must give back the generated commands, which makes the pair a test
// oracle for the analyzer.
//
// # Usage
//
//	dict := protocol.Default()
//	set, _ := dict.Select(protocol.ManufacturerWinbond)
//
//	gen := simulation.NewGenerator(set, simulation.WithSeed(7))
//	var txs []*simulation.Transaction
//	for i := 0; i < 100; i++ {
//	    txs = append(txs, gen.Next())
//	}
//
//	c := simulation.NewRenderer(protocol.Mode0).Render(txs...)
//	err := capture.WriteFile("random.cap", c)
//
// # Line Assignment
//
// Each bit group takes one clock cycle, rendered as a clock-low step then
// a clock-high step with the data lines stable across both:
//   - single: host to device on IO0 (MOSI), device to host on IO1 (MISO)
//   - dual: IO1..IO0, most significant bit on IO1
//   - quad: IO3..IO0, most significant bit on IO3
//
// Dummy cycles hold every data line high.
package simulation
