// Package analyzer decodes SPI flash bus traffic from recorded logic lines.
//
// # Overview
//
// The analyzer walks a capture one transaction at a time:
//   - Finding the transaction window from chip select, or from clock timing when CS is not wired
//   - Clocking in the opcode and resolving it in the selected command set
//   - Decoding the address, M byte, dummy and data phases the command declares
//   - Tracking bus width changes and continuous read mode across transactions
//
// Every transaction ends with a FrameCommand summary. Transactions that end
// early are still summarised; transactions too short to carry an opcode
// produce no frames at all.
//
// # Basic Usage
//
//	c, err := capture.Parse("boot.cap")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	a := analyzer.New(protocol.Default(), c,
//	    analyzer.WithManufacturer(protocol.ManufacturerWinbond),
//	)
//
//	results, err := a.Decode(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range results.Summaries() {
//	    fmt.Println(f)
//	}
//
// # Configuration Options
//
//	a := analyzer.New(dict, c,
//	    analyzer.WithManufacturer(protocol.ManufacturerMacronix),
//	    analyzer.WithAddressBits(32),
//	    analyzer.WithSpiMode(protocol.ModeAuto),
//	    analyzer.WithBusWidth(protocol.Quad),
//	    analyzer.WithChannels(channels),
//	    analyzer.WithLogger(myLogger),
//	    analyzer.WithProgressCallback(progressFunc),
//	)
//
// # Error Handling
//
// Problems in the traffic never stop a run:
//   - Truncated transactions are summarised with Frame.Truncated set
//   - Unknown opcodes are followed by FrameRaw frames holding MOSI and MISO bytes
//   - A clock idle level that contradicts the SPI mode adds a Marker on the clock channel
//
// Run returns a *ConfigError for an unusable configuration, a wrapped
// *protocol.UnknownCommandSetError for an unknown manufacturer, and a
// "cancelled" error wrapping ctx.Err() when the context ends.
package analyzer
