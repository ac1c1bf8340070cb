// Package capture holds recorded logic-analyzer lines and the Channel
// interface the SPI flash analyzer reads them through.
//
// # Capture File Format
//
// Captures are stored as text, one statement per line. "#" starts a comment.
//
//	rate 100000000
//	line 0 CS 1
//	line 1 CLK 0
//	line 2 IO0 0
//	edges 0 100 2300
//	edges 1 110 120 130 140
//
// Where:
//   - rate is the sample rate in samples per second (optional)
//   - line declares a channel number, a display name and its level before the first edge
//   - edges lists the samples at which a channel toggles; the list may span several edges lines
//
// # Usage
//
// Parse a capture and walk one line:
//
//	c, err := capture.Parse("boot.cap")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	clk := c.Channel(1)
//	for clk.MoreTransitions() {
//	    clk.AdvanceToNextEdge()
//	    fmt.Println(clk.SampleNumber(), clk.BitState())
//	}
//
// Build a capture in memory and save it:
//
//	c := capture.New(1000000)
//	cs := c.AddLine(0, "CS", capture.High)
//	cs.Set(10, capture.Low)
//	cs.Set(90, capture.High)
//	err := capture.WriteFile("out.cap", c)
//
// # Error Handling
//
// ParseReader returns a *ParseError carrying the line number for:
//   - Unknown keywords
//   - Malformed numbers or levels
//   - Channels declared twice, or edges for undeclared channels
//   - Edges that do not increase
package capture
