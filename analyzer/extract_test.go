package analyzer

import (
	"testing"

	"github.com/moffa90/go-spiflash/capture"
	"github.com/moffa90/go-spiflash/protocol"
)

func TestClockCacheRing(t *testing.T) {
	var c clockCache

	for i := 0; i < clockCacheSize; i++ {
		if !c.push(clockEdge{sample: uint64(10 * i)}) {
			t.Fatalf("push %d rejected", i)
		}
	}
	if c.push(clockEdge{sample: 9999}) {
		t.Error("push into a full cache accepted")
	}

	c.drop(3)
	if c.len() != clockCacheSize-3 || c.at(0).sample != 30 {
		t.Fatalf("after drop: len=%d first=%d", c.len(), c.at(0).sample)
	}

	// Wrap around the end of the buffer.
	for i := 0; i < 3; i++ {
		if !c.push(clockEdge{sample: uint64(10 * (clockCacheSize + i))}) {
			t.Fatalf("wrapped push %d rejected", i)
		}
	}
	if last := c.at(c.len() - 1).sample; last != uint64(10*(clockCacheSize+2)) {
		t.Errorf("last = %d", last)
	}

	if n := c.countBefore(100); n != 7 {
		t.Errorf("countBefore(100) = %d, want 7", n)
	}

	c.pruneBelow(105)
	if c.at(0).sample != 110 {
		t.Errorf("after prune first = %d, want 110", c.at(0).sample)
	}

	c.drop(1000)
	if c.len() != 0 {
		t.Errorf("drop past the end left %d edges", c.len())
	}

	c.push(clockEdge{sample: 1})
	c.reset()
	if c.len() != 0 {
		t.Error("reset left edges")
	}
}

func TestWithin(t *testing.T) {
	tests := []struct {
		x, y uint64
		rel  float64
		want bool
	}{
		{x: 100, y: 100, rel: dominantTolerance, want: true},
		{x: 100, y: 110, rel: dominantTolerance, want: true},
		{x: 100, y: 120, rel: dominantTolerance, want: false},
		{x: 100, y: 125, rel: complementTolerance, want: true},
		{x: 4, y: 6, rel: dominantTolerance, want: true}, // absolute floor
		{x: 4, y: 7, rel: dominantTolerance, want: false},
		{x: 7, y: 4, rel: dominantTolerance, want: false},
	}

	for _, tt := range tests {
		if got := within(tt.x, tt.y, tt.rel); got != tt.want {
			t.Errorf("within(%d, %d, %.2f) = %v, want %v", tt.x, tt.y, tt.rel, got, tt.want)
		}
	}
}

// clockedCapture builds a mode 0 capture with chip select low from 10 to
// csHigh and one clock cycle every 10 samples from sample 20. io[i] lists
// the IO0..IO3 levels for each cycle.
func clockedCapture(csHigh uint64, io [][4]capture.BitState) *capture.Capture {
	c := capture.New(1000)
	cs := c.AddLine(0, "CS", capture.High)
	clk := c.AddLine(1, "CLK", capture.Low)
	var lines [4]*capture.Line
	for i := range lines {
		lines[i] = c.AddLine(2+i, "", capture.Low)
	}

	cs.Set(10, capture.Low)
	for n, levels := range io {
		s := uint64(20 + 10*n)
		for i, l := range lines {
			l.Set(s-2, levels[i])
		}
		clk.Set(s, capture.High)
		clk.Set(s+5, capture.Low)
	}
	cs.Set(csHigh, capture.High)
	return c
}

func setupAnalyzer(t *testing.T, c *capture.Capture, opts ...Option) *Analyzer {
	t.Helper()
	a := New(protocol.Default(), c, opts...)
	if err := a.setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if !a.nextTransaction() {
		t.Fatal("no transaction")
	}
	return a
}

func bitsOf(v uint64, n, line int) [][4]capture.BitState {
	out := make([][4]capture.BitState, n)
	for i := 0; i < n; i++ {
		if v>>(uint(n-1-i))&1 == 1 {
			out[i][line] = capture.High
		}
	}
	return out
}

func TestExtractBitsSingle(t *testing.T) {
	c := clockedCapture(200, bitsOf(0xA5, 8, 0))
	a := setupAnalyzer(t, c)

	v, start, end, err := a.extractBits(8)
	if err != nil {
		t.Fatalf("extractBits: %v", err)
	}
	if v != 0xA5 {
		t.Errorf("value = 0x%02X, want 0xA5", v)
	}
	if start != 20 || end != 95 {
		t.Errorf("range = [%d, %d], want [20, 95]", start, end)
	}
}

func TestExtractBitsDirection(t *testing.T) {
	c := clockedCapture(200, bitsOf(0x3C, 8, 1))
	a := setupAnalyzer(t, c)
	a.dirIn = true

	v, _, _, err := a.extractBits(8)
	if err != nil || v != 0x3C {
		t.Errorf("extractBits = 0x%02X, %v; want 0x3C from MISO", v, err)
	}
}

func TestExtractBitsQuad(t *testing.T) {
	var io [][4]capture.BitState
	for _, nibble := range []uint8{0x9, 0xF} {
		var levels [4]capture.BitState
		for i := range levels {
			if nibble&(1<<uint(i)) != 0 {
				levels[i] = capture.High
			}
		}
		io = append(io, levels)
	}
	a := setupAnalyzer(t, clockedCapture(200, io), WithBusWidth(protocol.Quad))

	v, _, _, err := a.extractBits(8)
	if err != nil || v != 0x9F {
		t.Errorf("extractBits = 0x%02X, %v; want 0x9F", v, err)
	}
}

func TestExtractBitsLongerThanCache(t *testing.T) {
	// 48 cycles is more than one cache fill.
	const cycles = 48
	pattern := uint64(0xF0F0_1234_ABCD)
	c := clockedCapture(20+10*cycles+10, bitsOf(pattern, cycles, 0))
	a := setupAnalyzer(t, c)

	v, _, end, err := a.extractBits(cycles)
	if err != nil {
		t.Fatalf("extractBits: %v", err)
	}
	if v != pattern {
		t.Errorf("value = 0x%X, want 0x%X", v, pattern)
	}
	if end != uint64(20+10*(cycles-1)+5) {
		t.Errorf("end = %d", end)
	}
}

func TestExtractBitsTruncated(t *testing.T) {
	// Chip select rises after three cycles.
	c := clockedCapture(48, bitsOf(0xFF, 8, 0))
	a := setupAnalyzer(t, c)

	_, _, _, err := a.extractBits(8)
	if !IsTruncated(err) {
		t.Fatalf("err = %v, want truncation", err)
	}
	te := err.(*TruncatedError)
	if te.Needed != 16 || te.Available != 6 || te.Boundary != 48 || !te.Partial() {
		t.Errorf("TruncatedError = %+v", te)
	}
	if a.cache.countBefore(48) != 0 {
		t.Error("truncation must consume the partial group")
	}

	_, _, _, err = a.extractBits(8)
	te, ok := err.(*TruncatedError)
	if !ok || te.Partial() {
		t.Errorf("second extract = %v, want clean end", err)
	}
}

func TestExtractMosiMiso(t *testing.T) {
	io := bitsOf(0x12, 8, 0)
	for i, l := range bitsOf(0xED, 8, 1) {
		io[i][1] = l[1]
	}
	a := setupAnalyzer(t, clockedCapture(200, io))

	mosi, miso, _, _, err := a.extractMosiMiso()
	if err != nil {
		t.Fatalf("extractMosiMiso: %v", err)
	}
	if mosi != 0x12 || miso != 0xED {
		t.Errorf("mosi=0x%02X miso=0x%02X", mosi, miso)
	}
}

func TestLevelAtUnwiredLine(t *testing.T) {
	if v := levelAt(nil, 100); v != 0 {
		t.Errorf("levelAt(nil) = %d", v)
	}
}
