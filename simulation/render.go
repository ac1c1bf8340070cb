package simulation

import (
	"fmt"

	"github.com/moffa90/go-spiflash/capture"
	"github.com/moffa90/go-spiflash/protocol"
)

// Channels the renderer records on. They match analyzer.DefaultChannels.
const (
	ChannelCS    = 0
	ChannelClock = 1
	ChannelIO0   = 2
	ChannelIO1   = 3
	ChannelIO2   = 4
	ChannelIO3   = 5
)

// Renderer defaults.
const (
	// DefaultHalfPeriod is the half clock period in samples
	DefaultHalfPeriod = 4

	// DefaultSampleRate is the sample rate written to rendered captures
	DefaultSampleRate = 100000000
)

// Renderer turns generated transactions into recorded lines.
type Renderer struct {
	// Mode selects the clock idle level; Mode3 idles high
	Mode protocol.SpiMode

	// HalfPeriod is the half clock period in samples
	HalfPeriod uint64

	// SampleRate is stored in the capture
	SampleRate uint64
}

// NewRenderer returns a renderer with the default timing.
func NewRenderer(mode protocol.SpiMode) *Renderer {
	return &Renderer{
		Mode:       mode,
		HalfPeriod: DefaultHalfPeriod,
		SampleRate: DefaultSampleRate,
	}
}

// Render lays the transactions out back to back. Chip select falls half a
// period before the first step and rises half a period after the last one;
// in mode 0 the clock is returned low before chip select rises.
func (r *Renderer) Render(txs ...*Transaction) *capture.Capture {
	h := r.HalfPeriod
	if h == 0 {
		h = DefaultHalfPeriod
	}
	idle := capture.Low
	if r.Mode.IdleClockHigh() {
		idle = capture.High
	}

	c := capture.New(r.SampleRate)
	cs := c.AddLine(ChannelCS, "CS", capture.High)
	clk := c.AddLine(ChannelClock, "CLK", idle)
	var io [4]*capture.Line
	for i := range io {
		io[i] = c.AddLine(ChannelIO0+i, fmt.Sprintf("IO%d", i), capture.Low)
	}

	t := h
	for _, tx := range txs {
		t += uint64(tx.Delay) * h
		cs.Set(t, capture.Low)

		for _, st := range tx.Steps {
			t += h
			clk.Set(t, level(st.Clock))
			for i, l := range io {
				l.Set(t, level(st.IO&(1<<uint(i)) != 0))
			}
		}

		if clk.Final() != idle {
			t += h
			clk.Set(t, idle)
		}

		t += h
		cs.Set(t, capture.High)
	}

	return c
}

func level(high bool) capture.BitState {
	if high {
		return capture.High
	}
	return capture.Low
}
