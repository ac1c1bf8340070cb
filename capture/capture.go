package capture

import (
	"sort"

	"golang.org/x/exp/slices"
)

// BitState is the logic level of a line.
type BitState uint8

// Logic levels.
const (
	Low  BitState = 0
	High BitState = 1
)

// Invert returns the opposite level.
func (b BitState) Invert() BitState {
	return b ^ 1
}

func (b BitState) String() string {
	if b == High {
		return "high"
	}
	return "low"
}

// Channel walks the transitions of one logic line. It only moves forward.
//
// A channel starts at sample 0. After AdvanceToNextEdge the channel sits on
// the edge, and BitState reports the level the edge switched to.
type Channel interface {
	// BitState returns the level at the current sample
	BitState() BitState

	// SampleNumber returns the current sample
	SampleNumber() uint64

	// AdvanceToNextEdge moves to the next transition. It does nothing when
	// MoreTransitions is false.
	AdvanceToNextEdge()

	// AdvanceToAbsPosition moves to sample n. Positions behind the current
	// sample are ignored.
	AdvanceToAbsPosition(n uint64)

	// MoreTransitions reports whether a transition lies after the current sample
	MoreTransitions() bool
}

// Line is one recorded logic line: a starting level and the samples at
// which it toggles.
type Line struct {
	// Name is a display name, e.g. "CS" or "IO2"
	Name string

	// Initial is the level before the first edge
	Initial BitState

	// Edges holds strictly increasing toggle samples
	Edges []uint64
}

// Final returns the level after the last edge.
func (l *Line) Final() BitState {
	if len(l.Edges)%2 == 1 {
		return l.Initial.Invert()
	}
	return l.Initial
}

// Level returns the level at sample n. An edge at n is already in effect.
func (l *Line) Level(n uint64) BitState {
	count := sort.Search(len(l.Edges), func(i int) bool { return l.Edges[i] > n })
	if count%2 == 1 {
		return l.Initial.Invert()
	}
	return l.Initial
}

// Set drives the line to level from sample n on. Samples must not go
// backwards; a toggle back at the sample of the last edge removes that edge,
// and earlier samples are ignored.
func (l *Line) Set(n uint64, level BitState) {
	if l.Final() == level {
		return
	}
	if last := len(l.Edges) - 1; last >= 0 && n <= l.Edges[last] {
		if n == l.Edges[last] {
			l.Edges = l.Edges[:last]
		}
		return
	}
	l.Edges = append(l.Edges, n)
}

// Cursor returns a new Channel positioned at sample 0.
func (l *Line) Cursor() *Cursor {
	c := &Cursor{line: l}
	c.AdvanceToAbsPosition(0)
	return c
}

// Cursor is the Channel implementation over a Line.
type Cursor struct {
	line   *Line
	sample uint64
	next   int // number of edges at or before sample
}

// BitState implements Channel.
func (c *Cursor) BitState() BitState {
	if c.next%2 == 1 {
		return c.line.Initial.Invert()
	}
	return c.line.Initial
}

// SampleNumber implements Channel.
func (c *Cursor) SampleNumber() uint64 {
	return c.sample
}

// AdvanceToNextEdge implements Channel.
func (c *Cursor) AdvanceToNextEdge() {
	if c.next >= len(c.line.Edges) {
		return
	}
	c.sample = c.line.Edges[c.next]
	c.next++
}

// AdvanceToAbsPosition implements Channel.
func (c *Cursor) AdvanceToAbsPosition(n uint64) {
	if n < c.sample {
		return
	}
	c.sample = n
	edges := c.line.Edges[c.next:]
	c.next += sort.Search(len(edges), func(i int) bool { return edges[i] > n })
}

// MoreTransitions implements Channel.
func (c *Cursor) MoreTransitions() bool {
	return c.next < len(c.line.Edges)
}

// Capture is a set of lines recorded at one sample rate, keyed by channel
// number.
type Capture struct {
	// SampleRate is in samples per second; 0 when unknown
	SampleRate uint64

	lines map[int]*Line
}

// New returns an empty capture.
func New(sampleRate uint64) *Capture {
	return &Capture{
		SampleRate: sampleRate,
		lines:      make(map[int]*Line),
	}
}

// AddLine declares channel ch, replacing any line already there.
func (c *Capture) AddLine(ch int, name string, initial BitState) *Line {
	l := &Line{Name: name, Initial: initial}
	c.lines[ch] = l
	return l
}

// Line returns the line recorded on channel ch, or nil.
func (c *Capture) Line(ch int) *Line {
	return c.lines[ch]
}

// Channels returns the recorded channel numbers in ascending order.
func (c *Capture) Channels() []int {
	chs := make([]int, 0, len(c.lines))
	for ch := range c.lines {
		chs = append(chs, ch)
	}
	slices.Sort(chs)
	return chs
}

// Channel returns a new cursor over channel ch, or nil when the channel was
// not recorded. Every call returns an independent cursor.
func (c *Capture) Channel(ch int) Channel {
	l, ok := c.lines[ch]
	if !ok {
		return nil
	}
	return l.Cursor()
}

// End returns the sample of the last edge on any line.
func (c *Capture) End() uint64 {
	var end uint64
	for _, l := range c.lines {
		if n := len(l.Edges); n > 0 && l.Edges[n-1] > end {
			end = l.Edges[n-1]
		}
	}
	return end
}
