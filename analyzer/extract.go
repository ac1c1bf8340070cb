package analyzer

import (
	"math"

	"github.com/moffa90/go-spiflash/capture"
	"github.com/moffa90/go-spiflash/protocol"
)

const (
	// clockCacheSize bounds the clock look-ahead
	clockCacheSize = 64

	// maxGroupsPerFetch is how many bit groups one cache fill can cover
	maxGroupsPerFetch = clockCacheSize / 2

	// unbounded is the end of a transaction whose chip select never rises
	unbounded = math.MaxUint64
)

type clockEdge struct {
	sample uint64
	rising bool
}

// clockCache is a fixed ring of upcoming clock edges.
type clockCache struct {
	buf  [clockCacheSize]clockEdge
	head int
	n    int
}

func (c *clockCache) len() int {
	return c.n
}

func (c *clockCache) at(i int) clockEdge {
	return c.buf[(c.head+i)%clockCacheSize]
}

func (c *clockCache) push(e clockEdge) bool {
	if c.n == clockCacheSize {
		return false
	}
	c.buf[(c.head+c.n)%clockCacheSize] = e
	c.n++
	return true
}

func (c *clockCache) drop(k int) {
	if k > c.n {
		k = c.n
	}
	c.head = (c.head + k) % clockCacheSize
	c.n -= k
}

// pruneBelow drops edges before sample s.
func (c *clockCache) pruneBelow(s uint64) {
	for c.n > 0 && c.at(0).sample < s {
		c.drop(1)
	}
}

// countBefore returns the number of cached edges before sample s.
func (c *clockCache) countBefore(s uint64) int {
	i := 0
	for i < c.n && c.at(i).sample < s {
		i++
	}
	return i
}

func (c *clockCache) reset() {
	c.head, c.n = 0, 0
}

// cacheClock buffers up to n clock edges at or after lower, dropping cached
// edges below it first. It stops early when the clock has no more edges.
func (a *Analyzer) cacheClock(n int, lower uint64) {
	a.cache.pruneBelow(lower)
	if n > clockCacheSize {
		n = clockCacheSize
	}
	for a.cache.len() < n && a.clk.MoreTransitions() {
		a.clk.AdvanceToNextEdge()
		s := a.clk.SampleNumber()
		if s < lower {
			continue
		}
		a.cache.push(clockEdge{sample: s, rising: a.clk.BitState() == capture.High})
	}
}

// clockHighAt returns the clock level just before sample s.
func (a *Analyzer) clockHighAt(s uint64) bool {
	a.cache.pruneBelow(s)
	if a.cache.len() > 0 {
		return !a.cache.at(0).rising
	}
	if s > 0 {
		a.clk.AdvanceToAbsPosition(s - 1)
	}
	return a.clk.BitState() == capture.High
}

// extractBits clocks in bits at the current bus width, MSB first, sampling
// the data lines on rising clock edges. It returns the value and the sample
// range of the edges used. When the transaction ends first it returns a
// *TruncatedError; the edges of a partial group are still consumed.
func (a *Analyzer) extractBits(bits int) (value uint64, start, end uint64, err error) {
	w := int(a.cur)
	groups := bits / w
	first := true

	for groups > 0 {
		g := groups
		if g > maxGroupsPerFetch {
			g = maxGroupsPerFetch
		}
		need := 2 * g

		a.cacheClock(need, a.txStart)
		if avail := a.cache.countBefore(a.txEnd); avail < need {
			a.cache.drop(avail)
			return value, start, end, &TruncatedError{Needed: need, Available: avail, Boundary: a.txEnd}
		}

		for i := 0; i < need; i++ {
			e := a.cache.at(i)
			if first {
				start = e.sample
				first = false
			}
			end = e.sample
			if e.rising {
				value = value<<uint(w) | a.sampleGroup(e.sample)
			}
		}
		a.cache.drop(need)
		groups -= g
	}

	return value, start, end, nil
}

// extractMosiMiso clocks in one byte on MOSI and MISO independently,
// without committing to a bus width.
func (a *Analyzer) extractMosiMiso() (mosi, miso byte, start, end uint64, err error) {
	const need = 16

	a.cacheClock(need, a.txStart)
	if avail := a.cache.countBefore(a.txEnd); avail < need {
		a.cache.drop(avail)
		return 0, 0, 0, 0, &TruncatedError{Needed: need, Available: avail, Boundary: a.txEnd}
	}

	for i := 0; i < need; i++ {
		e := a.cache.at(i)
		if i == 0 {
			start = e.sample
		}
		end = e.sample
		if e.rising {
			mosi = mosi<<1 | byte(levelAt(a.data[0], e.sample))
			miso = miso<<1 | byte(levelAt(a.data[1], e.sample))
		}
	}
	a.cache.drop(need)

	return mosi, miso, start, end, nil
}

// sampleGroup reads one bit group at sample s. In single mode the line
// depends on the direction: MOSI towards the device, MISO from it.
func (a *Analyzer) sampleGroup(s uint64) uint64 {
	switch a.cur {
	case protocol.Dual:
		return levelAt(a.data[1], s)<<1 | levelAt(a.data[0], s)
	case protocol.Quad:
		return levelAt(a.data[3], s)<<3 | levelAt(a.data[2], s)<<2 |
			levelAt(a.data[1], s)<<1 | levelAt(a.data[0], s)
	default:
		if a.dirIn {
			return levelAt(a.data[1], s)
		}
		return levelAt(a.data[0], s)
	}
}

// levelAt reads ch at sample s. An unwired line reads low.
func levelAt(ch capture.Channel, s uint64) uint64 {
	if ch == nil {
		return 0
	}
	ch.AdvanceToAbsPosition(s)
	return uint64(ch.BitState())
}
