package analyzer

import (
	"context"
	"fmt"

	"github.com/moffa90/go-spiflash/capture"
	"github.com/moffa90/go-spiflash/protocol"
)

// Clock regularity tolerances used to find transactions without chip select.
const (
	// dominantTolerance is the relative tolerance for the first half period
	dominantTolerance = 0.10

	// complementTolerance is the relative tolerance for the second half period
	complementTolerance = 0.30

	// toleranceSamples is the minimum absolute tolerance in samples
	toleranceSamples = 2

	// idlePeriods is the clock gap, in periods, that separates transactions
	idlePeriods = 2
)

// Source provides the recorded lines. Every Channel call must return an
// independent cursor positioned at sample 0, or nil when the channel does
// not exist. *capture.Capture implements Source.
type Source interface {
	Channel(index int) capture.Channel
}

// Analyzer decodes SPI flash traffic from a Source into frames.
//
// An Analyzer runs one decode at a time and is not safe for concurrent use.
// The Dictionary it reads from may be shared between analyzers.
type Analyzer struct {
	dict   *protocol.Dictionary
	src    Source
	config Config

	set   *protocol.CommandSet
	cs    capture.Channel
	clk   capture.Channel
	probe capture.Channel    // clock look-ahead when CS is not wired
	data  [4]capture.Channel // IO0..IO3

	cur      protocol.BusWidth
	def      protocol.BusWidth
	dirIn    bool
	locked   *protocol.Command
	idleHigh bool
	cache    clockCache

	txStart uint64
	txEnd   uint64
	carry   []uint64 // probed edges belonging to the next transaction

	transactions int
	frames       int
}

// New creates an Analyzer reading src and looking commands up in dict.
//
// Example:
//
//	c, _ := capture.Parse("boot.cap")
//	a := analyzer.New(protocol.Default(), c,
//	    analyzer.WithManufacturer(protocol.ManufacturerWinbond),
//	    analyzer.WithSpiMode(protocol.ModeAuto),
//	)
func New(dict *protocol.Dictionary, src Source, opts ...Option) *Analyzer {
	if dict == nil {
		panic("dictionary cannot be nil")
	}
	if src == nil {
		panic("source cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Analyzer{
		dict:   dict,
		src:    src,
		config: cfg,
	}
}

// Run decodes the whole source, sending frames and markers to sink in
// order. Malformed transactions never stop the run; it returns an error
// only for an unusable configuration or when ctx is cancelled, which is
// checked between transactions.
func (a *Analyzer) Run(ctx context.Context, sink Sink) error {
	if sink == nil {
		return fmt.Errorf("sink cannot be nil")
	}
	if err := a.setup(); err != nil {
		a.logError("cannot decode", "error", err)
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}
		if !a.nextTransaction() {
			break
		}

		end := a.decodeTransaction(sink)
		a.transactions++

		a.reportProgress(Progress{
			Sample:       end,
			Transactions: a.transactions,
			Frames:       a.frames,
		})
	}

	a.logInfo("decode complete",
		"command_set", a.set.Name,
		"transactions", a.transactions,
		"frames", a.frames,
	)

	return nil
}

// Decode runs the analyzer into a new Results.
func (a *Analyzer) Decode(ctx context.Context) (*Results, error) {
	r := &Results{}
	if err := a.Run(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// setup validates the configuration and resets the decoder state.
func (a *Analyzer) setup() error {
	cfg := a.config

	switch cfg.AddressBits {
	case 8, 16, 24, 32:
	default:
		return &ConfigError{Field: "AddressBits", Reason: fmt.Sprintf("%d is not one of 8, 16, 24, 32", cfg.AddressBits)}
	}
	if !cfg.BusWidth.Valid() {
		return &ConfigError{Field: "BusWidth", Reason: fmt.Sprintf("%v is not single, dual or quad", cfg.BusWidth)}
	}
	if cfg.Mode > protocol.ModeAuto {
		return &ConfigError{Field: "Mode", Reason: fmt.Sprintf("unsupported SPI mode %v", cfg.Mode)}
	}

	set, err := a.dict.Select(cfg.Manufacturer)
	if err != nil {
		return fmt.Errorf("select command set: %w", err)
	}
	a.set = set

	if cfg.Channels.Clock == NoChannel {
		return &ConfigError{Field: "Channels.Clock", Reason: "clock line is required"}
	}
	if a.clk = a.src.Channel(cfg.Channels.Clock); a.clk == nil {
		return &ConfigError{Field: "Channels.Clock", Reason: fmt.Sprintf("channel %d not in capture", cfg.Channels.Clock)}
	}

	a.cs, a.probe = nil, nil
	if cfg.Channels.CS != NoChannel {
		if a.cs = a.src.Channel(cfg.Channels.CS); a.cs == nil {
			return &ConfigError{Field: "Channels.CS", Reason: fmt.Sprintf("channel %d not in capture", cfg.Channels.CS)}
		}
	} else {
		a.probe = a.src.Channel(cfg.Channels.Clock)
	}

	for i, ch := range []int{cfg.Channels.MOSI, cfg.Channels.MISO, cfg.Channels.D2, cfg.Channels.D3} {
		a.data[i] = nil
		if ch == NoChannel {
			continue
		}
		if a.data[i] = a.src.Channel(ch); a.data[i] == nil {
			a.logDebug("data line not in capture, reading low", "io", i, "channel", ch)
		}
	}

	a.cur = cfg.BusWidth
	a.def = cfg.BusWidth
	a.dirIn = false
	a.locked = nil
	a.idleHigh = cfg.Mode.IdleClockHigh()
	a.cache.reset()
	a.txStart, a.txEnd = 0, 0
	a.carry = nil
	a.transactions, a.frames = 0, 0

	return nil
}

// nextTransaction moves to the next transaction and sets txStart and txEnd.
// It returns false when the source has no more transactions.
func (a *Analyzer) nextTransaction() bool {
	if a.cs == nil {
		return a.inferTransaction()
	}

	// Land on a clean falling edge: if CS is already active, skip to its
	// release first.
	if a.cs.BitState() == capture.Low {
		if !a.cs.MoreTransitions() {
			return false
		}
		a.cs.AdvanceToNextEdge()
	}
	if !a.cs.MoreTransitions() {
		return false
	}
	a.cs.AdvanceToNextEdge()
	a.txStart = a.cs.SampleNumber()

	a.txEnd = unbounded
	if a.cs.MoreTransitions() {
		a.cs.AdvanceToNextEdge()
		a.txEnd = a.cs.SampleNumber()
	}
	return true
}

// inferTransaction finds the next burst of regular clock pulses. A window
// of two clock periods is accepted once its half periods agree; otherwise
// it slides one period. The burst ends at a clock gap of more than
// idlePeriods periods.
func (a *Analyzer) inferTransaction() bool {
	win := a.carry
	a.carry = nil

	for {
		for len(win) < 5 && a.probe.MoreTransitions() {
			a.probe.AdvanceToNextEdge()
			win = append(win, a.probe.SampleNumber())
		}
		if len(win) < 5 {
			// The capture ends inside a burst shorter than the window.
			if len(win) >= 3 && within(win[1]-win[0], win[2]-win[1], complementTolerance) {
				a.txStart, a.txEnd = win[0], unbounded
				return true
			}
			return false
		}

		d0, d1 := win[1]-win[0], win[2]-win[1]
		d2, d3 := win[3]-win[2], win[4]-win[3]
		if within(d0, d2, dominantTolerance) && within(d1, d3, complementTolerance) {
			break
		}

		// A burst shorter than the window, followed by idle clock.
		if within(d0, d1, complementTolerance) {
			period := d0 + d1
			for i := 2; i < 4; i++ {
				if win[i+1]-win[i] > idlePeriods*period {
					a.txStart = win[0]
					a.txEnd = win[i] + period
					a.carry = append([]uint64(nil), win[i+1:]...)
					return true
				}
			}
		}

		win = win[2:]
	}

	period := win[2] - win[0]
	a.txStart = win[0]
	last := win[4]

	for a.probe.MoreTransitions() {
		a.probe.AdvanceToNextEdge()
		s := a.probe.SampleNumber()
		if s-last > idlePeriods*period {
			a.txEnd = last + period
			a.carry = []uint64{s}
			return true
		}
		last = s
	}

	a.txEnd = unbounded
	return true
}

// within reports whether x and y agree to rel, or toleranceSamples.
func within(x, y uint64, rel float64) bool {
	lo, hi := x, y
	if lo > hi {
		lo, hi = hi, lo
	}
	tol := uint64(rel * float64(hi))
	if tol < toleranceSamples {
		tol = toleranceSamples
	}
	return hi-lo <= tol
}

// checkClockPolarity compares the clock level at the transaction start
// with the SPI mode. Auto mode adopts the observed level.
func (a *Analyzer) checkClockPolarity(sink Sink) {
	high := a.clockHighAt(a.txStart)

	if a.config.Mode == protocol.ModeAuto {
		a.idleHigh = high
		return
	}
	if high == a.idleHigh {
		return
	}

	sink.AddMarker(Marker{
		Sample:  a.txStart,
		Channel: a.config.Channels.Clock,
		Kind:    MarkerClockPolarity,
	})
	a.logInfo("clock idle level does not match SPI mode",
		"sample", a.txStart,
		"mode", a.config.Mode.String(),
		"clock_high", high,
	)
}

// transaction accumulates the summary of one transaction.
type transaction struct {
	cmd       *protocol.Command
	opcode    byte
	address   uint64
	count     int
	end       uint64
	truncated bool
}

// decodeTransaction decodes the current transaction and returns the last
// sample it covered.
func (a *Analyzer) decodeTransaction(sink Sink) uint64 {
	a.cache.pruneBelow(a.txStart)
	a.checkClockPolarity(sink)
	a.dirIn = false

	tx := transaction{end: a.txStart}

	if a.locked != nil {
		tx.cmd = a.locked
		tx.opcode = a.locked.Opcode
	} else {
		v, start, end, err := a.extractBits(8)
		if err != nil {
			a.logDebug("transaction without opcode", "sample", a.txStart, "error", err)
			a.cur = a.def
			return a.boundary(end)
		}
		tx.opcode = byte(v)
		tx.end = end
		a.emit(sink, Frame{Start: start, End: end, Kind: FrameOpcode, Data1: v, Width: a.cur})

		tx.cmd = a.set.Command(a.cur, tx.opcode)
		if tx.cmd == nil {
			a.logDebug("unknown opcode", "opcode", fmt.Sprintf("0x%02X", tx.opcode),
				"width", a.cur.String(), "sample", start)
			a.captureRaw(sink, &tx)
			return a.finish(sink, &tx)
		}
	}

	a.decodeCommand(sink, &tx)

	if w := tx.cmd.ModeChange; w.Valid() {
		a.def = w
	}

	return a.finish(sink, &tx)
}

// decodeCommand walks the phases of a resolved command.
func (a *Analyzer) decodeCommand(sink Sink, tx *transaction) {
	cmd := tx.cmd

	if w := cmd.ArgsWidth; w.Valid() {
		a.cur = w
	}

	if cmd.HasAddress {
		bits := cmd.ResolveAddressBits(a.config.AddressBits)
		v, start, end, err := a.extractBits(bits)
		if err != nil {
			a.truncated(tx, err)
			if cmd.ContinuousRead {
				a.locked = nil
			}
			return
		}
		tx.address, tx.end = v, end
		a.emit(sink, Frame{Start: start, End: end, Kind: FrameAddress, Data1: v, Data2: uint64(bits), Width: a.cur})
	}

	if cmd.ContinuousRead {
		v, start, end, err := a.extractBits(8)
		if err != nil {
			a.locked = nil
			a.truncated(tx, err)
			return
		}
		if protocol.ContinuesRead(byte(v)) {
			a.locked = cmd
		} else {
			a.locked = nil
		}
		tx.end = end
		a.emit(sink, Frame{Start: start, End: end, Kind: FrameMode, Data1: v, Width: a.cur})
	}

	var dummyBits int
	switch cmd.Dummy {
	case protocol.DummyBytes:
		dummyBits = cmd.DummyCount * 8
	case protocol.DummyCycles:
		dummyBits = cmd.DummyCount * int(a.cur)
	}
	if dummyBits > 0 {
		_, start, end, err := a.extractBits(dummyBits)
		if err != nil {
			a.truncated(tx, err)
			return
		}
		tx.end = end
		a.emit(sink, Frame{Start: start, End: end, Kind: FrameDummy, Data1: uint64(dummyBits), Width: a.cur})
	}

	if w := cmd.DataWidth; w.Valid() {
		a.cur = w
	}
	a.dirIn = cmd.Op.IsRead()

	var kind FrameKind
	switch cmd.Op {
	case protocol.OpDataRead:
		kind = FrameDataIn
	case protocol.OpDataWrite:
		kind = FrameDataOut
	case protocol.OpRegisterRead:
		kind = FrameRegisterIn
	case protocol.OpRegisterWrite:
		kind = FrameRegisterOut
	default:
		return
	}

	for ix := 0; ; ix++ {
		v, start, end, err := a.extractBits(8)
		if err != nil {
			// Running out of clocks ends the data phase; only a partial
			// byte counts as truncation.
			if te, ok := err.(*TruncatedError); ok && te.Partial() {
				a.truncated(tx, err)
			}
			return
		}
		f := Frame{Start: start, End: end, Kind: kind, Data1: v, Width: a.cur}
		if n := cmd.RegisterCount(); cmd.Op.IsRegister() && n > 0 {
			f.Register = cmd.Register(ix)
			f.Data2 = uint64(ix % n)
		}
		a.emit(sink, f)
		tx.count++
		tx.end = end
	}
}

// captureRaw records both candidate lines until the transaction runs out.
func (a *Analyzer) captureRaw(sink Sink, tx *transaction) {
	for {
		mosi, miso, start, end, err := a.extractMosiMiso()
		if err != nil {
			if te, ok := err.(*TruncatedError); ok && te.Partial() {
				a.truncated(tx, err)
			}
			return
		}
		a.emit(sink, Frame{Start: start, End: end, Kind: FrameRaw, Data1: uint64(mosi), Data2: uint64(miso), Width: a.cur})
		tx.count++
		tx.end = end
	}
}

func (a *Analyzer) truncated(tx *transaction, err error) {
	tx.truncated = true
	a.logDebug("transaction truncated", "opcode", fmt.Sprintf("0x%02X", tx.opcode), "error", err)
}

// finish emits the summary frame and restores the bus width.
func (a *Analyzer) finish(sink Sink, tx *transaction) uint64 {
	a.cur = a.def
	a.dirIn = false

	end := a.boundary(tx.end)
	a.emit(sink, Frame{
		Start:     a.txStart,
		End:       end,
		Kind:      FrameCommand,
		Data1:     tx.address<<24 | uint64(tx.count)&0xFFFFFF,
		Data2:     uint64(tx.opcode),
		Width:     a.def,
		Command:   tx.cmd,
		Truncated: tx.truncated,
	})
	return end
}

// boundary returns the chip select release, or last when it never comes.
func (a *Analyzer) boundary(last uint64) uint64 {
	if a.txEnd != unbounded {
		return a.txEnd
	}
	if last < a.txStart {
		return a.txStart
	}
	return last
}

func (a *Analyzer) emit(sink Sink, f Frame) {
	sink.AddFrame(f)
	a.frames++
}

// reportProgress calls the progress callback if configured.
func (a *Analyzer) reportProgress(progress Progress) {
	if a.config.ProgressCallback != nil {
		a.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (a *Analyzer) logDebug(msg string, keysAndValues ...interface{}) {
	if a.config.Logger != nil {
		a.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (a *Analyzer) logInfo(msg string, keysAndValues ...interface{}) {
	if a.config.Logger != nil {
		a.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (a *Analyzer) logError(msg string, keysAndValues ...interface{}) {
	if a.config.Logger != nil {
		a.config.Logger.Error(msg, keysAndValues...)
	}
}
