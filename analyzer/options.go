package analyzer

import "github.com/moffa90/go-spiflash/protocol"

// NoChannel marks a line that is not wired.
const NoChannel = -1

// Channels maps the logical SPI lines to capture channel numbers.
// Any line except Clock may be NoChannel.
type Channels struct {
	// CS is chip select, active low
	CS int

	// Clock is SCLK
	Clock int

	// MOSI is IO0, the host output in single mode
	MOSI int

	// MISO is IO1, the device output in single mode
	MISO int

	// D2 is IO2 (WP#), used in quad mode
	D2 int

	// D3 is IO3 (HOLD#), used in quad mode
	D3 int
}

// DefaultChannels returns CS, Clock, MOSI, MISO, D2 and D3 on channels 0 to 5.
func DefaultChannels() Channels {
	return Channels{CS: 0, Clock: 1, MOSI: 2, MISO: 3, D2: 4, D3: 5}
}

// Config holds the analyzer configuration.
type Config struct {
	// Manufacturer selects the command set
	Manufacturer int

	// AddressBits is the address width of commands that use the default (8, 16, 24 or 32)
	AddressBits int

	// Mode is the SPI clock mode, or protocol.ModeAuto to follow the capture
	Mode protocol.SpiMode

	// BusWidth is the bus width at the start of the capture
	BusWidth protocol.BusWidth

	// Channels maps SPI lines to capture channels
	Channels Channels

	// ProgressCallback is called after every transaction (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging decode events (optional)
	Logger Logger
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Manufacturer: protocol.ManufacturerGeneric,
		AddressBits:  protocol.DefaultAddressBits,
		Mode:         protocol.Mode0,
		BusWidth:     protocol.Single,
		Channels:     DefaultChannels(),
	}
}

// Option is a functional option for configuring the Analyzer.
type Option func(*Config)

// WithManufacturer selects the command set by manufacturer ID.
//
// Example:
//
//	a := analyzer.New(dict, c, analyzer.WithManufacturer(protocol.ManufacturerWinbond))
func WithManufacturer(id int) Option {
	return func(c *Config) {
		c.Manufacturer = id
	}
}

// WithAddressBits sets the default address width.
func WithAddressBits(bits int) Option {
	return func(c *Config) {
		c.AddressBits = bits
	}
}

// WithSpiMode sets the expected clock mode.
func WithSpiMode(mode protocol.SpiMode) Option {
	return func(c *Config) {
		c.Mode = mode
	}
}

// WithBusWidth sets the bus width in effect at the start of the capture,
// e.g. protocol.Quad for a capture taken while the device is in QPI mode.
func WithBusWidth(w protocol.BusWidth) Option {
	return func(c *Config) {
		c.BusWidth = w
	}
}

// WithChannels sets the line to channel mapping.
//
// Example:
//
//	ch := analyzer.DefaultChannels()
//	ch.CS = analyzer.NoChannel
//	a := analyzer.New(dict, c, analyzer.WithChannels(ch))
func WithChannels(ch Channels) Option {
	return func(c *Config) {
		c.Channels = ch
	}
}

// WithProgressCallback sets a callback function to track decode progress.
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for decode events.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
