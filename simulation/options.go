package simulation

import "github.com/moffa90/go-spiflash/protocol"

// Config holds the generator configuration.
type Config struct {
	// Seed seeds the random source; equal seeds give equal traffic
	Seed int64

	// AddressBits is the address width of commands that use the default
	AddressBits int

	// BusWidth is the bus width at the start of the traffic
	BusWidth protocol.BusWidth
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Seed:        1,
		AddressBits: protocol.DefaultAddressBits,
		BusWidth:    protocol.Single,
	}
}

// Option is a functional option for configuring the Generator.
type Option func(*Config)

// WithSeed sets the random seed.
//
// Example:
//
//	gen := simulation.NewGenerator(set, simulation.WithSeed(time.Now().UnixNano()))
func WithSeed(seed int64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

// WithAddressBits sets the default address width. Only multiples of 8 up
// to 32 are accepted.
func WithAddressBits(bits int) Option {
	return func(c *Config) {
		if bits > 0 && bits <= protocol.MaxAddressBits && bits%8 == 0 {
			c.AddressBits = bits
		}
	}
}

// WithBusWidth sets the starting bus width.
func WithBusWidth(w protocol.BusWidth) Option {
	return func(c *Config) {
		if w.Valid() {
			c.BusWidth = w
		}
	}
}
