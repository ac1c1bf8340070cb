package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/moffa90/go-spiflash/capture"
	"github.com/moffa90/go-spiflash/protocol"
	"github.com/moffa90/go-spiflash/simulation"
)

type simulateConfig struct {
	commonFlags
	count      int
	seed       int64
	bus        string
	mode       string
	addr       int
	halfPeriod uint64
	output     string
}

func runSimulate(ctx context.Context, args []string) error {
	cfg := &simulateConfig{}

	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	cfg.register(fs)
	fs.IntVar(&cfg.count, "n", 100, "Number of transactions to generate")
	fs.Int64Var(&cfg.seed, "seed", 1, "Random seed")
	fs.StringVar(&cfg.bus, "bus", "1", "Starting bus width (1, 2 or 4)")
	fs.StringVar(&cfg.mode, "mode", "0", "SPI mode (0 or 3)")
	fs.IntVar(&cfg.addr, "addr", protocol.DefaultAddressBits, "Default address width in bits (8, 16, 24 or 32)")
	fs.Uint64Var(&cfg.halfPeriod, "half-period", simulation.DefaultHalfPeriod, "Half clock period in samples")
	fs.StringVar(&cfg.output, "o", "", "Output capture file, - for stdout (required)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: spiflash simulate [flags] -o out.cap")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.output == "" {
		fs.Usage()
		return fmt.Errorf("-o flag is required")
	}
	if cfg.count < 0 {
		return fmt.Errorf("-n must not be negative")
	}
	switch cfg.addr {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("-addr must be 8, 16, 24 or 32, got %d", cfg.addr)
	}
	if cfg.halfPeriod == 0 {
		return fmt.Errorf("-half-period must be positive")
	}
	width, err := protocol.ParseBusWidth(cfg.bus)
	if err != nil {
		return err
	}
	mode, err := protocol.ParseSpiMode(cfg.mode)
	if err != nil {
		return err
	}
	if mode == protocol.ModeAuto {
		return fmt.Errorf("-mode must be 0 or 3 when generating")
	}

	log := newLogger(os.Stderr, cfg.verbose)

	dict, err := loadDictionary(ctx, cfg.script)
	if err != nil {
		return err
	}
	set, err := dict.Select(cfg.manufacturer)
	if err != nil {
		return err
	}

	gen := simulation.NewGenerator(set,
		simulation.WithSeed(cfg.seed),
		simulation.WithAddressBits(cfg.addr),
		simulation.WithBusWidth(width),
	)

	txs := make([]*simulation.Transaction, 0, cfg.count)
	for i := 0; i < cfg.count; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}
		tx := gen.Next()
		if tx.Command != nil {
			log.Debug("generated", "index", i, "command", tx.Command.String(),
				"opcode_sent", tx.OpcodeSent, "bytes", len(tx.Data))
		}
		txs = append(txs, tx)
	}

	r := simulation.NewRenderer(mode)
	r.HalfPeriod = cfg.halfPeriod
	c := r.Render(txs...)

	if cfg.output == "-" {
		err = capture.Write(os.Stdout, c)
	} else {
		err = capture.WriteFile(cfg.output, c)
	}
	if err != nil {
		return err
	}

	log.Info("capture written",
		"file", cfg.output,
		"command_set", set.Name,
		"transactions", len(txs),
		"samples", c.End(),
	)
	return nil
}
