package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/sync/errgroup"

	"github.com/moffa90/go-spiflash/analyzer"
	"github.com/moffa90/go-spiflash/capture"
	"github.com/moffa90/go-spiflash/protocol"
)

type decodeConfig struct {
	commonFlags
	bus       string
	mode      string
	addr      int
	channels  analyzer.Channels
	summaries bool
	dump      bool
	jobs      int
}

// dumper prints decode results with -dump.
var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	MaxDepth:                3,
}

func runDecode(ctx context.Context, args []string) error {
	cfg := &decodeConfig{channels: analyzer.DefaultChannels()}

	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	cfg.register(fs)
	fs.StringVar(&cfg.bus, "bus", "1", "Bus width at the start of the capture (1, 2 or 4)")
	fs.StringVar(&cfg.mode, "mode", "0", "SPI mode (0, 3 or auto)")
	fs.IntVar(&cfg.addr, "addr", protocol.DefaultAddressBits, "Default address width in bits (8, 16, 24 or 32)")
	fs.IntVar(&cfg.channels.CS, "cs", cfg.channels.CS, "Chip select channel, -1 when not recorded")
	fs.IntVar(&cfg.channels.Clock, "clk", cfg.channels.Clock, "Clock channel")
	fs.IntVar(&cfg.channels.MOSI, "mosi", cfg.channels.MOSI, "IO0/MOSI channel, -1 when not recorded")
	fs.IntVar(&cfg.channels.MISO, "miso", cfg.channels.MISO, "IO1/MISO channel, -1 when not recorded")
	fs.IntVar(&cfg.channels.D2, "d2", cfg.channels.D2, "IO2 channel, -1 when not recorded")
	fs.IntVar(&cfg.channels.D3, "d3", cfg.channels.D3, "IO3 channel, -1 when not recorded")
	fs.BoolVar(&cfg.summaries, "summary", false, "Print only one line per transaction")
	fs.BoolVar(&cfg.dump, "dump", false, "Dump the decoded frames as Go values")
	fs.IntVar(&cfg.jobs, "j", runtime.NumCPU(), "Files decoded in parallel")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: spiflash decode [flags] file.cap...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		return fmt.Errorf("no capture files given")
	}
	width, err := protocol.ParseBusWidth(cfg.bus)
	if err != nil {
		return err
	}
	mode, err := protocol.ParseSpiMode(cfg.mode)
	if err != nil {
		return err
	}
	if cfg.jobs < 1 {
		cfg.jobs = 1
	}

	log := newLogger(os.Stderr, cfg.verbose)

	dict, err := loadDictionary(ctx, cfg.script)
	if err != nil {
		return err
	}

	opts := []analyzer.Option{
		analyzer.WithManufacturer(cfg.manufacturer),
		analyzer.WithAddressBits(cfg.addr),
		analyzer.WithSpiMode(mode),
		analyzer.WithBusWidth(width),
		analyzer.WithChannels(cfg.channels),
	}

	// Every file shares the read-only dictionary.
	results := make([]*analyzer.Results, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.jobs)
	for i, path := range files {
		g.Go(func() error {
			r, err := decodeFile(gctx, dict, path, log.with("file", path), opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, path := range files {
		if len(files) > 1 {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("==> %s <==\n", path)
		}
		if err := printResults(os.Stdout, results[i], cfg); err != nil {
			return err
		}
	}
	return nil
}

func decodeFile(ctx context.Context, dict *protocol.Dictionary, path string, log *logrusLogger, opts []analyzer.Option) (*analyzer.Results, error) {
	c, err := capture.Parse(path)
	if err != nil {
		return nil, err
	}

	opts = append(opts[:len(opts):len(opts)],
		analyzer.WithLogger(log),
		analyzer.WithProgressCallback(func(p analyzer.Progress) {
			if p.Transactions%1000 == 0 {
				log.Debug("progress", "sample", p.Sample, "transactions", p.Transactions, "frames", p.Frames)
			}
		}),
	)
	return analyzer.New(dict, c, opts...).Decode(ctx)
}

// printResults writes the frames and markers of one capture as a table.
func printResults(w io.Writer, r *analyzer.Results, cfg *decodeConfig) error {
	frames := r.Frames
	if cfg.summaries {
		frames = r.Summaries()
	}

	if cfg.dump {
		dumper.Fdump(w, frames)
		if len(r.Markers) > 0 {
			dumper.Fdump(w, r.Markers)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tKIND\tWIDTH\tDETAIL")
	for _, f := range frames {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", f.Start, f.End, f.Kind, f.Width, f.Describe())
	}
	for _, m := range r.Markers {
		fmt.Fprintf(tw, "%d\t%d\t%s\t\tchannel %d\n", m.Sample, m.Sample, m.Kind, m.Channel)
	}
	return tw.Flush()
}
