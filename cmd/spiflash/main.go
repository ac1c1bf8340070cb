// Command spiflash generates and decodes SPI flash captures.
//
// Usage:
//
//	spiflash simulate [flags] -o out.cap
//	spiflash decode [flags] file.cap...
//	spiflash sets [flags]
//
// Run "spiflash <command> -h" for the flags of each command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/moffa90/go-spiflash/protocol"
	"github.com/moffa90/go-spiflash/script"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: spiflash <command> [flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  simulate   generate random flash traffic into a capture file")
	fmt.Fprintln(os.Stderr, "  decode     decode one or more capture files")
	fmt.Fprintln(os.Stderr, "  sets       list the command sets")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "simulate":
		err = runSimulate(ctx, os.Args[2:])
	case "decode":
		err = runDecode(ctx, os.Args[2:])
	case "sets":
		err = runSets(ctx, os.Args[2:])
	case "help", "-h", "-help", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// commonFlags are shared by every command.
type commonFlags struct {
	script       string
	manufacturer int
	verbose      bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	c.manufacturer = protocol.ManufacturerGeneric
	fs.StringVar(&c.script, "script", "", "Lua file declaring extra command sets")
	fs.Func("manufacturer", "command set `id`, decimal or 0x hex (default 0)", func(s string) error {
		id, err := strconv.ParseInt(s, 0, 32)
		if err != nil {
			return fmt.Errorf("invalid manufacturer id %q", s)
		}
		c.manufacturer = int(id)
		return nil
	})
	fs.BoolVar(&c.verbose, "v", false, "Enable debug logging")
}

// loadDictionary builds the built-in command sets plus any declared by the
// script, and checks the result.
func loadDictionary(ctx context.Context, scriptPath string) (*protocol.Dictionary, error) {
	b := protocol.NewDefaultBuilder()
	if scriptPath != "" {
		if err := script.LoadFile(ctx, b, scriptPath); err != nil {
			return nil, err
		}
	}

	dict := b.Build()
	if err := dict.Validate(); err != nil {
		return nil, err
	}
	return dict, nil
}
