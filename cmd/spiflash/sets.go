package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/moffa90/go-spiflash/protocol"
)

type setsConfig struct {
	commonFlags
	commands bool
	dump     bool
}

func runSets(ctx context.Context, args []string) error {
	cfg := &setsConfig{}

	fs := flag.NewFlagSet("sets", flag.ContinueOnError)
	cfg.register(fs)
	fs.BoolVar(&cfg.commands, "commands", false, "List the commands each set declares")
	fs.BoolVar(&cfg.dump, "dump", false, "Dump the selected set as Go values")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: spiflash sets [flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	dict, err := loadDictionary(ctx, cfg.script)
	if err != nil {
		return err
	}

	if cfg.dump {
		set, err := dict.Select(cfg.manufacturer)
		if err != nil {
			return err
		}
		dumper.Fdump(os.Stdout, set.Commands(), set.Registers())
		return nil
	}

	return printSets(os.Stdout, dict, cfg.commands)
}

func printSets(w io.Writer, dict *protocol.Dictionary, commands bool) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPARENT\tCOMMANDS\tREGISTERS")
	for _, set := range dict.CommandSets() {
		parent := "-"
		if p := set.Parent(); p != nil {
			parent = fmt.Sprintf("0x%02X", p.ID)
		}
		fmt.Fprintf(tw, "0x%02X\t%s\t%s\t%d\t%d\n",
			set.ID, set.Name, parent, len(set.Commands()), len(set.Registers()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if !commands {
		return nil
	}

	for _, set := range dict.CommandSets() {
		fmt.Fprintf(w, "\n%s (0x%02X)\n", set.Name, set.ID)
		tw = tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "OPCODE\tWIDTHS\tNAME\tPHASES\tDESCRIPTION")
		for _, cmd := range set.Commands() {
			fmt.Fprintf(tw, "0x%02X\t%s\t%s\t%s\t%s\n",
				cmd.Opcode, cmd.Widths, cmd.ShortName(), phases(cmd), cmd.Name())
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// phases summarises the transaction layout of cmd, e.g. "args@4 addr M dummy2B data_read".
func phases(cmd *protocol.Command) string {
	var p []string
	if cmd.ArgsWidth.Valid() {
		p = append(p, fmt.Sprintf("args@%d", cmd.ArgsWidth))
	}
	if cmd.HasAddress {
		if cmd.AddressBits == protocol.UseDefaultAddressBits {
			p = append(p, "addr")
		} else {
			p = append(p, fmt.Sprintf("addr%d", cmd.AddressBits))
		}
	}
	if cmd.ContinuousRead {
		p = append(p, "M")
	}
	switch cmd.Dummy {
	case protocol.DummyBytes:
		p = append(p, fmt.Sprintf("dummy%dB", cmd.DummyCount))
	case protocol.DummyCycles:
		p = append(p, fmt.Sprintf("dummy%dC", cmd.DummyCount))
	}
	if cmd.Op != protocol.OpNone {
		op := cmd.Op.String()
		if cmd.DataWidth.Valid() {
			op += fmt.Sprintf("@%d", cmd.DataWidth)
		}
		p = append(p, op)
	}
	for _, r := range cmd.Registers {
		p = append(p, "["+r.Name+"]")
	}
	if cmd.ModeChange.Valid() {
		p = append(p, fmt.Sprintf("mode->%d", cmd.ModeChange))
	}
	if len(p) == 0 {
		return "-"
	}
	return strings.Join(p, " ")
}
