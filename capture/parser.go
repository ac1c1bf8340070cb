package capture

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Capture file keywords.
const (
	keywordRate  = "rate"
	keywordLine  = "line"
	keywordEdges = "edges"

	// edgesPerLine is how many edge samples Write puts on one edges line
	edgesPerLine = 16
)

// ParseError reports a malformed capture file line.
type ParseError struct {
	// Line is the 1-based line number
	Line int

	// Err is the underlying problem
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError returns true if the error is a ParseError.
func IsParseError(err error) bool {
	_, ok := err.(*ParseError)
	return ok
}

// Parse reads a capture file from the given path.
//
// Example:
//
//	c, err := capture.Parse("boot.cap")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("channels: %v\n", c.Channels())
func Parse(path string) (*Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader reads a capture file from any io.Reader.
func ParseReader(r io.Reader) (*Capture, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	c := New(0)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case keywordRate:
			err = parseRate(c, fields[1:])
		case keywordLine:
			err = parseLine(c, fields[1:])
		case keywordEdges:
			err = parseEdges(c, fields[1:])
		default:
			err = fmt.Errorf("unknown keyword %q", fields[0])
		}
		if err != nil {
			return nil, &ParseError{Line: lineNum, Err: err}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if len(c.lines) == 0 {
		return nil, fmt.Errorf("no lines found in file")
	}

	return c, nil
}

// parseRate parses "rate <samples-per-second>".
func parseRate(c *Capture, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("rate takes 1 argument, got %d", len(args))
	}
	rate, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid sample rate: %w", err)
	}
	c.SampleRate = rate
	return nil
}

// parseLine parses "line <channel> <name> <initial 0|1>".
func parseLine(c *Capture, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("line takes 3 arguments, got %d", len(args))
	}
	ch, err := parseChannel(args[0])
	if err != nil {
		return err
	}
	if _, ok := c.lines[ch]; ok {
		return fmt.Errorf("channel %d declared twice", ch)
	}
	var initial BitState
	switch args[2] {
	case "0":
		initial = Low
	case "1":
		initial = High
	default:
		return fmt.Errorf("invalid initial level %q (must be 0 or 1)", args[2])
	}
	c.AddLine(ch, args[1], initial)
	return nil
}

// parseEdges parses "edges <channel> <sample>...". Edges may be spread over
// several lines but must keep increasing.
func parseEdges(c *Capture, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("edges needs a channel")
	}
	ch, err := parseChannel(args[0])
	if err != nil {
		return err
	}
	l, ok := c.lines[ch]
	if !ok {
		return fmt.Errorf("edges for undeclared channel %d", ch)
	}
	for _, a := range args[1:] {
		s, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid edge sample %q: %w", a, err)
		}
		if n := len(l.Edges); n > 0 && s <= l.Edges[n-1] {
			return fmt.Errorf("edge %d on channel %d does not follow %d", s, ch, l.Edges[n-1])
		}
		l.Edges = append(l.Edges, s)
	}
	return nil
}

func parseChannel(s string) (int, error) {
	ch, err := strconv.Atoi(s)
	if err != nil || ch < 0 {
		return 0, fmt.Errorf("invalid channel %q", s)
	}
	return ch, nil
}
