package capture

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestParseReader(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		check   func(t *testing.T, c *Capture)
		wantErr bool
		errMsg  string
		errLine int
	}{
		{
			name: "valid capture",
			input: "# two lines\n" +
				"rate 1000000\n" +
				"line 0 CS 1\n" +
				"line 1 CLK 0   # clock\n" +
				"edges 0 10 90\n" +
				"edges 1 20 30\n" +
				"edges 1 40 50\n",
			check: func(t *testing.T, c *Capture) {
				if c.SampleRate != 1000000 {
					t.Errorf("SampleRate = %d", c.SampleRate)
				}
				cs := c.Line(0)
				if cs == nil || cs.Name != "CS" || cs.Initial != High || len(cs.Edges) != 2 {
					t.Errorf("CS line = %s", spew.Sdump(cs))
				}
				clk := c.Line(1)
				if clk == nil || len(clk.Edges) != 4 || clk.Edges[3] != 50 {
					t.Errorf("CLK line = %s", spew.Sdump(clk))
				}
			},
		},
		{
			name:  "line without edges",
			input: "line 2 IO0 0\n",
			check: func(t *testing.T, c *Capture) {
				if l := c.Line(2); l == nil || len(l.Edges) != 0 {
					t.Errorf("IO0 line = %s", spew.Sdump(l))
				}
			},
		},
		{
			name:    "empty",
			input:   "# nothing\n\n",
			wantErr: true,
			errMsg:  "no lines found",
		},
		{
			name:    "unknown keyword",
			input:   "line 0 CS 1\nclock 5\n",
			wantErr: true,
			errMsg:  "unknown keyword",
			errLine: 2,
		},
		{
			name:    "bad level",
			input:   "line 0 CS 2\n",
			wantErr: true,
			errMsg:  "invalid initial level",
			errLine: 1,
		},
		{
			name:    "duplicate channel",
			input:   "line 0 CS 1\nline 0 CLK 0\n",
			wantErr: true,
			errMsg:  "declared twice",
			errLine: 2,
		},
		{
			name:    "undeclared channel",
			input:   "line 0 CS 1\nedges 1 5\n",
			wantErr: true,
			errMsg:  "undeclared channel",
			errLine: 2,
		},
		{
			name:    "decreasing edges",
			input:   "line 0 CS 1\nedges 0 5 9\nedges 0 7\n",
			wantErr: true,
			errMsg:  "does not follow",
			errLine: 3,
		},
		{
			name:    "bad rate",
			input:   "rate fast\nline 0 CS 1\n",
			wantErr: true,
			errMsg:  "invalid sample rate",
			errLine: 1,
		},
		{
			name:    "negative channel",
			input:   "line -1 CS 1\n",
			wantErr: true,
			errMsg:  "invalid channel",
			errLine: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseReader(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %q, want containing %q", err.Error(), tt.errMsg)
				}
				if tt.errLine > 0 {
					var pe *ParseError
					if !errors.As(err, &pe) || pe.Line != tt.errLine {
						t.Errorf("error = %v, want ParseError at line %d", err, tt.errLine)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestWriteParsesBack(t *testing.T) {
	c := New(50000000)
	cs := c.AddLine(0, "CS", High)
	clk := c.AddLine(1, "CLK", Low)
	c.AddLine(5, "IO3", High)
	c.AddLine(4, "", Low)

	cs.Set(10, Low)
	for i := uint64(0); i < 40; i++ {
		clk.Set(20+i, BitState(1-i%2))
	}
	cs.Set(100, High)

	var buf bytes.Buffer
	if err := Write(&buf, c); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := ParseReader(&buf)
	if err != nil {
		t.Fatalf("ParseReader: %v\n%s", err, buf.String())
	}

	if got.SampleRate != c.SampleRate {
		t.Errorf("SampleRate = %d, want %d", got.SampleRate, c.SampleRate)
	}
	for _, ch := range c.Channels() {
		want, have := c.Line(ch), got.Line(ch)
		if have == nil {
			t.Fatalf("channel %d missing", ch)
		}
		if have.Initial != want.Initial || len(have.Edges) != len(want.Edges) {
			t.Errorf("channel %d = %s, want %s", ch, spew.Sdump(have), spew.Sdump(want))
		}
	}
	if got.Line(4).Name != "ch4" {
		t.Errorf("unnamed line written as %q, want ch4", got.Line(4).Name)
	}
}
