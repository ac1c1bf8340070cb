package capture

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Write stores c in the capture file format read by ParseReader.
func Write(w io.Writer, c *Capture) error {
	bw := bufio.NewWriter(w)

	if c.SampleRate > 0 {
		fmt.Fprintf(bw, "%s %d\n", keywordRate, c.SampleRate)
	}

	chs := c.Channels()
	for _, ch := range chs {
		l := c.lines[ch]
		fmt.Fprintf(bw, "%s %d %s %d\n", keywordLine, ch, lineName(l, ch), l.Initial)
	}

	for _, ch := range chs {
		edges := c.lines[ch].Edges
		for len(edges) > 0 {
			n := len(edges)
			if n > edgesPerLine {
				n = edgesPerLine
			}
			buf := make([]byte, 0, 16*n)
			buf = append(buf, keywordEdges...)
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(ch), 10)
			for _, s := range edges[:n] {
				buf = append(buf, ' ')
				buf = strconv.AppendUint(buf, s, 10)
			}
			buf = append(buf, '\n')
			if _, err := bw.Write(buf); err != nil {
				return fmt.Errorf("write edges: %w", err)
			}
			edges = edges[n:]
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush capture: %w", err)
	}
	return nil
}

// WriteFile stores c at path, replacing any existing file.
func WriteFile(path string, c *Capture) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(f, c); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// lineName keeps names single-token so the file parses back.
func lineName(l *Line, ch int) string {
	for _, r := range l.Name {
		if r == ' ' || r == '\t' || r == '#' {
			return fmt.Sprintf("ch%d", ch)
		}
	}
	if l.Name == "" {
		return fmt.Sprintf("ch%d", ch)
	}
	return l.Name
}
