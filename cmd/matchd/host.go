package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Processor applies one command line and returns its report.
type Processor interface {
	Process(line string) string
}

// serve feeds lines from in to p until an empty line, QUIT, EOF or ctx is
// done. Each non-empty report is written to out, and every command is
// followed by the separator line.
func serve(ctx context.Context, in io.Reader, out io.Writer, p Processor, separator string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	w := bufio.NewWriter(out)
	defer w.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimRight(line, "\r")
			if line == "" || line == "QUIT" {
				return nil
			}
			if report := p.Process(line); report != "" {
				fmt.Fprintln(w, report)
			}
			fmt.Fprintln(w, separator)
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
}
