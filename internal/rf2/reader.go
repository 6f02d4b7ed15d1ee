// Package rf2 streams SNOMED CT RF2 Snapshot files into typed rows and
// locates the file set within a distribution directory.
package rf2

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
)

const readAheadBufferSize = 64 * 1024

type lineFunc func(ctx context.Context, lineNumber int, fields []string) error

// streamLines opens path for read with a read-ahead buffer, discards the
// header line, and invokes handle once per non-empty subsequent line split
// on tabs. Cancellation is checked between every line; the caller's ctx
// error is returned promptly when it fires. Memory use does not grow with
// file size: one line is ever held at a time.
func streamLines(ctx context.Context, path string, handle lineFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, readAheadBufferSize)
	if _, err := reader.ReadString('\n'); err != nil && err != io.EOF {
		return err
	}

	lineNumber := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, readErr := reader.ReadString('\n')
		if len(raw) > 0 {
			line := strings.TrimRight(raw, "\r\n")
			if line != "" {
				lineNumber++
				if hErr := handle(ctx, lineNumber, strings.Split(line, "\t")); hErr != nil {
					return hErr
				}
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return nil
			}
			return readErr
		}
	}
}

func parseActive(s string) (bool, bool) {
	switch s {
	case "1":
		return true, true
	case "0":
		return false, true
	default:
		return false, false
	}
}
