// Package transcript reads Claude Code JSONL session logs.
package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
)

// DefaultMaxLineSize is the longest line kept for decoding. Longer lines
// are skipped and counted as malformed.
const DefaultMaxLineSize = 10 * 1024 * 1024

// Reader streams records from JSONL files. A Reader is not safe for
// concurrent use; counters reflect the most recent Records iteration.
type Reader struct {
	maxLineSize int
	malformed   int
	err         error
}

// NewReader returns an empty Reader.
func NewReader() *Reader {
	return &Reader{maxLineSize: DefaultMaxLineSize}
}

// Records yields the 1-based line number and parsed record of every
// non-blank line. Malformed and oversized lines yield a nil record and are
// counted. Each iteration re-reads the file from the start.
func (r *Reader) Records(path string) iter.Seq2[int, *Record] {
	return func(yield func(int, *Record) bool) {
		r.malformed = 0
		r.err = nil

		file, err := os.Open(path)
		if err != nil {
			r.err = fmt.Errorf("failed to open transcript: %w", err)
			return
		}
		defer file.Close()

		br := bufio.NewReaderSize(file, 64*1024)
		var buf []byte
		lineno := 0
		for {
			line, tooLong, readErr := r.readLine(br, buf[:0])
			buf = line
			if readErr == io.EOF && len(line) == 0 && !tooLong {
				return
			}
			lineno++

			if trimmed := bytes.TrimSpace(line); tooLong || len(trimmed) > 0 {
				var rec *Record
				if !tooLong {
					rec = decodeRecord(trimmed)
				}
				if rec == nil {
					r.malformed++
				}
				if !yield(lineno, rec) {
					return
				}
			}

			if readErr == io.EOF {
				return
			}
			if readErr != nil {
				r.err = fmt.Errorf("error reading transcript: %w", readErr)
				return
			}
		}
	}
}

// readLine reads through the next newline into buf. A line longer than
// the limit is consumed but not kept, and tooLong is set.
func (r *Reader) readLine(br *bufio.Reader, buf []byte) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > r.maxLineSize {
				tooLong = true
				buf = buf[:0]
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return buf, tooLong, err
	}
}

// Malformed returns how many lines failed to decode.
func (r *Reader) Malformed() int {
	return r.malformed
}

// Err returns the open or read error of the last iteration, if any.
func (r *Reader) Err() error {
	return r.err
}

func decodeRecord(line []byte) *Record {
	if line[0] != '{' {
		return nil
	}
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil
	}
	return &rec
}
