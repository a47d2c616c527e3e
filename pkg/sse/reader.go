// Package sse implements minimal parsing of server-sent event streams.
package sse

import (
	"bufio"
	"bytes"
	"io"
)

// Reader parses server-sent events from a stream. It is tolerant of chunk
// boundaries: events are only surfaced once the blank-line delimiter is seen,
// and a trailing unterminated event is surfaced at EOF.
type Reader struct {
	reader *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{
		reader: bufio.NewReader(r),
	}
}

// ReadEvent reads the next event and returns its data payload. Multi-line
// data fields are joined with newlines. Comment, id and retry fields are
// ignored. Returns io.EOF when the stream ends.
func (r *Reader) ReadEvent() ([]byte, error) {
	var dataLines [][]byte

	for {
		line, err := r.reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		// At EOF the partial line arrives together with the error, so it
		// still goes through field handling below.
		atEOF := err == io.EOF

		line = bytes.TrimRight(line, "\r\n")

		// Blank line terminates the event.
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
			if atEOF {
				return nil, io.EOF
			}
			continue
		}

		if bytes.HasPrefix(line, []byte("data:")) {
			data := bytes.TrimPrefix(line, []byte("data:"))
			data = bytes.TrimPrefix(data, []byte(" "))
			dataLines = append(dataLines, data)
		}

		if atEOF {
			if len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
			return nil, io.EOF
		}
	}
}
