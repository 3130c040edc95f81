package lsp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrMalformedHeader reports a frame header without a usable
	// Content-Length. The header bytes have been dropped.
	ErrMalformedHeader = errors.New("malformed message header")
	// ErrMessageTooLarge reports a frame whose body exceeds the limit. The
	// body is skipped as it arrives.
	ErrMessageTooLarge = errors.New("message exceeds size limit")
)

const (
	// DefaultMaxMessageSize bounds a single body.
	DefaultMaxMessageSize = 64 << 20
	maxHeaderSize         = 8 << 10
)

var headerEnd = []byte("\r\n\r\n")

// Accumulator buffers raw transport bytes and cuts them into message
// bodies. Content-Length is a byte count, so a chunk boundary inside a
// multi-byte character only delays the cut.
type Accumulator struct {
	buf  []byte
	max  int
	skip int
}

// NewAccumulator returns an Accumulator that rejects bodies larger than max
// bytes. max <= 0 selects DefaultMaxMessageSize.
func NewAccumulator(max int) *Accumulator {
	if max <= 0 {
		max = DefaultMaxMessageSize
	}
	return &Accumulator{max: max}
}

// Write appends transport bytes. It never fails.
func (a *Accumulator) Write(p []byte) (int, error) {
	n := len(p)
	if a.skip > 0 {
		if len(p) <= a.skip {
			a.skip -= len(p)
			return n, nil
		}
		p = p[a.skip:]
		a.skip = 0
	}
	a.buf = append(a.buf, p...)
	return n, nil
}

// Buffered reports how many bytes are waiting to be framed.
func (a *Accumulator) Buffered() int { return len(a.buf) }

// Next cuts one complete body from the front of the buffer. ok is false
// when more data is needed. A non-nil error means a malformed frame was
// discarded; the caller should log it and call Next again.
func (a *Accumulator) Next() (body []byte, ok bool, err error) {
	idx := bytes.Index(a.buf, headerEnd)
	if idx < 0 {
		if len(a.buf) > maxHeaderSize {
			// Keep a possible partial terminator.
			a.consume(len(a.buf) - len(headerEnd) + 1)
			return nil, false, fmt.Errorf("%w: header exceeds %d bytes", ErrMalformedHeader, maxHeaderSize)
		}
		return nil, false, nil
	}
	length, err := parseContentLength(a.buf[:idx])
	if err != nil {
		a.consume(idx + len(headerEnd))
		return nil, false, err
	}
	start := idx + len(headerEnd)
	if length > a.max {
		a.consume(start)
		if len(a.buf) >= length {
			a.consume(length)
		} else {
			a.skip = length - len(a.buf)
			a.buf = a.buf[:0]
		}
		return nil, false, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, length)
	}
	if len(a.buf) < start+length {
		return nil, false, nil
	}
	body = make([]byte, length)
	copy(body, a.buf[start:start+length])
	a.consume(start + length)
	return body, true, nil
}

func (a *Accumulator) consume(n int) {
	rest := copy(a.buf, a.buf[n:])
	a.buf = a.buf[:rest]
}

func parseContentLength(header []byte) (int, error) {
	length := -1
	for _, line := range strings.Split(string(header), "\r\n") {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(parts[0]), "Content-Length") {
			continue
		}
		value := strings.TrimSpace(parts[1])
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: invalid Content-Length %q", ErrMalformedHeader, value)
		}
		length = n
	}
	if length < 0 {
		return 0, fmt.Errorf("%w: missing Content-Length", ErrMalformedHeader)
	}
	return length, nil
}

func writeMessage(w io.Writer, payload []byte) error {
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(payload))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
