// Package sse splits an incremental text/event-stream body into data frames.
//
// Only the subset the assistant service emits is handled: one event per
// line, `data: <payload>` framing, `:` comment lines, and the `[DONE]`
// terminal sentinel. Chunks may end anywhere, including mid-line.
package sse

import (
	"bytes"
	"io"
)

// DoneSentinel is the payload that explicitly terminates a stream.
const DoneSentinel = "[DONE]"

const dataPrefix = "data:"

// Frame is one decoded line.
type Frame struct {
	// Data is the trimmed payload of a data line. Empty when Done is set.
	Data []byte
	// Done reports the [DONE] sentinel.
	Done bool
}

// Decoder buffers partial lines across chunk boundaries.
type Decoder struct {
	buf []byte
}

// NewDecoder creates an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends a chunk and returns every frame completed by it. The
// trailing partial line, if any, is kept for the next call.
func (d *Decoder) Feed(chunk []byte) []Frame {
	d.buf = append(d.buf, chunk...)

	var frames []Frame
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		line := d.buf[:i]
		if f, ok := parseLine(line); ok {
			frames = append(frames, f)
		}
		d.buf = d.buf[i+1:]
	}

	// Compact so a long stream does not pin its whole history.
	if len(d.buf) == 0 {
		d.buf = nil
	} else {
		d.buf = append([]byte(nil), d.buf...)
	}
	return frames
}

// Flush returns the frame held in the carry-over buffer, if any. It is
// called once the transport closes; a last line without a newline is still
// a complete record.
func (d *Decoder) Flush() []Frame {
	line := d.buf
	d.buf = nil
	if f, ok := parseLine(line); ok {
		return []Frame{f}
	}
	return nil
}

// Buffered returns the number of bytes waiting for a line terminator.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// parseLine classifies one raw line. Blank lines, comments and non-data
// fields (event:, id:, retry:) are dropped.
func parseLine(raw []byte) (Frame, bool) {
	line := bytes.TrimSpace(raw)
	if len(line) == 0 || line[0] == ':' {
		return Frame{}, false
	}
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return Frame{}, false
	}

	payload := bytes.TrimSpace(line[len(dataPrefix):])
	if string(payload) == DoneSentinel {
		return Frame{Done: true}, true
	}
	return Frame{Data: append([]byte(nil), payload...)}, true
}

// Reader pulls chunks from an io.Reader and yields frames one at a time.
// Each Read on the underlying body is the only blocking point.
type Reader struct {
	r       io.Reader
	dec     *Decoder
	buf     []byte
	pending []Frame
	err     error
}

// NewReader wraps r with a fresh decoder.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:   r,
		dec: NewDecoder(),
		buf: make([]byte, 4096),
	}
}

// Next returns the next frame. At end of stream it returns io.EOF after
// flushing any unterminated final line. Other read errors are returned
// as-is, after the frames already decoded have been drained.
func (r *Reader) Next() (Frame, error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return Frame{}, r.err
		}

		n, err := r.r.Read(r.buf)
		if n > 0 {
			r.pending = append(r.pending, r.dec.Feed(r.buf[:n])...)
		}
		if err != nil {
			if err == io.EOF {
				r.pending = append(r.pending, r.dec.Flush()...)
			}
			r.err = err
		}
	}

	f := r.pending[0]
	r.pending = r.pending[1:]
	return f, nil
}
