// Package bytestream provides a cursor over a byte buffer for instruction
// decoding. Instruction size is never known up front — it is learned by
// subtracting stream positions before and after a decode — so callers
// track Consumed() themselves rather than the stream owning instruction
// boundaries.
package bytestream

// Stream is a forward-only cursor over a byte slice.
type Stream struct {
	data []byte
	pos  int
}

// New wraps data in a Stream positioned at the start.
func New(data []byte) *Stream {
	return &Stream{data: data}
}

// Next returns the next byte and advances the cursor, or ok=false at end
// of stream.
func (s *Stream) Next() (b byte, ok bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	b = s.data[s.pos]
	s.pos++
	return b, true
}

// Peek returns the next byte without advancing the cursor.
func (s *Stream) Peek() (b byte, ok bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	return s.data[s.pos], true
}

// Consumed returns the number of bytes read so far.
func (s *Stream) Consumed() int {
	return s.pos
}

// Len returns the total length of the underlying buffer.
func (s *Stream) Len() int {
	return len(s.data)
}

// AtEnd reports whether the stream has been fully consumed.
func (s *Stream) AtEnd() bool {
	return s.pos >= len(s.data)
}
