package progress

import "sync"

const defaultBuffer = 64

// Stream is an ordered conduit between one producer (the pipeline) and one
// consumer (an SSE writer, a log sink loop, a test). Emit blocks when the
// buffer is full rather than dropping: the chronological-order and
// exactly-one-terminal guarantees only hold if nothing is ever lost.
type Stream struct {
	ch        chan Event
	closeOnce sync.Once
}

// NewStream creates a Stream. Non-positive buffer sizes get a small default.
func NewStream(buffer int) *Stream {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Stream{ch: make(chan Event, buffer)}
}

// Emit enqueues an event, blocking until the consumer makes room.
func (s *Stream) Emit(evt Event) {
	s.ch <- evt
}

// Events exposes the receive side. The channel closes after the terminal
// event once the producer calls Close.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

// Close ends the stream. Safe to call more than once; emitting after Close
// is a producer bug and panics like any send on a closed channel.
func (s *Stream) Close() {
	s.closeOnce.Do(func() { close(s.ch) })
}
