package llm

// Stream delivers the incremental text deltas of one model call.
//
// Usage follows the Next/Current/Err pattern:
//
//	for stream.Next() {
//		text += stream.Current()
//	}
//	if err := stream.Err(); err != nil { ... }
//
// A stream must be drained or Closed, or the producing goroutine blocks.
type Stream struct {
	ch       chan string
	consumer chan struct{}
	cur      string
	err      error
	errSet   chan struct{}
}

// Next blocks until the next delta arrives. It returns false when the
// stream is exhausted or has failed.
func (s *Stream) Next() bool {
	delta, ok := <-s.ch
	if !ok {
		return false
	}
	s.cur = delta
	return true
}

// Current returns the delta read by the last successful Next.
func (s *Stream) Current() string {
	return s.cur
}

// Err returns the terminal error of the stream, if any. Only valid after
// Next has returned false.
func (s *Stream) Err() error {
	<-s.errSet
	return s.err
}

// Close abandons the stream, unblocking the producer. Deltas sent after
// Close are discarded.
func (s *Stream) Close() {
	select {
	case <-s.consumer:
	default:
		close(s.consumer)
	}
}

// StreamProducer is the sending side of a Stream. The model adapter feeds
// it from the provider callback; fakes feed it from tests.
type StreamProducer struct {
	s *Stream
}

// NewStream creates a connected stream/producer pair.
func NewStream() (*Stream, *StreamProducer) {
	s := &Stream{
		ch:       make(chan string),
		consumer: make(chan struct{}),
		errSet:   make(chan struct{}),
	}
	return s, &StreamProducer{s: s}
}

// Send delivers one delta, blocking until the consumer reads it or
// abandons the stream.
func (p *StreamProducer) Send(delta string) {
	select {
	case p.s.ch <- delta:
	case <-p.s.consumer:
	}
}

// CloseSend terminates the stream with an optional error. Must be called
// exactly once, after the final Send.
func (p *StreamProducer) CloseSend(err error) {
	p.s.err = err
	close(p.s.errSet)
	close(p.s.ch)
}
