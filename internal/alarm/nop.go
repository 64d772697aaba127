package alarm

import "sync"

// Compile-time interface check.
var _ Sink = (*NopSink)(nil)

// NopSink is a silent audio sink used when no audio device is
// available. Play blocks until Stop so ringer timing behaves the same
// as with real audio.
type NopSink struct {
	mu   sync.Mutex
	stop chan struct{}
}

// NewNopSink creates a silent sink.
func NewNopSink() *NopSink {
	return &NopSink{}
}

// Play blocks until Stop is called.
func (s *NopSink) Play(wav []byte) error {
	s.mu.Lock()
	ch := make(chan struct{})
	s.stop = ch
	s.mu.Unlock()

	<-ch
	return nil
}

// Stop unblocks a pending Play. Safe to call when idle.
func (s *NopSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}
