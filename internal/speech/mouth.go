package speech

import (
	"context"
	"sync"
	"time"

	"cookmode/internal/logger"
)

// Gate is paused while the mouth speaks and resumed when the queue
// drains, so the microphone never hears the assistant's own voice.
// The voice manager implements it.
type Gate interface {
	Pause()
	Resume()
}

// MouthOption configures the Mouth.
type MouthOption func(*Mouth)

// WithCacheDir sets the filesystem directory for persistent audio
// caching. Empty disables the disk layer.
func WithCacheDir(dir string) MouthOption {
	return func(m *Mouth) {
		m.cacheDir = dir
	}
}

// WithDiskWrite controls whether new cache entries are written to disk.
// Existing on-disk entries are read either way.
func WithDiskWrite(enabled bool) MouthOption {
	return func(m *Mouth) {
		m.diskWrite = enabled
	}
}

// Mouth is the central speech dispatcher. All speech goes through a
// single pipeline: queue -> synthesize (cached) -> play. Only one thing
// speaks at a time; higher-priority items are spoken first.
type Mouth struct {
	tts    Synthesizer
	player *Player
	log    *logger.Logger
	cache  *AudioCache

	mu        sync.Mutex
	queue     []SpeechRequest
	notify    chan struct{}
	speaking  bool
	cacheDir  string
	diskWrite bool
	gate      Gate // optional
}

// NewMouth creates a speech dispatcher over the given synthesizer and
// player.
func NewMouth(tts Synthesizer, player *Player, log *logger.Logger, opts ...MouthOption) *Mouth {
	m := &Mouth{
		tts:       tts,
		player:    player,
		log:       log,
		notify:    make(chan struct{}, 32),
		diskWrite: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cache = NewAudioCache(tts.Voice(), m.cacheDir, m.diskWrite, log)
	return m
}

// SetGate attaches the listening gate. Must be called before Start.
func (m *Mouth) SetGate(g Gate) {
	m.gate = g
}

// Start launches the speaking goroutine. Stops when ctx is cancelled.
func (m *Mouth) Start(ctx context.Context) {
	go m.loop(ctx)
}

// Say queues text to be spoken at the given priority. Non-blocking.
// Queuing anything at PriorityNormal or above flushes stale
// PriorityLow items — they're no longer relevant.
func (m *Mouth) Say(text string, priority Priority) {
	m.mu.Lock()
	if priority >= PriorityNormal {
		kept := m.queue[:0]
		for _, item := range m.queue {
			if item.Priority > PriorityLow {
				kept = append(kept, item)
			}
		}
		m.queue = kept
	}
	m.queue = append(m.queue, SpeechRequest{Text: text, Priority: priority, QueuedAt: time.Now()})
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default: // already signaled
	}
}

// Interrupt drops everything queued and cuts off current playback.
func (m *Mouth) Interrupt() {
	m.mu.Lock()
	m.queue = m.queue[:0]
	m.mu.Unlock()
	m.player.Stop()
	m.log.Debug("mouth: interrupted")
}

// IsSpeaking reports whether audio is currently playing.
func (m *Mouth) IsSpeaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking
}

// QueueLen returns the number of pending speech requests.
func (m *Mouth) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Prefetch synthesizes the given texts into the cache without speaking
// them. Non-blocking.
func (m *Mouth) Prefetch(ctx context.Context, texts ...string) {
	go func() {
		for _, text := range texts {
			if text == "" || m.cache.Has(text) {
				continue
			}
			audio, err := m.tts.Synthesize(ctx, text)
			if err != nil {
				m.log.Debug("mouth: prefetch failed: %v", err)
				continue
			}
			m.cache.Put(text, audio)
		}
	}()
}

func (m *Mouth) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.notify:
		}

		for {
			req, ok := m.pop()
			if !ok {
				break
			}
			m.speak(ctx, req)
		}

		if m.gate != nil {
			m.gate.Resume()
		}
	}
}

// pop removes and returns the highest-priority queued request,
// ties broken by queue order.
func (m *Mouth) pop() (SpeechRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return SpeechRequest{}, false
	}
	best := 0
	for i, item := range m.queue {
		if item.Priority > m.queue[best].Priority {
			best = i
		}
	}
	req := m.queue[best]
	m.queue = append(m.queue[:best], m.queue[best+1:]...)
	return req, true
}

func (m *Mouth) speak(ctx context.Context, req SpeechRequest) {
	audio, ok := m.cache.Get(req.Text)
	if !ok {
		var err error
		audio, err = m.tts.Synthesize(ctx, req.Text)
		if err != nil {
			m.log.Error("mouth: synthesis failed: %v", err)
			return
		}
		m.cache.Put(req.Text, audio)
	}

	if m.gate != nil {
		m.gate.Pause()
	}

	m.mu.Lock()
	m.speaking = true
	m.mu.Unlock()

	if err := m.player.Play(audio); err != nil {
		m.log.Error("mouth: playback failed: %v", err)
	}

	m.mu.Lock()
	m.speaking = false
	m.mu.Unlock()
}
