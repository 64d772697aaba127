package voice

import (
	"context"
	"sync"
	"time"

	"cookmode/internal/domain"
	"cookmode/internal/logger"
)

// Handler receives each recognized command together with the raw
// transcription it was parsed from.
type Handler func(cmd domain.VoiceCommand, raw string)

// Manager runs the listen-parse-dispatch loop. It also serves as the
// speech gate: the mouth pauses it before playback so the microphone
// never transcribes the assistant's own voice.
type Manager struct {
	rec     domain.Recognizer
	parser  *Parser
	handler Handler
	log     *logger.Logger

	mu     sync.Mutex
	paused bool
}

// NewManager wires a recognizer and parser to a command handler.
func NewManager(rec domain.Recognizer, parser *Parser, handler Handler, log *logger.Logger) *Manager {
	return &Manager{
		rec:     rec,
		parser:  parser,
		handler: handler,
		log:     log,
	}
}

// Pause suspends listening. Part of the speech gate contract.
func (m *Manager) Pause() {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
	m.log.Debug("voice: paused")
}

// Resume re-enables listening.
func (m *Manager) Resume() {
	m.mu.Lock()
	m.paused = false
	m.mu.Unlock()
	m.log.Debug("voice: resumed")
}

func (m *Manager) isPaused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Run loops until ctx is cancelled: listen for a chunk, parse it, and
// dispatch recognized commands. Recognizer failures back off and
// retry instead of killing the loop. Call in a goroutine.
func (m *Manager) Run(ctx context.Context) {
	m.log.Info("voice: listening loop started")

	for {
		select {
		case <-ctx.Done():
			m.log.Info("voice: listening loop stopped")
			return
		default:
		}

		if m.isPaused() {
			select {
			case <-time.After(200 * time.Millisecond):
			case <-ctx.Done():
			}
			continue
		}

		text, err := m.rec.Listen(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			m.log.Error("voice: listen failed: %v", err)
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
			}
			continue
		}
		if text == "" {
			continue
		}

		cmd := m.parser.Parse(text)
		if cmd == domain.CmdUnknown {
			m.log.Debug("voice: ignoring %q", text)
			continue
		}

		m.log.Info("voice: %q -> %s", text, cmd)
		m.handler(cmd, text)
	}
}
