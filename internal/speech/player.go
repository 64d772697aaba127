package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"cookmode/internal/logger"
)

// Player handles audio playback of WAV/PCM data via oto. One Player
// owns the process's audio context; the speech mouth and the alarm
// ringer share it.
type Player struct {
	ctx    *oto.Context
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// NewPlayer creates an audio player. Initializes the system audio
// context. Returns an error if the audio device is unavailable.
func NewPlayer(log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("audio player initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, log: log}, nil
}

// Play plays WAV audio data synchronously. Blocks until playback
// finishes or Stop is called.
func (p *Player) Play(wavData []byte) error {
	pcm, err := extractPCM(wavData)
	if err != nil {
		return err
	}

	player := p.ctx.NewPlayer(bytes.NewReader(pcm))

	p.mu.Lock()
	p.active = player
	p.mu.Unlock()

	player.Play()
	p.log.Debug("audio player: playing %d bytes of PCM", len(pcm))

	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()

	return player.Close()
}

// Stop interrupts the currently playing audio, if any. Safe to call
// concurrently and when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("audio player: interrupted")
	}
}

// extractPCM strips the RIFF/WAVE container and returns the raw PCM
// payload of the data chunk. Raw input without a RIFF header is
// returned unchanged.
func extractPCM(wav []byte) ([]byte, error) {
	if len(wav) < 12 || !bytes.Equal(wav[0:4], []byte("RIFF")) {
		if len(wav) == 0 {
			return nil, errors.New("empty audio data")
		}
		return wav, nil // assume raw PCM
	}
	if !bytes.Equal(wav[8:12], []byte("WAVE")) {
		return nil, errors.New("not a WAVE file")
	}

	// Walk the chunks until "data".
	off := 12
	for off+8 <= len(wav) {
		id := wav[off : off+4]
		size := int(binary.LittleEndian.Uint32(wav[off+4 : off+8]))
		off += 8
		if bytes.Equal(id, []byte("data")) {
			if off+size > len(wav) {
				size = len(wav) - off
			}
			return wav[off : off+size], nil
		}
		off += size
	}
	return nil, errors.New("wav data chunk not found")
}
