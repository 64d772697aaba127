// Package speech provides the text-to-speech pipeline: the spoken-line
// catalog, a prioritized speech queue, synthesis, caching, and playback.
package speech

import "time"

// Default voice for TTS. Change this constant to switch voices.
const DefaultVoice = "en-US-AvaNeural"

// Audio format returned by the synthesizer and expected by the player.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching the default format.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Env var names for Azure Speech credentials.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// Priority levels for speech requests. Higher value = speaks first.
type Priority int

const (
	PriorityLow      Priority = iota // background commentary
	PriorityNormal                   // step instructions, info
	PriorityHigh                     // timer events
	PriorityCritical                 // urgent alerts
)

// SpeechRequest is a queued item waiting to be spoken.
type SpeechRequest struct {
	Text     string
	Priority Priority
	QueuedAt time.Time
}
