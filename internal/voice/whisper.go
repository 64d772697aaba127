package voice

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"cookmode/internal/domain"
	"cookmode/internal/logger"
)

// envAnnotation matches whisper environmental annotations like
// "(keyboard clicking)", "[laughter]", "(speaking French)", etc.
var envAnnotation = regexp.MustCompile(`[\(\[][a-zA-Z][a-zA-Z\s]*[\)\]]`)

// WhisperOption configures the recognizer.
type WhisperOption func(*WhisperRecognizer)

// WithRecordDuration sets how long each listening chunk lasts.
func WithRecordDuration(d time.Duration) WhisperOption {
	return func(w *WhisperRecognizer) { w.recordDuration = d }
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) WhisperOption {
	return func(w *WhisperRecognizer) { w.tempDir = dir }
}

// WhisperRecognizer captures microphone audio in fixed-length chunks
// and transcribes them with a local Whisper model. It implements
// domain.Recognizer.
type WhisperRecognizer struct {
	whisperBin     string
	modelPath      string
	tempDir        string
	recordDuration time.Duration
	log            *logger.Logger
}

// Compile-time interface check.
var _ domain.Recognizer = (*WhisperRecognizer)(nil)

// NewWhisperRecognizer creates a recognizer over the whisper-cli
// executable and a GGML model file.
func NewWhisperRecognizer(whisperBin, modelPath string, log *logger.Logger, opts ...WhisperOption) *WhisperRecognizer {
	w := &WhisperRecognizer{
		whisperBin:     whisperBin,
		modelPath:      modelPath,
		tempDir:        ".cookmode-stt",
		recordDuration: 3 * time.Second,
		log:            log,
	}
	for _, opt := range opts {
		opt(w)
	}

	if _, err := exec.LookPath(w.whisperBin); err != nil {
		log.Error("voice: whisper binary %q not found in PATH: %v", w.whisperBin, err)
	}

	return w
}

// Listen records one chunk and returns the cleaned transcription.
// An empty string means silence (or junk) — not an error.
func (w *WhisperRecognizer) Listen(ctx context.Context) (string, error) {
	var result string
	var wg sync.WaitGroup
	wg.Add(1)

	callback := func(text string) {
		result = text
		wg.Done()
	}

	verbose := w.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(
		w.whisperBin,
		w.modelPath,
		w.tempDir,
		"wav",
		callback,
		verbose,
	)
	if err != nil {
		return "", err
	}

	if err := t.Start(); err != nil {
		return "", err
	}

	select {
	case <-time.After(w.recordDuration):
	case <-ctx.Done():
		t.Stop()
		wg.Wait()
		return "", ctx.Err()
	}

	t.Stop()
	wg.Wait()

	return cleanTranscription(result), nil
}

// cleanTranscription strips whitespace, normalizes newlines, and
// removes common whisper artifacts like "[BLANK_AUDIO]", "(silence)",
// and whole-utterance hallucinations.
func cleanTranscription(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)

	junkPatterns := []string{
		"[BLANK_AUDIO]",
		"[BLANK AUDIO]",
		"(silence)",
		"[silence]",
		"(no speech)",
		"[no speech]",
		"[Music]",
		"(music)",
		"(inaudible)",
		"(unintelligible)",
		"(background noise)",
		"(static)",
	}
	for _, j := range junkPatterns {
		s = strings.ReplaceAll(s, j, "")
		s = strings.ReplaceAll(s, strings.ToLower(j), "")
		s = strings.ReplaceAll(s, strings.ToUpper(j), "")
	}

	// Catch-all for remaining (parenthesized) or [bracketed]
	// environmental annotations.
	s = envAnnotation.ReplaceAllString(s, "")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	s = strings.TrimSpace(s)

	// Whole-utterance hallucinations whisper produces on silence.
	hallucinations := []string{
		"...",
		"you",
		"Thank you.",
		"Thanks for watching!",
		"Thank you for watching.",
		"Bye.",
		"The end.",
	}
	lower := strings.ToLower(s)
	for _, h := range hallucinations {
		if strings.ToLower(h) == lower {
			return ""
		}
	}

	// Strip whisper timestamp prefixes like "[00:00:00.000 --> ...]".
	if strings.HasPrefix(s, "[") {
		if idx := strings.Index(s, "]"); idx != -1 && idx < 40 {
			s = strings.TrimSpace(s[idx+1:])
		}
	}

	return s
}
