package voice

import (
	"testing"

	"cookmode/internal/domain"
	"cookmode/internal/logger"
)

func TestParserVocabulary(t *testing.T) {
	p := NewParser(logger.New(logger.LevelOff, nil))

	tests := []struct {
		input string
		want  domain.VoiceCommand
	}{
		// Navigation.
		{"next", domain.CmdNext},
		{"Next step", domain.CmdNext},
		{"done", domain.CmdNext},
		{"previous", domain.CmdPrevious},
		{"go back", domain.CmdPrevious},
		{"start", domain.CmdStart},
		{"let's go", domain.CmdStart},
		{"repeat", domain.CmdRepeat},
		{"say that again", domain.CmdRepeat},

		// Info.
		{"ingredients", domain.CmdIngredients},
		{"what do I need", domain.CmdIngredients},
		{"description", domain.CmdDescription},
		{"what am I cooking", domain.CmdDescription},
		{"how long", domain.CmdTime},
		{"tips", domain.CmdTips},
		{"any advice", domain.CmdTips},
		{"what step am I on", domain.CmdStepNumber},

		// Timers win over the bare words they contain.
		{"start timer", domain.CmdStartTimer},
		{"start the timer", domain.CmdStartTimer},
		{"set a timer", domain.CmdStartTimer},
		{"timer", domain.CmdStartTimer},
		{"pause timer", domain.CmdPauseTimer},
		{"pause the timer", domain.CmdPauseTimer},
		{"resume timer", domain.CmdResumeTimer},
		{"continue the timer", domain.CmdResumeTimer},
		{"stop timer", domain.CmdStopTimer},
		{"cancel the timer", domain.CmdStopTimer},
		{"check timer", domain.CmdCheckTimer},
		{"how long is left", domain.CmdCheckTimer},
		{"how much time left", domain.CmdCheckTimer},

		// Transcriber punctuation is tolerated.
		{"Next.", domain.CmdNext},
		{"Start timer!", domain.CmdStartTimer},
		{"  pause timer  ", domain.CmdPauseTimer},

		// Outside the vocabulary.
		{"", domain.CmdUnknown},
		{"blend the soup", domain.CmdUnknown},
		{"what's the weather", domain.CmdUnknown},
		{"nextish", domain.CmdUnknown},
	}

	for _, tt := range tests {
		if got := p.Parse(tt.input); got != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestCleanTranscription(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"[BLANK_AUDIO]", ""},
		{"(silence)", ""},
		{"Thank you.", ""}, // whole-utterance hallucination
		{"you", ""},
		{"next step (background noise)", "next step"},
		{"pause\nthe timer", "pause the timer"},
		{"  start timer  ", "start timer"},
		{"[00:00:00.000 --> 00:00:02.000] next", "next"},
	}

	for _, tt := range tests {
		if got := cleanTranscription(tt.input); got != tt.want {
			t.Errorf("cleanTranscription(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
