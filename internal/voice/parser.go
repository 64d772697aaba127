// Package voice turns microphone audio into dispatched commands: a
// whisper-backed recognizer produces text, the parser maps it onto the
// closed command vocabulary, and the manager runs the loop.
package voice

import (
	"regexp"
	"strings"

	"cookmode/internal/domain"
	"cookmode/internal/logger"
)

// Parser matches transcribed speech to voice commands using keyword
// patterns. The vocabulary is closed: anything that doesn't match
// returns CmdUnknown and is ignored upstream.
type Parser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex *regexp.Regexp
	cmd   domain.VoiceCommand
}

// NewParser creates a keyword-based command parser.
func NewParser(log *logger.Logger) *Parser {
	p := &Parser{log: log}
	// Order matters: timer phrasings must win over the bare navigation
	// words they contain ("start timer" before "start", "stop the
	// timer" before anything matching "stop").
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(start|set|begin)( the| a)? timer\b`), domain.CmdStartTimer},
		{regexp.MustCompile(`(?i)^timer( on| start)?$`), domain.CmdStartTimer},
		{regexp.MustCompile(`(?i)^(pause|hold)( the)? timer\b`), domain.CmdPauseTimer},
		{regexp.MustCompile(`(?i)^(resume|continue|unpause)( the)? timer\b`), domain.CmdResumeTimer},
		{regexp.MustCompile(`(?i)^(stop|cancel|kill)( the)? timer\b`), domain.CmdStopTimer},
		{regexp.MustCompile(`(?i)^(check|how long|how much)( the| on the| is left on the)? timer\b`), domain.CmdCheckTimer},
		{regexp.MustCompile(`(?i)^how (long|much time) (is )?left\b`), domain.CmdCheckTimer},

		{regexp.MustCompile(`(?i)^(next|done|continue|advance)( step)?$`), domain.CmdNext},
		{regexp.MustCompile(`(?i)^(previous|back|go back)( step)?$`), domain.CmdPrevious},
		{regexp.MustCompile(`(?i)^(start|begin|let'?s (go|cook|start))( cooking| over)?$`), domain.CmdStart},
		{regexp.MustCompile(`(?i)^(repeat|again|say (that|it) again|what\??)$`), domain.CmdRepeat},
		{regexp.MustCompile(`(?i)^(ingredients|what do i need|what'?s in (it|this))\b`), domain.CmdIngredients},
		{regexp.MustCompile(`(?i)^(description|describe|what (am i|are we) (cooking|making))\b`), domain.CmdDescription},
		{regexp.MustCompile(`(?i)^(how long|time|duration)( does this take| is this step)?$`), domain.CmdTime},
		{regexp.MustCompile(`(?i)^(tips?|any (tips|advice)|help me( out)?)$`), domain.CmdTips},
		{regexp.MustCompile(`(?i)^(what|which) step( am i on| is this)?\b`), domain.CmdStepNumber},
		{regexp.MustCompile(`(?i)^step number$`), domain.CmdStepNumber},
	}
	return p
}

// Parse maps transcribed text to a command. Trailing punctuation from
// the transcriber is stripped before matching.
func (p *Parser) Parse(input string) domain.VoiceCommand {
	trimmed := strings.TrimSpace(input)
	trimmed = strings.TrimRight(trimmed, ".!,")
	if trimmed == "" {
		return domain.CmdUnknown
	}

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("parser: %q -> %s", trimmed, rule.cmd)
			return rule.cmd
		}
	}

	p.log.Debug("parser: %q -> no match", trimmed)
	return domain.CmdUnknown
}
