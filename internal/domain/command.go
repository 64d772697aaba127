package domain

// VoiceCommand is the closed vocabulary of recognized voice commands.
// Anything outside it is CmdUnknown and must be ignored by the hub.
type VoiceCommand int

const (
	CmdUnknown VoiceCommand = iota

	// Navigation.
	CmdNext
	CmdPrevious
	CmdStart
	CmdRepeat

	// Spoken-content requests.
	CmdIngredients
	CmdDescription
	CmdTime
	CmdTips
	CmdStepNumber

	// Timer control.
	CmdStartTimer
	CmdPauseTimer
	CmdResumeTimer
	CmdStopTimer
	CmdCheckTimer
)

// String returns a human-readable command name.
func (c VoiceCommand) String() string {
	switch c {
	case CmdNext:
		return "next"
	case CmdPrevious:
		return "previous"
	case CmdStart:
		return "start"
	case CmdRepeat:
		return "repeat"
	case CmdIngredients:
		return "ingredients"
	case CmdDescription:
		return "description"
	case CmdTime:
		return "time"
	case CmdTips:
		return "tips"
	case CmdStepNumber:
		return "step_number"
	case CmdStartTimer:
		return "start_timer"
	case CmdPauseTimer:
		return "pause_timer"
	case CmdResumeTimer:
		return "resume_timer"
	case CmdStopTimer:
		return "stop_timer"
	case CmdCheckTimer:
		return "check_timer"
	default:
		return "unknown"
	}
}

// commandNames maps snake_case names to VoiceCommand values.
var commandNames = map[string]VoiceCommand{
	"next":         CmdNext,
	"previous":     CmdPrevious,
	"start":        CmdStart,
	"repeat":       CmdRepeat,
	"ingredients":  CmdIngredients,
	"description":  CmdDescription,
	"time":         CmdTime,
	"tips":         CmdTips,
	"step_number":  CmdStepNumber,
	"start_timer":  CmdStartTimer,
	"pause_timer":  CmdPauseTimer,
	"resume_timer": CmdResumeTimer,
	"stop_timer":   CmdStopTimer,
	"check_timer":  CmdCheckTimer,
	"unknown":      CmdUnknown,
}

// CommandFromString converts a snake_case command name to a VoiceCommand.
// Returns CmdUnknown for unrecognized names.
func CommandFromString(name string) VoiceCommand {
	if c, ok := commandNames[name]; ok {
		return c
	}
	return CmdUnknown
}
