// CookMode — hands-free cooking timers with voice control.
//
// Usage:
//
//	cookmode [-verbose] [-quiet] [-voice] [-feed-addr :7465]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cookmode/internal/alarm"
	"cookmode/internal/bridge"
	"cookmode/internal/config"
	"cookmode/internal/display"
	"cookmode/internal/domain"
	"cookmode/internal/feed"
	"cookmode/internal/hub"
	"cookmode/internal/logger"
	"cookmode/internal/notify"
	"cookmode/internal/recipe"
	"cookmode/internal/speech"
	"cookmode/internal/timer"
	"cookmode/internal/voice"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".cookmode-logs/cookmode.log", "file to write logs to (use \"stderr\" to log to console)")
	cfgPath := flag.String("config", "cookmode.yaml", "path to the YAML config file")
	noSpeech := flag.Bool("no-speech", false, "disable text-to-speech even if Azure keys are set")
	diskCache := flag.Bool("disk-cache", true, "persist TTS audio cache to disk (reads from disk even when false)")
	cacheDir := flag.String("cache-dir", ".cookmode-cache", "directory for persistent TTS audio cache")
	voiceIn := flag.Bool("voice", false, "enable voice input via local Whisper STT")
	feedAddr := flag.String("feed-addr", "", "websocket state feed listen address (empty = off)")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package (used by third-party libs like
	// the whisper transcriber) to the same output so it doesn't spam
	// the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Set up context — cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire dependencies, inside out: recipes → notices → alarm →
	// engine → bridge → speech → hub → voice.
	recipes := recipe.NewMemorySource(log)

	// Audio is optional: one oto player is shared by TTS and the alarm
	// tone. Without a device the alarm degrades to urgent notices only.
	var sink alarm.Sink = alarm.NewNopSink()
	player, err := speech.NewPlayer(log)
	if err != nil {
		log.Error("audio player init failed, running silent: %v", err)
		player = nil
	} else {
		sink = player
	}

	h := &appHub{}
	ui := display.NewUI(h)
	notifier := notify.NewCLINotifier(log, ui.Printf)
	center := notify.NewCenter(notifier, log)
	ringer := alarm.New(sink, center, log, alarm.WithCeiling(cfg.AlarmCeiling()))

	eng := timer.New(ringer, center, log, timer.WithTickInterval(cfg.Tick()))
	eng.Start(ctx)
	defer eng.Stop()

	br := bridge.New(eng, log)

	// Build the speaker. TTS needs Azure credentials and a working
	// audio device; otherwise commands still work, silently.
	var speaker domain.Speaker = speech.NoOp{}
	var mouth *speech.Mouth

	azureKey := os.Getenv(speech.EnvAzureSpeechKey)
	azureRegion := os.Getenv(speech.EnvAzureSpeechRegion)

	if azureKey != "" && azureRegion != "" && !*noSpeech && player != nil {
		tts := speech.NewAzureClient(azureKey, azureRegion, log)
		mouth = speech.NewMouth(tts, player, log,
			speech.WithCacheDir(*cacheDir),
			speech.WithDiskWrite(*diskCache),
		)
		speaker = speech.NewVoice(mouth)
		log.Info("TTS enabled (voice=%s, region=%s)", tts.Voice(), azureRegion)
	} else if !*noSpeech {
		log.Info("TTS disabled: set %s and %s env vars to enable", speech.EnvAzureSpeechKey, speech.EnvAzureSpeechRegion)
	}

	h.Hub = hub.New(recipes, br, speaker, log, hub.WithCancelGrace(cfg.CancelGrace()))
	go h.Run(ctx)

	parser := voice.NewParser(log)

	app := &cliApp{
		hub:     h.Hub,
		recipes: recipes,
		ringer:  ringer,
		center:  center,
		parser:  parser,
		mouth:   mouth,
		log:     log,
		ui:      ui,
	}

	// Voice input: recognized commands go through the same dispatch
	// path as typed ones.
	var mgr *voice.Manager
	if *voiceIn {
		if _, err := os.Stat(cfg.Voice.WhisperModel); err != nil {
			fmt.Fprintf(os.Stderr, "error: whisper model not found at %s\n", cfg.Voice.WhisperModel)
			os.Exit(1)
		}
		os.MkdirAll(".cookmode-stt", 0o755)
		rec := voice.NewWhisperRecognizer(cfg.Voice.WhisperBin, cfg.Voice.WhisperModel, log,
			voice.WithRecordDuration(time.Duration(cfg.Voice.RecordSecs)*time.Second),
		)
		mgr = voice.NewManager(rec, parser, func(cmd domain.VoiceCommand, raw string) {
			ui.PrintVoice(raw)
			app.dispatch(ctx, cmd)
		}, log)
		go mgr.Run(ctx)
		log.Info("voice input enabled (bin=%s, model=%s, chunk=%ds)",
			cfg.Voice.WhisperBin, cfg.Voice.WhisperModel, cfg.Voice.RecordSecs)
	}

	if mouth != nil {
		if mgr != nil {
			mouth.SetGate(mgr)
		}
		mouth.Start(ctx)
	}

	// Optional companion feed.
	addr := *feedAddr
	if addr == "" {
		addr = cfg.Feed.Addr
	}
	if addr != "" {
		fd := feed.NewServer(eng, addr, log)
		go func() {
			if err := fd.Run(ctx); err != nil {
				log.Error("feed: %v", err)
			}
		}()
	}

	fmt.Println(display.RenderBanner())
	if mgr != nil {
		fmt.Println(display.BannerStyle.Render("  Voice mode ON — speak commands, or type them."))
		fmt.Println(display.BannerStyle.Render("  Type 'quit' to exit."))
	} else {
		fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	}
	fmt.Println()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal — blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}

// appHub defers hub construction so the UI (which needs a TimerSource)
// can be built before the speaker chain the hub depends on.
type appHub struct {
	*hub.Hub
}

func (a *appHub) Timers() []domain.TimerState {
	if a.Hub == nil {
		return nil
	}
	return a.Hub.Timers()
}

type cliApp struct {
	hub     *hub.Hub
	recipes domain.RecipeSource
	ringer  *alarm.Ringer
	center  *notify.Center
	parser  *voice.Parser
	mouth   *speech.Mouth // nil when TTS is disabled
	log     *logger.Logger
	ui      *display.UI

	// conflict pends a cooking-mode entry until the user decides.
	conflict       *hub.Conflict
	conflictRecipe string
}

func (a *cliApp) run(ctx context.Context) {
	a.showRecipes(ctx)

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-a.ui.InputChan():
			if !ok {
				return
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if a.conflict != nil {
			a.resolveConflict(ctx, input)
			continue
		}

		a.handleInput(ctx, input)
	}
}

func (a *cliApp) handleInput(ctx context.Context, input string) {
	lower := strings.ToLower(input)

	switch lower {
	case "help":
		a.showHelp()
		return
	case "list", "recipes":
		a.showRecipes(ctx)
		return
	case "exit":
		a.hub.ExitCookingMode()
		a.ui.PrintChat("Left cooking mode. Timers stopped.")
		return
	case "dismiss", "ok":
		a.dismissAlarms()
		return
	case "open":
		a.followDeepLink(ctx)
		return
	case "status":
		a.showStatus()
		return
	case "quit", "q":
		a.quit()
		return
	}

	// Numeric selection enters cooking mode for that recipe.
	var idx int
	if _, err := fmt.Sscanf(input, "%d", &idx); err == nil {
		a.enter(ctx, idx-1)
		return
	}

	// Everything else goes through the voice vocabulary.
	cmd := a.parser.Parse(input)
	if cmd == domain.CmdUnknown {
		a.ui.PrintHint("Didn't catch that. Type 'help' for commands.")
		return
	}
	a.dispatch(ctx, cmd)
}

// dispatch routes one vocabulary command to the hub and refreshes the
// visible step when the command moved it.
func (a *cliApp) dispatch(ctx context.Context, cmd domain.VoiceCommand) {
	if a.mouth != nil {
		a.mouth.Interrupt()
	}

	if err := a.hub.ProcessVoiceCommand(ctx, cmd); err != nil {
		if err == domain.ErrNoActiveRecipe {
			a.ui.PrintHint("No active recipe. Pick one by number first.")
			return
		}
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}

	switch cmd {
	case domain.CmdNext, domain.CmdPrevious, domain.CmdStart, domain.CmdRepeat:
		a.showCurrentStep()
	}
}

// ── Cooking-mode entry ───────────────────────────────────────────

func (a *cliApp) enter(ctx context.Context, idx int) {
	summaries, err := a.recipes.List(ctx)
	if err != nil || idx < 0 || idx >= len(summaries) {
		a.ui.PrintHint("No recipe with that number.")
		return
	}
	recipeID := summaries[idx].ID

	c, err := a.hub.EnterCookingMode(ctx, recipeID)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}
	if c != nil {
		a.promptConflict(c, recipeID)
		return
	}

	r := a.hub.CurrentRecipe()
	a.ui.PrintStep(fmt.Sprintf("=== %s ===", r.Name))
	a.ui.PrintInstruction(r.Description)
	a.ui.Println("")
	a.showCurrentStep()
	a.dispatch(ctx, domain.CmdRepeat) // speak step 1
}

func (a *cliApp) promptConflict(c *hub.Conflict, recipeID string) {
	a.conflict = c
	a.conflictRecipe = recipeID

	switch c.Kind {
	case hub.ConflictOtherRecipe:
		a.ui.PrintUrgent(fmt.Sprintf("Another recipe (%s) has %d running timer(s).", c.OtherRecipeID, len(c.Timers)))
		a.ui.PrintChat("Type 'stop' to cancel them and switch, or 'keep' to stay out.")
	case hub.ConflictUntrackedTimers:
		a.ui.PrintUrgent(fmt.Sprintf("Found %d timer(s) already running for this recipe.", len(c.Timers)))
		a.ui.PrintChat("Type 'resume' to pick them up, or 'discard' to start over.")
	}
}

func (a *cliApp) resolveConflict(ctx context.Context, input string) {
	c := a.conflict
	recipeID := a.conflictRecipe
	a.conflict = nil
	a.conflictRecipe = ""

	var err error
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "stop":
		err = a.hub.ResolveStopAndStart(ctx, c, recipeID)
	case "keep":
		a.hub.ResolveKeepExisting(c)
		a.ui.PrintChat("Okay, leaving those timers alone.")
		return
	case "resume":
		err = a.hub.ResolveResumeTracking(ctx, recipeID)
	case "discard":
		err = a.hub.ResolveDiscard(ctx, c, recipeID)
	default:
		a.ui.PrintHint("Didn't catch that — entry abandoned.")
		return
	}

	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}
	a.showCurrentStep()
}

// followDeepLink jumps to the step closest to finishing, the same
// entry a notification tap would take.
func (a *cliApp) followDeepLink(ctx context.Context) {
	link, ok := a.center.DeepLink()
	if !ok {
		a.ui.PrintHint("No timers to open.")
		return
	}

	c, err := a.hub.OpenAtStep(ctx, link.RecipeID, link.StepIndex)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}
	if c != nil {
		a.promptConflict(c, link.RecipeID)
		return
	}
	a.showCurrentStep()
}

// ── Output ───────────────────────────────────────────────────────

func (a *cliApp) showCurrentStep() {
	r := a.hub.CurrentRecipe()
	if r == nil {
		return
	}
	idx := a.hub.CurrentStep()
	step := r.Steps[idx]

	header := fmt.Sprintf("Step %d/%d", step.Order, len(r.Steps))
	if step.Timed() {
		header += fmt.Sprintf(" (~%s)", speech.SpokenDuration(step.Duration))
	}
	a.ui.PrintStep(header)
	a.ui.PrintInstruction(step.Instruction)
	for _, tip := range step.Tips {
		a.ui.PrintHint("tip: " + tip)
	}
	if step.Timed() {
		a.ui.PrintHint("Say 'start timer' when you're ready.")
	}
}

func (a *cliApp) showStatus() {
	timers := a.hub.Timers()
	if len(timers) == 0 {
		a.ui.PrintHint("No timers.")
		return
	}
	a.ui.PrintStep(a.center.RenderSummary())
}

func (a *cliApp) dismissAlarms() {
	pending := a.center.PendingAlarms()
	if len(pending) == 0 && !a.ringer.Ringing() {
		a.ui.PrintHint("Nothing to dismiss.")
		return
	}
	a.ringer.DismissAll(pending)
	a.ui.PrintChat("Alarm dismissed.")
}

func (a *cliApp) showRecipes(ctx context.Context) {
	summaries, err := a.recipes.List(ctx)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error loading recipes: %v", err))
		return
	}

	a.ui.PrintStep("Available recipes:")
	a.ui.Println("")
	for i, r := range summaries {
		a.ui.PrintInstruction(fmt.Sprintf("[%d] %s", i+1, r.Name))
		a.ui.PrintHint(r.Description)
		a.ui.Println("")
	}
	a.ui.PrintChat("Pick a recipe by number to start cooking.")
}

func (a *cliApp) quit() {
	a.hub.ExitCookingMode()
	if a.mouth != nil {
		// Brief pause so any in-flight line can start.
		time.Sleep(300 * time.Millisecond)
	}
	a.ui.Quit()
}

func (a *cliApp) showHelp() {
	a.ui.PrintStep("Commands:")
	a.ui.PrintInstruction("  list / recipes   Show available recipes")
	a.ui.PrintInstruction("  1, 2, 3...       Enter cooking mode for a recipe")
	a.ui.PrintInstruction("  next / back      Move between steps")
	a.ui.PrintInstruction("  repeat           Read the current step again")
	a.ui.PrintInstruction("  ingredients      What you need for this step")
	a.ui.PrintInstruction("  description      What you're cooking")
	a.ui.PrintInstruction("  how long         This step's duration")
	a.ui.PrintInstruction("  tips             Tips for this step")
	a.ui.PrintInstruction("  what step        Where you are")
	a.ui.PrintInstruction("  start timer      Start this step's countdown")
	a.ui.PrintInstruction("  pause timer      Pause it")
	a.ui.PrintInstruction("  resume timer     Resume it")
	a.ui.PrintInstruction("  stop timer       Cancel it")
	a.ui.PrintInstruction("  check timer      Time remaining")
	a.ui.PrintInstruction("  open             Jump to the timer closest to done")
	a.ui.PrintInstruction("  dismiss / ok     Silence a finished-timer alarm")
	a.ui.PrintInstruction("  status           Show the timer summary")
	a.ui.PrintInstruction("  exit             Leave cooking mode (stops timers)")
	a.ui.PrintInstruction("  quit             Exit the app")
}
