package progress

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"media2text/internal/app/model"
	"media2text/internal/app/pipeline"
)

// stages lists the states a successful job passes through after validation.
var stages = []model.JobState{
	model.StateValidated,
	model.StateAcquiring,
	model.StateAcquired,
	model.StateTranscribing,
	model.StateTranscribed,
	model.StatePackaging,
	model.StatePackaged,
	model.StateDelivered,
	model.StateCleaned,
}

type Config struct {
	Enabled bool
	Writer  io.Writer
}

// Tracker renders a job's lifecycle as a single progress bar. A disabled
// Tracker still records the last state and message.
type Tracker struct {
	container *mpb.Progress
	bar       *mpb.Bar
	enabled   bool

	mu      sync.Mutex
	state   model.JobState
	message string
	steps   int
}

func NewTracker(config Config, description string) *Tracker {
	t := &Tracker{state: model.StateCreated}
	if !config.Enabled {
		return t
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	t.container = mpb.New(
		mpb.WithOutput(writer),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	t.bar = t.container.AddBar(int64(len(stages)),
		mpb.PrependDecorators(
			decor.Name(description+" ", decor.WC{W: len(description) + 1, C: decor.DindentRight}),
			decor.Any(func(decor.Statistics) string { return t.label() }, decor.WCSyncWidthR),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace), " ✓"),
			decor.OnAbort(decor.Name(""), " ✗"),
		),
	)
	t.enabled = true
	return t
}

// Observe is a pipeline.Observer. The bar is updated outside the lock
// because its decorators read the tracker while rendering.
func (t *Tracker) Observe(e pipeline.Event) {
	t.mu.Lock()
	if e.Progress != nil {
		t.steps++
		t.message = e.Progress.Message
		t.mu.Unlock()
		return
	}
	t.state = e.State
	t.mu.Unlock()

	if !t.enabled {
		return
	}
	if e.State == model.StateFailed {
		t.bar.Abort(false)
		return
	}
	for i, s := range stages {
		if s == e.State {
			t.bar.SetCurrent(int64(i + 1))
		}
	}
}

func (t *Tracker) label() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == model.StateTranscribing && t.message != "" {
		return string(t.state) + ": " + t.message
	}
	return string(t.state)
}

// State returns the last state observed.
func (t *Tracker) State() model.JobState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Steps returns the number of transcription progress items observed.
func (t *Tracker) Steps() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.steps
}

// Wait blocks until the bar has finished rendering. A bar that never
// completed is aborted first so Wait cannot hang.
func (t *Tracker) Wait() {
	if !t.enabled {
		return
	}
	if !t.bar.Completed() {
		t.bar.Abort(false)
	}
	t.container.Wait()
}

func IsTTY(writer io.Writer) bool {
	if writer == nil {
		return false
	}

	if file, ok := writer.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func ShouldShowProgress(forced bool) bool {
	if forced {
		return true
	}

	return IsTTY(os.Stderr)
}
