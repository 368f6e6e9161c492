package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/stratpilot/stratpilot/internal/stream"
)

// Reporter provides progress feedback while a journey runs from the CLI.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive
// terminal, or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Running analysis"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	total int
}

func (r *CIReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(os.Stderr, "Starting journey execution (%d steps)\n", total)
}

func (r *CIReporter) Update(current int, message string) {
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", current, r.total, message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(os.Stderr, "Journey execution complete")
}

// Publisher adapts a Reporter to the event stream so CLI runs reuse the same
// orchestration path as HTTP clients. Stream progress is already a percent in
// [0, 100]. Start is called on the first event and Finish on the terminal one.
func Publisher(r Reporter) stream.Publisher {
	started := false
	return stream.PublisherFunc(func(e stream.Event) {
		if !started {
			r.Start(100)
			started = true
		}
		msg := e.Message
		if msg == "" {
			msg = string(e.Type)
		}
		switch e.Type {
		case stream.EventProgress, stream.EventQuery, stream.EventSynthesis, stream.EventContext:
			r.Update(int(e.Progress), msg)
		case stream.EventComplete:
			r.Update(100, msg)
			r.Finish()
		case stream.EventError:
			r.Update(int(e.Progress), "error: "+msg)
			r.Finish()
		}
	})
}
