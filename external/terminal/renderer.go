package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/bus"
	"github.com/foxseedlab/tsuyaku/internal/dialogue"
	"github.com/mattn/go-isatty"
)

const clearLine = "\r\033[K"

// Renderer writes the conversation to a terminal. On a TTY the capture state
// is kept on a single status line that is redrawn in place; otherwise a state
// line is printed only when the state changes.
type Renderer struct {
	mu        sync.Mutex
	out       io.Writer
	loc       *time.Location
	live      bool
	status    string
	lastState bus.CaptureState
}

func NewRenderer(out io.Writer, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	live := false
	if f, ok := out.(*os.File); ok {
		live = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Renderer{out: out, loc: loc, live: live}
}

func (r *Renderer) Message(m dialogue.Message) {
	ts := m.Timestamp.In(r.loc).Format("15:04:05")
	if m.IsSystem() {
		r.println(fmt.Sprintf("[%s] %s", ts, m.OriginalText))
		return
	}
	r.println(fmt.Sprintf("[%s] %s (%s): %s\n           -> %s", ts, m.Speaker, m.Language, m.OriginalText, m.TranslatedText))
}

func (r *Renderer) Notice(kind bus.Kind, text string) {
	if text == "" {
		return
	}
	r.println(noticePrefix(kind) + text)
}

func (r *Renderer) State(state bus.CaptureState, elapsed time.Duration, stats dialogue.Stats) {
	line := fmt.Sprintf("[%s] %s | Speaker 1: %d | Speaker 2: %d", state, bus.FormatElapsed(elapsed), stats.Speaker1, stats.Speaker2)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live {
		r.status = line
		_, _ = fmt.Fprint(r.out, clearLine+line)
		return
	}
	if state == r.lastState {
		return
	}
	r.lastState = state
	_, _ = fmt.Fprintln(r.out, line)
}

// Prompt prints a console reply above the status line.
func (r *Renderer) Prompt(reply string) {
	if reply == "" {
		return
	}
	r.println(reply)
}

func (r *Renderer) println(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live {
		_, _ = fmt.Fprint(r.out, clearLine)
	}
	_, _ = fmt.Fprintln(r.out, line)
	if r.live && r.status != "" {
		_, _ = fmt.Fprint(r.out, r.status)
	}
}

func noticePrefix(kind bus.Kind) string {
	switch kind {
	case bus.KindError:
		return "error: "
	case bus.KindStatus:
		return "> "
	}
	return "* "
}
