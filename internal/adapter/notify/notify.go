package notify

import (
	"log/slog"
	"sync"

	"github.com/niksmo/ecom-admin/internal/core/port"
)

var _ port.Notifier = (*Toasts)(nil)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Toast struct {
	Level   Level
	Message string
}

// Toasts renders toasts as slog records and keeps the most recent ones
// for the status endpoint.
type Toasts struct {
	log *slog.Logger

	mu     sync.Mutex
	recent []Toast
	keep   int
}

func New(log *slog.Logger, keep int) *Toasts {
	if log == nil {
		log = slog.Default()
	}
	if keep < 0 {
		keep = 0
	}
	return &Toasts{log: log.With("surface", "toast"), keep: keep}
}

func (t *Toasts) Success(msg string) {
	t.log.Info(msg, "kind", LevelSuccess)
	t.push(Toast{LevelSuccess, msg})
}

func (t *Toasts) Error(msg string) {
	t.log.Warn(msg, "kind", LevelError)
	t.push(Toast{LevelError, msg})
}

// Recent returns the kept toasts, oldest first.
func (t *Toasts) Recent() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Toast, len(t.recent))
	copy(out, t.recent)
	return out
}

func (t *Toasts) push(toast Toast) {
	if t.keep == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recent = append(t.recent, toast)
	if len(t.recent) > t.keep {
		t.recent = t.recent[len(t.recent)-t.keep:]
	}
}
