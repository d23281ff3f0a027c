// Package notify is the console's transient toast layer: short success or
// error messages raised at operation boundaries.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Default display durations per level.
const (
	SuccessTTL = 3 * time.Second
	ErrorTTL   = 4 * time.Second
	InfoTTL    = 4 * time.Second
)

// Notification is one toast.
type Notification struct {
	ID        string
	Level     Level
	Message   string
	CreatedAt time.Time
	TTL       time.Duration
}

// Expired reports whether n should no longer be shown at now.
func (n Notification) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) >= n.TTL
}

// Notifier receives notifications.
type Notifier interface {
	Notify(n Notification)
}

// New builds a notification stamped with a fresh id, the current time and
// the level's default TTL.
func New(level Level, msg string) Notification {
	ttl := InfoTTL
	switch level {
	case LevelSuccess:
		ttl = SuccessTTL
	case LevelError:
		ttl = ErrorTTL
	}
	return Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   msg,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}
}

// Success sends a success notification to n.
func Success(n Notifier, msg string) { n.Notify(New(LevelSuccess, msg)) }

// Error sends an error notification to n.
func Error(n Notifier, msg string) { n.Notify(New(LevelError, msg)) }

// Info sends an informational notification to n.
func Info(n Notifier, msg string) { n.Notify(New(LevelInfo, msg)) }

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(Notification) {}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, target := range m {
		target.Notify(n)
	}
}

// Writer prints notifications as single lines.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter returns a Writer printing to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) Notify(n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()

	mark := "i"
	switch n.Level {
	case LevelSuccess:
		mark = "✔"
	case LevelError:
		mark = "✖"
	}
	fmt.Fprintf(w.out, "%s %s\n", mark, n.Message)
}

// Center keeps the currently visible toasts and logs each one.
type Center struct {
	mu     sync.Mutex
	active []Notification
	log    *zap.Logger
	now    func() time.Time
}

// NewCenter returns an empty Center. A nil logger disables logging.
func NewCenter(log *zap.Logger) *Center {
	if log == nil {
		log = zap.NewNop()
	}
	return &Center{log: log, now: time.Now}
}

func (c *Center) Notify(n Notification) {
	if n.Level == LevelError {
		c.log.Warn("notification", zap.String("level", n.Level.String()), zap.String("message", n.Message))
	} else {
		c.log.Debug("notification", zap.String("level", n.Level.String()), zap.String("message", n.Message))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked(c.now())
	c.active = append(c.active, n)
}

// Active returns the toasts still visible, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked(c.now())
	out := make([]Notification, len(c.active))
	copy(out, c.active)
	return out
}

// Dismiss hides the toast with the given id.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.active {
		if n.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return
		}
	}
}

func (c *Center) pruneLocked(now time.Time) {
	kept := c.active[:0]
	for _, n := range c.active {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	c.active = kept
}

// Recorder stores every notification it receives.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

// All returns a copy of the received notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.all))
	copy(out, r.all)
	return out
}

// Messages returns the messages received at level.
func (r *Recorder) Messages(level Level) []string {
	var out []string
	for _, n := range r.All() {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.all) == 0 {
		return Notification{}, false
	}
	return r.all[len(r.all)-1], true
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = nil
}
