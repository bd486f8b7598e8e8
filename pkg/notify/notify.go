// Package notify defines the notification collaborator the generator uses to
// surface failures to the operator (the toast service of the admin UI).
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Well-known notice kinds raised by the generator itself. Kinds reported by
// the compile endpoint are passed through verbatim.
const (
	KindNetwork  = "network"
	KindFragment = "fragment"
)

// Notice is a single operator-facing message.
type Notice struct {
	Kind    string
	Message string
}

// Notifier receives operator-facing notices.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, notice Notice)

// Notify calls f.
func (f Func) Notify(ctx context.Context, notice Notice) {
	if f != nil {
		f(ctx, notice)
	}
}

// Nop discards every notice.
var Nop Notifier = Func(func(context.Context, Notice) {})

// Logger writes notices to a zap logger at warn level.
type Logger struct {
	log *zap.Logger
}

// NewLogger wraps logger; a nil logger discards.
func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{log: logger}
}

// Notify logs the notice.
func (l *Logger) Notify(_ context.Context, notice Notice) {
	l.log.Warn(notice.Message, zap.String("kind", notice.Kind))
}

// Recorder keeps every notice it receives. It is safe for concurrent use and
// is mostly useful in tests.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify records the notice.
func (r *Recorder) Notify(_ context.Context, notice Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Multi fans a notice out to several notifiers in order.
func Multi(notifiers ...Notifier) Notifier {
	return Func(func(ctx context.Context, notice Notice) {
		for _, n := range notifiers {
			if n != nil {
				n.Notify(ctx, notice)
			}
		}
	})
}
