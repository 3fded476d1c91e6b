package core

import (
	"book-store/internal/core/model"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultToastDelay = 2000 * time.Millisecond

// scheduleFunc runs f after d and returns a stop func with time.Timer.Stop semantics.
type scheduleFunc func(d time.Duration, f func()) (stop func() bool)

func afterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Toaster holds at most one notice. Show replaces the current notice and
// cancels its pending clear; a clear only applies to the notice it was
// scheduled for.
type Toaster struct {
	mu       sync.Mutex
	delay    time.Duration
	current  *model.Notice
	stop     func() bool
	schedule scheduleFunc
	now      func() time.Time
	onChange func(*model.Notice)
}

func NewToaster(delay time.Duration, onChange func(*model.Notice)) *Toaster {
	if delay <= 0 {
		delay = DefaultToastDelay
	}
	return &Toaster{delay: delay, schedule: afterFunc, now: time.Now, onChange: onChange}
}

func (t *Toaster) Show(msg string, kind model.NoticeKind) model.Notice {
	n := model.Notice{ID: uuid.NewString(), Message: msg, Kind: kind}

	t.mu.Lock()
	n.ShownAt = t.now()
	if t.stop != nil {
		t.stop()
	}
	t.current = &n
	id := n.ID
	t.stop = t.schedule(t.delay, func() { t.expire(id) })
	t.mu.Unlock()

	t.changed(&n)
	return n
}

// Current returns the notice on display, if any.
func (t *Toaster) Current() (model.Notice, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return model.Notice{}, false
	}
	return *t.current, true
}

// Close cancels any pending clear without notifying.
func (t *Toaster) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		t.stop()
		t.stop = nil
	}
}

func (t *Toaster) expire(id string) {
	t.mu.Lock()
	if t.current == nil || t.current.ID != id {
		// superseded; a newer notice owns the slot
		t.mu.Unlock()
		return
	}
	t.current = nil
	t.stop = nil
	t.mu.Unlock()

	t.changed(nil)
}

func (t *Toaster) changed(n *model.Notice) {
	if t.onChange != nil {
		t.onChange(n)
	}
}
