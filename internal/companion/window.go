package companion

import (
	"context"
	"sync"
)

// Window holds the single open companion session. Opening the window again
// replaces (and closes) whatever session was open before.
type Window struct {
	mu  sync.Mutex
	cfg Config
	cur *Session
}

// NewWindow returns a closed window that opens sessions from cfg.
func NewWindow(cfg Config) *Window {
	return &Window{cfg: cfg}
}

// Open starts a fresh session, closing the previous one.
func (w *Window) Open(ctx context.Context) *Session {
	s := Open(w.cfg)
	w.mu.Lock()
	prev := w.cur
	w.cur = s
	w.mu.Unlock()

	if prev != nil {
		prev.Close(ctx)
	}
	return s
}

// Get returns the open session if its ID is id.
func (w *Window) Get(id string) (*Session, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cur == nil || w.cur.ID != id {
		return nil, false
	}
	return w.cur, true
}

// Close closes the session with the given ID. It reports whether that
// session was the open one.
func (w *Window) Close(ctx context.Context, id string) bool {
	w.mu.Lock()
	s := w.cur
	if s == nil || s.ID != id {
		w.mu.Unlock()
		return false
	}
	w.cur = nil
	w.mu.Unlock()

	s.Close(ctx)
	return true
}

// Shutdown closes whatever session is open.
func (w *Window) Shutdown(ctx context.Context) {
	w.mu.Lock()
	s := w.cur
	w.cur = nil
	w.mu.Unlock()
	if s != nil {
		s.Close(ctx)
	}
}
