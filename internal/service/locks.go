package service

import "sync"

// TerminalLocks serializes state mutations per terminal id. Entries are
// reference counted and dropped once no request holds or waits on them.
type TerminalLocks struct {
	mu    sync.Mutex
	locks map[string]*terminalLock
}

type terminalLock struct {
	mu   sync.Mutex
	refs int
}

func NewTerminalLocks() *TerminalLocks {
	return &TerminalLocks{locks: make(map[string]*terminalLock)}
}

// Lock blocks until the terminal is free and returns its unlock func.
func (l *TerminalLocks) Lock(terminalID string) func() {
	l.mu.Lock()
	tl, ok := l.locks[terminalID]
	if !ok {
		tl = &terminalLock{}
		l.locks[terminalID] = tl
	}
	tl.refs++
	l.mu.Unlock()

	tl.mu.Lock()
	return func() {
		tl.mu.Unlock()
		l.mu.Lock()
		tl.refs--
		if tl.refs == 0 {
			delete(l.locks, terminalID)
		}
		l.mu.Unlock()
	}
}

func (l *TerminalLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
