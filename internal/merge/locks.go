// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import "sync"

// PaperLocks hands out one mutex per paper id. Entries are reference
// counted and dropped once no goroutine holds or waits on them.
type PaperLocks struct {
	mu    sync.Mutex
	locks map[int64]*paperLock
}

type paperLock struct {
	mu   sync.Mutex
	refs int
}

// Lock blocks until the caller is the only holder for pid and returns the
// matching unlock function.
func (l *PaperLocks) Lock(pid int64) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*paperLock)
	}
	pl, ok := l.locks[pid]
	if !ok {
		pl = &paperLock{}
		l.locks[pid] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()
	return func() {
		pl.mu.Unlock()
		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, pid)
		}
		l.mu.Unlock()
	}
}

// held returns the number of paper ids with a live entry.
func (l *PaperLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
