package services

import "sync"

// TitleLocker serialises writers to the same document title.
// Different titles never contend. Entries are released when unused.
type TitleLocker struct {
	mu    sync.Mutex
	locks map[string]*titleLock
}

type titleLock struct {
	mu   sync.Mutex
	refs int
}

// NewTitleLocker creates an empty locker.
func NewTitleLocker() *TitleLocker {
	return &TitleLocker{locks: make(map[string]*titleLock)}
}

// Lock blocks until the title is free and returns its unlock function.
func (l *TitleLocker) Lock(title string) func() {
	l.mu.Lock()
	tl, ok := l.locks[title]
	if !ok {
		tl = &titleLock{}
		l.locks[title] = tl
	}
	tl.refs++
	l.mu.Unlock()

	tl.mu.Lock()

	return func() {
		tl.mu.Unlock()

		l.mu.Lock()
		tl.refs--
		if tl.refs == 0 {
			delete(l.locks, title)
		}
		l.mu.Unlock()
	}
}

// held returns the number of titles with active or waiting holders.
func (l *TitleLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
