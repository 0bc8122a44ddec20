package service

import (
	"sync"

	"github.com/google/uuid"
)

// projectLocks serializes all story-shelf mutations of one project. Two
// concurrent shelf transitions on the same project must not interleave or the
// dense-position invariant can break; operations on different projects stay
// independent.
type projectLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newProjectLocks() *projectLocks {
	return &projectLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the exclusive section for (ownerUser, projectID) and returns
// the unlock function. Lock entries are kept for the process lifetime; the
// working set is bounded by the number of active projects.
func (l *projectLocks) lock(ownerUser string, projectID uuid.UUID) func() {
	key := ownerUser + "/" + projectID.String()

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
