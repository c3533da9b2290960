package docstore

import "sync"

// keyedLocks hands out one RWMutex per document id.
// Entries are created on first use and kept for the store's lifetime, so two callers
// asking for the same id always share the same mutex.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.RWMutex
}

func (k *keyedLocks) get(id int64) *sync.RWMutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[int64]*sync.RWMutex)
	}
	l, ok := k.locks[id]
	if !ok {
		l = &sync.RWMutex{}
		k.locks[id] = l
	}
	return l
}

func (k *keyedLocks) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
