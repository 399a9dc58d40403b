// Package lock provides keyed mutual exclusion so that read-check-write
// sequences for the same user (or user+card) never interleave, while
// different keys proceed fully in parallel.
package lock

import (
	"sync"
)

type keyMutex struct {
	mu       sync.Mutex
	refCount int
}

// KeyedLock is a registry of per-key mutexes. Entries are created on
// first use and removed once no goroutine holds or waits on them.
type KeyedLock struct {
	mu    sync.Mutex
	locks map[string]*keyMutex
}

func NewKeyedLock() *KeyedLock {
	return &KeyedLock{locks: make(map[string]*keyMutex)}
}

func (kl *KeyedLock) acquire(key string) *keyMutex {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	lock, ok := kl.locks[key]
	if !ok {
		lock = &keyMutex{}
		kl.locks[key] = lock
	}
	lock.refCount++
	return lock
}

func (kl *KeyedLock) release(key string, lock *keyMutex) {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	lock.refCount--
	if lock.refCount == 0 {
		delete(kl.locks, key)
	}
}

// Lock blocks until the key's mutex is held.
func (kl *KeyedLock) Lock(key string) {
	kl.acquire(key).mu.Lock()
}

// Unlock releases the key's mutex.
func (kl *KeyedLock) Unlock(key string) {
	kl.mu.Lock()
	lock, ok := kl.locks[key]
	kl.mu.Unlock()
	if !ok {
		return
	}
	lock.mu.Unlock()
	kl.release(key, lock)
}

// TryLock acquires the key's mutex without blocking, reporting whether
// it succeeded.
func (kl *KeyedLock) TryLock(key string) bool {
	lock := kl.acquire(key)
	if lock.mu.TryLock() {
		return true
	}
	kl.release(key, lock)
	return false
}

// WithLock runs fn while holding the key's mutex.
func (kl *KeyedLock) WithLock(key string, fn func() error) error {
	kl.Lock(key)
	defer kl.Unlock(key)
	return fn()
}
