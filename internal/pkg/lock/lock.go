// Package lock provides per-key exclusive locks. The bot keys them by chat id
// so every action on one game is serialized while different chats never wait
// on each other.
package lock

import (
	"context"
	"sync"
	"time"
)

// KeyLock hands out one exclusive slot per key.
// Each slot is a one-element channel, so waiting can be abandoned when the
// caller's context ends.
type KeyLock struct {
	slots sync.Map // map[int64]chan struct{}
}

// NewKeyLock creates an empty KeyLock.
func NewKeyLock() *KeyLock {
	return &KeyLock{}
}

func (kl *KeyLock) slot(key int64) chan struct{} {
	if v, ok := kl.slots.Load(key); ok {
		return v.(chan struct{})
	}
	actual, _ := kl.slots.LoadOrStore(key, make(chan struct{}, 1))
	return actual.(chan struct{})
}

// Lock blocks until the key is free.
func (kl *KeyLock) Lock(key int64) {
	kl.slot(key) <- struct{}{}
}

// Unlock releases the key. Unlocking a key that is not held is a no-op.
func (kl *KeyLock) Unlock(key int64) {
	select {
	case <-kl.slot(key):
	default:
	}
}

// TryLock acquires the key if it is free and reports whether it did.
func (kl *KeyLock) TryLock(key int64) bool {
	select {
	case kl.slot(key) <- struct{}{}:
		return true
	default:
		return false
	}
}

// LockContext waits for the key until ctx is done or timeout elapses.
// A zero timeout waits for ctx alone.
func (kl *KeyLock) LockContext(ctx context.Context, key int64, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case kl.slot(key) <- struct{}{}:
		return nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return ErrLockTimeout
		}
		return ctx.Err()
	}
}

// WithLock runs fn while holding the key.
func (kl *KeyLock) WithLock(key int64, fn func() error) error {
	kl.Lock(key)
	defer kl.Unlock(key)
	return fn()
}

// WithLockContext runs fn while holding the key, giving up with
// ErrLockTimeout if the key cannot be taken in time.
func (kl *KeyLock) WithLockContext(ctx context.Context, key int64, timeout time.Duration, fn func() error) error {
	if err := kl.LockContext(ctx, key, timeout); err != nil {
		return err
	}
	defer kl.Unlock(key)
	return fn()
}

// IsLocked reports whether the key is currently held.
func (kl *KeyLock) IsLocked(key int64) bool {
	v, ok := kl.slots.Load(key)
	if !ok {
		return false
	}
	return len(v.(chan struct{})) == 1
}
