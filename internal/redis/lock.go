package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockNotAcquired = errors.New("slot lock not acquired")

// Locker serializes the validate-then-commit sequence of a booking for one
// doctor and start time.
type Locker interface {
	WithSlotLock(ctx context.Context, doctorID uuid.UUID, at time.Time, fn func(ctx context.Context) error) error
}

// NopLocker runs fn without any mutual exclusion. Two concurrent bookings
// of the same slot can both succeed under it.
type NopLocker struct{}

func (NopLocker) WithSlotLock(ctx context.Context, _ uuid.UUID, _ time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// SlotLocker holds a Redis key per (doctor, start) while a booking is
// validated and written. The key expires after ttl if the holder dies.
type SlotLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSlotLocker(client *redis.Client, ttl time.Duration) *SlotLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &SlotLocker{client: client, ttl: ttl}
}

func slotKey(doctorID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("lock:slot:%s:%d", doctorID, at.Unix())
}

// WithSlotLock fails fast with ErrLockNotAcquired when another caller holds
// the slot. fn gets a context bounded by the lock ttl.
func (l *SlotLocker) WithSlotLock(ctx context.Context, doctorID uuid.UUID, at time.Time, fn func(ctx context.Context) error) error {
	key := slotKey(doctorID, at)
	owner := uuid.NewString()

	err := l.client.SetArgs(ctx, key, owner, redis.SetArgs{Mode: "NX", TTL: l.ttl}).Err()
	switch {
	case errors.Is(err, redis.Nil):
		return ErrLockNotAcquired
	case err != nil:
		return fmt.Errorf("acquire %s: %w", key, err)
	}
	defer l.release(context.WithoutCancel(ctx), key, owner)

	held, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()
	return fn(held)
}

// compare-and-delete so an expired holder cannot drop a newer lock
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *SlotLocker) release(ctx context.Context, key, owner string) {
	_ = releaseScript.Run(ctx, l.client, []string{key}, owner).Err()
}
