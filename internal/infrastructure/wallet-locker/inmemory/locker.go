package inmemorylocker

import (
	"context"
	"sync"

	"github.com/beastmint/mintd/internal/core/ports"
)

type locker struct {
	lock  sync.Mutex
	slots map[string]chan struct{}
}

func NewLocker() ports.WalletLocker {
	return &locker{
		slots: make(map[string]chan struct{}),
	}
}

func (l *locker) Lock(ctx context.Context, wallet string) (func(), error) {
	slot := l.slot(wallet)

	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-slot })
	}, nil
}

func (l *locker) Close() {}

func (l *locker) slot(wallet string) chan struct{} {
	l.lock.Lock()
	defer l.lock.Unlock()

	slot, ok := l.slots[wallet]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[wallet] = slot
	}
	return slot
}
