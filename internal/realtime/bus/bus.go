package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/yungbote/calmpath-backend/internal/realtime"
)

// Bus carries engagement events between API instances so an SSE stream held by one
// instance sees events produced by another.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

// localBus delivers in-process. Used when no Redis address is configured.
type localBus struct {
	mu       sync.RWMutex
	handlers []func(realtime.SSEMessage)
}

func NewLocalBus() Bus { return &localBus{} }

func (b *localBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.handlers {
		h(msg)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, onMsg)
	return nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = nil
	return nil
}
