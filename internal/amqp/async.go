package amqp

import (
	"context"
	"sync"
	"time"

	applog "mykharche/internal/log"
)

// AsyncPublisher hands events to a background goroutine so request
// handlers never wait on the broker. Events are dropped when the buffer is full.
type AsyncPublisher struct {
	inner  Publisher
	queue  chan EntryEvent
	logger *applog.Logger
	wg     sync.WaitGroup
	once   sync.Once
}

func NewAsyncPublisher(inner Publisher, buffer int, logger *applog.Logger) *AsyncPublisher {
	if buffer < 1 {
		buffer = 1
	}
	p := &AsyncPublisher{
		inner:  inner,
		queue:  make(chan EntryEvent, buffer),
		logger: logger.WithComponent(applog.ComponentEvents),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *AsyncPublisher) run() {
	defer p.wg.Done()
	for event := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := p.inner.Publish(ctx, event); err != nil {
			p.logger.Warn("Failed to publish entry event", "type", event.Type, applog.FieldError, err)
		}
		cancel()
	}
}

// Publish enqueues event and returns immediately.
func (p *AsyncPublisher) Publish(_ context.Context, event EntryEvent) error {
	select {
	case p.queue <- event:
	default:
		p.logger.Warn("Event buffer full, dropping event", "type", event.Type)
	}
	return nil
}

// Close flushes queued events and closes the underlying publisher.
func (p *AsyncPublisher) Close() error {
	var err error
	p.once.Do(func() {
		close(p.queue)
		p.wg.Wait()
		err = p.inner.Close()
	})
	return err
}
