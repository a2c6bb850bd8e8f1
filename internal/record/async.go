package record

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// DefaultQueueSize is how many records an Async sink holds for its writer.
const DefaultQueueSize = 256

// Async hands records to a single writer goroutine through a bounded queue.
// Write never blocks the caller: when the queue is full the record is dropped
// and counted. Errors from the wrapped sink are logged.
type Async struct {
	sink   Sink
	logger *zap.Logger
	queue  chan Record
	done   chan struct{}

	dropped   atomic.Int64
	closeOnce sync.Once
	closeErr  error
}

// NewAsync starts the writer for sink. A non-positive size uses
// DefaultQueueSize.
func NewAsync(sink Sink, size int, logger *zap.Logger) *Async {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Async{
		sink:   sink,
		logger: logger,
		queue:  make(chan Record, size),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for r := range a.queue {
		if err := a.sink.Write(r); err != nil {
			a.logger.Warn("mirror write failed", zap.Error(err))
		}
	}
}

// Write queues r. It always returns nil.
func (a *Async) Write(r Record) error {
	select {
	case a.queue <- r:
	default:
		if a.dropped.Add(1) == 1 {
			a.logger.Warn("mirror queue full, dropping records", zap.Int("capacity", cap(a.queue)))
		}
	}
	return nil
}

// Dropped returns how many records were discarded on a full queue.
func (a *Async) Dropped() int64 {
	return a.dropped.Load()
}

// Close drains the queue, waits for the writer and closes the wrapped sink.
// Write must not be called after Close.
func (a *Async) Close() error {
	a.closeOnce.Do(func() {
		close(a.queue)
		<-a.done
		if n := a.dropped.Load(); n > 0 {
			a.logger.Warn("mirror dropped records", zap.Int64("dropped", n))
		}
		a.closeErr = a.sink.Close()
	})
	return a.closeErr
}
