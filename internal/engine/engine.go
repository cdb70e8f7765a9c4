package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/loykin/batchq/internal/metrics"
)

// Handler consumes one drained batch. A non-nil error marks the whole
// invocation failed; it is routed to the error observer and never
// propagated to the caller of Flush or to the auto-flush timer.
type Handler[T any] func(ctx context.Context, items []T) error

// Engine accumulates items and delivers them to a single registered
// handler in submission order, either on a timer or on demand. Each
// Engine owns its own buffer, flush state, and timer; independent
// engines can coexist in one process.
type Engine[T any] struct {
	cfg Config
	buf buffer[T]

	mu             sync.Mutex
	handler        Handler[T]
	flushing       bool
	flushRequested bool
	timerRunning   bool
	timerStop      chan struct{}
	timerWg        sync.WaitGroup
}

func New[T any](cfg Config) (*Engine[T], error) {
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine[T]{cfg: cfg}, nil
}

// Add appends one item to the buffer. It never blocks and is safe to
// call from any goroutine, including from inside a handler invocation.
func (e *Engine[T]) Add(item T) {
	e.buf.add(item)
	metrics.IncAdded(1)
}

// AddMany appends items preserving their relative order.
func (e *Engine[T]) AddMany(items []T) {
	e.buf.addMany(items)
	metrics.IncAdded(len(items))
}

// Batch returns an independent copy of the currently buffered items
// without draining them.
func (e *Engine[T]) Batch() []T {
	return e.buf.snapshot()
}

// Len reports the number of buffered items.
func (e *Engine[T]) Len() int {
	return e.buf.len()
}

// Clear discards buffered items without delivering them.
func (e *Engine[T]) Clear() {
	e.buf.clear()
}

// RegisterHandler stores the handler and starts the auto-flush timer
// if it is not already running. Re-registration replaces the handler
// but never starts a second timer.
func (e *Engine[T]) RegisterHandler(h Handler[T]) {
	e.mu.Lock()
	e.handler = h
	if !e.timerRunning {
		e.timerRunning = true
		e.timerStop = make(chan struct{})
		e.timerWg.Add(1)
		go e.autoFlushLoop(e.timerStop)
	}
	e.mu.Unlock()
}

// StopAutoFlush halts future timer-driven flushes. A flush already in
// progress runs to completion. A later RegisterHandler starts a fresh
// timer.
func (e *Engine[T]) StopAutoFlush() {
	e.mu.Lock()
	if e.timerRunning {
		close(e.timerStop)
		e.timerRunning = false
	}
	e.mu.Unlock()
	e.timerWg.Wait()
}

func (e *Engine[T]) autoFlushLoop(stop <-chan struct{}) {
	defer e.timerWg.Done()
	ticker := time.NewTicker(e.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.Flush(context.Background())
		}
	}
}

// Flush requests a drain of the buffer. It returns once all data
// drainable at invocation time, plus anything arriving during the
// resulting drain, has been offered to the handler at least once.
// Handler failures are observed, never returned: Flush itself has no
// failure mode.
//
// At most one drain loop runs per engine. A Flush arriving while one
// is in progress records the request and returns immediately; the
// in-flight loop re-checks the buffer before exiting, so late arrivals
// are picked up without waiting for the next timer tick.
func (e *Engine[T]) Flush(ctx context.Context) {
	for {
		e.mu.Lock()
		if e.handler == nil {
			e.mu.Unlock()
			slog.Warn("flush requested with no handler registered")
			return
		}
		if e.flushing {
			e.flushRequested = true
			e.mu.Unlock()
			return
		}
		if e.buf.len() == 0 {
			e.mu.Unlock()
			return
		}
		e.flushing = true
		handler := e.handler
		e.mu.Unlock()

		e.drainLoop(ctx, handler)

		e.mu.Lock()
		e.flushing = false
		again := e.flushRequested
		e.flushRequested = false
		e.mu.Unlock()
		if !again {
			return
		}
		// A request landed between the loop's last empty check and the
		// state reset. Re-run the whole algorithm so that data is not
		// stranded until the next tick.
	}
}

func (e *Engine[T]) drainLoop(ctx context.Context, handler Handler[T]) {
	for {
		chunk := e.buf.drain(e.cfg.BatchSize)
		if len(chunk) == 0 {
			return
		}
		start := time.Now()
		err := handler(ctx, chunk)
		metrics.FlushObserve(len(chunk), time.Since(start), err == nil)
		if err != nil {
			e.observe(err)
		}
	}
}

func (e *Engine[T]) observe(err error) {
	if e.cfg.OnError != nil {
		e.cfg.OnError(err)
		return
	}
	slog.Error("batch handler failed", "error", err)
}
