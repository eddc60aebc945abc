// Package task runs background work one task at a time in submission
// order. A task submitted under a key supersedes earlier tasks with the
// same key.
package task

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrCancelled is the error of a task cancelled before it finished.
	ErrCancelled = errors.New("task cancelled")
	// ErrClosed is returned when submitting to a closed queue.
	ErrClosed = errors.New("task queue closed")
)

// State is the lifecycle stage of a task.
type State int

const (
	Queued State = iota
	Running
	Succeeded
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Queued:
		return "queued"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Func is the body of a task. It should return promptly once ctx is done.
type Func func(ctx context.Context) error

// Handle tracks one submitted task.
type Handle struct {
	name   string
	key    string
	fn     Func
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state State
	err   error
}

func newHandle(parent context.Context, key, name string, fn Func) *Handle {
	ctx, cancel := context.WithCancel(parent)
	return &Handle{
		name:   name,
		key:    key,
		fn:     fn,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Name returns the task name.
func (h *Handle) Name() string { return h.name }

// Done is closed when the task has finished.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the task has finished and returns its error.
func (h *Handle) Wait() error {
	<-h.done
	return h.Err()
}

// Err returns the task error, nil while the task is unfinished.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// State returns the current state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Cancel cancels the task. A queued task finishes immediately without
// running; a running task sees its context cancelled.
func (h *Handle) Cancel() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == Queued {
		h.finishLocked(Cancelled, ErrCancelled)
	}
}

// start moves a queued task to Running. It reports false when the task
// was cancelled while waiting.
func (h *Handle) start() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != Queued {
		return false
	}
	h.state = Running
	return true
}

func (h *Handle) finish(state State, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.finishLocked(state, err)
}

func (h *Handle) finishLocked(state State, err error) {
	if h.state != Queued && h.state != Running {
		return
	}
	h.state = state
	h.err = err
	h.cancel()
	close(h.done)
}

// run calls the task body, turning a panic into an error.
func (h *Handle) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", h.name, r)
		}
	}()
	return h.fn(h.ctx)
}

// Queue executes tasks on a single worker goroutine.
type Queue struct {
	ctx    context.Context
	cancel context.CancelFunc
	wake   chan struct{}
	exited chan struct{}
	logger *zap.Logger

	mu      sync.Mutex
	pending []*Handle
	byKey   map[string]*Handle
	closed  bool
}

// NewQueue creates a queue and starts its worker.
func NewQueue() *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		ctx:    ctx,
		cancel: cancel,
		wake:   make(chan struct{}, 1),
		exited: make(chan struct{}),
		logger: zap.NewNop(),
		byKey:  make(map[string]*Handle),
	}
	go q.work()
	return q
}

// SetLogger sets the logger for task lifecycle messages.
func (q *Queue) SetLogger(l *zap.Logger) {
	q.mu.Lock()
	q.logger = l
	q.mu.Unlock()
}

// Submit enqueues fn.
func (q *Queue) Submit(name string, fn Func) (*Handle, error) {
	return q.submit("", name, fn)
}

// SubmitExclusive cancels any queued or running task submitted under key
// and enqueues fn in its place.
func (q *Queue) SubmitExclusive(key, name string, fn Func) (*Handle, error) {
	return q.submit(key, name, fn)
}

func (q *Queue) submit(key, name string, fn Func) (*Handle, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, ErrClosed
	}
	h := newHandle(q.ctx, key, name, fn)
	var superseded *Handle
	if key != "" {
		superseded = q.byKey[key]
		q.byKey[key] = h
	}
	q.pending = append(q.pending, h)
	logger := q.logger
	q.mu.Unlock()

	if superseded != nil {
		logger.Debug("superseding task", zap.String("key", key), zap.String("task", superseded.name))
		superseded.Cancel()
	}
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return h, nil
}

// Close cancels every queued and running task and waits for the worker
// to exit.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.exited
		return
	}
	q.closed = true
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	q.cancel()
	for _, h := range pending {
		h.Cancel()
	}
	<-q.exited
}

func (q *Queue) next() *Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	h := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	return h
}

func (q *Queue) work() {
	defer close(q.exited)
	for {
		h := q.next()
		if h == nil {
			select {
			case <-q.wake:
				continue
			case <-q.ctx.Done():
				return
			}
		}
		q.execute(h)
	}
}

func (q *Queue) execute(h *Handle) {
	if !h.start() {
		q.release(h)
		return
	}
	q.mu.Lock()
	logger := q.logger
	q.mu.Unlock()

	logger.Debug("task started", zap.String("task", h.name))
	err := h.run()
	switch {
	case h.ctx.Err() != nil && errors.Is(err, context.Canceled):
		h.finish(Cancelled, ErrCancelled)
	case err != nil:
		logger.Warn("task failed", zap.String("task", h.name), zap.Error(err))
		h.finish(Failed, err)
	default:
		h.finish(Succeeded, nil)
	}
	logger.Debug("task finished", zap.String("task", h.name), zap.Stringer("state", h.State()))
	q.release(h)
}

// release forgets h as the current holder of its key.
func (q *Queue) release(h *Handle) {
	if h.key == "" {
		return
	}
	q.mu.Lock()
	if q.byKey[h.key] == h {
		delete(q.byKey, h.key)
	}
	q.mu.Unlock()
}
