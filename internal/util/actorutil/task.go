package actorutil

import (
	"errors"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/primetalk/goio/io"
)

// SafeBackgroundTask runs blocking work off the actor mailbox and delivers
// the outcome back as a message.
type SafeBackgroundTask[T any] struct {
	root      *actor.RootContext
	fn        func() (*T, error)
	timeout   *time.Duration
	recover   func(error) T
	onSuccess func(T)
}

func NewBackgroundTask[T any](ctx actor.Context, fn func() (*T, error)) *SafeBackgroundTask[T] {
	return &SafeBackgroundTask[T]{
		root: ctx.ActorSystem().Root,
		fn:   fn,
	}
}

func (t *SafeBackgroundTask[T]) WithTimeout(timeout time.Duration) *SafeBackgroundTask[T] {
	t.timeout = &timeout
	return t
}

// Recover maps errors, timeouts and panics into a regular result. Without
// it a failed task delivers nothing.
func (t *SafeBackgroundTask[T]) Recover(fn func(error) T) *SafeBackgroundTask[T] {
	t.recover = fn
	return t
}

// PipeTo starts the task in its own goroutine. The result, or the recovered
// value on failure, is sent to pid.
func (t *SafeBackgroundTask[T]) PipeTo(pid *actor.PID) {
	t.onSuccess = func(value T) {
		t.root.Send(pid, value)
	}
	go t.Run()
}

// Run blocks until the task completes.
func (t *SafeBackgroundTask[T]) Run() {
	bgFn := io.Eval(t.fn)
	bg := io.Map(bgFn, func(a *T) T {
		if a != nil {
			return *a
		}
		panic(errors.New("result is nil"))
	})
	if t.timeout != nil {
		bg = io.WithTimeout[T](*t.timeout)(bg)
	}
	result := io.RunSync(bg)
	value := result.Value
	if result.Error != nil {
		if t.recover == nil {
			return
		}
		value = t.recover(result.Error)
	}
	if t.onSuccess != nil {
		t.onSuccess(value)
	}
}
