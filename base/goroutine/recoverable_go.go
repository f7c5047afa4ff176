package goroutine

import (
	"runtime/debug"

	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/base/log"
)

type PanicEvent struct {
	Panic interface{}
	Stack []byte
}

type RecoverableGoOptions struct {
	beforeStart    *func()
	afterEnded     *func()
	afterRecovered *func(panic interface{}, stack []byte)
}

type RecoverableGoOptionsFunc = func(*RecoverableGoOptions)

func getRecoverableGoOptions(fns ...RecoverableGoOptionsFunc) RecoverableGoOptions {
	opts := RecoverableGoOptions{}
	for _, fn := range fns {
		fn(&opts)
	}
	return opts
}

func WithBeforeStart(f func()) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) {
		options.beforeStart = &f
	}
}

func WithAfterEnded(f func()) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) {
		options.afterEnded = &f
	}
}

func WithAfterRecovered(f func(panic interface{}, stack []byte)) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) {
		options.afterRecovered = &f
	}
}

// Recoverable wraps f so that a panic is logged through c instead of crashing the
// process. The returned channel gets the PanicEvent, or is closed when f returns.
// It fits worker pools that take a plain func().
func Recoverable(c ctx.Ctx, f func(), fns ...RecoverableGoOptionsFunc) (func(), <-chan *PanicEvent) {
	opts := getRecoverableGoOptions(fns...)
	panicChan := make(chan *PanicEvent, 1)

	task := func() {
		defer func() {
			if opts.afterEnded != nil {
				(*opts.afterEnded)()
			}

			if p := recover(); p != nil {
				stack := debug.Stack()

				c.WithFields(log.Fields{
					"err":   p,
					"stack": string(stack),
				}).Error("panic")

				if opts.afterRecovered != nil {
					(*opts.afterRecovered)(p, stack)
				}

				panicChan <- &PanicEvent{p, stack}
			} else {
				close(panicChan)
			}
		}()

		if opts.beforeStart != nil {
			(*opts.beforeStart)()
		}

		f()
	}
	return task, panicChan
}

// RecoverableGo runs f in a new goroutine
func RecoverableGo(c ctx.Ctx, f func(), fns ...RecoverableGoOptionsFunc) <-chan *PanicEvent {
	task, panicChan := Recoverable(c, f, fns...)
	go task()
	return panicChan
}
