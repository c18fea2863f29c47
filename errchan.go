package ocidrv

import (
	"context"
)

// ErrorHandler receives the single outermost error (or warning) raised by
// a public call. Only the outermost frame invokes it -- nested nil-depth
// bookkeeping is handled by callDepth, the Go analogue of the backend's
// per-thread "current error" slot plus call-depth counter.
type ErrorHandler func(err *Error)

type callDepthKey struct{}

// callDepth is the goroutine-local (here: context-local) substitute for
// the backend's thread-local error slot. Go has no stable OS-thread
// affinity for goroutines, so the depth and pending error travel on the
// context instead of a pthread key.
type callDepth struct {
	depth   int
	pending *Error
	handler ErrorHandler
	warnOn  bool
}

// withCallDepth ensures ctx carries a *callDepth, creating one on first
// entry into the public API.
func withCallDepth(ctx context.Context, handler ErrorHandler, warnOn bool) (context.Context, *callDepth) {
	if cd, ok := ctx.Value(callDepthKey{}).(*callDepth); ok {
		cd.depth++
		return ctx, cd
	}
	cd := &callDepth{depth: 1, handler: handler, warnOn: warnOn}
	return context.WithValue(ctx, callDepthKey{}, cd), cd
}

// enter increments the call depth for an already-initialised chain.
func (cd *callDepth) enter() { cd.depth++ }

// exit decrements the call depth; at depth zero it dispatches the pending
// error (if any) to the registered handler, unless it is a warning and
// warnings are not enabled for this call.
func (cd *callDepth) exit() {
	cd.depth--
	if cd.depth > 0 {
		return
	}
	err := cd.pending
	cd.pending = nil
	if err == nil {
		return
	}
	if err.Warning && !cd.warnOn {
		return
	}
	if cd.handler != nil {
		cd.handler(err)
	}
}

// record stashes err as the pending error for this call chain, replacing
// any prior pending error the way a fresh OCI error overwrites the
// thread's error struct.
func (cd *callDepth) record(err *Error) {
	if err == nil {
		return
	}
	cd.pending = err
}
