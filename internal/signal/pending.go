package signal

import (
	"context"
)

// Outcome is what a finished load hands over.
type Outcome struct {
	Result Result
	Err    error
}

// Pending is an in-flight load. Its outcome is handed over exactly once:
// the first Poll after completion takes it and every later Poll reports
// nothing. The worker never shares partially built state with the poller.
type Pending struct {
	path   string
	cancel context.CancelFunc
	done   chan struct{}
	out    chan Outcome
}

// Start runs load on a new goroutine.
func Start(ctx context.Context, path string, load func(context.Context) (Result, error)) *Pending {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pending{
		path:   path,
		cancel: cancel,
		done:   make(chan struct{}),
		out:    make(chan Outcome, 1),
	}
	go func() {
		defer close(p.done)
		defer cancel()
		res, err := load(ctx)
		p.out <- Outcome{Result: res, Err: err}
	}()
	return p
}

// LoadAsync starts Load for path in the background.
func LoadAsync(ctx context.Context, path string, opts Options) *Pending {
	return Start(ctx, path, func(ctx context.Context) (Result, error) {
		return Load(ctx, path, opts)
	})
}

// Path is the file being loaded.
func (p *Pending) Path() string { return p.path }

// Done is closed once the worker has finished.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Poll returns the outcome without blocking. It reports true exactly once, on the
// first call after the worker finished.
func (p *Pending) Poll() (Outcome, bool) {
	select {
	case o := <-p.out:
		return o, true
	default:
		return Outcome{}, false
	}
}

// Wait blocks until the outcome is available or ctx is done, then takes it.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case o := <-p.out:
		return o.Result, o.Err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Cancel asks the worker to stop at its next checkpoint. The outcome is
// still delivered through Poll and is usually a context error.
func (p *Pending) Cancel() { p.cancel() }
