// Package dispatcher runs the connection-accept loop: it owns the
// listening socket and hands each accepted connection to a fresh unit
// of concurrency running the request pipeline. This is the external
// contract §2 calls the Connection Dispatcher; everything past Accept
// is the caller's (Handler's) responsibility.
package dispatcher

import (
	"context"
	"net"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Handler runs one connection's pipeline to completion and is
// responsible for closing conn on every exit path.
type Handler func(conn net.Conn)

// Dispatcher accepts connections on a net.Listener and dispatches each
// to Handler on its own goroutine, tracked with an errgroup the same
// way the teacher's Scheduler.Run tracks its installer/loader workers.
// Unlike that group, a single connection's failure is logged and
// swallowed rather than cancelling the others: §7 requires that
// "nothing propagates across connections."
type Dispatcher struct {
	ln     net.Listener
	handle Handler
	log    logrus.FieldLogger
}

// New creates a Dispatcher that accepts on ln and runs handle for each
// connection.
func New(ln net.Listener, handle Handler, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.New().WithField("component", "dispatcher")
	}
	return &Dispatcher{ln: ln, handle: handle, log: log}
}

// Run accepts connections until ctx is cancelled or the listener
// returns a permanent error, dispatching each to its own goroutine. It
// returns once every in-flight connection goroutine has finished.
func (d *Dispatcher) Run(ctx context.Context) error {
	conns, _ := errgroup.WithContext(context.Background())

	go func() {
		<-ctx.Done()
		_ = d.ln.Close()
	}()

	for {
		conn, err := d.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return conns.Wait()
			default:
			}
			if ne, ok := err.(net.Error); ok && ne.Temporary() { //nolint:staticcheck
				d.log.WithError(err).Warn("temporary accept error")
				continue
			}
			_ = conns.Wait()
			return err
		}

		conns.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					d.log.WithField("panic", r).Error("connection handler panicked")
				}
			}()
			d.handle(conn)
			return nil
		})
	}
}
