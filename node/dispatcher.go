package node

import "sync"

// Dispatcher runs control-context callbacks. Change notifications that
// originate on the render context are handed to a Dispatcher instead of
// running inline.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Inline runs every callback on the dispatching goroutine.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// SerialDispatcher runs callbacks one at a time, in submission order, on a
// dedicated goroutine. Dispatch never blocks.
type SerialDispatcher struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}
}

// NewSerialDispatcher starts a serial executor.
func NewSerialDispatcher() *SerialDispatcher {
	d := &SerialDispatcher{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	go d.run()

	return d
}

// Dispatch queues fn. Callbacks dispatched after Close are dropped.
func (d *SerialDispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}

	d.queue = append(d.queue, fn)
	d.mu.Unlock()

	d.signal()
}

// Flush blocks until every callback queued before the call has run. It must
// not be called from a dispatched callback.
func (d *SerialDispatcher) Flush() {
	done := make(chan struct{})

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done

		return
	}

	d.queue = append(d.queue, func() { close(done) })
	d.mu.Unlock()

	d.signal()
	<-done
}

// Close runs the remaining queue and stops the executor.
func (d *SerialDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done

		return
	}

	d.closed = true
	d.mu.Unlock()

	d.signal()
	<-d.done
}

func (d *SerialDispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *SerialDispatcher) run() {
	defer close(d.done)

	for range d.wake {
		for {
			d.mu.Lock()
			batch := d.queue
			d.queue = nil
			closed := d.closed
			d.mu.Unlock()

			if len(batch) == 0 {
				if closed {
					return
				}

				break
			}

			for _, fn := range batch {
				fn()
			}
		}
	}
}
