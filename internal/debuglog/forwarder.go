package debuglog

import (
	"sync"
)

// Forwarder moves records from the logger channel into a queue that the GUI
// loop drains once per tick. It runs on its own goroutine for the whole
// process lifetime.
type Forwarder struct {
	mu     sync.Mutex
	queue  []Record
	notify func()
	done   chan struct{}
}

// StartForwarder starts the forwarding goroutine. notify (may be nil) is
// called after each record is queued, to wake the GUI loop.
func StartForwarder(in <-chan Record, notify func()) *Forwarder {
	f := &Forwarder{notify: notify, done: make(chan struct{})}
	go f.run(in)
	return f
}

func (f *Forwarder) run(in <-chan Record) {
	defer close(f.done)
	for rec := range in {
		f.mu.Lock()
		f.queue = append(f.queue, rec)
		f.mu.Unlock()
		if f.notify != nil {
			f.notify()
		}
	}
}

// Drain returns and clears all queued records.
func (f *Forwarder) Drain() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return nil
	}
	out := f.queue
	f.queue = nil
	return out
}

// Done is closed once the input channel is closed and fully consumed.
func (f *Forwarder) Done() <-chan struct{} {
	return f.done
}
