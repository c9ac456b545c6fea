package dispatch

import "sync"

// NewRecorder returns a dispatcher that only queues closures.
// They run when the owner calls RunAll, which makes delivery
// deterministic in tests.
func NewRecorder() *Recorder {
	return &Recorder{}
}

type Recorder struct {
	mu     sync.Mutex
	posted []func()
	closed bool
	total  int
}

func (r *Recorder) Post(fn func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.posted = append(r.posted, fn)
	r.total++
	return nil
}

// Posted reports how many closures were ever accepted.
func (r *Recorder) Posted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// RunAll executes queued closures in post order and returns their number.
func (r *Recorder) RunAll() int {
	r.mu.Lock()
	batch := r.posted
	r.posted = nil
	r.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

func (r *Recorder) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}
