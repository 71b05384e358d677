// Package scheduler implements the reactor's deadline queue: a logical
// monotonic clock advanced by an external poll loop, firing callbacks in
// non-decreasing deadline order.
package scheduler

import "container/heap"

// Entry is a handle to a scheduled callback. Cancel is idempotent.
type Entry struct {
	deadline int64
	seq      uint64
	cb       func()
	index    int // position in the heap, maintained by container/heap
	canceled bool
	s        *Scheduler
}

// Cancel removes the entry from the scheduler. Safe to call more than
// once, and safe to call from inside a firing callback.
func (e *Entry) Cancel() {
	if e.canceled || e.index < 0 {
		return
	}
	e.canceled = true
	heap.Remove(&e.s.queue, e.index)
}

// entryHeap is a min-heap ordered by (deadline, seq) so that ties break by
// insertion order.
type entryHeap []*Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*Entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Scheduler is a single logical clock shared by one Reactor. It is not
// safe for concurrent use; the reactor and its poll adapter run on one
// goroutine.
type Scheduler struct {
	now   int64
	queue entryHeap
	seq   uint64
}

// New returns a Scheduler whose logical clock starts at 0.
func New() *Scheduler {
	return &Scheduler{}
}

// Add schedules cb to fire when the logical clock reaches now+delay.
// Negative delay fires on the next Poll call.
func (s *Scheduler) Add(delay int64, cb func()) *Entry {
	e := &Entry{
		deadline: s.now + delay,
		seq:      s.seq,
		cb:       cb,
		s:        s,
	}
	s.seq++
	heap.Push(&s.queue, e)
	return e
}

// Poll advances the logical clock by elapsed and fires every entry whose
// deadline is now due, in non-decreasing deadline order. Callbacks may
// add or cancel further entries; an entry added with delay<=0 during a
// Poll call fires within that same call once its deadline is reached by
// the ongoing drain.
func (s *Scheduler) Poll(elapsed int64) {
	s.now += elapsed
	for s.queue.Len() > 0 && s.queue[0].deadline <= s.now {
		e := heap.Pop(&s.queue).(*Entry)
		e.canceled = true
		e.cb()
	}
}

// Len returns the number of live (uncancelled, unfired) entries. Tests
// use it to detect scheduler leaks: a clean reactor shutdown leaves none.
func (s *Scheduler) Len() int {
	return s.queue.Len()
}
