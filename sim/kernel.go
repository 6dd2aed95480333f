package sim

import (
	"container/heap"

	"github.com/sirupsen/logrus"
)

// queueEntry pairs a message with its insertion sequence number. The
// sequence breaks timestamp ties so that messages scheduled at the same
// time fire in insertion (FIFO) order. The cancer model schedules several
// messages at now() expecting exactly that order, so the tie-break is part
// of the kernel contract, not an implementation detail.
type queueEntry struct {
	msg *Message
	seq uint64
}

// messageHeap implements heap.Interface ordered by (timestamp, sequence).
// See the canonical container/heap example.
type messageHeap []queueEntry

func (h messageHeap) Len() int { return len(h) }

func (h messageHeap) Less(i, j int) bool {
	if h[i].msg.Timestamp != h[j].msg.Timestamp {
		return h[i].msg.Timestamp < h[j].msg.Timestamp
	}
	return h[i].seq < h[j].seq
}

func (h messageHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *messageHeap) Push(x any) {
	*h = append(*h, x.(queueEntry))
}

func (h *messageHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// Simulation is the event-driven kernel state for one individual run: the
// virtual clock (years), the pending-message queue, and the process the
// messages are delivered to. One Simulation serves one run at a time; the
// outer driver calls Clear between individuals. Not safe for concurrent
// use: parallelism across individuals requires one Simulation per worker.
type Simulation struct {
	clock             float64
	queue             messageHeap
	seq               uint64
	running           bool
	process           Process
	previousEventTime float64
}

// NewSimulation returns a kernel with an empty queue and clock at zero.
func NewSimulation() *Simulation {
	return &Simulation{queue: make(messageHeap, 0)}
}

// CreateProcess attaches p as the current subject and calls p.Init to
// prime the queue. Attaching while a process exists is a contract
// violation and panics.
func (s *Simulation) CreateProcess(p Process) {
	if s.process != nil {
		logrus.Panicf("sim: CreateProcess while a process is already attached")
	}
	s.process = p
	p.Init(s)
}

// ScheduleAt inserts msg with delivery time t. Scheduling in the past is a
// contract violation and panics (TimeReversal).
func (s *Simulation) ScheduleAt(t float64, msg *Message) {
	if t < s.clock {
		logrus.Panicf("sim: schedule at %.6f before current time %.6f", t, s.clock)
	}
	msg.SendingTime = s.clock
	msg.Timestamp = t
	heap.Push(&s.queue, queueEntry{msg: msg, seq: s.seq})
	s.seq++
}

// ScheduleKindAt is shorthand for scheduling a bare message of one kind.
func (s *Simulation) ScheduleKindAt(t float64, kind MessageKind) {
	s.ScheduleAt(t, NewMessage(kind))
}

// Run dispatches queued messages in increasing (timestamp, insertion)
// order until the queue drains or Stop is requested. The clock advances to
// each message's timestamp before delivery; previousEventTime advances
// after the handler returns, so inside a handler it still reads the time
// of the preceding event.
func (s *Simulation) Run() {
	if s.process == nil {
		logrus.Panicf("sim: Run without a process")
	}
	s.running = true
	for s.running && len(s.queue) > 0 {
		entry := heap.Pop(&s.queue).(queueEntry)
		s.clock = entry.msg.Timestamp
		logrus.Debugf("[%8.4f] dispatch kind=%d name=%q", s.clock, entry.msg.Kind, entry.msg.Name)
		s.process.HandleMessage(s, entry.msg)
		s.previousEventTime = s.clock
	}
	s.running = false
}

// Stop requests termination. The current handler completes; no further
// messages dispatch.
func (s *Simulation) Stop() {
	s.running = false
}

// Clear drops the queue, resets the clock to zero and detaches the
// process, returning the kernel to its initial state.
func (s *Simulation) Clear() {
	s.queue = s.queue[:0]
	s.clock = 0
	s.seq = 0
	s.running = false
	s.process = nil
	s.previousEventTime = 0
}

// RemoveIf discards every pending message satisfying pred. Removed
// messages never dispatch. The linear scan and heap rebuild is a deliberate
// trade: removal is rare relative to scheduling.
func (s *Simulation) RemoveIf(pred func(*Message) bool) {
	kept := s.queue[:0]
	for _, entry := range s.queue {
		if !pred(entry.msg) {
			kept = append(kept, entry)
		}
	}
	s.queue = kept
	heap.Init(&s.queue)
}

// RemoveKind discards every pending message of the given kind.
func (s *Simulation) RemoveKind(kind MessageKind) {
	s.RemoveIf(func(m *Message) bool { return m.Kind == kind })
}

// RemoveName discards every pending message with the given name.
func (s *Simulation) RemoveName(name string) {
	s.RemoveIf(func(m *Message) bool { return m.Name == name })
}

// Pending returns the pending messages satisfying pred in delivery order.
// Intended for tests and debugging between runs, not for mid-run control.
func (s *Simulation) Pending(pred func(*Message) bool) []*Message {
	snapshot := make(messageHeap, len(s.queue))
	copy(snapshot, s.queue)
	out := make([]*Message, 0, len(snapshot))
	for len(snapshot) > 0 {
		entry := heap.Pop(&snapshot).(queueEntry)
		if pred == nil || pred(entry.msg) {
			out = append(out, entry.msg)
		}
	}
	return out
}

// Now returns the current virtual time in years.
func (s *Simulation) Now() float64 {
	return s.clock
}

// PreviousEventTime returns the delivery time of the previously handled
// message (zero before the first message).
func (s *Simulation) PreviousEventTime() float64 {
	return s.previousEventTime
}
