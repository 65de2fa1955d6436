package interp

// Scheduler implements the single-threaded cooperative queues from
// spec.md §5: a microtask queue (promise reactions, queueMicrotask)
// drained to empty between synchronous tasks, and a macrotask queue
// (timers) of which one entry runs before the microtask queue drains
// again. Grounded on the Design Notes §9 "dedicated executor thread...
// synchronized via channels" strategy generalized to plain queues for
// the parts that don't need a coroutine.
type Scheduler struct {
	microtasks []func()
	macrotasks []*timerEntry
	nextTimer  int
}

type timerEntry struct {
	id       int
	due      int64 // host-clock-relative ticks; the CLI/embedding layer supplies real time
	repeat   int64 // 0 for setTimeout, interval in ticks for setInterval
	fn       func()
	cleared  bool
}

func NewScheduler() *Scheduler { return &Scheduler{} }

// EnqueueMicrotask schedules fn to run during the next microtask drain
// (queueMicrotask, promise reactions).
func (s *Scheduler) EnqueueMicrotask(fn func()) {
	s.microtasks = append(s.microtasks, fn)
}

// DrainMicrotasks runs microtasks in FIFO order, including ones enqueued
// by earlier microtasks in the same drain (spec.md §5).
func (s *Scheduler) DrainMicrotasks() {
	for len(s.microtasks) > 0 {
		fn := s.microtasks[0]
		s.microtasks = s.microtasks[1:]
		fn()
	}
}

// ScheduleTimer registers a macrotask due at tick `due`, returning a host
// id usable with ClearTimer (setTimeout/setInterval, spec.md §4.6/§5).
func (s *Scheduler) ScheduleTimer(due, repeat int64, fn func()) int {
	s.nextTimer++
	id := s.nextTimer
	s.macrotasks = append(s.macrotasks, &timerEntry{id: id, due: due, repeat: repeat, fn: fn})
	return id
}

func (s *Scheduler) ClearTimer(id int) {
	for _, t := range s.macrotasks {
		if t.id == id {
			t.cleared = true
		}
	}
}

// RunPending runs every macrotask due at or before `now`, draining
// microtasks after each one (spec.md §5), and reschedules repeating
// timers. Returns the number of tasks run.
func (s *Scheduler) RunPending(now int64) int {
	ran := 0
	for {
		idx := -1
		for i, t := range s.macrotasks {
			if t.cleared {
				continue
			}
			if t.due <= now && (idx == -1 || t.due < s.macrotasks[idx].due) {
				idx = i
			}
		}
		if idx == -1 {
			break
		}
		t := s.macrotasks[idx]
		s.macrotasks = append(s.macrotasks[:idx], s.macrotasks[idx+1:]...)
		if !t.cleared {
			t.fn()
			ran++
			s.DrainMicrotasks()
			if t.repeat > 0 {
				s.ScheduleTimer(now+t.repeat, t.repeat, t.fn)
			}
		}
	}
	return ran
}

// Idle reports whether both queues are empty.
func (s *Scheduler) Idle() bool { return len(s.microtasks) == 0 && len(s.macrotasks) == 0 }

// RunOne advances the scheduler by a single unit of work — one
// microtask, or (if none are pending) the earliest-due macrotask
// regardless of its due time — reporting whether anything ran. Used by
// top-level `await` (spec.md §4.6/§9) to drive the queues to completion
// synchronously, since ESGO has no real concurrent host clock driving
// evaluation independently of the embedder.
func (s *Scheduler) RunOne() bool {
	if len(s.microtasks) > 0 {
		fn := s.microtasks[0]
		s.microtasks = s.microtasks[1:]
		fn()
		return true
	}
	idx := -1
	for i, t := range s.macrotasks {
		if t.cleared {
			continue
		}
		if idx == -1 || t.due < s.macrotasks[idx].due {
			idx = i
		}
	}
	if idx == -1 {
		return false
	}
	t := s.macrotasks[idx]
	s.macrotasks = append(s.macrotasks[:idx], s.macrotasks[idx+1:]...)
	t.fn()
	if t.repeat > 0 {
		s.ScheduleTimer(t.due+t.repeat, t.repeat, t.fn)
	}
	return true
}
