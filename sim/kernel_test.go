package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptProcess lets tests drive the kernel with closures.
type scriptProcess struct {
	initFn   func(env *Simulation)
	handleFn func(env *Simulation, msg *Message)
}

func (p *scriptProcess) Init(env *Simulation) {
	if p.initFn != nil {
		p.initFn(env)
	}
}

func (p *scriptProcess) HandleMessage(env *Simulation, msg *Message) {
	if p.handleFn != nil {
		p.handleFn(env, msg)
	}
}

func TestRun_DispatchesInTimeOrder(t *testing.T) {
	env := NewSimulation()
	var got []MessageKind
	env.CreateProcess(&scriptProcess{
		initFn: func(env *Simulation) {
			env.ScheduleKindAt(3, 3)
			env.ScheduleKindAt(1, 1)
			env.ScheduleKindAt(2, 2)
		},
		handleFn: func(env *Simulation, msg *Message) {
			got = append(got, msg.Kind)
			assert.Equal(t, float64(msg.Kind), env.Now())
		},
	})
	env.Run()
	assert.Equal(t, []MessageKind{1, 2, 3}, got)
}

func TestRun_FIFOAmongEqualTimestamps(t *testing.T) {
	// Several messages at the same timestamp must fire in insertion
	// order; the cancer model's clinical-diagnosis path depends on it.
	env := NewSimulation()
	var got []MessageKind
	env.CreateProcess(&scriptProcess{
		initFn: func(env *Simulation) {
			for kind := MessageKind(0); kind < 5; kind++ {
				env.ScheduleKindAt(7, kind)
			}
		},
		handleFn: func(env *Simulation, msg *Message) {
			got = append(got, msg.Kind)
		},
	})
	env.Run()
	assert.Equal(t, []MessageKind{0, 1, 2, 3, 4}, got)
}

func TestRun_HandlerSchedulesAtNowRunsAfterPending(t *testing.T) {
	env := NewSimulation()
	var got []MessageKind
	env.CreateProcess(&scriptProcess{
		initFn: func(env *Simulation) {
			env.ScheduleKindAt(1, 10)
			env.ScheduleKindAt(1, 11)
		},
		handleFn: func(env *Simulation, msg *Message) {
			got = append(got, msg.Kind)
			if msg.Kind == 10 {
				env.ScheduleKindAt(env.Now(), 12)
			}
		},
	})
	env.Run()
	assert.Equal(t, []MessageKind{10, 11, 12}, got)
}

func TestScheduleAt_StampsSendingTime(t *testing.T) {
	env := NewSimulation()
	var msgs []*Message
	env.CreateProcess(&scriptProcess{
		initFn: func(env *Simulation) {
			env.ScheduleKindAt(5, 1)
		},
		handleFn: func(env *Simulation, msg *Message) {
			msgs = append(msgs, msg)
			if msg.Kind == 1 {
				env.ScheduleKindAt(9, 2)
			}
		},
	})
	env.Run()
	require.Len(t, msgs, 2)
	assert.Equal(t, 0.0, msgs[0].SendingTime)
	assert.Equal(t, 5.0, msgs[0].Timestamp)
	assert.Equal(t, 5.0, msgs[1].SendingTime)
	assert.Equal(t, 9.0, msgs[1].Timestamp)
}

func TestScheduleAt_PastPanics(t *testing.T) {
	env := NewSimulation()
	env.CreateProcess(&scriptProcess{
		initFn: func(env *Simulation) {
			env.ScheduleKindAt(10, 1)
		},
		handleFn: func(env *Simulation, msg *Message) {
			assert.Panics(t, func() {
				env.ScheduleKindAt(env.Now()-1, 2)
			})
		},
	})
	env.Run()
}

func TestCreateProcess_DoublePanics(t *testing.T) {
	env := NewSimulation()
	env.CreateProcess(&scriptProcess{})
	assert.Panics(t, func() {
		env.CreateProcess(&scriptProcess{})
	})
}

func TestStop_LeavesPendingUndelivered(t *testing.T) {
	env := NewSimulation()
	var got []MessageKind
	env.CreateProcess(&scriptProcess{
		initFn: func(env *Simulation) {
			env.ScheduleKindAt(1, 1)
			env.ScheduleKindAt(2, 2)
			env.ScheduleKindAt(3, 3)
		},
		handleFn: func(env *Simulation, msg *Message) {
			got = append(got, msg.Kind)
			if msg.Kind == 2 {
				env.Stop()
			}
		},
	})
	env.Run()
	assert.Equal(t, []MessageKind{1, 2}, got)
	assert.Len(t, env.Pending(nil), 1)
}

func TestRemoveKind_RemovedNeverDispatch(t *testing.T) {
	env := NewSimulation()
	var got []MessageKind
	env.CreateProcess(&scriptProcess{
		initFn: func(env *Simulation) {
			env.ScheduleKindAt(1, 1)
			env.ScheduleKindAt(2, 2)
			env.ScheduleKindAt(3, 2)
			env.ScheduleKindAt(4, 3)
		},
		handleFn: func(env *Simulation, msg *Message) {
			got = append(got, msg.Kind)
			if msg.Kind == 1 {
				env.RemoveKind(2)
			}
		},
	})
	env.Run()
	assert.Equal(t, []MessageKind{1, 3}, got)
}

func TestRemoveName(t *testing.T) {
	env := NewSimulation()
	var got []string
	env.CreateProcess(&scriptProcess{
		initFn: func(env *Simulation) {
			env.ScheduleAt(1, NewNamedMessage("keep"))
			env.ScheduleAt(2, NewNamedMessage("drop"))
			env.ScheduleAt(3, NewNamedMessage("drop"))
		},
		handleFn: func(env *Simulation, msg *Message) {
			got = append(got, msg.Name)
			env.RemoveName("drop")
		},
	})
	env.Run()
	assert.Equal(t, []string{"keep"}, got)
}

func TestClear_ResetsState(t *testing.T) {
	env := NewSimulation()
	env.CreateProcess(&scriptProcess{
		initFn: func(env *Simulation) {
			env.ScheduleKindAt(4, 1)
		},
		handleFn: func(env *Simulation, msg *Message) {
			env.ScheduleKindAt(8, 2)
			env.Stop()
		},
	})
	env.Run()
	env.Clear()
	assert.Equal(t, 0.0, env.Now())
	assert.Equal(t, 0.0, env.PreviousEventTime())
	assert.Empty(t, env.Pending(nil))
	// A new process can attach after Clear.
	env.CreateProcess(&scriptProcess{})
}

func TestPreviousEventTime_LagsClockInsideHandler(t *testing.T) {
	env := NewSimulation()
	type pair struct{ prev, now float64 }
	var seen []pair
	env.CreateProcess(&scriptProcess{
		initFn: func(env *Simulation) {
			env.ScheduleKindAt(2, 1)
			env.ScheduleKindAt(5, 2)
			env.ScheduleKindAt(9, 3)
		},
		handleFn: func(env *Simulation, msg *Message) {
			seen = append(seen, pair{env.PreviousEventTime(), env.Now()})
		},
	})
	env.Run()
	require.Len(t, seen, 3)
	assert.Equal(t, pair{0, 2}, seen[0])
	assert.Equal(t, pair{2, 5}, seen[1])
	assert.Equal(t, pair{5, 9}, seen[2])
	for _, p := range seen {
		assert.LessOrEqual(t, p.prev, p.now)
	}
	assert.Equal(t, 9.0, env.PreviousEventTime())
}
