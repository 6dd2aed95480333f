package sim

// Process is the actor driven by a Simulation. The kernel needs exactly two
// capabilities: priming the queue at the start of a run, and handling each
// delivered message. Concrete processes are plain structs holding the
// per-individual state for one run; they are never shared across runs.
type Process interface {
	// Init schedules the process's initial messages. Called once by
	// CreateProcess before the dispatch loop starts.
	Init(env *Simulation)

	// HandleMessage reacts to one delivered message. It may schedule
	// further messages, remove pending ones, mutate process state and
	// request Stop; it runs to completion before the next message pops.
	HandleMessage(env *Simulation, msg *Message)
}
