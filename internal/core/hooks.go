package core

// Phase names a room-scoped hook slot.
//
// The string values match the keys used in roomservice.config.yml.
type Phase string

const (
	PhaseBeforeSynchronous Phase = "beforeSynchronous"
	PhaseBefore            Phase = "before"
	PhaseRunParallel       Phase = "runParallel"
	PhaseRunSynchronous    Phase = "runSynchronous"
	PhaseAfter             Phase = "after"
	PhaseFinally           Phase = "finally"
)

// Hooks holds the optional shell command for each room phase.
//
// An empty string means the room has no hook for that phase. Finally is
// parsed and stored but no scheduler phase runs it.
type Hooks struct {
	BeforeSynchronous string `yaml:"beforeSynchronous,omitempty" json:"beforeSynchronous,omitempty"`
	Before            string `yaml:"before,omitempty" json:"before,omitempty"`
	RunSynchronous    string `yaml:"runSynchronous,omitempty" json:"runSynchronous,omitempty"`
	RunParallel       string `yaml:"runParallel,omitempty" json:"runParallel,omitempty"`
	After             string `yaml:"after,omitempty" json:"after,omitempty"`
	Finally           string `yaml:"finally,omitempty" json:"finally,omitempty"`
}

// Get returns the command configured for phase and whether one is set.
func (h Hooks) Get(phase Phase) (string, bool) {
	var cmd string
	switch phase {
	case PhaseBeforeSynchronous:
		cmd = h.BeforeSynchronous
	case PhaseBefore:
		cmd = h.Before
	case PhaseRunParallel:
		cmd = h.RunParallel
	case PhaseRunSynchronous:
		cmd = h.RunSynchronous
	case PhaseAfter:
		cmd = h.After
	case PhaseFinally:
		cmd = h.Finally
	}
	return cmd, cmd != ""
}

// Configured lists the phases that have a command, in pipeline order.
// Finally is reported last when set.
func (h Hooks) Configured() []Phase {
	all := []Phase{
		PhaseBeforeSynchronous,
		PhaseBefore,
		PhaseRunParallel,
		PhaseRunSynchronous,
		PhaseAfter,
		PhaseFinally,
	}
	out := make([]Phase, 0, len(all))
	for _, p := range all {
		if _, ok := h.Get(p); ok {
			out = append(out, p)
		}
	}
	return out
}
