// room/phase.go
package room

// Phase is the per-room game phase.
type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseDescribing Phase = "describing"
	PhaseDebating   Phase = "debating"
	PhaseVoting     Phase = "voting"
	PhaseResults    Phase = "results"
)

func (p Phase) String() string {
	return string(p)
}

var phaseTransitions = map[Phase][]Phase{
	PhaseLobby:      {PhaseDescribing},
	PhaseDescribing: {PhaseDescribing, PhaseDebating},
	PhaseDebating:   {PhaseVoting},
	PhaseVoting:     {PhaseResults},
	PhaseResults:    {PhaseLobby, PhaseDescribing},
}

// canTransitionTo reports whether target is a legal next phase.
func (p Phase) canTransitionTo(target Phase) bool {
	for _, next := range phaseTransitions[p] {
		if next == target {
			return true
		}
	}
	return false
}

// transition moves the room to target when the jump is legal, guarding
// against stale callbacks. Lock held by caller.
func (r *Room) transition(target Phase) bool {
	if !r.phase.canTransitionTo(target) {
		return false
	}
	r.phase = target
	return true
}
