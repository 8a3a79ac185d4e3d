package models

// Status is a donation's lifecycle state.
type Status string

const (
	StatusAvailable Status = "available"
	StatusClaimed   Status = "claimed"
	StatusPickedUp  Status = "picked_up"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// allowedPredecessors lists the states a normal transition may come from,
// keyed by target state. Completion accepts two predecessors (pickup and
// completion may be reported in one round trip), which is why this is a set
// per target rather than a linear next-state pointer. Administrative force
// transitions bypass this table entirely.
var allowedPredecessors = map[Status]map[Status]bool{
	StatusClaimed:   {StatusAvailable: true},
	StatusPickedUp:  {StatusClaimed: true},
	StatusCompleted: {StatusClaimed: true, StatusPickedUp: true},
	StatusCancelled: {StatusAvailable: true, StatusClaimed: true},
}

// CanTransitionTo reports whether a normal (non-forced) transition from s to
// target is legal.
func (s Status) CanTransitionTo(target Status) bool {
	return allowedPredecessors[target][s]
}

// Terminal reports whether no normal transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}
