package journal

// State is a trade's lifecycle status.
type State string

const (
	StateOpen      State = "open"
	StateClosed    State = "closed"
	StateReviewed  State = "reviewed"
	StateCancelled State = "cancelled"
	StateMissed    State = "missed"
)

// States lists every lifecycle status in display order.
var States = []State{StateOpen, StateClosed, StateReviewed, StateCancelled, StateMissed}

// Valid reports whether s is a known lifecycle status.
func (s State) Valid() bool {
	switch s {
	case StateOpen, StateClosed, StateReviewed, StateCancelled, StateMissed:
		return true
	}
	return false
}

// Stage is a form-visibility grouping tied to the target status.
type Stage string

const (
	StageOpen   Stage = "open"
	StageClosed Stage = "closed"
	StageReview Stage = "review"
)

// forwardNext lists the direct forward transitions out of each state.
// reviewed, cancelled and missed are forward-terminal.
var forwardNext = map[State][]State{
	StateOpen:      {StateOpen, StateClosed, StateCancelled, StateMissed},
	StateClosed:    {StateClosed, StateReviewed},
	StateReviewed:  {StateReviewed},
	StateCancelled: {StateCancelled},
	StateMissed:    {StateMissed},
}

// stageOf maps each state to the tier whose fields it carries.
// cancelled and missed never hold outcome data, so they sit in the open tier.
var stageOf = map[State]Stage{
	StateOpen:      StageOpen,
	StateClosed:    StageClosed,
	StateReviewed:  StageReview,
	StateCancelled: StageOpen,
	StateMissed:    StageOpen,
}

// StageOf returns the tier of a state.
func StageOf(s State) Stage {
	if stage, ok := stageOf[s]; ok {
		return stage
	}
	return StageOpen
}

// forwardReachable returns the transitive forward closure of from, including
// from itself.
func forwardReachable(from State) map[State]bool {
	seen := map[State]bool{from: true}
	queue := []State{from}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, next := range forwardNext[s] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

// AllowedStatuses returns the statuses a trade currently in current may be
// saved as: everything forward-reachable, everything current is
// forward-reachable from (so an over-advanced trade can be walked back to
// correct data entry), and current itself.
func AllowedStatuses(current State) []State {
	if !current.Valid() {
		return []State{StateOpen}
	}
	forward := forwardReachable(current)
	allowed := make([]State, 0, len(States))
	for _, s := range States {
		if forward[s] || forwardReachable(s)[current] {
			allowed = append(allowed, s)
		}
	}
	return allowed
}

// CanTransition reports whether a trade in current may be saved as target.
func CanTransition(current, target State) bool {
	for _, s := range AllowedStatuses(current) {
		if s == target {
			return true
		}
	}
	return false
}

// VisibleStages returns the form sections that must be populated when saving
// with the given target status. Visibility follows the target, not the
// current state.
func VisibleStages(target State) []Stage {
	switch StageOf(target) {
	case StageClosed:
		return []Stage{StageOpen, StageClosed}
	case StageReview:
		return []Stage{StageOpen, StageClosed, StageReview}
	default:
		return []Stage{StageOpen}
	}
}
