package chat

// phase selects which of the two exchanges of a user turn is running.
type phase int

const (
	phaseInitial phase = iota
	phaseFollowUp
)

func (p phase) offersCatalog() bool {
	return p == phaseInitial
}

func (p phase) String() string {
	if p == phaseInitial {
		return "initial"
	}
	return "follow_up"
}

type state int

const (
	stateIdle state = iota
	stateAwaitingModel
	stateAwaitingFunctionResult
	stateAwaitingFollowUp
)

func (s state) String() string {
	switch s {
	case stateAwaitingModel:
		return "awaiting_model"
	case stateAwaitingFunctionResult:
		return "awaiting_function_result"
	case stateAwaitingFollowUp:
		return "awaiting_follow_up"
	default:
		return "idle"
	}
}
