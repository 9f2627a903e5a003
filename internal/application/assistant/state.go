package assistant

// State is a step of one relay conversation
type State string

const (
	StateAwaitingFirstResponse  State = "awaiting_first_response"
	StateDirectAnswer           State = "direct_answer"
	StateExecutingTools         State = "executing_tools"
	StateAwaitingSecondResponse State = "awaiting_second_response"
	StateDone                   State = "done"
	StateError                  State = "error"
)

// IsTerminal reports whether no further transition can happen
func (s State) IsTerminal() bool {
	switch s {
	case StateDirectAnswer, StateDone, StateError:
		return true
	}
	return false
}
