package assistant

import "fmt"

// UnknownToolError is returned when the model calls a function that is not
// in the registry
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// InvalidArgumentsError is returned when a tool call's arguments cannot be
// decoded or are missing a required value
type InvalidArgumentsError struct {
	Tool   string
	Reason string
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, e.Reason)
}

// FallbackResponse is returned to the caller whenever the relay fails after
// the message was accepted
const FallbackResponse = "An error occurred while processing your request."
