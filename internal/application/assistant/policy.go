package assistant

import "strings"

// Policy toggles the optional parts of the assistant's behaviour
type Policy struct {
	// RedactIdentifiers asks the model never to show ids in its answer
	RedactIdentifiers bool
	// ResolveEntityNames declares searchEntity and lets non-numeric ids be
	// resolved by name
	ResolveEntityNames bool
}

// DefaultPolicy enables both clauses
func DefaultPolicy() Policy {
	return Policy{RedactIdentifiers: true, ResolveEntityNames: true}
}

const (
	promptPersona = "You are a project management assistant. " +
		"Use the provided functions to retrieve information about tasks, projects, and team members based on the user's request. " +
		"Always provide concise and relevant responses."
	promptRedact  = "While providing response to the users do not provide any type of Id to the front-end in the response."
	promptResolve = "If a user asks about a specific entity by name, use the searchEntity function to find its ID first."
)

// SystemPrompt builds the instruction that opens every conversation
func (p Policy) SystemPrompt() string {
	parts := []string{promptPersona}
	if p.RedactIdentifiers {
		parts = append(parts, promptRedact)
	}
	if p.ResolveEntityNames {
		parts = append(parts, promptResolve)
	}
	return strings.Join(parts, "\n")
}
