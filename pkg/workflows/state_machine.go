package workflows

// StateMachine enforces status transitions for a document type
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewBidStateMachine creates the state machine for bid statuses.
// awarded and rejected are terminal within a project cycle.
func NewBidStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"submitted":   {"shortlisted", "awarded", "rejected"},
			"shortlisted": {"awarded", "rejected"},
			"awarded":     {},
			"rejected":    {},
		},
	}
}

// NewProjectStateMachine creates the state machine for project statuses.
// awarded is reachable from open and active, but only the award command
// takes that edge; the status endpoint never accepts it.
func NewProjectStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"open":    {"active", "paused", "closed", "awarded"},
			"active":  {"paused", "closed", "awarded"},
			"paused":  {"active", "closed"},
			"closed":  {},
			"awarded": {},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}

// IsTerminal reports whether a status has no outgoing transitions
func (sm *StateMachine) IsTerminal(status string) bool {
	allowed, exists := sm.allowedTransitions[status]
	return exists && len(allowed) == 0
}
