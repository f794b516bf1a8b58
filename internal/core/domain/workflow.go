package domain

// WorkflowState is the stage an import session is in.
type WorkflowState string

const (
	StateIdle       WorkflowState = "idle"
	StateUploading  WorkflowState = "uploading"
	StateValidating WorkflowState = "validating"
	StatePreviewing WorkflowState = "previewing"
	StateProcessing WorkflowState = "processing"
	StateCompleted  WorkflowState = "completed"
	StateCancelled  WorkflowState = "cancelled"
	StateFailed     WorkflowState = "failed"
)

var workflowTransitions = map[WorkflowState][]WorkflowState{
	StateIdle:       {StateUploading, StateValidating},
	StateUploading:  {StateUploading, StateValidating, StateCancelled},
	StateValidating: {StatePreviewing, StateFailed, StateCancelled},
	StatePreviewing: {StateValidating, StateProcessing, StateCancelled},
	StateProcessing: {StateCompleted, StateCancelled, StateFailed},
	StateFailed:     {StateValidating},
}

// CanTransition reports whether the workflow may move from s to next. Reset to idle is always allowed.
func (s WorkflowState) CanTransition(next WorkflowState) bool {
	if next == StateIdle {
		return true
	}
	for _, allowed := range workflowTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further processing happens without a reset.
func (s WorkflowState) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Transient reports whether work is in flight and can be cancelled.
func (s WorkflowState) Transient() bool {
	switch s {
	case StateUploading, StateValidating, StatePreviewing, StateProcessing:
		return true
	}
	return false
}
