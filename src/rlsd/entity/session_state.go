package entity

// SessionStateKind tags a SessionState.
type SessionStateKind int

const (
	// SessionStateStandby means no session is running for the workspace.
	SessionStateStandby SessionStateKind = iota
	// SessionStateProgress means the session is starting or the server reports outstanding work.
	SessionStateProgress
	// SessionStateReady means the session is idle and ready.
	SessionStateReady
)

// String implements fmt.Stringer.
func (k SessionStateKind) String() string {
	switch k {
	case SessionStateProgress:
		return "progress"
	case SessionStateReady:
		return "ready"
	default:
		return "standby"
	}
}

// SessionState is the observable status of a workspace's language server session.
// Message is only meaningful for SessionStateProgress.
type SessionState struct {
	Kind    SessionStateKind `json:"kind" zap:"kind"`
	Message string           `json:"message,omitempty" zap:"message"`
}

// ProgressState returns a progress state with the given message.
func ProgressState(message string) SessionState {
	return SessionState{Kind: SessionStateProgress, Message: message}
}

// ReadyState returns the ready state.
func ReadyState() SessionState {
	return SessionState{Kind: SessionStateReady}
}

// StandbyState returns the standby state.
func StandbyState() SessionState {
	return SessionState{Kind: SessionStateStandby}
}

// String implements fmt.Stringer.
func (s SessionState) String() string {
	if s.Kind == SessionStateProgress {
		return s.Kind.String() + "(" + s.Message + ")"
	}
	return s.Kind.String()
}
