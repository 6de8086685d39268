package upload

// Phase is where an upload session stands.
type Phase int

const (
	// PhaseEmpty means no file is selected.
	PhaseEmpty Phase = iota
	// PhaseSelected means a valid file is waiting to be submitted.
	PhaseSelected
	// PhaseEncoding means the file is being read and encoded.
	PhaseEncoding
	// PhaseSubmitting means the encoded file is on its way to the gateway.
	PhaseSubmitting
	// PhaseSucceeded means the gateway accepted the mailing.
	PhaseSucceeded
	// PhaseFailed means the last attempt failed; the file is kept for a retry.
	PhaseFailed
)

// String returns a human-readable name for the phase
func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseSelected:
		return "selected"
	case PhaseEncoding:
		return "encoding"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// InFlight is true while a submission owns the session.
func (p Phase) InFlight() bool {
	return p == PhaseEncoding || p == PhaseSubmitting
}

// IsTerminal is true once an attempt has resolved.
func (p Phase) IsTerminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// HasFile is true for every phase that holds a selected file.
func (p Phase) HasFile() bool {
	return p != PhaseEmpty
}

// CanTransitionTo checks if a phase transition is valid. Reset to empty is
// always allowed.
func (p Phase) CanTransitionTo(next Phase) bool {
	if next == PhaseEmpty {
		return true
	}
	switch p {
	case PhaseEmpty, PhaseSucceeded:
		return next == PhaseSelected
	case PhaseSelected:
		return next == PhaseSelected || next == PhaseEncoding
	case PhaseEncoding:
		return next == PhaseSubmitting || next == PhaseFailed
	case PhaseSubmitting:
		return next == PhaseSucceeded || next == PhaseFailed
	case PhaseFailed:
		return next == PhaseSelected || next == PhaseEncoding
	default:
		return false
	}
}
