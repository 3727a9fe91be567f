package capture

import "fmt"

// ErrorKind classifies capture failures.
type ErrorKind int

const (
	PermissionDenied ErrorKind = iota + 1
	SessionStartFailed
	SessionStopFailed
	// ArtifactFinalizationFailed is recovered locally and never surfaced.
	ArtifactFinalizationFailed
	// TooShortRejected is a policy rejection shown as a warning.
	TooShortRejected
)

func (k ErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "PermissionDenied"
	case SessionStartFailed:
		return "SessionStartFailed"
	case SessionStopFailed:
		return "SessionStopFailed"
	case ArtifactFinalizationFailed:
		return "ArtifactFinalizationFailed"
	case TooShortRejected:
		return "TooShortRejected"
	default:
		return "Unknown"
	}
}

// Error is a classified capture failure. errors.Is matches on Kind against the
// Err* sentinels.
type Error struct {
	Kind ErrorKind
	Err  error
}

// Sentinels for errors.Is.
var (
	ErrPermissionDenied = &Error{Kind: PermissionDenied}
	ErrSessionStart     = &Error{Kind: SessionStartFailed}
	ErrSessionStop      = &Error{Kind: SessionStopFailed}
	ErrFinalization     = &Error{Kind: ArtifactFinalizationFailed}
	ErrTooShort         = &Error{Kind: TooShortRejected}
)

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case PermissionDenied:
		msg = "microphone permission denied"
	case SessionStartFailed:
		msg = "failed to start recording"
	case SessionStopFailed:
		msg = "failed to stop recording"
	case ArtifactFinalizationFailed:
		msg = "failed to save recording"
	case TooShortRejected:
		msg = "recording too short"
	default:
		msg = "capture error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
