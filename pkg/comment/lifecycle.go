package comment

import (
	"errors"

	"github.com/ormstack/moderation-go/pkg/decision"
)

// ErrInvalidTransition is returned when a status change would violate the
// lifecycle state machine.
var ErrInvalidTransition = errors.New("invalid comment status transition")

// transitions is the authoritative comment lifecycle: pending -> classified
// -> one terminal action state, with failure sub-states reachable from the
// corresponding in-progress state. Terminal states are sticky and admit no
// further transitions.
var transitions = map[Status][]Status{
	StatusPending: {StatusClassified, StatusClassificationFailed},
	StatusClassified: {
		StatusReplied, StatusHidden, StatusEscalated, StatusIgnored,
		StatusReplyFailed, StatusHideFailed, StatusEscalationFailed,
	},
	// Failure states stay retryable through queue redelivery.
	StatusClassificationFailed: {StatusClassified},
	StatusReplyFailed:          {StatusReplied},
	StatusHideFailed:           {StatusHidden, StatusIgnored},
	StatusEscalationFailed:     {StatusEscalated},
}

// CanTransition reports whether the lifecycle permits moving from one status
// to another.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status is one from which no further automated
// action is taken.
func IsTerminal(s Status) bool {
	switch s {
	case StatusReplied, StatusHidden, StatusEscalated, StatusIgnored:
		return true
	default:
		return false
	}
}

// AlreadyDone is the shared idempotency guard consulted by every executor
// before performing a side effect. Under at-least-once delivery the same
// action message can arrive twice; a completion flag that is already set
// means the side effect happened and must not be repeated. Flags are
// monotonic: once true they never revert.
func (c *Comment) AlreadyDone(action decision.Action) bool {
	switch action {
	case decision.ActionReply:
		return c.ReplySent
	case decision.ActionHide:
		return c.Hidden
	case decision.ActionEscalate:
		return c.Escalated
	default:
		return false
	}
}

// ActionTaken reports whether any of the mutually exclusive completion flags
// is set. At most one is ever true for a given comment.
func (c *Comment) ActionTaken() bool {
	return c.ReplySent || c.Hidden || c.Escalated
}
