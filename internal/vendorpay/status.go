package vendorpay

import (
	"fmt"
	"strings"
	"time"
)

// transitions is the only authority on legal status changes.
// on_hold has no way back to pending; nothing in the workflow reactivates a hold.
var transitions = map[PaymentStatus][]PaymentStatus{
	StatusPending:    {StatusProcessing, StatusOnHold, StatusFailed, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusOnHold, StatusFailed, StatusCancelled},
}

// CanTransition reports whether from -> to is a legal single step.
func CanTransition(from, to PaymentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the status.
func (s PaymentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusOnHold, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// transition describes one workflow action and its side effects.
type transition struct {
	name           string
	to             PaymentStatus
	reasonRequired bool
	apply          func(p *Payment, actor, reason string, now time.Time)
}

var (
	processTransition = transition{
		name: "process",
		to:   StatusProcessing,
		apply: func(p *Payment, actor, _ string, now time.Time) {
			p.ProcessedBy = actor
			p.ProcessedDate = &now
		},
	}
	completeTransition = transition{
		name: "complete",
		to:   StatusCompleted,
		apply: func(p *Payment, actor, _ string, now time.Time) {
			p.ProcessedBy = actor
			p.ApprovedBy = actor
			p.ProcessedDate = &now
		},
	}
	holdTransition = transition{
		name:           "hold",
		to:             StatusOnHold,
		reasonRequired: true,
		apply: func(p *Payment, actor, reason string, now time.Time) {
			p.ProcessedBy = actor
			p.Notes = appendHoldNote(p.Notes, actor, reason, now)
		},
	}
	failTransition = transition{
		name:           "fail",
		to:             StatusFailed,
		reasonRequired: true,
		apply: func(p *Payment, actor, reason string, _ time.Time) {
			p.ProcessedBy = actor
			p.RejectionReason = reason
		},
	}
	cancelTransition = transition{
		name: "cancel",
		to:   StatusCancelled,
		apply: func(p *Payment, _, reason string, _ time.Time) {
			if reason != "" {
				p.RejectionReason = reason
			}
		},
	}
)

// applyTransition checks legality, then the reason, and mutates p in place. p must be a copy.
func applyTransition(p *Payment, t transition, actor, reason string, now time.Time) error {
	if !CanTransition(p.Status, t.to) {
		return fmt.Errorf("%w: cannot %s a %s payment", ErrInvalidTransition, t.name, p.Status)
	}
	reason = strings.TrimSpace(reason)
	if t.reasonRequired && reason == "" {
		return fieldError("reason", "reason is required to "+t.name+" a payment")
	}
	p.Status = t.to
	t.apply(p, actor, reason, now)
	return nil
}

func appendHoldNote(notes, actor, reason string, now time.Time) string {
	line := fmt.Sprintf("[On hold %s", now.Format(dateLayout))
	if actor != "" {
		line += " by " + actor
	}
	line += "] " + reason
	if strings.TrimSpace(notes) == "" {
		return line
	}
	return notes + "\n" + line
}
