package launch

import (
	"fmt"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
)

// Graduation reasons recorded on graduated events.
const (
	ReasonTargetReached = "target_reached"
	ReasonDeadline      = "deadline"
)

// CheckCommitWindow is the timing and limits guard shared by every
// commitment-accepting operation. It returns nil when amount may be accepted
// at now (unix seconds).
func CheckCommitWindow(state State, amount uint64, now int64) *command.Rejection {
	if !state.Initialized {
		return Rejection(RejectionLaunchNotFound, "launch not found")
	}
	if now < state.StartTime {
		return Rejection(RejectionLaunchNotStarted, "launch has not started")
	}
	if now > state.EndTime {
		return Rejection(RejectionLaunchEnded, "launch has ended")
	}
	if state.IsGraduated {
		return Rejection(RejectionAlreadyGraduated, "launch already graduated")
	}
	if amount == 0 || amount < state.MinCommitment {
		return Rejection(RejectionBelowMinCommitment, fmt.Sprintf("amount below minimum commitment %d", state.MinCommitment))
	}
	if amount > state.MaxCommitment {
		return Rejection(RejectionAboveMaxCommitment, fmt.Sprintf("amount above maximum commitment %d", state.MaxCommitment))
	}
	return nil
}

// CheckGraduation gates graduation on the funding target or the deadline.
// It returns the reason on success.
func CheckGraduation(state State, pool PoolTotals, now int64) (string, *command.Rejection) {
	if state.IsGraduated || pool.Graduated {
		return "", Rejection(RejectionAlreadyGraduated, "launch already graduated")
	}
	if pool.TotalCommitted >= state.GraduationTarget {
		return ReasonTargetReached, nil
	}
	if now > state.EndTime {
		return ReasonDeadline, nil
	}
	return "", Rejection(RejectionGraduationConditionsNotMet, "graduation target not reached and launch still open")
}
