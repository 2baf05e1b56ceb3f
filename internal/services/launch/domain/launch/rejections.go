package launch

import "github.com/vestige-labs/vestige/internal/services/launch/domain/command"

// Rejection codes shared by launch-scoped deciders. Values match the
// platform error codes so API layers can map them one-to-one.
const (
	RejectionInvalidTimeRange           = "INVALID_TIME_RANGE"
	RejectionInvalidTokenSupply         = "INVALID_TOKEN_SUPPLY"
	RejectionInvalidGraduationTarget    = "INVALID_GRADUATION_TARGET"
	RejectionInvalidCommitmentLimits    = "INVALID_COMMITMENT_LIMITS"
	RejectionLaunchExists               = "LAUNCH_EXISTS"
	RejectionLaunchNotFound             = "NOT_FOUND"
	RejectionLaunchNotStarted           = "LAUNCH_NOT_STARTED"
	RejectionLaunchEnded                = "LAUNCH_ENDED"
	RejectionBelowMinCommitment         = "BELOW_MIN_COMMITMENT"
	RejectionAboveMaxCommitment         = "ABOVE_MAX_COMMITMENT"
	RejectionAlreadyGraduated           = "ALREADY_GRADUATED"
	RejectionAlreadyDelegated           = "ALREADY_DELEGATED"
	RejectionNotDelegated               = "NOT_DELEGATED"
	RejectionNotGraduated               = "NOT_GRADUATED"
	RejectionGraduationConditionsNotMet = "GRADUATION_CONDITIONS_NOT_MET"
	RejectionUnauthorized               = "UNAUTHORIZED"
	RejectionNothingToSweep             = "NOTHING_TO_SWEEP"
	RejectionInvalidAccountData         = "INVALID_ACCOUNT_DATA"
	RejectionArithmeticOverflow         = "ARITHMETIC_OVERFLOW"
)

func reject(code, message string) command.Decision {
	return command.Reject(command.Rejection{Code: code, Message: message})
}

// Rejection builds a single rejection value; other domain packages use it to
// share the guard results below.
func Rejection(code, message string) *command.Rejection {
	return &command.Rejection{Code: code, Message: message}
}
