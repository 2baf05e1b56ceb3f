package errors

// userMessages holds the user-facing text per code.
var userMessages = map[Code]string{
	CodeInvalidTimeRange:             "The launch must end after it starts.",
	CodeInvalidTokenSupply:           "The token supply must be greater than zero.",
	CodeInvalidGraduationTarget:      "The graduation target must be greater than zero.",
	CodeInvalidCommitmentLimits:      "Commitment limits must satisfy minimum <= maximum with a positive maximum.",
	CodeInvalidArgument:              "The request is malformed.",
	CodeLaunchNotStarted:             "The launch has not started yet.",
	CodeLaunchEnded:                  "The launch has ended.",
	CodeBelowMinCommitment:           "The amount is below the minimum commitment.",
	CodeAboveMaxCommitment:           "The amount is above the maximum commitment.",
	CodeLaunchExists:                 "A launch already exists for this creator and asset.",
	CodeAlreadyGraduated:             "The launch has already graduated.",
	CodeAlreadyDelegated:             "The record is delegated to the private executor.",
	CodeNotDelegated:                 "The record is not delegated to the private executor.",
	CodeNotGraduated:                 "The launch has not graduated.",
	CodeGraduationConditionsNotMet:   "The launch has neither reached its target nor passed its end time.",
	CodeAllocationAlreadyCalculated:  "The allocation has already been calculated.",
	CodeAlreadyClaimed:               "The tokens have already been claimed.",
	CodeExecutorMismatch:             "The record is pinned to a different executor.",
	CodeUnauthorized:                 "You are not allowed to perform this operation.",
	CodeInsufficientEphemeralBalance: "The custody balance is too low.",
	CodeNothingToSweep:               "There are no funds to move.",
	CodeNoCommitment:                 "The participant has not committed anything.",
	CodeNoAllocation:                 "The participant has no token allocation.",
	CodeInsufficientFunds:            "The account balance is too low.",
	CodeInvalidAccountData:           "Stored record data failed validation.",
	CodeArithmeticOverflow:           "The amount is too large.",
	CodeWriteConflict:                "The record changed concurrently; retry.",
	CodeNotFound:                     "The record was not found.",
	CodeUnsupportedCommand:           "The operation is not supported.",
	CodeExecutorUnavailable:          "The private executor is unavailable.",
}

// UserMessage returns the user-facing text for a code.
func UserMessage(code Code) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return "An unexpected error occurred."
}
