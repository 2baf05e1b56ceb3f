// Package errors provides structured, coded errors and their gRPC mapping.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Configuration errors
	CodeInvalidTimeRange        Code = "INVALID_TIME_RANGE"
	CodeInvalidTokenSupply      Code = "INVALID_TOKEN_SUPPLY"
	CodeInvalidGraduationTarget Code = "INVALID_GRADUATION_TARGET"
	CodeInvalidCommitmentLimits Code = "INVALID_COMMITMENT_LIMITS"
	CodeInvalidArgument         Code = "INVALID_ARGUMENT"

	// Timing errors
	CodeLaunchNotStarted Code = "LAUNCH_NOT_STARTED"
	CodeLaunchEnded      Code = "LAUNCH_ENDED"

	// Limit errors
	CodeBelowMinCommitment Code = "BELOW_MIN_COMMITMENT"
	CodeAboveMaxCommitment Code = "ABOVE_MAX_COMMITMENT"

	// State-conflict errors
	CodeLaunchExists                Code = "LAUNCH_EXISTS"
	CodeAlreadyGraduated            Code = "ALREADY_GRADUATED"
	CodeAlreadyDelegated            Code = "ALREADY_DELEGATED"
	CodeNotDelegated                Code = "NOT_DELEGATED"
	CodeNotGraduated                Code = "NOT_GRADUATED"
	CodeGraduationConditionsNotMet  Code = "GRADUATION_CONDITIONS_NOT_MET"
	CodeAllocationAlreadyCalculated Code = "ALLOCATION_ALREADY_CALCULATED"
	CodeAlreadyClaimed              Code = "ALREADY_CLAIMED"
	CodeExecutorMismatch            Code = "EXECUTOR_MISMATCH"

	// Authorization errors
	CodeUnauthorized Code = "UNAUTHORIZED"

	// Custody errors
	CodeInsufficientEphemeralBalance Code = "INSUFFICIENT_EPHEMERAL_BALANCE"
	CodeNothingToSweep               Code = "NOTHING_TO_SWEEP"
	CodeNoCommitment                 Code = "NO_COMMITMENT"
	CodeNoAllocation                 Code = "NO_ALLOCATION"
	CodeInsufficientFunds            Code = "INSUFFICIENT_FUNDS"

	// Data-integrity errors
	CodeInvalidAccountData  Code = "INVALID_ACCOUNT_DATA"
	CodeArithmeticOverflow  Code = "ARITHMETIC_OVERFLOW"
	CodeWriteConflict       Code = "WRITE_CONFLICT"
	CodeNotFound            Code = "NOT_FOUND"
	CodeUnsupportedCommand  Code = "COMMAND_TYPE_UNSUPPORTED"
	CodeExecutorUnavailable Code = "EXECUTOR_UNAVAILABLE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - launch configuration and malformed input
	case CodeInvalidTimeRange,
		CodeInvalidTokenSupply,
		CodeInvalidGraduationTarget,
		CodeInvalidCommitmentLimits,
		CodeInvalidArgument,
		CodeBelowMinCommitment,
		CodeAboveMaxCommitment:
		return codes.InvalidArgument

	// FailedPrecondition - timing, lifecycle, and custody checks
	case CodeLaunchNotStarted,
		CodeLaunchEnded,
		CodeAlreadyGraduated,
		CodeAlreadyDelegated,
		CodeNotDelegated,
		CodeNotGraduated,
		CodeGraduationConditionsNotMet,
		CodeAllocationAlreadyCalculated,
		CodeAlreadyClaimed,
		CodeExecutorMismatch,
		CodeInsufficientEphemeralBalance,
		CodeNothingToSweep,
		CodeNoCommitment,
		CodeNoAllocation,
		CodeInsufficientFunds:
		return codes.FailedPrecondition

	// AlreadyExists - launch is unique per (creator, asset)
	case CodeLaunchExists:
		return codes.AlreadyExists

	// PermissionDenied - creator/owner-only operations
	case CodeUnauthorized:
		return codes.PermissionDenied

	// NotFound - record doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// DataLoss - stored bytes failed validation
	case CodeInvalidAccountData:
		return codes.DataLoss

	// OutOfRange - checked arithmetic refused the operation
	case CodeArithmeticOverflow:
		return codes.OutOfRange

	// Aborted - caller may retry
	case CodeWriteConflict:
		return codes.Aborted

	case CodeUnsupportedCommand:
		return codes.Unimplemented

	case CodeExecutorUnavailable:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}

// DomainCodes lists every code a protocol operation can reject with.
func DomainCodes() []Code {
	return []Code{
		CodeInvalidTimeRange,
		CodeInvalidTokenSupply,
		CodeInvalidGraduationTarget,
		CodeInvalidCommitmentLimits,
		CodeLaunchNotStarted,
		CodeLaunchEnded,
		CodeBelowMinCommitment,
		CodeAboveMaxCommitment,
		CodeLaunchExists,
		CodeAlreadyGraduated,
		CodeAlreadyDelegated,
		CodeNotDelegated,
		CodeNotGraduated,
		CodeGraduationConditionsNotMet,
		CodeAllocationAlreadyCalculated,
		CodeAlreadyClaimed,
		CodeExecutorMismatch,
		CodeUnauthorized,
		CodeInsufficientEphemeralBalance,
		CodeNothingToSweep,
		CodeNoCommitment,
		CodeNoAllocation,
		CodeInsufficientFunds,
		CodeInvalidAccountData,
		CodeArithmeticOverflow,
		CodeNotFound,
	}
}
