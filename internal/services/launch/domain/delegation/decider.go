package delegation

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/launch"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
)

const entityTypeRecord = "record"

// RejectionInvalidArgument reports a delegation without an executor.
const RejectionInvalidArgument = "INVALID_ARGUMENT"

// State is what a delegation command is decided against.
//
// Controller may move the record: the creator for a pool, the user for a
// participant or custody. Released is set once the launch's pool has
// graduated publicly; from then on anyone may hand a record back.
type State struct {
	Launch     launch.State
	Record     record.Envelope
	Controller address.Key
	Released   bool
}

func reject(code, message string) command.Decision {
	return command.Reject(command.Rejection{Code: code, Message: message})
}

// Decide returns the decision for a delegation command.
func Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}
	if !state.Launch.Initialized {
		return reject(launch.RejectionLaunchNotFound, "launch not found")
	}
	var payload RecordPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	if payload.Record != state.Record.Key {
		return reject(RejectionInvalidArgument, "payload names a different record")
	}
	payload.Kind = state.Record.Kind

	var evtType event.Type
	switch cmd.Type {
	case CommandTypeDelegate:
		if state.Launch.IsGraduated {
			return reject(launch.RejectionAlreadyGraduated, "launch already graduated")
		}
		if state.Record.Owner != record.OwnerProtocol {
			return reject(launch.RejectionAlreadyDelegated, "record is not owned by the protocol")
		}
		if state.Controller.String() != cmd.ActorID {
			return reject(launch.RejectionUnauthorized, "only the record controller may delegate it")
		}
		payload.ExecutorID = strings.TrimSpace(payload.ExecutorID)
		if payload.ExecutorID == "" {
			return reject(RejectionInvalidArgument, "executor identity is required")
		}
		evtType = EventTypeDelegated
	case CommandTypePublish:
		if state.Record.Owner != record.OwnerExecutor {
			return reject(launch.RejectionNotDelegated, "record is not delegated")
		}
		if !state.Released && state.Controller.String() != cmd.ActorID {
			return reject(launch.RejectionUnauthorized, "only the record controller may undelegate it before graduation")
		}
		payload.ExecutorID = state.Record.ExecutorID
		evtType = EventTypePublished
	case CommandTypeSettle:
		if state.Record.Owner != record.OwnerInTransit {
			return reject(launch.RejectionNotDelegated, "record is not in transit")
		}
		payload.ExecutorID = state.Record.ExecutorID
		evtType = EventTypeSettled
	default:
		return reject("COMMAND_TYPE_UNSUPPORTED", "command type is not supported by delegation decider")
	}

	payloadJSON, _ := json.Marshal(payload)
	evt := command.NewEvent(cmd, evtType, entityTypeRecord, state.Record.Key.String(), payloadJSON, now().UTC())
	return command.Accept(evt)
}

// Fold applies a delegation event to a record's owner tag. Record bytes are
// written by the caller; events never carry them.
func Fold(env record.Envelope, evt event.Event) record.Envelope {
	var payload RecordPayload
	_ = json.Unmarshal(evt.PayloadJSON, &payload)
	switch evt.Type {
	case EventTypeDelegated:
		env.Owner = record.OwnerExecutor
		env.ExecutorID = payload.ExecutorID
	case EventTypePublished:
		env.Owner = record.OwnerInTransit
	case EventTypeSettled:
		env.Owner = record.OwnerProtocol
		env.ExecutorID = ""
	}
	return env
}
