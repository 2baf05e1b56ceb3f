package protocol

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/vestige-labs/vestige/internal/platform/errors"
	"github.com/vestige-labs/vestige/internal/platform/logging"
	"github.com/vestige-labs/vestige/internal/platform/requestctx"
	"github.com/vestige-labs/vestige/internal/services/launch/assets"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/allocation"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/amount"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/engine"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/ledger"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
	"github.com/vestige-labs/vestige/internal/services/launch/executor"
	"github.com/vestige-labs/vestige/internal/services/launch/storage"
)

// Executor is the private venue delegated records are handed to.
type Executor interface {
	Identity() string
	Accept(ctx context.Context, d executor.Delegation) error
	RecordCommit(ctx context.Context, launchKey, user address.Key, value uint64) error
	PrivateCommit(ctx context.Context, launchKey, user address.Key, value uint64) error
	GraduatePool(ctx context.Context, launchKey, actor address.Key) (ledger.Pool, error)
	Snapshot(ctx context.Context, keys ...address.Key) ([]record.Envelope, error)
	Release(ctx context.Context, keys ...address.Key) error
	View(ctx context.Context, key, viewer address.Key) (record.Envelope, error)
}

// Config wires a Service.
type Config struct {
	Store      storage.Store
	Executor   Executor
	Deriver    address.Deriver
	Registries engine.Registries
	Allocation allocation.Params
	// Reserve is the native-asset minimum every opened account keeps.
	Reserve uint64
	// Faucet enables minting native funds to any wallet.
	Faucet bool
	Logger *zap.Logger
	Clock  func() time.Time
}

// Service runs launch operations against the public ledger.
type Service struct {
	store      storage.Store
	executor   Executor
	deriver    address.Deriver
	commands   *command.Registry
	allocation allocation.Params
	reserve    uint64
	faucet     bool
	logger     *zap.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// New returns a Service. Executor may be nil, in which case delegated
// operations fail with EXECUTOR_UNAVAILABLE.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Registries.Commands == nil {
		return nil, errors.New("command registry is required")
	}
	params := cfg.Allocation
	if params.EarlyBonusAlpha == 0 {
		params = allocation.DefaultParams()
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:      cfg.Store,
		executor:   cfg.Executor,
		deriver:    cfg.Deriver,
		commands:   cfg.Registries.Commands,
		allocation: params,
		reserve:    cfg.Reserve,
		faucet:     cfg.Faucet,
		logger:     logging.OrNop(cfg.Logger).Named("protocol"),
		tracer:     otel.Tracer("github.com/vestige-labs/vestige/internal/services/launch/protocol"),
		now:        now,
	}, nil
}

// Deriver returns the address deriver of the program.
func (s *Service) Deriver() address.Deriver {
	return s.deriver
}

func (s *Service) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "protocol."+op)
}

// finish maps err to an application error and closes span.
func (s *Service) finish(span trace.Span, err error) error {
	defer span.End()
	if err == nil {
		return nil
	}
	err = mapError(err)
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, string(apperrors.GetCode(err)))
	return err
}

func (s *Service) ledger(tx storage.Tx) *assets.Ledger {
	return assets.New(tx, s.reserve, s.now)
}

func (s *Service) requireExecutor() error {
	if s.executor == nil {
		return apperrors.New(apperrors.CodeExecutorUnavailable, "no private executor is configured")
	}
	return nil
}

// command builds and validates a command for launchKey.
func (s *Service) command(ctx context.Context, launchKey address.Key, typ command.Type, actor address.Key, payload any) (command.Command, error) {
	cmd := command.Command{LaunchID: launchKey.String(), Type: typ, ActorID: actor.String()}
	if payload != nil {
		built, err := command.NewPayload(cmd.LaunchID, typ, cmd.ActorID, payload)
		if err != nil {
			return command.Command{}, apperrors.Wrap(apperrors.CodeInvalidArgument, "encode command", err)
		}
		cmd = built
	}
	cmd.RequestID = requestctx.RequestIDFromContext(ctx)
	validated, err := s.commands.ValidateForDecision(cmd)
	if err != nil {
		return command.Command{}, apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), err)
	}
	return validated, nil
}

// rejected converts the first rejection of a decision into an error.
func (s *Service) rejected(cmd command.Command, decision command.Decision) error {
	rejection := decision.Rejections[0]
	s.logger.Debug("command rejected",
		zap.String("launch", cmd.LaunchID),
		zap.String("op", string(cmd.Type)),
		zap.String("code", rejection.Code),
	)
	return apperrors.New(apperrors.Code(rejection.Code), rejection.Message)
}

func (s *Service) accepted(cmd command.Command, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("launch", cmd.LaunchID),
		zap.String("op", string(cmd.Type)),
		zap.String("participant", cmd.ActorID),
	}, fields...)
	s.logger.Info("command accepted", fields...)
}

// mapError turns storage and asset failures into coded errors. Coded
// errors pass through.
func mapError(err error) error {
	var coded *apperrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, assets.ErrInsufficientFunds):
		return apperrors.Wrap(apperrors.CodeInsufficientFunds, err.Error(), err)
	case errors.Is(err, assets.ErrUnauthorized):
		return apperrors.Wrap(apperrors.CodeUnauthorized, err.Error(), err)
	case errors.Is(err, assets.ErrInvalidAmount):
		return apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), err)
	case errors.Is(err, storage.ErrConflict):
		return apperrors.Wrap(apperrors.CodeWriteConflict, "concurrent write, retry", err)
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.Wrap(apperrors.CodeNotFound, err.Error(), err)
	case errors.Is(err, amount.ErrOverflow):
		return apperrors.Wrap(apperrors.CodeArithmeticOverflow, err.Error(), err)
	case errors.Is(err, record.ErrInvalidData):
		return apperrors.Wrap(apperrors.CodeInvalidAccountData, err.Error(), err)
	default:
		return err
	}
}
