package grpc

import (
	"context"
	"strings"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	apperrors "github.com/vestige-labs/vestige/internal/platform/errors"
	"github.com/vestige-labs/vestige/internal/platform/id"
	"github.com/vestige-labs/vestige/internal/platform/requestctx"
	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/walletauth"
)

// ActorAuth decides how callers prove which wallet they act for.
type ActorAuth struct {
	// Verifier checks "authorization: Bearer <token>" wallet tokens.
	Verifier *walletauth.Verifier
	// AllowActorHeader trusts an unsigned actor header. Development only.
	AllowActorHeader bool
}

// UnaryServerInterceptor makes sure every call carries a request id and
// resolves the calling wallet into the context.
func UnaryServerInterceptor(idGenerator func() (string, error), auth ActorAuth) gogrpc.UnaryServerInterceptor {
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		requestID := firstMetadataValue(md, launchv1.RequestIDHeader)
		if requestID == "" {
			generated, err := idGenerator()
			if err != nil {
				return nil, status.Errorf(codes.Internal, "generate request id: %v", err)
			}
			requestID = generated
		}
		if err := gogrpc.SetHeader(ctx, metadata.Pairs(launchv1.RequestIDHeader, requestID)); err != nil {
			return nil, status.Errorf(codes.Internal, "set response metadata: %v", err)
		}
		ctx = requestctx.WithRequestID(ctx, requestID)

		actor, err := auth.resolve(md)
		if err != nil {
			return nil, handleError(err)
		}
		if actor != "" {
			ctx = requestctx.WithActor(ctx, actor)
		}
		return handler(ctx, req)
	}
}

// resolve returns the wallet a call acts for, or "" for anonymous calls.
// A bearer token wins over the actor header.
func (a ActorAuth) resolve(md metadata.MD) (string, error) {
	if raw := firstMetadataValue(md, launchv1.AuthorizationHeader); raw != "" {
		scheme, token, ok := strings.Cut(raw, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return "", apperrors.New(apperrors.CodeUnauthorized, "authorization must be a bearer token")
		}
		if a.Verifier == nil {
			return "", apperrors.New(apperrors.CodeUnauthorized, "wallet tokens are not accepted")
		}
		key, err := a.Verifier.Verify(token)
		if err != nil {
			return "", err
		}
		return key.String(), nil
	}
	if actor := firstMetadataValue(md, launchv1.ActorHeader); actor != "" {
		if !a.AllowActorHeader {
			return "", apperrors.New(apperrors.CodeUnauthorized, "unsigned actor header is disabled; send a wallet token")
		}
		return actor, nil
	}
	return "", nil
}

// firstMetadataValue returns the first printable ASCII value for key.
func firstMetadataValue(md metadata.MD, key string) string {
	for _, value := range md.Get(key) {
		value = strings.TrimSpace(value)
		if isPrintableASCII(value) {
			return value
		}
	}
	return ""
}

func isPrintableASCII(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 || value[i] > 0x7e {
			return false
		}
	}
	return true
}

// actorFromContext returns the calling wallet. Mutating calls require one.
func actorFromContext(ctx context.Context) (address.Key, error) {
	raw := requestctx.ActorFromContext(ctx)
	if raw == "" {
		return address.Zero, apperrors.New(apperrors.CodeUnauthorized, "a wallet token is required")
	}
	actor, err := address.Parse(raw)
	if err != nil {
		return address.Zero, apperrors.Wrap(apperrors.CodeInvalidArgument, "actor is not a valid key", err)
	}
	return actor, nil
}

// handleError converts err into a gRPC status.
func handleError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.ToStatus(err, "")
}
