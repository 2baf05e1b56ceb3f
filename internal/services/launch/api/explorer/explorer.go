// Package explorer serves a read-only JSON view of the public ledger.
//
// Records held by the private executor are reported with their owner tag
// only; their totals stay private until they are handed back.
package explorer

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"

	apperrors "github.com/vestige-labs/vestige/internal/platform/errors"
	"github.com/vestige-labs/vestige/internal/platform/logging"
	"github.com/vestige-labs/vestige/internal/platform/requestctx"
	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/launch"
	"github.com/vestige-labs/vestige/internal/services/launch/protocol"
)

// Reader is the read side of the protocol service.
type Reader interface {
	Launch(ctx context.Context, launchKey address.Key) (launch.State, launch.Phase, error)
	Pool(ctx context.Context, launchKey address.Key) (protocol.PoolView, error)
	Participant(ctx context.Context, launchKey, user address.Key) (protocol.ParticipantView, error)
	Custody(ctx context.Context, launchKey, user address.Key) (protocol.CustodyView, error)
	Balance(ctx context.Context, key, asset address.Key) (uint64, error)
	Events(ctx context.Context, launchKey address.Key, afterSeq uint64, limit int) ([]event.Event, error)
}

// Handler serves the explorer routes.
type Handler struct {
	reader Reader
	logger *zap.Logger
}

// New returns the explorer router.
func New(reader Reader, logger *zap.Logger) http.Handler {
	h := &Handler{reader: reader, logger: logging.OrNop(logger).Named("explorer")}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/launches/{launch}", func(r chi.Router) {
		r.Get("/", h.getLaunch)
		r.Get("/pool", h.getPool)
		r.Get("/participants/{user}", h.getParticipant)
		r.Get("/custody/{user}", h.getCustody)
		r.Get("/events", h.listEvents)
	})
	r.Get("/accounts/{account}/balances/{asset}", h.getBalance)
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		ctx := requestctx.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(ctx))
		h.logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (h *Handler) getLaunch(w http.ResponseWriter, r *http.Request) {
	launchKey, ok := keyParam(w, r, "launch")
	if !ok {
		return
	}
	state, phase, err := h.reader.Launch(r.Context(), launchKey)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, launchv1.LaunchFromState(state, phase))
}

func (h *Handler) getPool(w http.ResponseWriter, r *http.Request) {
	launchKey, ok := keyParam(w, r, "launch")
	if !ok {
		return
	}
	view, err := h.reader.Pool(r.Context(), launchKey)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, launchv1.PoolFromView(view))
}

func (h *Handler) getParticipant(w http.ResponseWriter, r *http.Request) {
	launchKey, ok := keyParam(w, r, "launch")
	if !ok {
		return
	}
	user, ok := keyParam(w, r, "user")
	if !ok {
		return
	}
	view, err := h.reader.Participant(r.Context(), launchKey, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, launchv1.ParticipantFromView(view))
}

func (h *Handler) getCustody(w http.ResponseWriter, r *http.Request) {
	launchKey, ok := keyParam(w, r, "launch")
	if !ok {
		return
	}
	user, ok := keyParam(w, r, "user")
	if !ok {
		return
	}
	view, err := h.reader.Custody(r.Context(), launchKey, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, launchv1.CustodyFromView(view))
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	launchKey, ok := keyParam(w, r, "launch")
	if !ok {
		return
	}
	var afterSeq uint64
	if raw := r.URL.Query().Get("after"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, apperrors.New(apperrors.CodeInvalidArgument, "after must be a sequence number"))
			return
		}
		afterSeq = parsed
	}
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperrors.New(apperrors.CodeInvalidArgument, "limit must be a number"))
			return
		}
		limit = parsed
	}
	events, err := h.reader.Events(r.Context(), launchKey, afterSeq, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]launchv1.Event, 0, len(events))
	for _, evt := range events {
		out = append(out, launchv1.EventFromJournal(evt))
	}
	writeJSON(w, http.StatusOK, launchv1.ListEventsResponse{Events: out})
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	account, ok := keyParam(w, r, "account")
	if !ok {
		return
	}
	asset, ok := keyParam(w, r, "asset")
	if !ok {
		return
	}
	balance, err := h.reader.Balance(r.Context(), account, asset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, launchv1.BalanceResponse{Balance: balance})
}

func keyParam(w http.ResponseWriter, r *http.Request, name string) (address.Key, bool) {
	key, err := address.Parse(chi.URLParam(r, name))
	if err != nil || (key.IsZero() && name != "asset") {
		writeError(w, apperrors.New(apperrors.CodeInvalidArgument, name+" must be a 32-byte hex key"))
		return address.Zero, false
	}
	return key, true
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	body := errorBody{Code: string(code), Message: apperrors.UserMessage(code)}
	writeJSON(w, httpStatus(code.GRPCCode()), body)
}

func httpStatus(code codes.Code) int {
	switch code {
	case codes.InvalidArgument, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.FailedPrecondition, codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
