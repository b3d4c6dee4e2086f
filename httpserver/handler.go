package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/royalty-registry/api"
	"github.com/ruteri/royalty-registry/interfaces"
)

const (
	// maxBodySize is the maximum allowed request body size (64kB).
	maxBodySize = 64 * 1024

	assetParam = "asset_address"
)

var errRequestExpired = errors.New("signed request expired")

// RequestError provides structured error information for HTTP responses.
// It includes both an HTTP status code and the underlying error.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func badRequest(format string, args ...any) *RequestError {
	return &RequestError{StatusCode: http.StatusBadRequest, Err: fmt.Errorf(format, args...)}
}

// Handler serves the royalty API on top of an interfaces.RoyaltyRegistry.
type Handler struct {
	registry interfaces.RoyaltyRegistry
	store    interfaces.RoyaltyStore
	log      *slog.Logger

	maxDeadlineWindow time.Duration
	now               func() time.Time
}

// NewHandler creates the royalty API handler. store is only consulted by
// readiness checks and may be nil.
func NewHandler(registry interfaces.RoyaltyRegistry, store interfaces.RoyaltyStore, log *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

// SetMaxDeadlineWindow rejects signed writes whose deadline lies further than
// window in the future. Zero disables the bound.
func (h *Handler) SetMaxDeadlineWindow(window time.Duration) {
	h.maxDeadlineWindow = window
}

// Ready reports whether the backing store is reachable.
func (h *Handler) Ready(ctx context.Context) bool {
	if h.store == nil {
		return true
	}
	return h.store.Available(ctx)
}

// HandleSet processes a signed royalty config update.
//
// URL format: PUT /api/royalty/{asset_address}
// Required headers:
//   - X-Royalty-Signature: signature over path||body, see api.SignRequest
//
// Request body: api.SetRoyaltyRequest. Its revision must match the stored
// config, so a captured request cannot be applied twice.
//
// Response: api.RoyaltyConfigResponse with the stored config
func (h *Handler) HandleSet(w http.ResponseWriter, r *http.Request) {
	asset, err := parseAsset(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.writeError(w, badRequest("failed to read request body: %v", err))
		return
	}

	caller, err := api.RecoverCaller(r.URL.Path, body, r.Header.Get(api.SignatureHeader))
	if err != nil {
		h.log.Debug("Rejected unsigned royalty update", "asset", asset.Hex(), "err", err)
		h.writeError(w, &RequestError{StatusCode: http.StatusUnauthorized, Err: err})
		return
	}

	var req api.SetRoyaltyRequest
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.writeError(w, badRequest("invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, badRequest("%v", err))
		return
	}
	if err := h.checkDeadline(req.Deadline); err != nil {
		h.writeError(w, err)
		return
	}

	config, err := req.RoyaltyConfig()
	if err != nil {
		h.writeError(w, badRequest("%v", err))
		return
	}

	revision := *req.Revision
	if err := h.registry.SetAtRevision(r.Context(), asset, caller, config, revision); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, api.RoyaltyConfigResponse{
		Receiver:   config.Receiver.Hex(),
		FeeRate:    config.FeeRate,
		Permanent:  config.Permanent,
		Configured: true,
		Revision:   revision + 1,
	})
}

// HandleGet returns the receiver and royalty for a sale.
//
// URL format: GET /api/royalty/{asset_address}?token_id=..&sale_price=..
// Both query values are non-negative base-10 integers; token_id defaults to 0.
//
// Response: api.GetRoyaltyResponse
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	asset, err := parseAsset(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	query := r.URL.Query()
	if !query.Has("sale_price") {
		h.writeError(w, badRequest("missing sale_price"))
		return
	}
	salePrice, err := parseUint(query.Get("sale_price"))
	if err != nil {
		h.writeError(w, badRequest("invalid sale_price: %v", err))
		return
	}

	tokenID := new(big.Int)
	if query.Has("token_id") {
		tokenID, err = parseUint(query.Get("token_id"))
		if err != nil {
			h.writeError(w, badRequest("invalid token_id: %v", err))
			return
		}
	}

	info, err := h.registry.Get(r.Context(), asset, tokenID, salePrice)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, api.GetRoyaltyResponse{
		Receiver:      info.Receiver.Hex(),
		RoyaltyAmount: info.Amount.String(),
	})
}

// HandleConfig returns the stored config of an asset.
//
// URL format: GET /api/royalty/{asset_address}/config
//
// Response: api.RoyaltyConfigResponse; configured is false for unknown assets
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	asset, err := parseAsset(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	config, exists, err := h.registry.Config(r.Context(), asset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, api.RoyaltyConfigResponse{
		Receiver:   config.Receiver.Hex(),
		FeeRate:    config.FeeRate,
		Permanent:  config.Permanent,
		Configured: exists,
		Revision:   config.Revision,
	})
}

func (h *Handler) checkDeadline(deadline int64) error {
	now := h.now()
	expiry := time.Unix(deadline, 0)
	if now.After(expiry) {
		return &RequestError{StatusCode: http.StatusUnauthorized, Err: errRequestExpired}
	}
	if h.maxDeadlineWindow > 0 && expiry.Sub(now) > h.maxDeadlineWindow {
		return badRequest("deadline more than %s in the future", h.maxDeadlineWindow)
	}
	return nil
}

func parseAsset(r *http.Request) (interfaces.Address, error) {
	raw := chi.URLParam(r, assetParam)
	if raw == "" {
		return interfaces.NullAddress, badRequest("missing asset address in URL")
	}
	asset, err := interfaces.ParseAddress(raw)
	if err != nil {
		return interfaces.NullAddress, badRequest("%v", err)
	}
	return asset, nil
}

func parseUint(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%q is not a base-10 integer", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%q is negative", s)
	}
	return v, nil
}

// statusFor maps registry errors to HTTP status codes.
func statusFor(err error) int {
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.StatusCode
	case errors.Is(err, interfaces.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, interfaces.ErrAlreadyLocked):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrInvalidFeeRate):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrStaleRevision):
		return http.StatusPreconditionFailed
	case errors.Is(err, interfaces.ErrWriteConflict):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		h.log.Error("Royalty request failed", "err", err)
		message = http.StatusText(status)
	}

	h.writeJSON(w, status, api.ErrorResponse{
		Error: message,
		Code:  interfaces.ErrorCode(err),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}
