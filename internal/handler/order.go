package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/ironsignalworks/deadgravel/internal/order"
)

// Messages returned for rejected create-order requests.
const (
	msgMissingCredential = "Missing GELATO_API_KEY in environment"
	msgInvalidBody       = "Invalid JSON body"
	msgBodyTooLarge      = "Request body too large"
	msgNoItems           = "No items provided"
	msgMissingShipping   = "Missing shipping address"
)

// requireCredential rejects order requests while no partner API key is
// configured. It runs ahead of rate limiting and body limits.
func (h *Handler) requireCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.orders.Configured() {
			zctx.From(r.Context()).Error("Order rejected: partner API key is not configured")
			writeMessage(w, http.StatusInternalServerError, msgMissingCredential)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateOrder forwards the request body to the print partner and relays the
// outcome.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lg := zctx.From(ctx)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			lg.Warn("Order rejected: body too large", zap.Int64("limit", tooLarge.Limit))
			writeMessage(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		lg.Warn("Order rejected: read body", zap.Error(err))
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	resp, err := h.orders.Create(ctx, payload)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	lg.Info("Order created")
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("ok", func(e *jx.Encoder) { e.Bool(true) })
		e.Field("gelato", func(e *jx.Encoder) { e.Raw(resp) })
	})
	writeJSON(w, http.StatusOK, &e)
}

// writeOrderError logs err and maps it to the response envelope.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	lg := zctx.From(r.Context())

	var upstream *order.UpstreamError
	switch {
	case errors.Is(err, order.ErrMissingCredential):
		lg.Error("Order rejected: partner API key is not configured")
		writeMessage(w, http.StatusInternalServerError, msgMissingCredential)
	case errors.Is(err, order.ErrInvalidBody):
		lg.Warn("Order rejected: invalid body", zap.Error(err))
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
	case errors.Is(err, order.ErrNoItems):
		lg.Warn("Order rejected", zap.Error(err))
		writeMessage(w, http.StatusBadRequest, msgNoItems)
	case errors.Is(err, order.ErrMissingShipping):
		lg.Warn("Order rejected", zap.Error(err))
		writeMessage(w, http.StatusBadRequest, msgMissingShipping)
	case errors.As(err, &upstream):
		lg.Error("Partner rejected order",
			zap.Int("status", upstream.Status),
			zap.String("body", upstream.Body),
		)
		var e jx.Encoder
		e.Obj(func(e *jx.Encoder) {
			e.Field("ok", func(e *jx.Encoder) { e.Bool(false) })
			e.Field("error", func(e *jx.Encoder) { e.Str("gelato_error") })
			e.Field("status", func(e *jx.Encoder) { e.Int(upstream.Status) })
			e.Field("detail", func(e *jx.Encoder) { e.Str(upstream.Body) })
		})
		writeJSON(w, relayStatus(upstream.Status), &e)
	default:
		lg.Error("Create order failed", zap.Error(err))
		var e jx.Encoder
		e.Obj(func(e *jx.Encoder) {
			e.Field("ok", func(e *jx.Encoder) { e.Bool(false) })
			e.Field("error", func(e *jx.Encoder) { e.Str("server_error") })
			e.Field("detail", func(e *jx.Encoder) { e.Str(err.Error()) })
		})
		writeJSON(w, http.StatusInternalServerError, &e)
	}
}

// relayStatus returns the partner status, or 502 when it cannot be written
// as a response status.
func relayStatus(status int) int {
	if status < 100 || status > 999 {
		return http.StatusBadGateway
	}
	return status
}
