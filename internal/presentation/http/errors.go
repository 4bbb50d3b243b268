package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mathieu6700417/conciergeriecordo/internal/domain/errkind"
	dompay "github.com/mathieu6700417/conciergeriecordo/internal/domain/payment"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability/logctx"
)

const (
	codeValidation       = "validation_error"
	codeNotFound         = "not_found"
	codeInvalidState     = "invalid_state"
	codeInvalidSignature = "invalid_signature"
	codeInvalidPayload   = "invalid_payload"
	codeDeclined         = "payment_declined"
	codeRequestInvalid   = "payment_request_invalid"
	codeUpstream         = "upstream_error"
	codeInternal         = "internal_error"
	codeMethodNotAllowed = "method_not_allowed"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

// statusFor maps an error onto an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, dompay.ErrUnauthenticated):
		return http.StatusBadRequest, codeInvalidSignature
	case errors.Is(err, dompay.ErrInvalidPayload):
		return http.StatusBadRequest, codeInvalidPayload
	case errors.Is(err, dompay.ErrDeclined):
		return http.StatusPaymentRequired, codeDeclined
	case errors.Is(err, dompay.ErrRequestInvalid):
		return http.StatusBadRequest, codeRequestInvalid
	}

	switch errkind.Of(err) {
	case errkind.Validation:
		return http.StatusBadRequest, codeValidation
	case errkind.NotFound:
		return http.StatusNotFound, codeNotFound
	case errkind.InvalidState:
		return http.StatusConflict, codeInvalidState
	case errkind.Unauthenticated:
		return http.StatusBadRequest, codeInvalidSignature
	case errkind.External:
		return http.StatusBadGateway, codeUpstream
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func (h *Handler) writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logctx.FromOr(ctx, h.log).Error("http_request_failed",
			observability.F("status", status),
			observability.Err(err),
		)
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	writeError(w, status, code, msg)
}
