package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Spok95/linen-service/internal/billing"
	"github.com/Spok95/linen-service/internal/domain/batches"
	"github.com/Spok95/linen-service/internal/invoice"
	"github.com/go-playground/validator/v10"
)

var errNotFound = errors.New("not found")

// requestError: кривой запрос (JSON, параметры пути и query).
type requestError struct{ msg string }

func (e requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return requestError{msg: fmt.Sprintf(format, args...)}
}

func statusFor(err error) int {
	var re requestError
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &re), errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, errNotFound),
		errors.Is(err, billing.ErrBatchNotFound),
		errors.Is(err, billing.ErrClientNotFound),
		errors.Is(err, billing.ErrInvoiceNotFound):
		return http.StatusNotFound
	case errors.Is(err, batches.ErrInvalidQuantity),
		errors.Is(err, batches.ErrDuplicateCategory),
		errors.Is(err, batches.ErrNoLines),
		errors.Is(err, batches.ErrInvalidStatus),
		errors.Is(err, invoice.ErrInvalidPeriod),
		errors.Is(err, billing.ErrInvalidPickupDate):
		return http.StatusBadRequest
	case errors.Is(err, invoice.ErrCategoryNotFound),
		errors.Is(err, invoice.ErrCategoryInactive),
		errors.Is(err, billing.ErrClientInactive):
		return http.StatusUnprocessableEntity
	case errors.Is(err, billing.ErrAlreadyDelivered),
		errors.Is(err, billing.ErrNothingToInvoice):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		a.log.Error("request failed", "request_id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeJSON(w, code, errorResponse{Error: msg, RequestID: RequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFile(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
