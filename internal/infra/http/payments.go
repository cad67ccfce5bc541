package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Spok95/linen-service/internal/billing"
)

type payHandler struct {
	log      *slog.Logger
	invoices *billing.InvoiceService
}

// ServeHTTP эмулирует "успешную оплату":
// /payments/pay?invoice=123 -> счёт клиента становится paid, показываем простую HTML-страницу.
func (h *payHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invoiceStr := r.URL.Query().Get("invoice")
	if invoiceStr == "" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("missing invoice parameter"))
		return
	}

	invoiceID, err := strconv.ParseInt(invoiceStr, 10, 64)
	if err != nil || invoiceID <= 0 {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid invoice parameter"))
		return
	}

	inv, err := h.invoices.MarkPaid(ctx, invoiceID)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			h.log.Error("failed to mark invoice as paid",
				"invoice_id", invoiceID,
				"request_id", RequestID(ctx),
				"err", err,
			)
		}
		w.WriteHeader(code)
		_, _ = w.Write([]byte("failed to update invoice status"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w,
		"<html><body><h1>Оплата прошла</h1><p>Счёт #%d на сумму %s помечен как оплаченный.</p></body></html>",
		inv.ID, inv.Amount.StringFixed(2),
	)
}
