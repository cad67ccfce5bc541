package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Spok95/linen-service/internal/domain/invoices"
	"github.com/Spok95/linen-service/internal/infra/metrics"
	"github.com/Spok95/linen-service/internal/infra/payments"
	"github.com/Spok95/linen-service/internal/invoice"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type InvoiceStore interface {
	Upsert(ctx context.Context, clientID int64, year, month int, amount decimal.Decimal) (*invoices.Invoice, error)
	GetByID(ctx context.Context, id int64) (*invoices.Invoice, error)
	SetStatus(ctx context.Context, id int64, status invoices.Status) error
}

// InvoiceService выставляет клиентам счета за период и отмечает оплату.
type InvoiceService struct {
	log      *slog.Logger
	store    InvoiceStore
	clients  ClientGetter
	reports  *ReportService
	payments *payments.Service
	metrics  *metrics.Metrics
}

func NewInvoiceService(log *slog.Logger, store InvoiceStore, clientsRepo ClientGetter,
	reports *ReportService, pay *payments.Service, m *metrics.Metrics) *InvoiceService {
	return &InvoiceService{log: log, store: store, clients: clientsRepo, reports: reports, payments: pay, metrics: m}
}

type IssuedInvoice struct {
	Invoice    invoices.Invoice
	Summary    invoice.ClientSummary
	PaymentURL string
}

// IssueMonthly повторный вызов за тот же период обновляет сумму неоплаченного счёта.
func (s *InvoiceService) IssueMonthly(ctx context.Context, clientID int64, p invoice.Period) (*IssuedInvoice, error) {
	c, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: id=%d", ErrClientNotFound, clientID)
	}

	rows, err := s.reports.MonthlySummary(ctx, p, &clientID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: client %d, %s", ErrNothingToInvoice, clientID, p.Label())
	}
	sum := rows[0]

	inv, err := s.store.Upsert(ctx, clientID, p.Year, p.Month, sum.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("save invoice: %w", err)
	}
	s.metrics.ClientInvoice(string(inv.Status))
	s.log.Info("client invoice issued", "invoice_id", inv.ID, "client_id", clientID,
		"period", p.Label(), "amount", inv.Amount.StringFixed(2), "status", inv.Status)

	return &IssuedInvoice{
		Invoice:    *inv,
		Summary:    sum,
		PaymentURL: s.payments.PaymentURLWithAmount(inv.ID, inv.Amount),
	}, nil
}

func (s *InvoiceService) MarkPaid(ctx context.Context, id int64) (*invoices.Invoice, error) {
	if err := s.store.SetStatus(ctx, id, invoices.StatusPaid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", ErrInvoiceNotFound, id)
		}
		return nil, err
	}
	s.metrics.ClientInvoice(string(invoices.StatusPaid))
	inv, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: id=%d", ErrInvoiceNotFound, id)
	}
	return inv, nil
}
