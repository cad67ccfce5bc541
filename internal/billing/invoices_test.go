package billing

import (
	"context"
	"testing"
	"time"

	"github.com/Spok95/linen-service/internal/domain/batches"
	"github.com/Spok95/linen-service/internal/domain/invoices"
	"github.com/Spok95/linen-service/internal/infra/payments"
	"github.com/Spok95/linen-service/internal/invoice"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInvoiceStore struct {
	mock.Mock
}

func (m *MockInvoiceStore) Upsert(ctx context.Context, clientID int64, year, month int, amount decimal.Decimal) (*invoices.Invoice, error) {
	args := m.Called(ctx, clientID, year, month, amount)
	inv, _ := args.Get(0).(*invoices.Invoice)
	return inv, args.Error(1)
}

func (m *MockInvoiceStore) GetByID(ctx context.Context, id int64) (*invoices.Invoice, error) {
	args := m.Called(ctx, id)
	inv, _ := args.Get(0).(*invoices.Invoice)
	return inv, args.Error(1)
}

func (m *MockInvoiceStore) SetStatus(ctx context.Context, id int64, status invoices.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func marchBatches() []batches.Batch {
	day := func(n int) time.Time { return time.Date(2025, 3, n, 0, 0, 0, 0, time.UTC) }
	return []batches.Batch{
		{ID: 1, ClientID: 1, ClientName: "Отель Волна", PickupDate: day(3), TotalAmount: d("100.00"),
			Lines: []batches.Line{{CategoryID: 10, QuantitySent: 10, QuantityReceived: 10}}},
		{ID: 2, ClientID: 1, ClientName: "Отель Волна", PickupDate: day(17), TotalAmount: d("50.25"), HasDiscrepancy: true,
			Lines: []batches.Line{{CategoryID: 10, QuantitySent: 6, QuantityReceived: 5}}},
	}
}

func TestReportServiceMonthlySummary(t *testing.T) {
	store := new(MockBatchStore)
	svc := NewReportService(discardLog(), store, nil)
	p := invoice.Period{Year: 2025, Month: 3}
	store.On("ListByPeriod", mock.Anything, "2025-03-01", "2025-03-31", (*int64)(nil)).Return(marchBatches(), nil)

	rows, err := svc.MonthlySummary(context.Background(), p, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 15, rows[0].TotalItemsWashed)
	require.Equal(t, 2, rows[0].BatchCount)
	require.Equal(t, 1, rows[0].DiscrepancyBatches)
	require.True(t, rows[0].TotalAmount.Equal(d("150.25")))

	data, name, err := svc.MonthlyWorkbook(context.Background(), p, nil)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.Equal(t, "linen_report_2025-03.xlsx", name)
}

func TestInvoiceServiceIssueMonthly(t *testing.T) {
	batchStore := new(MockBatchStore)
	invStore := new(MockInvoiceStore)
	cl := fakeClients{1: {ID: 1, Name: "Отель Волна", Active: true}}
	reports := NewReportService(discardLog(), batchStore, nil)
	svc := NewInvoiceService(discardLog(), invStore, cl, reports, payments.NewService("https://pay.example"), nil)

	p := invoice.Period{Year: 2025, Month: 3}
	clientID := int64(1)
	batchStore.On("ListByPeriod", mock.Anything, "2025-03-01", "2025-03-31", &clientID).Return(marchBatches(), nil)
	invStore.On("Upsert", mock.Anything, int64(1), 2025, 3, mock.MatchedBy(func(a decimal.Decimal) bool {
		return a.Equal(d("150.25"))
	})).Return(&invoices.Invoice{ID: 42, ClientID: 1, Year: 2025, Month: 3, Amount: d("150.25"), Status: invoices.StatusPending}, nil)

	issued, err := svc.IssueMonthly(context.Background(), 1, p)
	require.NoError(t, err)
	require.Equal(t, int64(42), issued.Invoice.ID)
	require.Equal(t, "Отель Волна", issued.Summary.ClientName)
	require.Contains(t, issued.PaymentURL, "invoice=42")
	invStore.AssertExpectations(t)

	_, err = svc.IssueMonthly(context.Background(), 77, p)
	require.ErrorIs(t, err, ErrClientNotFound)
}

func TestInvoiceServiceIssueMonthlyEmptyPeriod(t *testing.T) {
	batchStore := new(MockBatchStore)
	cl := fakeClients{1: {ID: 1, Name: "Отель Волна", Active: true}}
	svc := NewInvoiceService(discardLog(), new(MockInvoiceStore), cl,
		NewReportService(discardLog(), batchStore, nil), payments.NewService("https://pay.example"), nil)

	batchStore.On("ListByPeriod", mock.Anything, "2025-01-01", "2025-12-31", mock.Anything).Return([]batches.Batch{}, nil)

	_, err := svc.IssueMonthly(context.Background(), 1, invoice.Period{Year: 2025})
	require.ErrorIs(t, err, ErrNothingToInvoice)
}

func TestInvoiceServiceMarkPaid(t *testing.T) {
	store := new(MockInvoiceStore)
	svc := NewInvoiceService(discardLog(), store, fakeClients{}, nil, payments.NewService(""), nil)

	paidAt := time.Now()
	store.On("SetStatus", mock.Anything, int64(42), invoices.StatusPaid).Return(nil)
	store.On("GetByID", mock.Anything, int64(42)).Return(&invoices.Invoice{ID: 42, Status: invoices.StatusPaid, PaidAt: &paidAt}, nil)
	store.On("SetStatus", mock.Anything, int64(43), invoices.StatusPaid).Return(pgx.ErrNoRows)

	inv, err := svc.MarkPaid(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, invoices.StatusPaid, inv.Status)

	_, err = svc.MarkPaid(context.Background(), 43)
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}
