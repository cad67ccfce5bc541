package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Spok95/linen-service/internal/domain/batches"
	"github.com/Spok95/linen-service/internal/domain/clients"
	"github.com/Spok95/linen-service/internal/infra/metrics"
	"github.com/Spok95/linen-service/internal/invoice"
	"github.com/jackc/pgx/v5"
)

var (
	ErrBatchNotFound     = errors.New("batch not found")
	ErrClientNotFound    = errors.New("client not found")
	ErrClientInactive    = errors.New("client is inactive")
	ErrAlreadyDelivered  = errors.New("batch is already delivered")
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrNothingToInvoice  = errors.New("no batches in period")
	ErrInvalidPickupDate = errors.New("invalid pickup date")
)

type BatchStore interface {
	Create(ctx context.Context, b batches.Batch) (int64, error)
	GetByID(ctx context.Context, id int64) (*batches.Batch, error)
	ListByPeriod(ctx context.Context, start, end string, clientID *int64) ([]batches.Batch, error)
	ReplaceLines(ctx context.Context, batchID int64, lines []batches.Line, totals batches.Totals) error
	UpdateStatus(ctx context.Context, id int64, status batches.Status, note string) error
}

type ClientGetter interface {
	GetByID(ctx context.Context, id int64) (*clients.Client, error)
}

// Notifier получает партии с расхождениями (например, телеграм-бот админа).
type Notifier interface {
	BatchDiscrepancy(ctx context.Context, b batches.Batch, inv invoice.BatchInvoice)
}

type BatchService struct {
	log     *slog.Logger
	store   BatchStore
	clients ClientGetter
	cats    invoice.CategoryGetter
	calc    *invoice.Calculator
	metrics *metrics.Metrics
	notify  Notifier
}

func NewBatchService(log *slog.Logger, store BatchStore, clientsRepo ClientGetter,
	cats invoice.CategoryGetter, calc *invoice.Calculator, m *metrics.Metrics) *BatchService {
	return &BatchService{log: log, store: store, clients: clientsRepo, cats: cats, calc: calc, metrics: m}
}

// SetNotifier подключается после создания: бот сам зависит от сервиса.
func (s *BatchService) SetNotifier(n Notifier) { s.notify = n }

type CreateBatchInput struct {
	ClientID   int64
	PickupDate time.Time
	Lines      []batches.LineInput
}

func (s *BatchService) Create(ctx context.Context, in CreateBatchInput) (*batches.Batch, error) {
	if in.PickupDate.IsZero() {
		return nil, ErrInvalidPickupDate
	}
	if len(in.Lines) == 0 {
		return nil, batches.ErrNoLines
	}
	if err := batches.ValidateLines(in.Lines); err != nil {
		return nil, err
	}

	c, err := s.clients.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: id=%d", ErrClientNotFound, in.ClientID)
	}
	if !c.Active {
		return nil, fmt.Errorf("%w: %q", ErrClientInactive, c.Name)
	}

	lines, err := s.buildLines(ctx, in.Lines, nil)
	if err != nil {
		return nil, err
	}
	inv := s.calc.ComputeBatchInvoice(lines)

	b := batches.Batch{
		ClientID:       c.ID,
		ClientName:     c.Name,
		PickupDate:     in.PickupDate,
		Status:         batches.StatusPickup,
		Lines:          lines,
		TotalAmount:    inv.Total,
		HasDiscrepancy: inv.HasDiscrepancy,
	}
	id, err := s.store.Create(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	b.ID = id

	s.log.Info("batch created", "batch_id", id, "client_id", c.ID, "lines", len(lines), "total", inv.Total.StringFixed(2))
	s.afterSave(ctx, b, inv)
	return s.Get(ctx, id)
}

// ReplaceLines заменяет строки партии целиком и пересчитывает итоги.
// Если цена не передана, а категория уже была в партии, сохраняется прежняя цена строки.
func (s *BatchService) ReplaceLines(ctx context.Context, batchID int64, in []batches.LineInput) (*batches.Batch, error) {
	if err := batches.ValidateLines(in); err != nil {
		return nil, err
	}
	b, err := s.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}

	lines, err := s.buildLines(ctx, in, b.Lines)
	if err != nil {
		return nil, err
	}
	inv := s.calc.ComputeBatchInvoice(lines)

	if err := s.store.ReplaceLines(ctx, batchID, lines, inv.Totals()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", ErrBatchNotFound, batchID)
		}
		return nil, fmt.Errorf("replace lines: %w", err)
	}
	b.Lines = lines
	b.TotalAmount = inv.Total
	b.HasDiscrepancy = inv.HasDiscrepancy

	s.log.Info("batch lines replaced", "batch_id", batchID, "lines", len(lines), "total", inv.Total.StringFixed(2))
	s.afterSave(ctx, *b, inv)
	return s.Get(ctx, batchID)
}

func (s *BatchService) buildLines(ctx context.Context, in []batches.LineInput, current []batches.Line) ([]batches.Line, error) {
	prev := make(map[int64]batches.Line, len(current))
	for _, l := range current {
		prev[l.CategoryID] = l
	}

	out := make([]batches.Line, 0, len(in))
	for _, li := range in {
		l, err := batches.NewLine(li)
		if err != nil {
			return nil, err
		}
		override := li.PricePerItem
		if override == nil {
			if old, ok := prev[li.CategoryID]; ok {
				p := old.PricePerItem
				override = &p
			}
		}
		price, err := invoice.ResolvePrice(ctx, s.cats, override, li.CategoryID)
		if err != nil {
			return nil, err
		}
		// в БД цена хранится с копейками, итоги считаем от неё же
		l.PricePerItem = price.Round(2)
		out = append(out, l)
	}
	return out, nil
}

func (s *BatchService) afterSave(ctx context.Context, b batches.Batch, inv invoice.BatchInvoice) {
	s.metrics.InvoiceComputed(inv.HasDiscrepancy)
	if inv.HasDiscrepancy && s.notify != nil {
		s.notify.BatchDiscrepancy(ctx, b, inv)
	}
}

func (s *BatchService) Get(ctx context.Context, id int64) (*batches.Batch, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: id=%d", ErrBatchNotFound, id)
	}
	return b, nil
}

// SetStatus ставит любой статус: пропуск этапов не запрещён.
func (s *BatchService) SetStatus(ctx context.Context, id int64, status batches.Status, note string) (*batches.Batch, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", batches.ErrInvalidStatus, status)
	}
	if err := s.store.UpdateStatus(ctx, id, status, note); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", ErrBatchNotFound, id)
		}
		return nil, fmt.Errorf("update status: %w", err)
	}
	s.metrics.StatusChanged(string(status))
	s.log.Info("batch status changed", "batch_id", id, "status", status)
	return s.Get(ctx, id)
}

// Advance переводит партию на следующий этап обычного порядка.
func (s *BatchService) Advance(ctx context.Context, id int64, note string) (*batches.Batch, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, ok := b.Status.Next()
	if !ok {
		return nil, fmt.Errorf("%w: id=%d", ErrAlreadyDelivered, id)
	}
	return s.SetStatus(ctx, id, next, note)
}

// Invoice считает счёт по сохранённым строкам партии.
func (s *BatchService) Invoice(ctx context.Context, id int64) (*batches.Batch, invoice.BatchInvoice, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, invoice.BatchInvoice{}, err
	}
	inv := s.calc.ComputeBatchInvoice(b.Lines)
	if !inv.Total.Equal(b.TotalAmount) {
		// итоги в БД устарели (например, правка в обход сервиса)
		s.log.Warn("stored batch total differs from computed", "batch_id", id,
			"stored", b.TotalAmount.StringFixed(2), "computed", inv.Total.StringFixed(2))
	}
	return b, inv, nil
}
