package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Spok95/linen-service/internal/infra/metrics"
	"github.com/Spok95/linen-service/internal/invoice"
	"github.com/Spok95/linen-service/internal/report"
)

type ReportService struct {
	log     *slog.Logger
	store   BatchStore
	metrics *metrics.Metrics
}

func NewReportService(log *slog.Logger, store BatchStore, m *metrics.Metrics) *ReportService {
	return &ReportService{log: log, store: store, metrics: m}
}

// MonthlySummary: сводка по клиентам за период; clientID сужает до одного клиента.
func (s *ReportService) MonthlySummary(ctx context.Context, p invoice.Period, clientID *int64) ([]invoice.ClientSummary, error) {
	start, end := p.Range()
	list, err := s.store.ListByPeriod(ctx, start, end, clientID)
	if err != nil {
		return nil, fmt.Errorf("list batches %s..%s: %w", start, end, err)
	}
	rows := invoice.AggregateClientPeriod(list, p)
	s.metrics.ReportGenerated("summary")
	s.log.Debug("period summary", "period", p.Label(), "batches", len(list), "clients", len(rows))
	return rows, nil
}

// MonthlyWorkbook: та же сводка в xlsx; возвращает содержимое и имя файла.
func (s *ReportService) MonthlyWorkbook(ctx context.Context, p invoice.Period, clientID *int64) ([]byte, string, error) {
	rows, err := s.MonthlySummary(ctx, p, clientID)
	if err != nil {
		return nil, "", err
	}
	data, err := report.MonthlyWorkbook(p, rows)
	if err != nil {
		return nil, "", fmt.Errorf("render report: %w", err)
	}
	s.metrics.ReportGenerated("xlsx")
	return data, report.MonthlyFileName(p), nil
}
