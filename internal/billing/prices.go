package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Spok95/linen-service/internal/domain/linen"
	"github.com/Spok95/linen-service/internal/report"
	"github.com/shopspring/decimal"
)

type CategoryStore interface {
	GetByID(ctx context.Context, id int64) (*linen.Category, error)
	List(ctx context.Context, onlyActive bool) ([]linen.Category, error)
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*linen.Category, error)
}

// PriceService: выгрузка и загрузка прайса категорий через Excel.
type PriceService struct {
	log   *slog.Logger
	store CategoryStore
}

func NewPriceService(log *slog.Logger, store CategoryStore) *PriceService {
	return &PriceService{log: log, store: store}
}

func (s *PriceService) Export(ctx context.Context) ([]byte, string, error) {
	cats, err := s.store.List(ctx, false)
	if err != nil {
		return nil, "", fmt.Errorf("list categories: %w", err)
	}
	data, err := report.PriceListWorkbook(cats)
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("linen_prices_%s.xlsx", time.Now().Format("20060102_150405")), nil
}

type ImportResult struct {
	Updated int
	Errors  []report.RowError
}

// Import применяет цены из файла; неизвестные категории попадают в ошибки строк.
func (s *PriceService) Import(ctx context.Context, data []byte) (ImportResult, error) {
	updates, bad, err := report.ParsePriceList(data)
	if err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{Errors: bad}
	for _, u := range updates {
		c, err := s.store.UpdatePrice(ctx, u.CategoryID, u.Price)
		if err != nil {
			return res, fmt.Errorf("update price of category %d: %w", u.CategoryID, err)
		}
		if c == nil {
			res.Errors = append(res.Errors, report.RowError{Row: u.Row, Err: fmt.Sprintf("категория %d не найдена", u.CategoryID)})
			continue
		}
		res.Updated++
	}
	s.log.Info("price list imported", "updated", res.Updated, "errors", len(res.Errors))
	return res, nil
}
