package invoice

import (
	"context"
	"fmt"

	"github.com/Spok95/linen-service/internal/domain/linen"
	"github.com/shopspring/decimal"
)

// CategoryGetter: источник категорий; *linen.Repo подходит.
// Для отсутствующей категории ожидается (nil, nil).
type CategoryGetter interface {
	GetByID(ctx context.Context, id int64) (*linen.Category, error)
}

// ResolvePrice: неотрицательная цена из строки побеждает, иначе берём цену категории.
func ResolvePrice(ctx context.Context, cats CategoryGetter, override *decimal.Decimal, categoryID int64) (decimal.Decimal, error) {
	if override != nil && !override.IsNegative() {
		return *override, nil
	}

	c, err := cats.GetByID(ctx, categoryID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get category %d: %w", categoryID, err)
	}
	if c == nil {
		return decimal.Zero, fmt.Errorf("%w: id=%d", ErrCategoryNotFound, categoryID)
	}
	if !c.Active {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrCategoryInactive, c.Name)
	}
	return c.PricePerItem, nil
}
