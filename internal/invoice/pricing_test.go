package invoice

import (
	"context"
	"errors"
	"testing"

	"github.com/Spok95/linen-service/internal/domain/linen"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeCategories map[int64]*linen.Category

func (f fakeCategories) GetByID(_ context.Context, id int64) (*linen.Category, error) {
	if id < 0 {
		return nil, errors.New("db down")
	}
	return f[id], nil
}

func TestResolvePrice(t *testing.T) {
	cats := fakeCategories{
		1: {ID: 1, Name: "Простыня", PricePerItem: d("2.50"), Active: true},
		2: {ID: 2, Name: "Скатерть", PricePerItem: d("4.00"), Active: false},
	}
	override := d("1.75")
	negative := d("-1")
	zero := decimal.Zero

	tests := []struct {
		name     string
		override *decimal.Decimal
		catID    int64
		want     string
		wantErr  error
	}{
		{"category default", nil, 1, "2.50", nil},
		{"override wins", &override, 1, "1.75", nil},
		{"zero override is valid", &zero, 1, "0", nil},
		{"override skips lookup", &override, 99, "1.75", nil},
		{"negative override falls back", &negative, 1, "2.50", nil},
		{"unknown category", nil, 99, "", ErrCategoryNotFound},
		{"inactive category", nil, 2, "", ErrCategoryInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePrice(context.Background(), cats, tt.override, tt.catID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			requireMoney(t, tt.want, got, "price")
		})
	}
}

func TestResolvePriceLookupError(t *testing.T) {
	_, err := ResolvePrice(context.Background(), fakeCategories{}, nil, -1)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrCategoryNotFound)
}
