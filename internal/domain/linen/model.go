package linen

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category: вид белья (простыни, полотенца...) с ценой за штуку.
type Category struct {
	ID           int64
	Name         string
	PricePerItem decimal.Decimal
	Active       bool
	CreatedAt    time.Time
}
