package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Invoice: месячный (или годовой, Month == 0) счёт клиенту.
type Invoice struct {
	ID        int64
	ClientID  int64
	Year      int
	Month     int
	Amount    decimal.Decimal
	Status    Status
	CreatedAt time.Time
	PaidAt    *time.Time
}
