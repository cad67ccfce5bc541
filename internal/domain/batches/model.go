package batches

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidStatus     = errors.New("invalid batch status")
	ErrDuplicateCategory = errors.New("category appears more than once in batch")
	ErrNoLines           = errors.New("batch has no lines")
)

type Status string

const (
	StatusPickup    Status = "pickup"
	StatusWashing   Status = "washing"
	StatusCompleted Status = "completed"
	StatusDelivered Status = "delivered"
)

var statusFlow = []Status{StatusPickup, StatusWashing, StatusCompleted, StatusDelivered}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	for _, st := range statusFlow {
		if st == s {
			return true
		}
	}
	return false
}

// Next: следующий статус в обычном порядке; для delivered возвращает false.
func (s Status) Next() (Status, bool) {
	for i, st := range statusFlow {
		if st == s && i+1 < len(statusFlow) {
			return statusFlow[i+1], true
		}
	}
	return s, false
}

// Terminal сообщает, что партия доставлена. Правки после этого не запрещены.
func (s Status) Terminal() bool { return s == StatusDelivered }

type Line struct {
	ID                 int64
	CategoryID         int64
	CategoryName       string
	QuantitySent       int
	QuantityReceived   int
	PricePerItem       decimal.Decimal
	ExpressDelivery    bool
	DiscrepancyDetails *string
}

// HasDiscrepancy: отправлено и получено не совпадают.
func (l Line) HasDiscrepancy() bool { return l.QuantitySent != l.QuantityReceived }

// LineInput: строка в том виде, в каком её прислали (цена и «получено» необязательны).
type LineInput struct {
	CategoryID         int64
	QuantitySent       int
	QuantityReceived   *int
	PricePerItem       *decimal.Decimal
	ExpressDelivery    bool
	DiscrepancyDetails *string
}

// NewLine проверяет количества и подставляет quantity_received = quantity_sent,
// если получено не указано. Цена переносится как есть; разрешение цены: отдельный шаг.
func NewLine(in LineInput) (Line, error) {
	if in.QuantitySent < 0 {
		return Line{}, fmt.Errorf("%w: quantity_sent=%d", ErrInvalidQuantity, in.QuantitySent)
	}
	received := in.QuantitySent
	if in.QuantityReceived != nil {
		received = *in.QuantityReceived
	}
	if received < 0 {
		return Line{}, fmt.Errorf("%w: quantity_received=%d", ErrInvalidQuantity, received)
	}

	l := Line{
		CategoryID:         in.CategoryID,
		QuantitySent:       in.QuantitySent,
		QuantityReceived:   received,
		ExpressDelivery:    in.ExpressDelivery,
		DiscrepancyDetails: in.DiscrepancyDetails,
	}
	if in.PricePerItem != nil {
		l.PricePerItem = *in.PricePerItem
	}
	return l, nil
}

// QuantityFromFloat переводит число из JSON/Excel в штуки.
func QuantityFromFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidQuantity, f)
	}
	return int(f), nil
}

// ValidateLines: каждая категория в партии не больше одного раза.
func ValidateLines(in []LineInput) error {
	seen := make(map[int64]struct{}, len(in))
	for _, l := range in {
		if _, ok := seen[l.CategoryID]; ok {
			return fmt.Errorf("%w: category %d", ErrDuplicateCategory, l.CategoryID)
		}
		seen[l.CategoryID] = struct{}{}
	}
	return nil
}

type Batch struct {
	ID             int64
	ClientID       int64
	ClientName     string
	PickupDate     time.Time
	Status         Status
	Lines          []Line
	TotalAmount    decimal.Decimal
	HasDiscrepancy bool
	Notes          map[string]string // заметки по этапам: status -> текст
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const DateLayout = "2006-01-02"

// PickupDay: дата забора в виде YYYY-MM-DD, по ней сравниваются периоды.
func (b Batch) PickupDay() string { return b.PickupDate.Format(DateLayout) }

// ItemsReceived: сколько штук вернулось от клиента.
func (b Batch) ItemsReceived() int {
	n := 0
	for _, l := range b.Lines {
		n += l.QuantityReceived
	}
	return n
}

// Totals: производные поля партии, пересчитываются при каждой правке строк.
type Totals struct {
	TotalAmount    decimal.Decimal
	HasDiscrepancy bool
}
