package invoice

import (
	"github.com/Spok95/linen-service/internal/domain/batches"
	"github.com/shopspring/decimal"
)

// Денежные шаги округляются до копеек через decimal.Round: половина уходит от нуля,
// -0.125 даёт -0.13, а 0.125 даёт 0.13.
const moneyPlaces = 2

var (
	DefaultVATRate          = decimal.RequireFromString("0.15")
	DefaultExpressSurcharge = decimal.RequireFromString("0.5")
)

type Rates struct {
	VAT              decimal.Decimal
	ExpressSurcharge decimal.Decimal
}

func DefaultRates() Rates {
	return Rates{VAT: DefaultVATRate, ExpressSurcharge: DefaultExpressSurcharge}
}

// ReconciledLine: строка партии с посчитанными суммами.
type ReconciledLine struct {
	batches.Line
	LineTotal         decimal.Decimal // received * price
	Discrepancy       int             // received - sent; > 0: вернули больше, чем отдали
	DiscrepancyValue  decimal.Decimal
	Surcharge         decimal.Decimal
	LineAdjustedTotal decimal.Decimal
}

type BatchInvoice struct {
	SubtotalReceived      decimal.Decimal
	TotalDiscrepancyValue decimal.Decimal
	TotalSurcharge        decimal.Decimal
	AdjustedSubtotal      decimal.Decimal
	VATRate               decimal.Decimal
	VAT                   decimal.Decimal
	Total                 decimal.Decimal
	HasDiscrepancy        bool
	Lines                 []ReconciledLine
}

// Totals: то, что хранится в самой партии.
func (inv BatchInvoice) Totals() batches.Totals {
	return batches.Totals{TotalAmount: inv.Total, HasDiscrepancy: inv.HasDiscrepancy}
}

// Calculator: единственное место, где считаются суммы партии:
// и для счёта, и для итогов, сохраняемых в batches.
type Calculator struct {
	rates Rates
}

func NewCalculator(r Rates) *Calculator {
	return &Calculator{rates: r}
}

func (c *Calculator) Rates() Rates { return c.rates }

// ReconcileLine считает строку; цена в line уже разрешена.
func (c *Calculator) ReconcileLine(line batches.Line) ReconciledLine {
	price := line.PricePerItem
	lineTotal := decimal.NewFromInt(int64(line.QuantityReceived)).Mul(price)
	discrepancy := line.QuantityReceived - line.QuantitySent
	discrepancyValue := decimal.NewFromInt(int64(discrepancy)).Mul(price).Round(moneyPlaces)

	surcharge := decimal.Zero
	if line.ExpressDelivery {
		surcharge = lineTotal.Mul(c.rates.ExpressSurcharge).Round(moneyPlaces)
	}

	return ReconciledLine{
		Line:              line,
		LineTotal:         lineTotal,
		Discrepancy:       discrepancy,
		DiscrepancyValue:  discrepancyValue,
		Surcharge:         surcharge,
		LineAdjustedTotal: lineTotal.Add(discrepancyValue).Add(surcharge).Round(moneyPlaces),
	}
}

// ComputeBatchInvoice: НДС начисляется один раз, на скорректированный подытог.
func (c *Calculator) ComputeBatchInvoice(lines []batches.Line) BatchInvoice {
	inv := BatchInvoice{
		SubtotalReceived:      decimal.Zero,
		TotalDiscrepancyValue: decimal.Zero,
		TotalSurcharge:        decimal.Zero,
		VATRate:               c.rates.VAT,
		Lines:                 make([]ReconciledLine, 0, len(lines)),
	}

	for _, l := range lines {
		rl := c.ReconcileLine(l)
		inv.SubtotalReceived = inv.SubtotalReceived.Add(rl.LineTotal)
		inv.TotalDiscrepancyValue = inv.TotalDiscrepancyValue.Add(rl.DiscrepancyValue)
		inv.TotalSurcharge = inv.TotalSurcharge.Add(rl.Surcharge)
		if l.HasDiscrepancy() {
			inv.HasDiscrepancy = true
		}
		inv.Lines = append(inv.Lines, rl)
	}

	inv.AdjustedSubtotal = inv.SubtotalReceived.Add(inv.TotalDiscrepancyValue).Add(inv.TotalSurcharge).Round(moneyPlaces)
	inv.VAT = inv.AdjustedSubtotal.Mul(c.rates.VAT).Round(moneyPlaces)
	inv.Total = inv.AdjustedSubtotal.Add(inv.VAT).Round(moneyPlaces)
	return inv
}

// ComputeBatchInvoice считает счёт с заданной ставкой НДС и стандартной наценкой за срочность.
func ComputeBatchInvoice(lines []batches.Line, vatRate decimal.Decimal) BatchInvoice {
	return NewCalculator(Rates{VAT: vatRate, ExpressSurcharge: DefaultExpressSurcharge}).ComputeBatchInvoice(lines)
}

// ReconcileLine считает строку по уже разрешённой цене со стандартной наценкой за срочность.
func ReconcileLine(line batches.Line, price decimal.Decimal) ReconciledLine {
	line.PricePerItem = price
	return NewCalculator(DefaultRates()).ReconcileLine(line)
}
