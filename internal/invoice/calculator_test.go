package invoice

import (
	"testing"

	"github.com/Spok95/linen-service/internal/domain/batches"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	require.Truef(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got.StringFixed(2))
}

func line(sent, received int, price string, express bool) batches.Line {
	return batches.Line{QuantitySent: sent, QuantityReceived: received, PricePerItem: d(price), ExpressDelivery: express}
}

func TestReconcileLine(t *testing.T) {
	calc := NewCalculator(DefaultRates())

	tests := []struct {
		name        string
		line        batches.Line
		lineTotal   string
		discrepancy int
		discValue   string
		surcharge   string
		adjusted    string
	}{
		{"short delivery", line(10, 8, "2.50", false), "20.00", -2, "-5.00", "0", "15.00"},
		{"express no discrepancy", line(5, 5, "10.00", true), "50.00", 0, "0", "25.00", "75.00"},
		{"more received than sent", line(3, 4, "1.25", false), "5.00", 1, "1.25", "0", "6.25"},
		{"empty line", line(0, 0, "7.00", true), "0", 0, "0", "0", "0"},
		{"half cent surcharge rounds up", line(1, 1, "0.05", true), "0.05", 0, "0", "0.03", "0.08"},
		{"negative half cent rounds away from zero", line(1, 0, "0.125", false), "0", -1, "-0.13", "0", "-0.13"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := calc.ReconcileLine(tt.line)
			requireMoney(t, tt.lineTotal, rl.LineTotal, "lineTotal")
			assert.Equal(t, tt.discrepancy, rl.Discrepancy)
			requireMoney(t, tt.discValue, rl.DiscrepancyValue, "discrepancyValue")
			requireMoney(t, tt.surcharge, rl.Surcharge, "surcharge")
			requireMoney(t, tt.adjusted, rl.LineAdjustedTotal, "lineAdjustedTotal")
		})
	}
}

func TestComputeBatchInvoiceExample(t *testing.T) {
	lines := []batches.Line{
		line(10, 8, "2.50", false),
		line(5, 5, "10.00", true),
	}

	inv := ComputeBatchInvoice(lines, d("0.15"))

	requireMoney(t, "70.00", inv.SubtotalReceived, "subtotalReceived")
	requireMoney(t, "-5.00", inv.TotalDiscrepancyValue, "totalDiscrepancyValue")
	requireMoney(t, "25.00", inv.TotalSurcharge, "totalSurcharge")
	requireMoney(t, "90.00", inv.AdjustedSubtotal, "adjustedSubtotal")
	requireMoney(t, "13.50", inv.VAT, "vat")
	requireMoney(t, "103.50", inv.Total, "total")
	require.True(t, inv.HasDiscrepancy)
	require.Len(t, inv.Lines, 2)
}

func TestComputeBatchInvoiceEmpty(t *testing.T) {
	inv := NewCalculator(DefaultRates()).ComputeBatchInvoice(nil)

	for name, v := range map[string]decimal.Decimal{
		"subtotal": inv.SubtotalReceived, "discrepancy": inv.TotalDiscrepancyValue,
		"surcharge": inv.TotalSurcharge, "adjusted": inv.AdjustedSubtotal,
		"vat": inv.VAT, "total": inv.Total,
	} {
		require.Truef(t, v.IsZero(), "%s must be zero, got %s", name, v)
	}
	require.False(t, inv.HasDiscrepancy)
	require.Empty(t, inv.Lines)
}

func TestMatchingQuantitiesHaveNoDiscrepancy(t *testing.T) {
	calc := NewCalculator(DefaultRates())
	lines := []batches.Line{line(12, 12, "3.10", false), line(4, 4, "9.99", true)}

	for _, l := range lines {
		require.True(t, calc.ReconcileLine(l).DiscrepancyValue.IsZero())
	}
	require.False(t, calc.ComputeBatchInvoice(lines).HasDiscrepancy)
}

func TestVATAppliedOnceToAdjustedSubtotal(t *testing.T) {
	calc := NewCalculator(Rates{VAT: d("0.15"), ExpressSurcharge: d("0.5")})
	lines := []batches.Line{
		line(7, 6, "3.33", true),
		line(11, 13, "1.17", false),
		line(2, 2, "0.99", true),
	}

	inv := calc.ComputeBatchInvoice(lines)

	sumAdjusted := decimal.Zero
	for _, rl := range inv.Lines {
		sumAdjusted = sumAdjusted.Add(rl.LineAdjustedTotal)
	}
	require.True(t, sumAdjusted.Equal(inv.AdjustedSubtotal), "adjusted subtotal %s != Σ lines %s", inv.AdjustedSubtotal, sumAdjusted)

	want := sumAdjusted.Mul(d("1.15")).Round(2)
	require.True(t, want.Sub(inv.Total).Abs().LessThanOrEqual(d("0.01")), "total %s, want %s", inv.Total, want)
}

func TestComputeBatchInvoiceIsIdempotent(t *testing.T) {
	calc := NewCalculator(DefaultRates())
	lines := []batches.Line{line(10, 8, "2.50", false), line(5, 5, "10.00", true)}

	first := calc.ComputeBatchInvoice(lines)
	second := calc.ComputeBatchInvoice(lines)

	require.Equal(t, first.Total.String(), second.Total.String())
	require.Equal(t, first.VAT.String(), second.VAT.String())
	require.Equal(t, first.HasDiscrepancy, second.HasDiscrepancy)
	require.Equal(t, 8, lines[0].QuantityReceived, "input must not be modified")
}

func TestTotalsFollowInvoice(t *testing.T) {
	inv := ComputeBatchInvoice([]batches.Line{line(1, 0, "4.00", false)}, d("0.15"))
	totals := inv.Totals()

	require.True(t, totals.HasDiscrepancy)
	requireMoney(t, "-4.60", totals.TotalAmount, "total")
}

func TestReconcileLineWithResolvedPrice(t *testing.T) {
	rl := ReconcileLine(line(4, 4, "99.00", true), d("2.00"))

	requireMoney(t, "2.00", rl.PricePerItem, "pricePerItem")
	requireMoney(t, "8.00", rl.LineTotal, "lineTotal")
	requireMoney(t, "4.00", rl.Surcharge, "surcharge")
	requireMoney(t, "12.00", rl.LineAdjustedTotal, "lineAdjustedTotal")
}
