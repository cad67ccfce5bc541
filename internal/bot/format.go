package bot

import (
	"fmt"
	"strings"

	"github.com/Spok95/linen-service/internal/domain/batches"
	"github.com/Spok95/linen-service/internal/invoice"
)

var statusTitles = map[batches.Status]string{
	batches.StatusPickup:    "забрали у клиента",
	batches.StatusWashing:   "в стирке",
	batches.StatusCompleted: "постирано",
	batches.StatusDelivered: "доставлено",
}

func statusTitle(s batches.Status) string {
	if t, ok := statusTitles[s]; ok {
		return t
	}
	return string(s)
}

func batchText(b batches.Batch, inv invoice.BatchInvoice) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Партия #%d — %s\n", b.ID, b.ClientName)
	fmt.Fprintf(&sb, "Дата забора: %s\nСтатус: %s\n\n", b.PickupDay(), statusTitle(b.Status))

	for _, l := range inv.Lines {
		name := l.CategoryName
		if name == "" {
			name = fmt.Sprintf("категория %d", l.CategoryID)
		}
		fmt.Fprintf(&sb, "• %s: %d/%d × %s = %s", name, l.QuantityReceived, l.QuantitySent,
			l.PricePerItem.StringFixed(2), l.LineAdjustedTotal.StringFixed(2))
		if l.ExpressDelivery {
			sb.WriteString(" ⚡")
		}
		if l.Discrepancy != 0 {
			fmt.Fprintf(&sb, " (расхождение %+d)", l.Discrepancy)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nПолучено: %s\n", inv.SubtotalReceived.StringFixed(2))
	if !inv.TotalDiscrepancyValue.IsZero() {
		fmt.Fprintf(&sb, "Расхождения: %s\n", inv.TotalDiscrepancyValue.StringFixed(2))
	}
	if !inv.TotalSurcharge.IsZero() {
		fmt.Fprintf(&sb, "Срочность: %s\n", inv.TotalSurcharge.StringFixed(2))
	}
	fmt.Fprintf(&sb, "Подытог: %s\n", inv.AdjustedSubtotal.StringFixed(2))
	fmt.Fprintf(&sb, "НДС %s%%: %s\n", inv.VATRate.Shift(2).String(), inv.VAT.StringFixed(2))
	fmt.Fprintf(&sb, "Итого: %s", inv.Total.StringFixed(2))
	return sb.String()
}

func reportText(p invoice.Period, rows []invoice.ClientSummary) string {
	if len(rows) == 0 {
		return fmt.Sprintf("За %s партий нет.", p.Label())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Сводка за %s\n\n", p.Label())
	for i, r := range rows {
		fmt.Fprintf(&sb, "%d. %s — %s (%d парт., %d шт.)", i+1, r.ClientName,
			r.TotalAmount.StringFixed(2), r.BatchCount, r.TotalItemsWashed)
		if r.DiscrepancyBatches > 0 {
			fmt.Fprintf(&sb, ", с расхождениями: %d", r.DiscrepancyBatches)
		}
		sb.WriteString("\n")
	}
	t := invoice.PeriodTotals(rows)
	fmt.Fprintf(&sb, "\nВсего: %s, партий %d, штук %d", t.TotalAmount.StringFixed(2), t.BatchCount, t.TotalItemsWashed)
	return sb.String()
}
