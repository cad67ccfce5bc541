package report

import (
	"bytes"
	"fmt"

	"github.com/Spok95/linen-service/internal/domain/batches"
	"github.com/Spok95/linen-service/internal/invoice"
	"github.com/xuri/excelize/v2"
)

// writeRows пишет заголовок и строки, начиная с A1.
func writeRows(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return nil
}

func toBytes(f *excelize.File) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MonthlyFileName: имя файла отчёта за период.
func MonthlyFileName(p invoice.Period) string {
	return fmt.Sprintf("linen_report_%s.xlsx", p.Label())
}

// MonthlyWorkbook: сводка по клиентам за период с итоговой строкой.
func MonthlyWorkbook(p invoice.Period, rows []invoice.ClientSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := p.Label()
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return nil, err
	}

	header := []interface{}{
		"client_id",
		"client_name",
		"total_items_washed",
		"batch_count",
		"discrepancy_batches",
		"total_amount",
	}
	data := make([][]interface{}, 0, len(rows)+1)
	for _, r := range rows {
		data = append(data, []interface{}{
			r.ClientID,
			r.ClientName,
			r.TotalItemsWashed,
			r.BatchCount,
			r.DiscrepancyBatches,
			r.TotalAmount.InexactFloat64(),
		})
	}
	t := invoice.PeriodTotals(rows)
	data = append(data, []interface{}{"", "TOTAL", t.TotalItemsWashed, t.BatchCount, t.DiscrepancyBatches, t.TotalAmount.InexactFloat64()})

	if err := writeRows(f, sheet, header, data); err != nil {
		return nil, err
	}
	return toBytes(f)
}

// BatchInvoiceWorkbook собирает счёт по одной партии: строки и итоги под ними.
func BatchInvoiceWorkbook(b batches.Batch, inv invoice.BatchInvoice) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"category",
		"quantity_sent",
		"quantity_received",
		"price_per_item",
		"express",
		"line_total",
		"discrepancy",
		"discrepancy_value",
		"surcharge",
		"line_adjusted_total",
	}
	data := make([][]interface{}, 0, len(inv.Lines)+7)
	for _, l := range inv.Lines {
		data = append(data, []interface{}{
			l.CategoryName,
			l.QuantitySent,
			l.QuantityReceived,
			l.PricePerItem.InexactFloat64(),
			map[bool]string{true: "yes", false: "no"}[l.ExpressDelivery],
			l.LineTotal.InexactFloat64(),
			l.Discrepancy,
			l.DiscrepancyValue.InexactFloat64(),
			l.Surcharge.InexactFloat64(),
			l.LineAdjustedTotal.InexactFloat64(),
		})
	}
	data = append(data,
		[]interface{}{},
		[]interface{}{"batch", b.ID, "client", b.ClientName, "pickup_date", b.PickupDay()},
		[]interface{}{"subtotal_received", inv.SubtotalReceived.InexactFloat64()},
		[]interface{}{"discrepancy_adjustment", inv.TotalDiscrepancyValue.InexactFloat64()},
		[]interface{}{"express_surcharge", inv.TotalSurcharge.InexactFloat64()},
		[]interface{}{"adjusted_subtotal", inv.AdjustedSubtotal.InexactFloat64()},
		[]interface{}{"vat", inv.VAT.InexactFloat64()},
		[]interface{}{"total", inv.Total.InexactFloat64()},
	)

	if err := writeRows(f, sheet, header, data); err != nil {
		return nil, err
	}
	return toBytes(f)
}
