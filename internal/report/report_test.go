package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/Spok95/linen-service/internal/domain/batches"
	"github.com/Spok95/linen-service/internal/domain/linen"
	"github.com/Spok95/linen-service/internal/invoice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestMonthlyWorkbook(t *testing.T) {
	p := invoice.Period{Year: 2025, Month: 3}
	rows := []invoice.ClientSummary{
		{ClientID: 2, ClientName: "Хостел Север", TotalItemsWashed: 30, TotalAmount: d("200"), BatchCount: 1, DiscrepancyBatches: 1},
		{ClientID: 1, ClientName: "Отель Волна", TotalItemsWashed: 19, TotalAmount: d("150.5"), BatchCount: 2},
	}

	data, err := MonthlyWorkbook(p, rows)
	require.NoError(t, err)

	f := open(t, data)
	got, err := f.GetRows("2025-03")
	require.NoError(t, err)
	require.Len(t, got, 4)
	require.Equal(t, "client_name", got[0][1])
	require.Equal(t, "Хостел Север", got[1][1])
	require.Equal(t, "TOTAL", got[3][1])
	require.Equal(t, "350.5", got[3][5])
	require.Equal(t, "linen_report_2025-03.xlsx", MonthlyFileName(p))
}

func TestBatchInvoiceWorkbook(t *testing.T) {
	b := batches.Batch{ID: 9, ClientName: "Отель Волна", PickupDate: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)}
	inv := invoice.ComputeBatchInvoice([]batches.Line{
		{CategoryName: "Простыня", QuantitySent: 10, QuantityReceived: 8, PricePerItem: d("2.50")},
	}, d("0.15"))

	data, err := BatchInvoiceWorkbook(b, inv)
	require.NoError(t, err)

	f := open(t, data)
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Equal(t, "Простыня", rows[1][0])
	last := rows[len(rows)-1]
	require.Equal(t, "total", last[0])
	require.Equal(t, "17.25", last[1])
}

func TestPriceListRoundTrip(t *testing.T) {
	cats := []linen.Category{
		{ID: 1, Name: "Простыня", PricePerItem: d("2.5"), Active: true},
		{ID: 2, Name: "Полотенце", PricePerItem: d("1.2"), Active: false},
	}
	data, err := PriceListWorkbook(cats)
	require.NoError(t, err)

	updates, bad, err := ParsePriceList(data)
	require.NoError(t, err)
	require.Empty(t, bad)
	require.Len(t, updates, 2)
	require.Equal(t, int64(1), updates[0].CategoryID)
	require.True(t, d("2.50").Equal(updates[0].Price))
}

func TestParsePriceListSkipsEmptyAndReportsBadRows(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"category_id", "category_name", "active", "price_per_item"},
		{"1", "Простыня", "yes", "3,10"},
		{"2", "Полотенце", "yes", ""},
		{"x", "Скатерть", "yes", "1"},
		{"4", "Наволочка", "yes", "-2"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))

	updates, bad, err := ParsePriceList(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.True(t, d("3.10").Equal(updates[0].Price))
	require.Len(t, bad, 2)
	require.Equal(t, 4, bad[0].Row)
	require.Equal(t, 5, bad[1].Row)
}

func TestParsePriceListRejectsGarbage(t *testing.T) {
	_, _, err := ParsePriceList([]byte("not an xlsx"))
	require.Error(t, err)
}
