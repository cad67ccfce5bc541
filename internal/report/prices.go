package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/linen-service/internal/domain/linen"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var priceHeader = []interface{}{"category_id", "category_name", "active", "price_per_item"}

// PriceListWorkbook выгружает категории белья с ценами.
// Колонку price_per_item можно поправить и загрузить файл обратно.
func PriceListWorkbook(cats []linen.Category) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows := make([][]interface{}, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []interface{}{
			c.ID,
			c.Name,
			map[bool]string{true: "yes", false: "no"}[c.Active],
			c.PricePerItem.StringFixed(2),
		})
	}
	if err := writeRows(f, sheet, priceHeader, rows); err != nil {
		return nil, err
	}
	return toBytes(f)
}

type PriceUpdate struct {
	Row        int
	CategoryID int64
	Price      decimal.Decimal
}

type RowError struct {
	Row int
	Err string
}

func (e RowError) String() string { return fmt.Sprintf("строка %d: %s", e.Row, e.Err) }

// ParsePriceList читает первый лист: category_id в колонке A, price_per_item в D.
// Пустая цена: значение не меняем; кривые строки копятся в RowError.
func ParsePriceList(data []byte) ([]PriceUpdate, []RowError, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets in file")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}

	var updates []PriceUpdate
	var bad []RowError
	for i, r := range rows {
		if i == 0 {
			continue // заголовок
		}
		rowNum := i + 1
		if len(r) == 0 || strings.TrimSpace(r[0]) == "" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(r[0]), 10, 64)
		if err != nil || id <= 0 {
			bad = append(bad, RowError{Row: rowNum, Err: "неверный category_id"})
			continue
		}
		if len(r) < 4 || strings.TrimSpace(r[3]) == "" {
			continue
		}
		raw := strings.ReplaceAll(strings.TrimSpace(r[3]), ",", ".")
		price, err := decimal.NewFromString(raw)
		if err != nil || price.IsNegative() {
			bad = append(bad, RowError{Row: rowNum, Err: fmt.Sprintf("неверная цена %q", r[3])})
			continue
		}
		updates = append(updates, PriceUpdate{Row: rowNum, CategoryID: id, Price: price.Round(2)})
	}
	return updates, bad, nil
}
