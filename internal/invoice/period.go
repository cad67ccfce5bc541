package invoice

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/linen-service/internal/domain/batches"
	"github.com/shopspring/decimal"
)

// Period: календарный месяц или, при Month == 0, весь год.
type Period struct {
	Year  int
	Month int
}

// ParsePeriod принимает год и месяц из запроса; месяц "" или "all" означает весь год.
func ParsePeriod(year, month string) (Period, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 1900 || y > 9999 {
		return Period{}, fmt.Errorf("%w: year %q", ErrInvalidPeriod, year)
	}
	m := strings.ToLower(strings.TrimSpace(month))
	if m == "" || m == "all" {
		return Period{Year: y}, nil
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 1 || mm > 12 {
		return Period{}, fmt.Errorf("%w: month %q", ErrInvalidPeriod, month)
	}
	return Period{Year: y, Month: mm}, nil
}

// ParsePeriodLabel понимает "2025-03" и "2025".
func ParsePeriodLabel(s string) (Period, error) {
	year, month, _ := strings.Cut(strings.TrimSpace(s), "-")
	return ParsePeriod(year, month)
}

func (p Period) WholeYear() bool { return p.Month == 0 }

// Range: первый и последний день периода включительно, YYYY-MM-DD.
func (p Period) Range() (start, end string) {
	if p.WholeYear() {
		return fmt.Sprintf("%04d-01-01", p.Year), fmt.Sprintf("%04d-12-31", p.Year)
	}
	first := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(batches.DateLayout), last.Format(batches.DateLayout)
}

func (p Period) Label() string {
	if p.WholeYear() {
		return fmt.Sprintf("%04d", p.Year)
	}
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) Contains(day string) bool {
	start, end := p.Range()
	return day >= start && day <= end
}

type ClientSummary struct {
	ClientID           int64
	ClientName         string
	TotalItemsWashed   int
	TotalAmount        decimal.Decimal
	BatchCount         int
	DiscrepancyBatches int
}

// AggregateClientPeriod сводит партии периода по клиентам; клиенты без партий не попадают.
// Сортировка по сумме по убыванию, при равенстве: по имени и id.
func AggregateClientPeriod(list []batches.Batch, p Period) []ClientSummary {
	byClient := map[int64]*ClientSummary{}
	for _, b := range list {
		if !p.Contains(b.PickupDay()) {
			continue
		}
		s, ok := byClient[b.ClientID]
		if !ok {
			s = &ClientSummary{ClientID: b.ClientID, ClientName: b.ClientName, TotalAmount: decimal.Zero}
			byClient[b.ClientID] = s
		}
		s.TotalItemsWashed += b.ItemsReceived()
		s.TotalAmount = s.TotalAmount.Add(b.TotalAmount)
		s.BatchCount++
		if b.HasDiscrepancy {
			s.DiscrepancyBatches++
		}
	}

	out := make([]ClientSummary, 0, len(byClient))
	for _, s := range byClient {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalAmount.Cmp(out[j].TotalAmount); c != 0 {
			return c > 0
		}
		if out[i].ClientName != out[j].ClientName {
			return out[i].ClientName < out[j].ClientName
		}
		return out[i].ClientID < out[j].ClientID
	})
	return out
}

// PeriodTotals: итог по всем клиентам, для шапки отчёта.
func PeriodTotals(rows []ClientSummary) ClientSummary {
	t := ClientSummary{TotalAmount: decimal.Zero}
	for _, r := range rows {
		t.TotalItemsWashed += r.TotalItemsWashed
		t.TotalAmount = t.TotalAmount.Add(r.TotalAmount)
		t.BatchCount += r.BatchCount
		t.DiscrepancyBatches += r.DiscrepancyBatches
	}
	return t
}
