package http

import (
	"time"

	"github.com/Spok95/linen-service/internal/domain/batches"
	"github.com/Spok95/linen-service/internal/domain/clients"
	"github.com/Spok95/linen-service/internal/domain/invoices"
	"github.com/Spok95/linen-service/internal/domain/linen"
	"github.com/Spok95/linen-service/internal/invoice"
	"github.com/shopspring/decimal"
)

type clientRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Contact string `json:"contact" validate:"max=200"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
}

type activeRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type categoryRequest struct {
	Name         string          `json:"name" validate:"required,max=100"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
}

type priceRequest struct {
	PricePerItem *decimal.Decimal `json:"price_per_item" validate:"required"`
}

// Количества приходят числом JSON; дробные и отрицательные отсекает batches.QuantityFromFloat.
type lineRequest struct {
	CategoryID         int64            `json:"category_id" validate:"required,gt=0"`
	QuantitySent       float64          `json:"quantity_sent"`
	QuantityReceived   *float64         `json:"quantity_received"`
	PricePerItem       *decimal.Decimal `json:"price_per_item"`
	ExpressDelivery    bool             `json:"express_delivery"`
	DiscrepancyDetails *string          `json:"discrepancy_details" validate:"omitempty,max=1000"`
}

func (l lineRequest) toInput() (batches.LineInput, error) {
	sent, err := batches.QuantityFromFloat(l.QuantitySent)
	if err != nil {
		return batches.LineInput{}, err
	}
	in := batches.LineInput{
		CategoryID:         l.CategoryID,
		QuantitySent:       sent,
		PricePerItem:       l.PricePerItem,
		ExpressDelivery:    l.ExpressDelivery,
		DiscrepancyDetails: l.DiscrepancyDetails,
	}
	if l.QuantityReceived != nil {
		rec, err := batches.QuantityFromFloat(*l.QuantityReceived)
		if err != nil {
			return batches.LineInput{}, err
		}
		in.QuantityReceived = &rec
	}
	return in, nil
}

func linesToInputs(in []lineRequest) ([]batches.LineInput, error) {
	out := make([]batches.LineInput, 0, len(in))
	for _, l := range in {
		li, err := l.toInput()
		if err != nil {
			return nil, err
		}
		out = append(out, li)
	}
	return out, nil
}

type createBatchRequest struct {
	ClientID   int64         `json:"client_id" validate:"required,gt=0"`
	PickupDate string        `json:"pickup_date" validate:"required,datetime=2006-01-02"`
	Lines      []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

type replaceLinesRequest struct {
	Lines []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

// statusRequest: пустой статус переводит партию на следующий этап.
type statusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note" validate:"max=500"`
}

type issueInvoiceRequest struct {
	ClientID int64 `json:"client_id" validate:"required,gt=0"`
	Year     int   `json:"year" validate:"required,gte=1900,lte=9999"`
	Month    int   `json:"month" validate:"gte=0,lte=12"`
}

type clientView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func newClientView(c clients.Client) clientView {
	return clientView{ID: c.ID, Name: c.Name, Contact: c.Contact, Phone: c.Phone,
		Address: c.Address, Active: c.Active, CreatedAt: c.CreatedAt}
}

type categoryView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	PricePerItem string `json:"price_per_item"`
	Active       bool   `json:"active"`
}

func newCategoryView(c linen.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, PricePerItem: c.PricePerItem.StringFixed(2), Active: c.Active}
}

type lineView struct {
	CategoryID         int64   `json:"category_id"`
	CategoryName       string  `json:"category_name"`
	QuantitySent       int     `json:"quantity_sent"`
	QuantityReceived   int     `json:"quantity_received"`
	PricePerItem       string  `json:"price_per_item"`
	ExpressDelivery    bool    `json:"express_delivery"`
	DiscrepancyDetails *string `json:"discrepancy_details,omitempty"`
}

type batchView struct {
	ID             int64             `json:"id"`
	ClientID       int64             `json:"client_id"`
	ClientName     string            `json:"client_name"`
	PickupDate     string            `json:"pickup_date"`
	Status         string            `json:"status"`
	TotalAmount    string            `json:"total_amount"`
	HasDiscrepancy bool              `json:"has_discrepancy"`
	Notes          map[string]string `json:"notes,omitempty"`
	Lines          []lineView        `json:"lines"`
}

func newBatchView(b batches.Batch) batchView {
	v := batchView{
		ID:             b.ID,
		ClientID:       b.ClientID,
		ClientName:     b.ClientName,
		PickupDate:     b.PickupDay(),
		Status:         string(b.Status),
		TotalAmount:    b.TotalAmount.StringFixed(2),
		HasDiscrepancy: b.HasDiscrepancy,
		Notes:          b.Notes,
		Lines:          make([]lineView, 0, len(b.Lines)),
	}
	for _, l := range b.Lines {
		v.Lines = append(v.Lines, lineView{
			CategoryID:         l.CategoryID,
			CategoryName:       l.CategoryName,
			QuantitySent:       l.QuantitySent,
			QuantityReceived:   l.QuantityReceived,
			PricePerItem:       l.PricePerItem.StringFixed(2),
			ExpressDelivery:    l.ExpressDelivery,
			DiscrepancyDetails: l.DiscrepancyDetails,
		})
	}
	return v
}

type invoiceLineView struct {
	CategoryID        int64  `json:"category_id"`
	CategoryName      string `json:"category_name"`
	QuantitySent      int    `json:"quantity_sent"`
	QuantityReceived  int    `json:"quantity_received"`
	PricePerItem      string `json:"price_per_item"`
	LineTotal         string `json:"line_total"`
	Discrepancy       int    `json:"discrepancy"`
	DiscrepancyValue  string `json:"discrepancy_value"`
	Surcharge         string `json:"surcharge"`
	LineAdjustedTotal string `json:"line_adjusted_total"`
}

type batchInvoiceView struct {
	BatchID               int64             `json:"batch_id"`
	SubtotalReceived      string            `json:"subtotal_received"`
	TotalDiscrepancyValue string            `json:"total_discrepancy_value"`
	TotalSurcharge        string            `json:"total_surcharge"`
	AdjustedSubtotal      string            `json:"adjusted_subtotal"`
	VATRate               string            `json:"vat_rate"`
	VAT                   string            `json:"vat"`
	Total                 string            `json:"total"`
	HasDiscrepancy        bool              `json:"has_discrepancy"`
	Lines                 []invoiceLineView `json:"lines"`
}

func newBatchInvoiceView(batchID int64, inv invoice.BatchInvoice) batchInvoiceView {
	v := batchInvoiceView{
		BatchID:               batchID,
		SubtotalReceived:      inv.SubtotalReceived.StringFixed(2),
		TotalDiscrepancyValue: inv.TotalDiscrepancyValue.StringFixed(2),
		TotalSurcharge:        inv.TotalSurcharge.StringFixed(2),
		AdjustedSubtotal:      inv.AdjustedSubtotal.StringFixed(2),
		VATRate:               inv.VATRate.String(),
		VAT:                   inv.VAT.StringFixed(2),
		Total:                 inv.Total.StringFixed(2),
		HasDiscrepancy:        inv.HasDiscrepancy,
		Lines:                 make([]invoiceLineView, 0, len(inv.Lines)),
	}
	for _, l := range inv.Lines {
		v.Lines = append(v.Lines, invoiceLineView{
			CategoryID:        l.CategoryID,
			CategoryName:      l.CategoryName,
			QuantitySent:      l.QuantitySent,
			QuantityReceived:  l.QuantityReceived,
			PricePerItem:      l.PricePerItem.StringFixed(2),
			LineTotal:         l.LineTotal.StringFixed(2),
			Discrepancy:       l.Discrepancy,
			DiscrepancyValue:  l.DiscrepancyValue.StringFixed(2),
			Surcharge:         l.Surcharge.StringFixed(2),
			LineAdjustedTotal: l.LineAdjustedTotal.StringFixed(2),
		})
	}
	return v
}

type summaryView struct {
	ClientID           int64  `json:"client_id"`
	ClientName         string `json:"client_name"`
	TotalItemsWashed   int    `json:"total_items_washed"`
	TotalAmount        string `json:"total_amount"`
	BatchCount         int    `json:"batch_count"`
	DiscrepancyBatches int    `json:"discrepancy_batches"`
}

type monthlyReportView struct {
	Period  string        `json:"period"`
	Clients []summaryView `json:"clients"`
	Total   summaryView   `json:"total"`
}

func newSummaryView(s invoice.ClientSummary) summaryView {
	return summaryView{
		ClientID:           s.ClientID,
		ClientName:         s.ClientName,
		TotalItemsWashed:   s.TotalItemsWashed,
		TotalAmount:        s.TotalAmount.StringFixed(2),
		BatchCount:         s.BatchCount,
		DiscrepancyBatches: s.DiscrepancyBatches,
	}
}

type invoiceView struct {
	ID         int64      `json:"id"`
	ClientID   int64      `json:"client_id"`
	Year       int        `json:"year"`
	Month      int        `json:"month"`
	Amount     string     `json:"amount"`
	Status     string     `json:"status"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	PaymentURL string     `json:"payment_url,omitempty"`
}

func newInvoiceView(inv invoices.Invoice, payURL string) invoiceView {
	return invoiceView{ID: inv.ID, ClientID: inv.ClientID, Year: inv.Year, Month: inv.Month,
		Amount: inv.Amount.StringFixed(2), Status: string(inv.Status), PaidAt: inv.PaidAt, PaymentURL: payURL}
}

type importView struct {
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}
