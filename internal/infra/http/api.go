package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Spok95/linen-service/internal/billing"
	"github.com/Spok95/linen-service/internal/domain/batches"
	"github.com/Spok95/linen-service/internal/domain/clients"
	"github.com/Spok95/linen-service/internal/domain/linen"
	"github.com/Spok95/linen-service/internal/infra/metrics"
	"github.com/Spok95/linen-service/internal/invoice"
	"github.com/Spok95/linen-service/internal/report"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const maxUploadSize = 10 << 20

type ClientStore interface {
	Create(ctx context.Context, c clients.Client) (*clients.Client, error)
	GetByID(ctx context.Context, id int64) (*clients.Client, error)
	List(ctx context.Context, onlyActive bool) ([]clients.Client, error)
	Update(ctx context.Context, c clients.Client) (*clients.Client, error)
	SetActive(ctx context.Context, id int64, active bool) (*clients.Client, error)
}

type CategoryStore interface {
	Create(ctx context.Context, name string, price decimal.Decimal) (*linen.Category, error)
	List(ctx context.Context, onlyActive bool) ([]linen.Category, error)
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*linen.Category, error)
	SetActive(ctx context.Context, id int64, active bool) (*linen.Category, error)
}

type Services struct {
	Clients    ClientStore
	Categories CategoryStore
	Batches    *billing.BatchService
	Reports    *billing.ReportService
	Invoices   *billing.InvoiceService
	Prices     *billing.PriceService
}

// API: JSON-ручки поверх сервисов billing.
type API struct {
	log      *slog.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
	svc      Services
}

func NewAPI(log *slog.Logger, m *metrics.Metrics, svc Services) *API {
	return &API{log: log, metrics: m, validate: validator.New(validator.WithRequiredStructEnabled()), svc: svc}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/clients", a.listClients)
	mux.HandleFunc("POST /api/clients", a.createClient)
	mux.HandleFunc("GET /api/clients/{id}", a.getClient)
	mux.HandleFunc("PUT /api/clients/{id}", a.updateClient)
	mux.HandleFunc("POST /api/clients/{id}/active", a.setClientActive)

	mux.HandleFunc("GET /api/categories", a.listCategories)
	mux.HandleFunc("POST /api/categories", a.createCategory)
	mux.HandleFunc("PATCH /api/categories/{id}/price", a.updatePrice)
	mux.HandleFunc("POST /api/categories/{id}/active", a.setCategoryActive)
	mux.HandleFunc("GET /api/categories/prices.xlsx", a.exportPrices)
	mux.HandleFunc("POST /api/categories/prices.xlsx", a.importPrices)

	mux.HandleFunc("POST /api/batches", a.createBatch)
	mux.HandleFunc("GET /api/batches/{id}", a.getBatch)
	mux.HandleFunc("PUT /api/batches/{id}/lines", a.replaceLines)
	mux.HandleFunc("POST /api/batches/{id}/status", a.setStatus)
	mux.HandleFunc("GET /api/batches/{id}/invoice", a.batchInvoice)

	mux.HandleFunc("GET /api/reports/monthly", a.monthlyReport)
	mux.HandleFunc("GET /api/reports/monthly.xlsx", a.monthlyReportXLSX)

	mux.HandleFunc("POST /api/invoices", a.issueInvoice)
	mux.Handle("GET /payments/pay", &payHandler{log: a.log, invoices: a.svc.Invoices})
}

func (a *API) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid json: %v", err)
	}
	return a.validate.Struct(dst)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

func queryClientID(r *http.Request) (*int64, error) {
	raw := r.URL.Query().Get("client_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, badRequest("invalid client_id %q", raw)
	}
	return &id, nil
}

func (a *API) listClients(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.Clients.List(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	out := make([]clientView, 0, len(list))
	for _, c := range list {
		out = append(out, newClientView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) createClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.svc.Clients.Create(r.Context(), clients.Client{
		Name: req.Name, Contact: req.Contact, Phone: req.Phone, Address: req.Address,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newClientView(*c))
}

func (a *API) getClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.svc.Clients.GetByID(r.Context(), id)
	if err == nil && c == nil {
		err = fmt.Errorf("client %d: %w", id, errNotFound)
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newClientView(*c))
}

func (a *API) updateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req clientRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.svc.Clients.Update(r.Context(), clients.Client{
		ID: id, Name: req.Name, Contact: req.Contact, Phone: req.Phone, Address: req.Address,
	})
	if err == nil && c == nil {
		err = fmt.Errorf("client %d: %w", id, errNotFound)
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newClientView(*c))
}

func (a *API) setClientActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req activeRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.svc.Clients.SetActive(r.Context(), id, *req.Active)
	if err == nil && c == nil {
		err = fmt.Errorf("client %d: %w", id, errNotFound)
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newClientView(*c))
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.Categories.List(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	out := make([]categoryView, 0, len(list))
	for _, c := range list {
		out = append(out, newCategoryView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.PricePerItem.IsNegative() {
		a.writeError(w, r, badRequest("price_per_item must not be negative"))
		return
	}
	c, err := a.svc.Categories.Create(r.Context(), req.Name, req.PricePerItem.Round(2))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCategoryView(*c))
}

func (a *API) updatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req priceRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.PricePerItem.IsNegative() {
		a.writeError(w, r, badRequest("price_per_item must not be negative"))
		return
	}
	c, err := a.svc.Categories.UpdatePrice(r.Context(), id, req.PricePerItem.Round(2))
	if err == nil && c == nil {
		err = fmt.Errorf("category %d: %w", id, errNotFound)
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCategoryView(*c))
}

func (a *API) setCategoryActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req activeRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.svc.Categories.SetActive(r.Context(), id, *req.Active)
	if err == nil && c == nil {
		err = fmt.Errorf("category %d: %w", id, errNotFound)
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCategoryView(*c))
}

func (a *API) exportPrices(w http.ResponseWriter, r *http.Request) {
	data, name, err := a.svc.Prices.Export(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeFile(w, name, data)
}

// importPrices принимает xlsx телом запроса.
func (a *API) importPrices(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadSize))
	if err != nil {
		a.writeError(w, r, badRequest("read body: %v", err))
		return
	}
	res, err := a.svc.Prices.Import(r.Context(), data)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	out := importView{Updated: res.Updated, Errors: make([]string, 0, len(res.Errors))}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, e.String())
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) createBatch(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	pickup, err := time.Parse(batches.DateLayout, req.PickupDate)
	if err != nil {
		a.writeError(w, r, badRequest("invalid pickup_date %q", req.PickupDate))
		return
	}
	lines, err := linesToInputs(req.Lines)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	b, err := a.svc.Batches.Create(r.Context(), billing.CreateBatchInput{
		ClientID:   req.ClientID,
		PickupDate: pickup,
		Lines:      lines,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newBatchView(*b))
}

func (a *API) getBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	b, err := a.svc.Batches.Get(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBatchView(*b))
}

func (a *API) replaceLines(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req replaceLinesRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	lines, err := linesToInputs(req.Lines)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	b, err := a.svc.Batches.ReplaceLines(r.Context(), id, lines)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBatchView(*b))
}

func (a *API) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	var b *batches.Batch
	if req.Status == "" {
		b, err = a.svc.Batches.Advance(r.Context(), id, req.Note)
	} else {
		var st batches.Status
		if st, err = batches.ParseStatus(req.Status); err == nil {
			b, err = a.svc.Batches.SetStatus(r.Context(), id, st, req.Note)
		}
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBatchView(*b))
}

// batchInvoice: ?format=xlsx отдаёт файл вместо JSON.
func (a *API) batchInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	b, inv, err := a.svc.Batches.Invoice(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "xlsx" {
		data, err := report.BatchInvoiceWorkbook(*b, inv)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		writeFile(w, fmt.Sprintf("batch_%d_invoice.xlsx", b.ID), data)
		return
	}
	writeJSON(w, http.StatusOK, newBatchInvoiceView(b.ID, inv))
}

func (a *API) reportParams(r *http.Request) (invoice.Period, *int64, error) {
	q := r.URL.Query()
	p, err := invoice.ParsePeriod(q.Get("year"), q.Get("month"))
	if err != nil {
		return invoice.Period{}, nil, err
	}
	clientID, err := queryClientID(r)
	if err != nil {
		return invoice.Period{}, nil, err
	}
	return p, clientID, nil
}

func (a *API) monthlyReport(w http.ResponseWriter, r *http.Request) {
	p, clientID, err := a.reportParams(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	rows, err := a.svc.Reports.MonthlySummary(r.Context(), p, clientID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	out := monthlyReportView{
		Period:  p.Label(),
		Clients: make([]summaryView, 0, len(rows)),
		Total:   newSummaryView(invoice.PeriodTotals(rows)),
	}
	for _, s := range rows {
		out.Clients = append(out.Clients, newSummaryView(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) monthlyReportXLSX(w http.ResponseWriter, r *http.Request) {
	p, clientID, err := a.reportParams(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	data, name, err := a.svc.Reports.MonthlyWorkbook(r.Context(), p, clientID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeFile(w, name, data)
}

func (a *API) issueInvoice(w http.ResponseWriter, r *http.Request) {
	var req issueInvoiceRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	issued, err := a.svc.Invoices.IssueMonthly(r.Context(), req.ClientID, invoice.Period{Year: req.Year, Month: req.Month})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newInvoiceView(issued.Invoice, issued.PaymentURL))
}
