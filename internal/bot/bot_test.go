package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Spok95/linen-service/internal/billing"
	"github.com/Spok95/linen-service/internal/dialog"
	"github.com/Spok95/linen-service/internal/domain/batches"
	"github.com/Spok95/linen-service/internal/domain/clients"
	"github.com/Spok95/linen-service/internal/domain/linen"
	"github.com/Spok95/linen-service/internal/invoice"
	"github.com/Spok95/linen-service/internal/report"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminChat = int64(100)

type fakeSender struct {
	sent   []tgbotapi.Chattable
	nextID int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.sent = append(f.sent, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) texts() []string {
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeSender) lastText() string {
	t := f.texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

func (f *fakeSender) documents() []tgbotapi.DocumentConfig {
	var out []tgbotapi.DocumentConfig
	for _, c := range f.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

type memStates struct {
	items map[int64]*dialog.Item
}

func (m *memStates) Get(_ context.Context, chatID int64) (*dialog.Item, error) {
	if it, ok := m.items[chatID]; ok {
		return it, nil
	}
	return &dialog.Item{ChatID: chatID, State: dialog.StateIdle, Payload: dialog.Payload{}}, nil
}

func (m *memStates) Set(_ context.Context, chatID int64, st dialog.State, p dialog.Payload) error {
	m.items[chatID] = &dialog.Item{ChatID: chatID, State: st, Payload: p}
	return nil
}

func (m *memStates) Reset(_ context.Context, chatID int64) error {
	delete(m.items, chatID)
	return nil
}

type memBatches struct {
	byID map[int64]batches.Batch
}

func (m *memBatches) Create(_ context.Context, b batches.Batch) (int64, error) {
	b.ID = int64(len(m.byID) + 1)
	m.byID[b.ID] = b
	return b.ID, nil
}

func (m *memBatches) GetByID(_ context.Context, id int64) (*batches.Batch, error) {
	b, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *memBatches) ListByPeriod(_ context.Context, start, end string, _ *int64) ([]batches.Batch, error) {
	var out []batches.Batch
	for id := int64(1); id <= int64(len(m.byID)); id++ {
		if b := m.byID[id]; b.PickupDay() >= start && b.PickupDay() <= end {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBatches) ReplaceLines(_ context.Context, id int64, lines []batches.Line, t batches.Totals) error {
	b, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	b.Lines, b.TotalAmount, b.HasDiscrepancy = lines, t.TotalAmount, t.HasDiscrepancy
	m.byID[id] = b
	return nil
}

func (m *memBatches) UpdateStatus(_ context.Context, id int64, st batches.Status, _ string) error {
	b, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	b.Status = st
	m.byID[id] = b
	return nil
}

type memClients map[int64]*clients.Client

func (m memClients) GetByID(_ context.Context, id int64) (*clients.Client, error) { return m[id], nil }

type memCategories map[int64]*linen.Category

func (m memCategories) GetByID(_ context.Context, id int64) (*linen.Category, error) { return m[id], nil }

func (m memCategories) List(_ context.Context, _ bool) ([]linen.Category, error) {
	var out []linen.Category
	for id := int64(1); id <= int64(len(m)); id++ {
		out = append(out, *m[id])
	}
	return out, nil
}

func (m memCategories) UpdatePrice(_ context.Context, id int64, p decimal.Decimal) (*linen.Category, error) {
	c, ok := m[id]
	if !ok {
		return nil, nil
	}
	c.PricePerItem = p
	return c, nil
}

type env struct {
	bot    *Bot
	out    *fakeSender
	states *memStates
	cats   memCategories
	svc    *billing.BatchService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cl := memClients{1: {ID: 1, Name: "Отель Волна", Active: true}}
	cats := memCategories{
		1: {ID: 1, Name: "Простыня", PricePerItem: decimal.RequireFromString("2.50"), Active: true},
		2: {ID: 2, Name: "Полотенце", PricePerItem: decimal.RequireFromString("10.00"), Active: true},
	}
	store := &memBatches{byID: map[int64]batches.Batch{}}
	svc := billing.NewBatchService(log, store, cl, cats, invoice.NewCalculator(invoice.DefaultRates()), nil)

	out := &fakeSender{}
	states := &memStates{items: map[int64]*dialog.Item{}}
	b := &Bot{
		out:       out,
		log:       log,
		states:    states,
		adminChat: adminChat,
		batches:   svc,
		reports:   billing.NewReportService(log, store, nil),
		prices:    billing.NewPriceService(log, cats),
	}
	b.download = func(string) ([]byte, error) { return nil, errors.New("no telegram in tests") }
	svc.SetNotifier(b)
	return &env{bot: b, out: out, states: states, cats: cats, svc: svc}
}

func (e *env) createBatch(t *testing.T) {
	t.Helper()
	received := 8
	_, err := e.svc.Create(context.Background(), billing.CreateBatchInput{
		ClientID:   1,
		PickupDate: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		Lines: []batches.LineInput{
			{CategoryID: 1, QuantitySent: 10, QuantityReceived: &received},
			{CategoryID: 2, QuantitySent: 5, ExpressDelivery: true},
		},
	})
	require.NoError(t, err)
}

func command(chatID int64, text string) *tgbotapi.Message {
	cmd, _, _ := strings.Cut(text, " ")
	return &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}

func text(chatID int64, s string) *tgbotapi.Message {
	return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, From: &tgbotapi.User{ID: chatID}, Text: s}
}

func TestForeignChatIsRejected(t *testing.T) {
	e := newEnv(t)
	e.bot.onMessage(context.Background(), command(555, "/report"))
	require.Equal(t, "Нет доступа.", e.out.lastText())
}

func TestDiscrepancyNotification(t *testing.T) {
	e := newEnv(t)
	e.createBatch(t)

	require.Len(t, e.out.sent, 1)
	m := e.out.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, adminChat, m.ChatID)
	assert.Contains(t, m.Text, "Расхождение по партии")
	assert.Contains(t, m.Text, "Итого: 103.50")
	assert.Contains(t, m.Text, "(расхождение -2)")
}

func TestBatchCommand(t *testing.T) {
	e := newEnv(t)
	e.createBatch(t)
	ctx := context.Background()

	e.bot.onMessage(ctx, command(adminChat, "/batch 1"))
	got := e.out.lastText()
	assert.Contains(t, got, "Партия #1 — Отель Волна")
	assert.Contains(t, got, "НДС 15%: 13.50")
	assert.Contains(t, got, "Срочность: 25.00")

	e.bot.onMessage(ctx, command(adminChat, "/batch 9"))
	assert.Equal(t, "Партия не найдена.", e.out.lastText())

	e.bot.onMessage(ctx, command(adminChat, "/batch abc"))
	assert.Contains(t, e.out.lastText(), "Укажите номер партии")
}

func TestNextCommandAndCallback(t *testing.T) {
	e := newEnv(t)
	e.createBatch(t)
	ctx := context.Background()

	e.bot.onMessage(ctx, command(adminChat, "/next 1"))
	assert.Equal(t, "Партия #1: в стирке.", e.out.lastText())

	cb := &tgbotapi.CallbackQuery{
		ID:      "cb1",
		Data:    "batch:next:1",
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: adminChat}},
	}
	e.bot.onCallback(ctx, cb)
	e.bot.onCallback(ctx, cb)
	assert.Equal(t, "Партия #1: доставлено.", e.out.lastText())

	e.bot.onCallback(ctx, cb)
	assert.Equal(t, "Партия уже доставлена.", e.out.lastText())

	cb.Data = "batch:xlsx:1"
	e.bot.onCallback(ctx, cb)
	docs := e.out.documents()
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Caption, "итого 103.50")
}

func TestReportCommand(t *testing.T) {
	e := newEnv(t)
	e.createBatch(t)
	ctx := context.Background()

	e.bot.onMessage(ctx, command(adminChat, "/report 2025-03"))
	texts := e.out.texts()
	assert.Contains(t, texts[len(texts)-1], "1. Отель Волна — 103.50 (1 парт., 13 шт.)")
	docs := e.out.documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "Сводка по клиентам за 2025-03", docs[0].Caption)

	e.bot.onMessage(ctx, command(adminChat, "/report 2024"))
	assert.Equal(t, "За 2024 партий нет.", e.out.lastText())

	e.bot.onMessage(ctx, command(adminChat, "/report 2025-13"))
	assert.Contains(t, e.out.lastText(), "Неверный период")
}

func TestReportViaButton(t *testing.T) {
	e := newEnv(t)
	e.createBatch(t)
	ctx := context.Background()

	e.bot.onMessage(ctx, text(adminChat, btnReport))
	assert.Equal(t, dialog.StateAwaitReportPeriod, e.states.items[adminChat].State)

	e.bot.onMessage(ctx, text(adminChat, "2025"))
	assert.NotContains(t, e.states.items, adminChat)
	require.Len(t, e.out.documents(), 1)
}

func TestPriceImportDialog(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	edited, err := report.PriceListWorkbook([]linen.Category{
		{ID: 1, Name: "Простыня", PricePerItem: decimal.RequireFromString("3.00"), Active: true},
	})
	require.NoError(t, err)
	e.bot.download = func(fileID string) ([]byte, error) {
		require.Equal(t, "file-1", fileID)
		return edited, nil
	}

	e.bot.onMessage(ctx, command(adminChat, "/prices_import"))
	st := e.states.items[adminChat]
	require.Equal(t, dialog.StateAwaitPriceImport, st.State)
	mid, ok := dialog.GetInt(st.Payload, "last_mid")
	require.True(t, ok)
	require.Positive(t, mid)

	e.bot.onMessage(ctx, text(adminChat, "вот"))
	assert.Contains(t, e.out.lastText(), "отправьте Excel-файл")

	doc := text(adminChat, "")
	doc.Document = &tgbotapi.Document{FileID: "file-1", FileName: "prices.xlsx"}
	e.bot.onMessage(ctx, doc)

	assert.Equal(t, "Обновлено цен: 1.", e.out.lastText())
	assert.True(t, e.cats[1].PricePerItem.Equal(decimal.RequireFromString("3.00")))
	assert.NotContains(t, e.states.items, adminChat)
}

func TestPricesCommandSendsWorkbook(t *testing.T) {
	e := newEnv(t)
	e.bot.onMessage(context.Background(), command(adminChat, "/prices"))
	docs := e.out.documents()
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Caption, "Прайс категорий")
}
