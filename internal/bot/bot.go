package bot

import (
	"context"
	"log/slog"

	"github.com/Spok95/linen-service/internal/billing"
	"github.com/Spok95/linen-service/internal/dialog"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender: часть tgbotapi.BotAPI, через которую бот отвечает.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type StateStore interface {
	Get(ctx context.Context, chatID int64) (*dialog.Item, error)
	Set(ctx context.Context, chatID int64, state dialog.State, payload dialog.Payload) error
	Reset(ctx context.Context, chatID int64) error
}

// Bot: админский бот прачечной.
// Отвечает только в чате администратора.
type Bot struct {
	api       *tgbotapi.BotAPI
	out       Sender
	log       *slog.Logger
	states    StateStore
	adminChat int64
	batches   *billing.BatchService
	reports   *billing.ReportService
	prices    *billing.PriceService
	download  func(fileID string) ([]byte, error)
}

func New(api *tgbotapi.BotAPI, log *slog.Logger, statesRepo StateStore, adminChatID int64,
	batchSvc *billing.BatchService, reportSvc *billing.ReportService, priceSvc *billing.PriceService) *Bot {

	b := &Bot{
		api: api, out: api, log: log, states: statesRepo,
		adminChat: adminChatID, batches: batchSvc,
		reports: reportSvc, prices: priceSvc,
	}
	b.download = b.downloadTelegramFile
	return b
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		b.onMessage(ctx, upd.Message)
	} else if upd.CallbackQuery != nil {
		b.onCallback(ctx, upd.CallbackQuery)
	}
}

func (b *Bot) onMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	if msg.Chat.ID != b.adminChat {
		b.log.Warn("message from foreign chat", "chat_id", msg.Chat.ID)
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Нет доступа."))
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) onCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil || cb.Message.Chat.ID != b.adminChat {
		_ = b.answerCallback(cb, "Нет доступа", true)
		return
	}
	b.handleCallback(ctx, cb)
}
