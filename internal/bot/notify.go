package bot

import (
	"context"

	"github.com/Spok95/linen-service/internal/domain/batches"
	"github.com/Spok95/linen-service/internal/invoice"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BatchDiscrepancy шлёт админу карточку партии, где получено не столько, сколько отдали.
func (b *Bot) BatchDiscrepancy(_ context.Context, bt batches.Batch, inv invoice.BatchInvoice) {
	if b.adminChat == 0 {
		return
	}
	m := tgbotapi.NewMessage(b.adminChat, "⚠️ Расхождение по партии\n\n"+batchText(bt, inv))
	m.ReplyMarkup = batchKeyboard(bt.ID, !bt.Status.Terminal())
	b.send(m)
}
