package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/linen-service/internal/billing"
	"github.com/Spok95/linen-service/internal/dialog"
	"github.com/Spok95/linen-service/internal/invoice"
	"github.com/Spok95/linen-service/internal/report"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `Команды:
/batch <id> — счёт по партии
/next <id> — перевести партию на следующий этап
/report [YYYY-MM|YYYY] — сводка по клиентам (по умолчанию текущий месяц)
/prices — выгрузить прайс категорий
/prices_import — загрузить прайс из Excel
/cancel — сбросить текущий шаг`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		b.resetState(ctx, chatID)
		m := tgbotapi.NewMessage(chatID, "Привет, админ! Партии, отчёты и прайс доступны через кнопки снизу.")
		m.ReplyMarkup = adminReplyKeyboard()
		b.send(m)
	case "help":
		b.send(tgbotapi.NewMessage(chatID, helpText))
	case "cancel":
		b.clearPrevStep(ctx, chatID)
		b.resetState(ctx, chatID)
		b.send(tgbotapi.NewMessage(chatID, "Операция отменена."))
	case "batch":
		id, ok := b.parseID(chatID, args)
		if !ok {
			return
		}
		b.showBatch(ctx, chatID, id)
	case "next":
		id, ok := b.parseID(chatID, args)
		if !ok {
			return
		}
		b.advanceBatch(ctx, chatID, id)
	case "report":
		b.sendReport(ctx, chatID, args)
	case "prices":
		b.sendPriceList(ctx, chatID)
	case "prices_import":
		b.askPriceImport(ctx, chatID)
	default:
		b.send(tgbotapi.NewMessage(chatID, "Неизвестная команда. /help — список команд."))
	}
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	// кнопки нижней панели работают из любого состояния
	switch text {
	case btnBatch:
		b.clearPrevStep(ctx, chatID)
		b.saveLastStep(ctx, chatID, dialog.StateAwaitBatchID, dialog.Payload{},
			b.sendWithID(tgbotapi.NewMessage(chatID, "Введите номер партии.")))
		return
	case btnReport:
		b.clearPrevStep(ctx, chatID)
		b.saveLastStep(ctx, chatID, dialog.StateAwaitReportPeriod, dialog.Payload{},
			b.sendWithID(tgbotapi.NewMessage(chatID, "Введите период: YYYY-MM или YYYY.")))
		return
	case btnPrices:
		b.sendPriceList(ctx, chatID)
		return
	case btnPricesImport:
		b.askPriceImport(ctx, chatID)
		return
	}

	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("load dialog state failed", "chat_id", chatID, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка чтения состояния, попробуйте ещё раз."))
		return
	}

	switch st.State {
	case dialog.StateAwaitBatchID:
		id, ok := b.parseID(chatID, text)
		if !ok {
			return
		}
		b.resetState(ctx, chatID)
		b.showBatch(ctx, chatID, id)
	case dialog.StateAwaitReportPeriod:
		b.resetState(ctx, chatID)
		b.sendReport(ctx, chatID, text)
	case dialog.StateAwaitPriceImport:
		// ждём документ Excel
		if msg.Document == nil {
			b.send(tgbotapi.NewMessage(chatID,
				"Пожалуйста, отправьте Excel-файл (.xlsx), выгруженный через «Прайс», с заполненной колонкой price_per_item."))
			return
		}
		data, err := b.download(msg.Document.FileID)
		if err != nil {
			b.send(tgbotapi.NewMessage(chatID, "Не удалось скачать файл из Telegram: "+err.Error()))
			return
		}
		b.clearPrevStep(ctx, chatID)
		b.resetState(ctx, chatID)
		b.importPrices(ctx, chatID, data)
	default:
		b.send(tgbotapi.NewMessage(chatID, "Не понял. /help — список команд."))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	chatID := cb.Message.Chat.ID

	if data == "nav:cancel" {
		b.resetState(ctx, chatID)
		b.editTextAndClear(chatID, cb.Message.MessageID, "Операция отменена.")
		_ = b.answerCallback(cb, "Отменено", false)
		return
	}

	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != "batch" {
		_ = b.answerCallback(cb, "Неизвестное действие", false)
		return
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		_ = b.answerCallback(cb, "Неверный номер партии", true)
		return
	}

	switch parts[1] {
	case "next":
		_ = b.answerCallback(cb, "", false)
		b.advanceBatch(ctx, chatID, id)
	case "xlsx":
		_ = b.answerCallback(cb, "", false)
		b.sendBatchInvoiceFile(ctx, chatID, id)
	default:
		_ = b.answerCallback(cb, "Неизвестное действие", false)
	}
}

func (b *Bot) parseID(chatID int64, s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		b.send(tgbotapi.NewMessage(chatID, "Укажите номер партии, например: /batch 12"))
		return 0, false
	}
	return id, true
}

// replyError переводит ошибку сервиса в ответ админу.
func (b *Bot) replyError(chatID int64, what string, err error) {
	switch {
	case errors.Is(err, billing.ErrBatchNotFound):
		b.send(tgbotapi.NewMessage(chatID, "Партия не найдена."))
	case errors.Is(err, billing.ErrAlreadyDelivered):
		b.send(tgbotapi.NewMessage(chatID, "Партия уже доставлена."))
	case errors.Is(err, invoice.ErrInvalidPeriod):
		b.send(tgbotapi.NewMessage(chatID, "Неверный период. Формат: YYYY-MM или YYYY."))
	default:
		b.log.Error(what+" failed", "chat_id", chatID, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка: "+what))
	}
}

func (b *Bot) showBatch(ctx context.Context, chatID int64, id int64) {
	bt, inv, err := b.batches.Invoice(ctx, id)
	if err != nil {
		b.replyError(chatID, "счёт партии", err)
		return
	}
	m := tgbotapi.NewMessage(chatID, batchText(*bt, inv))
	m.ReplyMarkup = batchKeyboard(bt.ID, !bt.Status.Terminal())
	b.send(m)
}

func (b *Bot) advanceBatch(ctx context.Context, chatID int64, id int64) {
	bt, err := b.batches.Advance(ctx, id, "")
	if err != nil {
		b.replyError(chatID, "смена статуса", err)
		return
	}
	b.send(tgbotapi.NewMessage(chatID,
		fmt.Sprintf("Партия #%d: %s.", bt.ID, statusTitle(bt.Status))))
}

func (b *Bot) sendBatchInvoiceFile(ctx context.Context, chatID int64, id int64) {
	bt, inv, err := b.batches.Invoice(ctx, id)
	if err != nil {
		b.replyError(chatID, "счёт партии", err)
		return
	}
	data, err := report.BatchInvoiceWorkbook(*bt, inv)
	if err != nil {
		b.replyError(chatID, "формирование файла", err)
		return
	}
	b.sendDocument(chatID, fmt.Sprintf("batch_%d_invoice.xlsx", bt.ID), data,
		fmt.Sprintf("Счёт по партии #%d, итого %s.", bt.ID, inv.Total.StringFixed(2)))
}

// sendReport: пустой период означает текущий месяц.
func (b *Bot) sendReport(ctx context.Context, chatID int64, label string) {
	var p invoice.Period
	if label == "" {
		now := time.Now()
		p = invoice.Period{Year: now.Year(), Month: int(now.Month())}
	} else {
		var err error
		if p, err = invoice.ParsePeriodLabel(label); err != nil {
			b.replyError(chatID, "отчёт", err)
			return
		}
	}

	rows, err := b.reports.MonthlySummary(ctx, p, nil)
	if err != nil {
		b.replyError(chatID, "отчёт", err)
		return
	}
	b.send(tgbotapi.NewMessage(chatID, reportText(p, rows)))
	if len(rows) == 0 {
		return
	}

	data, err := report.MonthlyWorkbook(p, rows)
	if err != nil {
		b.replyError(chatID, "формирование файла", err)
		return
	}
	b.sendDocument(chatID, report.MonthlyFileName(p), data, "Сводка по клиентам за "+p.Label())
}

func (b *Bot) sendPriceList(ctx context.Context, chatID int64) {
	data, name, err := b.prices.Export(ctx)
	if err != nil {
		b.replyError(chatID, "выгрузка прайса", err)
		return
	}
	b.sendDocument(chatID, name, data,
		"Прайс категорий.\nПри необходимости измените колонку price_per_item и загрузите файл через «Загрузить прайс».")
}

func (b *Bot) askPriceImport(ctx context.Context, chatID int64) {
	b.clearPrevStep(ctx, chatID)
	m := tgbotapi.NewMessage(chatID, "Отправьте Excel-файл (.xlsx) с прайсом.")
	m.ReplyMarkup = navKeyboard(true)
	b.saveLastStep(ctx, chatID, dialog.StateAwaitPriceImport, dialog.Payload{}, b.sendWithID(m))
}

func (b *Bot) importPrices(ctx context.Context, chatID int64, data []byte) {
	res, err := b.prices.Import(ctx, data)
	if err != nil {
		b.log.Warn("price import failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Не удалось загрузить прайс: "+err.Error()))
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Обновлено цен: %d.", res.Updated)
	if len(res.Errors) > 0 {
		sb.WriteString("\nОшибки:")
		for _, e := range res.Errors {
			sb.WriteString("\n" + e.String())
		}
	}
	b.send(tgbotapi.NewMessage(chatID, sb.String()))
}
