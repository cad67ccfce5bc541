package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	btnBatch        = "Партия"
	btnReport       = "Отчёт за период"
	btnPrices       = "Прайс"
	btnPricesImport = "Загрузить прайс"
)

func navKeyboard(cancel bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if cancel {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖️ Отменить", "nav:cancel"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// batchKeyboard: действия под карточкой партии.
func batchKeyboard(id int64, canAdvance bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("📄 Счёт (xlsx)", fmt.Sprintf("batch:xlsx:%d", id)),
	}
	if canAdvance {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("➡️ Следующий этап", fmt.Sprintf("batch:next:%d", id)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// adminReplyKeyboard Нижняя панель (ReplyKeyboard) для админа
func adminReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnBatch), tgbotapi.NewKeyboardButton(btnReport)},
			{tgbotapi.NewKeyboardButton(btnPrices), tgbotapi.NewKeyboardButton(btnPricesImport)},
		},
	}
}
