package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Spok95/linen-service/internal/dialog"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

/*** HELPERS ***/

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) error {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	_, err := b.out.Request(resp)
	return err
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.out.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

// sendWithID отправляет и возвращает id сообщения (0, если не ушло).
func (b *Bot) sendWithID(msg tgbotapi.Chattable) int {
	m, err := b.out.Send(msg)
	if err != nil {
		b.log.Error("send failed", "err", err)
		return 0
	}
	return m.MessageID
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte, caption string) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  name,
		Bytes: data,
	})
	doc.Caption = caption
	b.send(doc)
}

// clearPrevStep убрать inline-кнопки у прошлого шага, если он был
func (b *Bot) clearPrevStep(ctx context.Context, chatID int64) {
	st, _ := b.states.Get(ctx, chatID)
	if st == nil || st.Payload == nil {
		return
	}
	if mid, ok := dialog.GetInt(st.Payload, "last_mid"); ok && mid > 0 {
		// просто чистим markup, текст оставляем как есть
		rm := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
		b.send(tgbotapi.NewEditMessageReplyMarkup(chatID, mid, rm))
	}
}

// saveLastStep сохранить id текущего бот-сообщения как «последний»
func (b *Bot) saveLastStep(ctx context.Context, chatID int64, nextState dialog.State, payload dialog.Payload, newMID int) {
	if payload == nil {
		payload = dialog.Payload{}
	}
	payload["last_mid"] = float64(newMID)
	if err := b.states.Set(ctx, chatID, nextState, payload); err != nil {
		b.log.Error("save dialog state failed", "chat_id", chatID, "state", nextState, "err", err)
	}
}

func (b *Bot) resetState(ctx context.Context, chatID int64) {
	if err := b.states.Reset(ctx, chatID); err != nil {
		b.log.Error("reset dialog state failed", "chat_id", chatID, "err", err)
	}
}

// downloadTelegramFile скачивает файл по FileID через Telegram API.
func (b *Bot) downloadTelegramFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file url: %w", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram returned status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	b.send(edit)
}
