package common

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

// AnswerCallback отвечает на callback query (без alert)
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// AnswerCallbackAlert отвечает на callback query с alert (всплывающее окно)
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// GetMessageFromCallback извлекает сообщение из callback query
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// ParseCallback разбирает callback data вида "book:<uuid>"
func ParseCallback(data string) (action string, id uuid.UUID, err error) {
	action, raw, ok := strings.Cut(data, ":")
	if !ok {
		return "", uuid.Nil, ErrInvalidFormat
	}
	id, err = uuid.Parse(raw)
	if err != nil {
		return "", uuid.Nil, ErrInvalidFormat
	}
	return action, id, nil
}

// CallbackData собирает callback data для кнопки
func CallbackData(action string, id uuid.UUID) string {
	return action + ":" + id.String()
}
