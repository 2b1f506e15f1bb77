package commandimpl

import (
	"context"
	"encoding/json"

	"github.com/bazarbot/bazar-telegram-bot/internal/workflow"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (c *CommandImpl) handleSell(ctx context.Context, userID, chatID int64) {
	reply, stale := c.Workflow.Start(ctx, userID)
	if stale != nil {
		c.Telegram.DeleteMessage(stale.ChatID, stale.MessageID)
	}
	c.sendReply(userID, chatID, reply)
}

func (c *CommandImpl) handleCancel(ctx context.Context, userID, chatID int64) {
	if !c.Workflow.Active(userID) {
		c.Telegram.SendMessage(chatID, "There's nothing to cancel. Use /sell to create a listing.")
		return
	}
	reply, stale := c.Workflow.Cancel(ctx, userID)
	if stale != nil {
		c.Telegram.DeleteMessage(stale.ChatID, stale.MessageID)
	}
	c.sendReply(userID, chatID, reply)
}

// sendReply delivers a workflow reply. For the confirm preview the sent
// prompt is recorded on the session and any superseded prompt is deleted.
func (c *CommandImpl) sendReply(userID, chatID int64, reply workflow.Reply) {
	if !reply.ShowPreview {
		if len(reply.Buttons) > 0 {
			if _, err := c.Telegram.SendMessageWithKeyboard(chatID, reply.Text, keyboardFrom(reply.Buttons)); err != nil {
				c.Logger.Error("Failed to send workflow reply", "error", err)
			}
			return
		}
		if _, err := c.Telegram.SendMessage(chatID, reply.Text); err != nil {
			c.Logger.Error("Failed to send workflow reply", "error", err)
		}
		return
	}

	switch len(reply.Photos) {
	case 0:
	case 1:
		if err := c.Telegram.SendPhoto(chatID, reply.Photos[0], ""); err != nil {
			c.Logger.Error("Failed to send preview photo", "error", err)
		}
	default:
		var media []interface{}
		for _, p := range reply.Photos {
			media = append(media, tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(p)))
		}
		if err := c.Telegram.SendMediaGroup(chatID, media); err != nil {
			c.Logger.Error("Failed to send preview media group", "error", err)
		}
	}

	msgID, err := c.Telegram.SendMessageWithKeyboard(chatID, reply.Text, keyboardFrom(reply.Buttons))
	if err != nil {
		c.Logger.Error("Failed to send confirm prompt", "error", err)
		return
	}
	if prev := c.Sessions.SetPreview(userID, chatID, msgID); prev != nil {
		c.Telegram.DeleteMessage(prev.ChatID, prev.MessageID)
	}
}

// keyboardFrom renders workflow buttons as a single inline keyboard row.
func keyboardFrom(buttons []workflow.Button) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		data, _ := json.Marshal(callbackData{Action: b.Action})
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Label, string(data)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}
