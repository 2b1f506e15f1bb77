package telegramimpl

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// The original bot rendered everything with HTML parse mode; every outbound
// text goes through it so user content must be escaped by the caller.

// SendMessage sends a plain text message and returns the sent message ID.
func (tg *TelegramImpl) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	sentMsg, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending message", "chatID", chatID, "error", err)
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return sentMsg.MessageID, nil
}

// SendMessageWithKeyboard sends a text message with an inline keyboard.
func (tg *TelegramImpl) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	sentMsg, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending message with keyboard", "chatID", chatID, "error", err)
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return sentMsg.MessageID, nil
}

// SendPhoto sends a single photo by its Telegram file ID.
func (tg *TelegramImpl) SendPhoto(chatID int64, fileID, caption string) error {
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := tg.TgBot.Send(msg); err != nil {
		tg.Logger.Error("Error sending photo", "chatID", chatID, "error", err)
		return fmt.Errorf("failed to send photo: %w", err)
	}
	return nil
}

// SendPhotoWithKeyboard sends a photo with a caption and an inline keyboard.
func (tg *TelegramImpl) SendPhotoWithKeyboard(chatID int64, fileID, caption string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	sentMsg, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending photo with keyboard", "chatID", chatID, "error", err)
		return 0, fmt.Errorf("failed to send photo: %w", err)
	}
	return sentMsg.MessageID, nil
}

// SendMediaGroup sends an album of photos.
func (tg *TelegramImpl) SendMediaGroup(chatID int64, media []interface{}) error {
	group := tgbotapi.NewMediaGroup(chatID, media)
	if _, err := tg.TgBot.SendMediaGroup(group); err != nil {
		tg.Logger.Error("Error sending media group", "chatID", chatID, "error", err)
		return fmt.Errorf("failed to send media group: %w", err)
	}
	return nil
}

// EditMessageText replaces the text of a previously sent message.
func (tg *TelegramImpl) EditMessageText(chatID int64, messageID int, newText string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, newText)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := tg.TgBot.Send(edit); err != nil {
		tg.Logger.Error("Error editing message", "chatID", chatID, "messageID", messageID, "error", err)
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// DeleteMessage removes a message best-effort; failures are logged and swallowed.
func (tg *TelegramImpl) DeleteMessage(chatID int64, messageID int) {
	del := tgbotapi.NewDeleteMessage(chatID, messageID)
	if _, err := tg.TgBot.Request(del); err != nil {
		tg.Logger.Warn("Failed to delete message", "chatID", chatID, "messageID", messageID, "error", err)
	}
}

// Request forwards a raw API request, used for callback acknowledgements.
func (tg *TelegramImpl) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return tg.TgBot.Request(c)
}

// GetUpdatesChan wraps the bot's GetUpdatesChan method.
func (tg *TelegramImpl) GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return tg.TgBot.GetUpdatesChan(u)
}

// StopReceivingUpdates stops the long-poll loop.
func (tg *TelegramImpl) StopReceivingUpdates() {
	tg.TgBot.StopReceivingUpdates()
}
