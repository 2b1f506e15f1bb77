package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go
type Client interface {
	GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)

	SendMessage(chatID int64, text string) (int, error)
	SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error)
	SendPhoto(chatID int64, fileID, caption string) error
	SendPhotoWithKeyboard(chatID int64, fileID, caption string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error)
	SendMediaGroup(chatID int64, media []interface{}) error
	EditMessageText(chatID int64, messageID int, newText string) error
	DeleteMessage(chatID int64, messageID int)
}
