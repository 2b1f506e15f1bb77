package commandimpl

import (
	"context"
	"encoding/json"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (c *CommandImpl) handleMyListings(ctx context.Context, userID, chatID int64) {
	listings, err := c.ListingRepo.GetByOwner(ctx, userID)
	if err != nil {
		c.Logger.Error("Failed to get own listings", "user_id", userID, "error", err)
		c.Telegram.SendMessage(chatID, "Couldn't fetch your listings right now. Please try again.")
		return
	}

	if len(listings) == 0 {
		c.Telegram.SendMessage(chatID, "You have no active listings. Use /sell to create one.")
		return
	}

	for _, l := range listings {
		data, _ := json.Marshal(callbackData{Action: actionDeactivate, ID: l.ID})
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑 Deactivate", string(data)),
			),
		)
		card := renderCard(l, false)
		var err error
		if len(l.Photos) > 0 {
			_, err = c.Telegram.SendPhotoWithKeyboard(chatID, l.Photos[0], card, keyboard)
		} else {
			_, err = c.Telegram.SendMessageWithKeyboard(chatID, card, keyboard)
		}
		if err != nil {
			c.Logger.Error("Failed to send own listing card", "listing_id", l.ID, "error", err)
		}
	}
}

func (c *CommandImpl) handleFavorites(ctx context.Context, userID, chatID int64) {
	listings, err := c.Discovery.Favorites(ctx, userID)
	if err != nil {
		c.Logger.Error("Failed to get favorites", "user_id", userID, "error", err)
		c.Telegram.SendMessage(chatID, "Couldn't fetch your favorites right now. Please try again.")
		return
	}

	if len(listings) == 0 {
		c.Telegram.SendMessage(chatID, "You haven't saved anything yet. Use /browse and tap ❤️ on listings you like.")
		return
	}

	for _, l := range listings {
		c.sendListingCard(chatID, l, browseKeyboard(l.ID, true))
	}
}
