package commandimpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bazarbot/bazar-telegram-bot/internal/discovery"
	"github.com/bazarbot/bazar-telegram-bot/internal/domain"
	"github.com/bazarbot/bazar-telegram-bot/pkg/formatter"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	actionNext       = "next"
	actionFavorite   = "fav"
	actionUnfavorite = "unfav"
	actionDeactivate = "deact"
)

func (c *CommandImpl) handleBrowse(ctx context.Context, userID, chatID int64) {
	res, err := c.Discovery.Next(ctx, userID)
	if err != nil {
		if errors.Is(err, discovery.ErrNoListings) {
			c.Telegram.SendMessage(chatID, "No listings from other users right now. Check back later, or /sell something yourself!")
			return
		}
		c.Logger.Error("Discovery failed", "viewer_id", userID, "error", err)
		c.Telegram.SendMessage(chatID, "Couldn't fetch a listing right now. Please try again.")
		return
	}

	if res.Reshuffled {
		c.Telegram.SendMessage(chatID, "You've seen everything there is — starting over 🔄")
	}

	c.sendListingCard(chatID, res.Listing, browseKeyboard(res.Listing.ID, res.Favorited))
}

func (c *CommandImpl) sendListingCard(chatID int64, l *domain.Listing, keyboard tgbotapi.InlineKeyboardMarkup) {
	card := renderCard(l, true)
	var err error
	if len(l.Photos) > 0 {
		_, err = c.Telegram.SendPhotoWithKeyboard(chatID, l.Photos[0], card, keyboard)
	} else {
		_, err = c.Telegram.SendMessageWithKeyboard(chatID, card, keyboard)
	}
	if err != nil {
		c.Logger.Error("Failed to send listing card", "listing_id", l.ID, "error", err)
	}
}

// renderCard formats a listing for display. The contact hint links the
// seller's Telegram profile directly; there is no in-bot chat.
func renderCard(l *domain.Listing, withContact bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏷 <b>%s</b>\n", formatter.EscapeHTML(l.Title)))
	sb.WriteString(fmt.Sprintf("%s\n\n", formatter.EscapeHTML(l.Description)))
	sb.WriteString(fmt.Sprintf("💰 <b>%s</b>\n", formatter.FormatNumber(l.Price)))
	if len(l.Photos) > 1 {
		sb.WriteString(fmt.Sprintf("📷 %d photos\n", len(l.Photos)))
	}
	sb.WriteString(fmt.Sprintf("📅 %s\n", l.CreatedAt.Format("Jan 2, 2006")))
	if withContact {
		sb.WriteString(fmt.Sprintf("\n📞 <a href=\"tg://user?id=%d\">Contact the seller</a>", l.OwnerID))
	}
	return sb.String()
}

func browseKeyboard(listingID string, favorited bool) tgbotapi.InlineKeyboardMarkup {
	favLabel, favAction := "❤️ Save", actionFavorite
	if favorited {
		favLabel, favAction = "💔 Unsave", actionUnfavorite
	}

	favData, _ := json.Marshal(callbackData{Action: favAction, ID: listingID})
	nextData, _ := json.Marshal(callbackData{Action: actionNext})

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(favLabel, string(favData)),
			tgbotapi.NewInlineKeyboardButtonData("➡️ Next", string(nextData)),
		),
	)
}
