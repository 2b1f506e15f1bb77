package commandimpl

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bazarbot/bazar-telegram-bot/internal/discovery"
	"github.com/bazarbot/bazar-telegram-bot/internal/workflow"
	apperrors "github.com/bazarbot/bazar-telegram-bot/pkg/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// callbackData is the payload carried by inline keyboard buttons.
type callbackData struct {
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
}

func (c *CommandImpl) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, userID, chatID int64) {
	// Acknowledge the callback to remove the loading animation on the button.
	_, _ = c.Telegram.Request(tgbotapi.NewCallback(cb.ID, ""))

	var data callbackData
	if err := json.Unmarshal([]byte(cb.Data), &data); err != nil {
		c.Logger.Error("Failed to unmarshal callback data", "error", err)
		return
	}

	switch data.Action {
	case workflow.ActionConfirm:
		c.handleConfirm(ctx, cb, userID, chatID)
	case workflow.ActionCancel:
		c.handleCancelCallback(ctx, cb, userID, chatID)
	case actionNext:
		c.handleBrowse(ctx, userID, chatID)
	case actionFavorite:
		c.handleFavoriteCallback(ctx, cb, userID, chatID, data.ID)
	case actionUnfavorite:
		c.handleUnfavoriteCallback(ctx, cb, userID, chatID, data.ID)
	case actionDeactivate:
		c.handleDeactivateCallback(ctx, cb, userID, chatID, data.ID)
	default:
		c.Logger.Warn("Unknown callback action", "action", data.Action)
	}
}

func (c *CommandImpl) handleConfirm(ctx context.Context, cb *tgbotapi.CallbackQuery, userID, chatID int64) {
	_, reply, err := c.Workflow.Confirm(ctx, userID)
	if err != nil {
		c.Logger.Error("Failed to persist confirmed listing", "user_id", userID, "error", err)
		// The session is still in its confirm step; the preview keeps its
		// buttons so the user can tap Publish again.
		c.Telegram.SendMessage(chatID, reply.Text)
		return
	}
	// Replace the confirm prompt with the outcome; this also drops its buttons.
	if editErr := c.Telegram.EditMessageText(chatID, cb.Message.MessageID, reply.Text); editErr != nil {
		c.Telegram.SendMessage(chatID, reply.Text)
	}
}

func (c *CommandImpl) handleCancelCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, userID, chatID int64) {
	reply, stale := c.Workflow.Cancel(ctx, userID)
	if stale != nil && stale.MessageID != cb.Message.MessageID {
		c.Telegram.DeleteMessage(stale.ChatID, stale.MessageID)
	}
	if editErr := c.Telegram.EditMessageText(chatID, cb.Message.MessageID, reply.Text); editErr != nil {
		c.Telegram.SendMessage(chatID, reply.Text)
	}
}

func (c *CommandImpl) handleFavoriteCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, userID, chatID int64, listingID string) {
	err := c.Discovery.AddFavorite(ctx, userID, listingID)
	switch {
	case err == nil:
		c.editCardKeyboard(chatID, cb.Message.MessageID, listingID, true)
	case errors.Is(err, discovery.ErrOwnListing):
		c.Telegram.SendMessage(chatID, "You can't save your own listing.")
	case apperrors.IsNotFound(err):
		c.Telegram.SendMessage(chatID, "This listing is no longer available.")
	default:
		c.Logger.Error("Failed to add favorite", "user_id", userID, "listing_id", listingID, "error", err)
		c.Telegram.SendMessage(chatID, "Couldn't save this listing right now. Please try again.")
	}
}

func (c *CommandImpl) handleUnfavoriteCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, userID, chatID int64, listingID string) {
	if err := c.Discovery.RemoveFavorite(ctx, userID, listingID); err != nil {
		c.Logger.Error("Failed to remove favorite", "user_id", userID, "listing_id", listingID, "error", err)
		c.Telegram.SendMessage(chatID, "Couldn't update your favorites right now. Please try again.")
		return
	}
	c.editCardKeyboard(chatID, cb.Message.MessageID, listingID, false)
}

func (c *CommandImpl) handleDeactivateCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, userID, chatID int64, listingID string) {
	err := c.ListingRepo.Deactivate(ctx, listingID, userID)
	switch {
	case err == nil:
		if editErr := c.Telegram.EditMessageText(chatID, cb.Message.MessageID, "🗑 Listing deactivated."); editErr != nil {
			c.Telegram.SendMessage(chatID, "🗑 Listing deactivated.")
		}
	case apperrors.IsUnauthorized(err):
		c.Telegram.SendMessage(chatID, "You can only deactivate your own listings.")
	case apperrors.IsNotFound(err):
		c.Telegram.SendMessage(chatID, "This listing no longer exists.")
	default:
		c.Logger.Error("Failed to deactivate listing", "user_id", userID, "listing_id", listingID, "error", err)
		c.Telegram.SendMessage(chatID, "Couldn't deactivate the listing right now. Please try again.")
	}
}

// editCardKeyboard swaps the save/unsave button on an already-sent card.
func (c *CommandImpl) editCardKeyboard(chatID int64, messageID int, listingID string, favorited bool) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, browseKeyboard(listingID, favorited))
	if _, err := c.Telegram.Request(edit); err != nil {
		c.Logger.Warn("Failed to update card keyboard", "listing_id", listingID, "error", err)
	}
}
