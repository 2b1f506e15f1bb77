package commandimpl

import (
	"context"
	"errors"
	"runtime/debug"

	"github.com/bazarbot/bazar-telegram-bot/internal/workflow"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/panjf2000/ants/v2"
)

const helpMessage = `👋 <b>Welcome to the Bazar bot!</b>

Sell things and find deals right here in the chat.

<b>SELLING:</b>
/sell - Create a listing step by step.
/cancel - Abandon the listing you're creating.
/mylistings - Manage your listings.

<b>BUYING:</b>
/browse - Show a random listing from other users.
/favorites - Listings you've saved.

Type /help at any time to see this guide.`

const updateWorkers = 32

func (c *CommandImpl) HandleCommand(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := c.Telegram.GetUpdatesChan(u)
	c.Logger.Info("Command handler started, listening for updates.")

	pool, err := ants.NewPool(updateWorkers, ants.WithPreAlloc(true))
	if err != nil {
		return err
	}
	defer pool.Release()

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Command handler shutting down.")
			c.Telegram.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				c.Logger.Warn("Telegram updates channel closed unexpectedly.")
				return errors.New("telegram updates channel closed")
			}

			userID, chatID, ok := identify(update)
			if !ok {
				continue
			}

			submitErr := pool.Submit(func() {
				defer func() {
					if r := recover(); r != nil {
						c.Logger.Error("Panic recovered while processing an update", "panic", r, "stack", string(debug.Stack()))
					}
				}()

				// Per-user serialization: workflow and history mutations for
				// one user must never interleave.
				c.withUserLock(userID, func() {
					c.processUpdate(ctx, update, userID, chatID)
				})
			})
			if submitErr != nil {
				c.Logger.Error("Failed to submit update to worker pool", "error", submitErr)
			}
		}
	}
}

// identify extracts the acting user and chat from an update.
func identify(update tgbotapi.Update) (userID int64, chatID int64, ok bool) {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.From.ID, update.CallbackQuery.Message.Chat.ID, true
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, update.Message.Chat.ID, true
	default:
		return 0, 0, false
	}
}

func (c *CommandImpl) processUpdate(ctx context.Context, update tgbotapi.Update, userID, chatID int64) {
	// Callbacks are metered too: the Next button is the cheapest way to
	// hammer the discovery engine.
	if !c.Limiter.Allow(userID) {
		c.Telegram.SendMessage(chatID, "You're going a bit fast. Give it a second and try again 🙏")
		return
	}

	if update.CallbackQuery != nil {
		c.handleCallback(ctx, update.CallbackQuery, userID, chatID)
		return
	}

	msg := update.Message

	if msg.IsCommand() {
		if err := c.processCommand(ctx, update, userID, chatID); err != nil {
			c.Logger.Error("Error processing command", "command", msg.Command(), "error", err)
		}
		return
	}

	// Free text and photos belong to the creation workflow, if one is active.
	if c.Workflow.Active(userID) {
		input := workflow.Input{Text: msg.Text}
		if photoID := largestPhotoID(msg); photoID != "" {
			input.PhotoID = photoID
		}
		reply := c.Workflow.HandleInput(ctx, userID, input)
		c.sendReply(userID, chatID, reply)
		return
	}

	c.Telegram.SendMessage(chatID, "I didn't catch that. Type /help to see what I can do.")
}

func (c *CommandImpl) processCommand(ctx context.Context, update tgbotapi.Update, userID, chatID int64) error {
	switch update.Message.Command() {
	case "start", "help":
		_, err := c.Telegram.SendMessage(chatID, helpMessage)
		return err
	case "sell":
		c.handleSell(ctx, userID, chatID)
		return nil
	case "cancel":
		c.handleCancel(ctx, userID, chatID)
		return nil
	case "browse":
		c.handleBrowse(ctx, userID, chatID)
		return nil
	case "mylistings":
		c.handleMyListings(ctx, userID, chatID)
		return nil
	case "favorites":
		c.handleFavorites(ctx, userID, chatID)
		return nil
	default:
		_, err := c.Telegram.SendMessage(chatID, "Unknown command. Type /help to see the list of available commands.")
		return err
	}
}

// largestPhotoID returns the file ID of the highest-resolution photo size.
func largestPhotoID(msg *tgbotapi.Message) string {
	if len(msg.Photo) == 0 {
		return ""
	}
	return msg.Photo[len(msg.Photo)-1].FileID
}
