package workflow

import (
	"context"

	"github.com/bazarbot/bazar-telegram-bot/internal/domain"
	"github.com/bazarbot/bazar-telegram-bot/internal/session"
)

// Action tokens attached to the confirm prompt buttons.
const (
	ActionConfirm = "confirm"
	ActionCancel  = "cancel"
)

// Input is one inbound event routed to an active creation session.
type Input struct {
	Text    string
	PhotoID string // media reference of an attached photo, empty if none
}

// Button is a chosen-action button attached to an outbound reply.
type Button struct {
	Label  string
	Action string
}

// Reply is what the workflow wants sent back to the user.
type Reply struct {
	Text    string
	Photos  []string
	Buttons []Button
	// ShowPreview is set when the reply is the confirm prompt; the caller
	// must record the sent message as the session's pending preview.
	ShowPreview bool
}

// Client drives a user through the listing creation steps:
// title -> description -> photos -> price -> confirm.
type Client interface {
	// Active reports whether the user has an in-progress session.
	Active(userID int64) bool

	// Start opens a fresh session, replacing any existing one. The returned
	// preview, if non-nil, is a stale confirm prompt to delete best-effort.
	Start(ctx context.Context, userID int64) (Reply, *session.Preview)

	// HandleInput advances the session with a text or photo event. Invalid
	// input re-prompts without a state change.
	HandleInput(ctx context.Context, userID int64, input Input) Reply

	// Confirm persists the draft as a listing and ends the session.
	Confirm(ctx context.Context, userID int64) (*domain.Listing, Reply, error)

	// Cancel discards the session without persisting anything.
	Cancel(ctx context.Context, userID int64) (Reply, *session.Preview)
}
