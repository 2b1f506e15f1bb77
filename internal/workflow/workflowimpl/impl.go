package workflowimpl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bazarbot/bazar-telegram-bot/internal/domain"
	"github.com/bazarbot/bazar-telegram-bot/internal/repositories/listing"
	"github.com/bazarbot/bazar-telegram-bot/internal/session"
	"github.com/bazarbot/bazar-telegram-bot/internal/workflow"
	"github.com/bazarbot/bazar-telegram-bot/pkg/formatter"
	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

const (
	promptTitle       = "Step 1 of 4: Send me the title of your listing."
	promptDescription = "Step 2 of 4: Now send a short description."
	promptPhotos      = "Step 3 of 4: Send up to 3 photos, or type \"skip\" to continue without photos."
	promptPrice       = "Step 4 of 4: Send the price as a whole number, e.g. 15000."

	noticePriceInvalid = "That doesn't look like a valid price. Send a whole number greater than zero, digits only."
	noticePhotosMax    = "You've already attached the maximum of 3 photos."
	noticePhotosOnly   = "Send a photo, or type \"skip\" to continue without more photos."
	noticeNoSession    = "There's nothing in progress. Use /sell to create a listing."
)

// skipTokens are the accepted ways of declining photos. Exact case-insensitive
// match only; the set covers misspellings seen in live chats.
var skipTokens = map[string]struct{}{
	"skip":  {},
	"skp":   {},
	"skipp": {},
	"sip":   {},
	"pass":  {},
	"none":  {},
}

type Opts struct {
	fx.In

	Sessions    *session.Manager
	ListingRepo listing.Repository
	Logger      logger.Logger
}

type WorkflowImpl struct {
	Sessions    *session.Manager
	ListingRepo listing.Repository
	Logger      logger.Logger
}

func New(opts Opts) *WorkflowImpl {
	return &WorkflowImpl{
		Sessions:    opts.Sessions,
		ListingRepo: opts.ListingRepo,
		Logger:      opts.Logger.WithComponent("Workflow"),
	}
}

var _ workflow.Client = (*WorkflowImpl)(nil)

func (w *WorkflowImpl) Active(userID int64) bool {
	return w.Sessions.Get(userID) != nil
}

func (w *WorkflowImpl) Start(_ context.Context, userID int64) (workflow.Reply, *session.Preview) {
	_, stale := w.Sessions.Start(userID)
	w.Logger.Info("Creation session started", "user_id", userID)
	return workflow.Reply{Text: "Let's create a listing. " + promptTitle}, stale
}

func (w *WorkflowImpl) HandleInput(_ context.Context, userID int64, input workflow.Input) workflow.Reply {
	s := w.Sessions.Get(userID)
	if s == nil {
		return workflow.Reply{Text: noticeNoSession}
	}

	switch s.State {
	case session.AwaitingTitle:
		return w.handleTitle(s, input)
	case session.AwaitingDescription:
		return w.handleDescription(s, input)
	case session.AwaitingPhotos:
		return w.handlePhotos(s, input)
	case session.AwaitingPrice:
		return w.handlePrice(s, input)
	case session.Confirming:
		return workflow.Reply{Text: "Use the buttons above to confirm or cancel your listing."}
	default:
		w.Logger.Error("Session in unknown state", "user_id", userID, "state", s.State.String())
		return workflow.Reply{Text: noticeNoSession}
	}
}

func (w *WorkflowImpl) handleTitle(s *session.Session, input workflow.Input) workflow.Reply {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return workflow.Reply{Text: "The title can't be empty. " + promptTitle}
	}
	s.Draft.Title = text
	s.State = session.AwaitingDescription
	return workflow.Reply{Text: promptDescription}
}

func (w *WorkflowImpl) handleDescription(s *session.Session, input workflow.Input) workflow.Reply {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return workflow.Reply{Text: "The description can't be empty. " + promptDescription}
	}
	s.Draft.Description = text
	s.State = session.AwaitingPhotos
	return workflow.Reply{Text: promptPhotos}
}

func (w *WorkflowImpl) handlePhotos(s *session.Session, input workflow.Input) workflow.Reply {
	if input.PhotoID != "" {
		if len(s.Draft.Photos) >= domain.MaxListingPhotos {
			// Should be unreachable given the transition below, but a photo
			// can still arrive while the prompt is in flight.
			return workflow.Reply{Text: noticePhotosMax}
		}
		s.Draft.Photos = append(s.Draft.Photos, input.PhotoID)
		if len(s.Draft.Photos) == domain.MaxListingPhotos {
			s.State = session.AwaitingPrice
			return workflow.Reply{Text: "All 3 photos saved. " + promptPrice}
		}
		return workflow.Reply{Text: fmt.Sprintf(
			"Photo %d of %d saved. Send another, or type \"skip\".",
			len(s.Draft.Photos), domain.MaxListingPhotos,
		)}
	}

	if isSkip(input.Text) {
		s.State = session.AwaitingPrice
		return workflow.Reply{Text: promptPrice}
	}

	return workflow.Reply{Text: noticePhotosOnly}
}

func (w *WorkflowImpl) handlePrice(s *session.Session, input workflow.Input) workflow.Reply {
	price, ok := parsePrice(input.Text)
	if !ok {
		return workflow.Reply{Text: noticePriceInvalid}
	}
	s.Draft.Price = price
	s.State = session.Confirming
	return workflow.Reply{
		Text:        renderPreview(s.Draft),
		Photos:      s.Draft.Photos,
		ShowPreview: true,
		Buttons: []workflow.Button{
			{Label: "✅ Publish", Action: workflow.ActionConfirm},
			{Label: "❌ Cancel", Action: workflow.ActionCancel},
		},
	}
}

func (w *WorkflowImpl) Confirm(ctx context.Context, userID int64) (*domain.Listing, workflow.Reply, error) {
	s := w.Sessions.Get(userID)
	if s == nil || s.State != session.Confirming {
		return nil, workflow.Reply{Text: noticeNoSession}, nil
	}

	if s.Draft.Title == "" || s.Draft.Description == "" || s.Draft.Price <= 0 {
		w.Logger.Error("Confirming session has incomplete draft", "user_id", userID)
		w.Sessions.End(userID)
		return nil, workflow.Reply{Text: "Something went wrong with your draft. Please start over with /sell."}, nil
	}

	l, err := w.ListingRepo.Create(ctx, s.Draft)
	if err != nil {
		// The session survives so the user can retry confirming.
		return nil, workflow.Reply{Text: "Couldn't save your listing right now. Please try again."}, err
	}

	w.Sessions.End(userID)
	w.Logger.Info("Listing created", "user_id", userID, "listing_id", l.ID)
	return l, workflow.Reply{Text: "🎉 Your listing is live! Others can now find it with /browse."}, nil
}

func (w *WorkflowImpl) Cancel(_ context.Context, userID int64) (workflow.Reply, *session.Preview) {
	preview := w.Sessions.End(userID)
	return workflow.Reply{Text: "Listing creation cancelled. Nothing was saved."}, preview
}

func isSkip(text string) bool {
	_, ok := skipTokens[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// parsePrice accepts only unsigned decimal digits representing a value
// greater than zero that fits in an int64.
func parsePrice(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func renderPreview(draft domain.ListingDraft) string {
	var sb strings.Builder
	sb.WriteString("Here's your listing:\n\n")
	sb.WriteString(fmt.Sprintf("<b>%s</b>\n", formatter.EscapeHTML(draft.Title)))
	sb.WriteString(fmt.Sprintf("%s\n\n", formatter.EscapeHTML(draft.Description)))
	sb.WriteString(fmt.Sprintf("💰 <b>%s</b>\n", formatter.FormatNumber(draft.Price)))
	if len(draft.Photos) == 0 {
		sb.WriteString("📷 No photos\n")
	} else {
		sb.WriteString(fmt.Sprintf("📷 %d photo(s)\n", len(draft.Photos)))
	}
	sb.WriteString("\nPublish it?")
	return sb.String()
}
