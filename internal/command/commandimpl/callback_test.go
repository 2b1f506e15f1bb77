package commandimpl

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bazarbot/bazar-telegram-bot/internal/domain"
	"github.com/bazarbot/bazar-telegram-bot/internal/ratelimit"
	mock_listing "github.com/bazarbot/bazar-telegram-bot/internal/repositories/listing/mocks"
	"github.com/bazarbot/bazar-telegram-bot/internal/session"
	mock_telegram "github.com/bazarbot/bazar-telegram-bot/internal/telegram/mocks"
	"github.com/bazarbot/bazar-telegram-bot/internal/workflow"
	"github.com/bazarbot/bazar-telegram-bot/internal/workflow/workflowimpl"
	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	cbUser    int64 = 42
	cbChat    int64 = 4242
	previewID       = 10
)

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(int64) bool { return true }

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(int64) bool { return false }

func newTestCommand(t *testing.T, limiter ratelimit.Limiter) (*CommandImpl, *mock_telegram.MockClient, *mock_listing.MockRepository, *session.Manager) {
	t.Helper()
	ctrl := gomock.NewController(t)
	tg := mock_telegram.NewMockClient(ctrl)
	repo := mock_listing.NewMockRepository(ctrl)
	log := logger.New(logger.Opts{})
	sessions := session.New(clockwork.NewFakeClock(), 30*time.Minute, log)
	wf := workflowimpl.New(workflowimpl.Opts{
		Sessions:    sessions,
		ListingRepo: repo,
		Logger:      log,
	})
	c := New(Opts{
		Telegram:    tg,
		Workflow:    wf,
		ListingRepo: repo,
		Sessions:    sessions,
		Limiter:     limiter,
		Logger:      log,
	})
	return c, tg, repo, sessions
}

// confirmingSession drives the workflow to the confirm step with a preview
// message already on the books.
func confirmingSession(t *testing.T, c *CommandImpl, sessions *session.Manager) {
	t.Helper()
	ctx := context.Background()
	c.Workflow.Start(ctx, cbUser)
	c.Workflow.HandleInput(ctx, cbUser, workflow.Input{Text: "Bike"})
	c.Workflow.HandleInput(ctx, cbUser, workflow.Input{Text: "Good condition"})
	c.Workflow.HandleInput(ctx, cbUser, workflow.Input{Text: "skip"})
	c.Workflow.HandleInput(ctx, cbUser, workflow.Input{Text: "500"})
	sessions.SetPreview(cbUser, cbChat, previewID)
}

func confirmCallback() *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb1",
		Data:    `{"action":"confirm"}`,
		Message: &tgbotapi.Message{MessageID: previewID, Chat: &tgbotapi.Chat{ID: cbChat}},
	}
}

func textContaining(substr string) gomock.Matcher {
	return gomock.Cond(func(text string) bool {
		return strings.Contains(text, substr)
	})
}

func TestHandleConfirm_SuccessReplacesPreview(t *testing.T) {
	c, tg, repo, sessions := newTestCommand(t, allowAllLimiter{})
	confirmingSession(t, c, sessions)

	tg.EXPECT().Request(gomock.Any()).Return(&tgbotapi.APIResponse{Ok: true}, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&domain.Listing{ID: "l1", OwnerID: cbUser, IsActive: true}, nil)
	tg.EXPECT().EditMessageText(cbChat, previewID, textContaining("live")).Return(nil)

	c.handleCallback(context.Background(), confirmCallback(), cbUser, cbChat)

	assert.Nil(t, sessions.Get(cbUser))
}

func TestHandleConfirm_StorageErrorKeepsPreviewButtons(t *testing.T) {
	c, tg, repo, sessions := newTestCommand(t, allowAllLimiter{})
	confirmingSession(t, c, sessions)

	tg.EXPECT().Request(gomock.Any()).Return(&tgbotapi.APIResponse{Ok: true}, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
	// The failure notice must go out as a fresh message. Editing the preview
	// would strip its confirm/cancel keyboard while the session still waits
	// for a button press.
	tg.EXPECT().SendMessage(cbChat, textContaining("try again")).Return(0, nil)

	c.handleCallback(context.Background(), confirmCallback(), cbUser, cbChat)

	s := sessions.Get(cbUser)
	require.NotNil(t, s)
	assert.Equal(t, session.Confirming, s.State)
	require.NotNil(t, s.Preview)
	assert.Equal(t, previewID, s.Preview.MessageID)
}

func TestProcessUpdate_RateLimitsCallbacks(t *testing.T) {
	c, tg, _, _ := newTestCommand(t, denyAllLimiter{})

	// No callback ack, no discovery call: the limiter short-circuits first.
	tg.EXPECT().SendMessage(cbChat, textContaining("fast")).Return(0, nil)

	update := tgbotapi.Update{CallbackQuery: confirmCallback()}
	c.processUpdate(context.Background(), update, cbUser, cbChat)
}

func TestProcessUpdate_RateLimitsMessages(t *testing.T) {
	c, tg, _, _ := newTestCommand(t, denyAllLimiter{})

	tg.EXPECT().SendMessage(cbChat, textContaining("fast")).Return(0, nil)

	update := tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "/browse",
		From: &tgbotapi.User{ID: cbUser},
		Chat: &tgbotapi.Chat{ID: cbChat},
	}}
	c.processUpdate(context.Background(), update, cbUser, cbChat)
}
