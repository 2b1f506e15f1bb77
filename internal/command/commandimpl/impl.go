package commandimpl

import (
	"sync"

	"github.com/bazarbot/bazar-telegram-bot/internal/command"
	"github.com/bazarbot/bazar-telegram-bot/internal/discovery"
	"github.com/bazarbot/bazar-telegram-bot/internal/ratelimit"
	"github.com/bazarbot/bazar-telegram-bot/internal/repositories/listing"
	"github.com/bazarbot/bazar-telegram-bot/internal/session"
	"github.com/bazarbot/bazar-telegram-bot/internal/telegram"
	"github.com/bazarbot/bazar-telegram-bot/internal/workflow"
	"github.com/bazarbot/bazar-telegram-bot/pkg/config"
	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Telegram    telegram.Client
	Workflow    workflow.Client
	Discovery   discovery.Client
	ListingRepo listing.Repository
	Sessions    *session.Manager
	Limiter     ratelimit.Limiter
	Logger      logger.Logger
	Config      *config.Config
}

type CommandImpl struct {
	Telegram    telegram.Client
	Workflow    workflow.Client
	Discovery   discovery.Client
	ListingRepo listing.Repository
	Sessions    *session.Manager
	Limiter     ratelimit.Limiter
	Logger      logger.Logger
	Config      *config.Config

	// userLocks serializes event processing per user: a user's next event
	// waits until their previous one finishes, while different users
	// proceed concurrently.
	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

func New(opts Opts) *CommandImpl {
	return &CommandImpl{
		Telegram:    opts.Telegram,
		Workflow:    opts.Workflow,
		Discovery:   opts.Discovery,
		ListingRepo: opts.ListingRepo,
		Sessions:    opts.Sessions,
		Limiter:     opts.Limiter,
		Logger:      opts.Logger.WithComponent("Command"),
		Config:      opts.Config,
		userLocks:   make(map[int64]*sync.Mutex),
	}
}

var _ command.Client = (*CommandImpl)(nil)

func (c *CommandImpl) lockUser(userID int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		c.userLocks[userID] = l
	}
	return l
}

// withUserLock runs fn while holding the user's serialization lock.
func (c *CommandImpl) withUserLock(userID int64, fn func()) {
	l := c.lockUser(userID)
	l.Lock()
	defer l.Unlock()
	fn()
}
