package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bazarbot/bazar-telegram-bot/internal/domain"
	"github.com/bazarbot/bazar-telegram-bot/pkg/config"
	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

// Step is the state of an in-progress listing creation.
type Step int

const (
	AwaitingTitle Step = iota
	AwaitingDescription
	AwaitingPhotos
	AwaitingPrice
	Confirming
)

func (s Step) String() string {
	switch s {
	case AwaitingTitle:
		return "awaiting_title"
	case AwaitingDescription:
		return "awaiting_description"
	case AwaitingPhotos:
		return "awaiting_photos"
	case AwaitingPrice:
		return "awaiting_price"
	case Confirming:
		return "confirming"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Preview points at the confirm/cancel prompt last sent to the user, so a
// superseded prompt can be deleted. Kept per session, never process-wide.
type Preview struct {
	ChatID    int64
	MessageID int
}

// Session holds the transient per-user creation state. It is not persisted;
// a restart discards all in-progress drafts.
type Session struct {
	UserID       int64
	State        Step
	Draft        domain.ListingDraft
	Preview      *Preview
	LastActivity time.Time
}

// Manager owns all creation sessions, keyed by user id. Map access is
// mutex-guarded; mutation of a session's draft and state is serialized per
// user by the command layer.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	clock    clockwork.Clock
	idle     time.Duration
	logger   logger.Logger
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

func NewManager(opts Opts) *Manager {
	return New(
		clockwork.NewRealClock(),
		time.Duration(opts.Config.Session.IdleMinutes)*time.Minute,
		opts.Logger,
	)
}

func New(clock clockwork.Clock, idle time.Duration, log logger.Logger) *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
		clock:    clock,
		idle:     idle,
		logger:   log.WithComponent("SessionManager"),
	}
}

// Start creates a fresh session for the user, replacing any existing one.
// It returns the new session and the replaced session's pending preview,
// if any, so the caller can delete the stale prompt.
func (m *Manager) Start(userID int64) (*Session, *Preview) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var prev *Preview
	if old, ok := m.sessions[userID]; ok {
		prev = old.Preview
	}

	s := &Session{
		UserID:       userID,
		State:        AwaitingTitle,
		Draft:        domain.ListingDraft{OwnerID: userID},
		LastActivity: m.clock.Now(),
	}
	m.sessions[userID] = s
	return s, prev
}

// Get returns the user's session, refreshing its activity stamp. Sessions
// idle past the threshold are expired lazily here.
func (m *Manager) Get(userID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil
	}
	if m.idle > 0 && m.clock.Since(s.LastActivity) > m.idle {
		delete(m.sessions, userID)
		m.logger.Info("Expired idle session on access", "user_id", userID, "state", s.State.String())
		return nil
	}
	s.LastActivity = m.clock.Now()
	return s
}

// End removes the user's session and returns its pending preview, if any.
func (m *Manager) End(userID int64) *Preview {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil
	}
	delete(m.sessions, userID)
	return s.Preview
}

// SetPreview records the confirm prompt just sent and returns the previous
// one so it can be invalidated.
func (m *Manager) SetPreview(userID int64, chatID int64, messageID int) *Preview {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil
	}
	prev := s.Preview
	s.Preview = &Preview{ChatID: chatID, MessageID: messageID}
	return prev
}

// Sweep removes all sessions idle past the threshold and returns how many
// were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idle <= 0 {
		return 0
	}

	removed := 0
	for userID, s := range m.sessions {
		if m.clock.Since(s.LastActivity) > m.idle {
			delete(m.sessions, userID)
			removed++
		}
	}
	return removed
}

// ScheduleSweep runs Sweep on a fixed interval until ctx is cancelled.
func (m *Manager) ScheduleSweep(ctx context.Context, interval time.Duration) error {
	scheduler, err := gocron.NewScheduler(gocron.WithClock(m.clock))
	if err != nil {
		return fmt.Errorf("failed to create session sweep scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			if removed := m.Sweep(); removed > 0 {
				m.logger.Info("Swept idle sessions", "removed", removed)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		m.logger.Info("Stopping session sweep scheduler")
		if err := scheduler.Shutdown(); err != nil {
			m.logger.Error("Failed to shut down session sweep scheduler", "error", err)
		}
	}()

	return nil
}
