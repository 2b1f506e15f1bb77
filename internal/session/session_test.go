package session

import (
	"testing"
	"time"

	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	return New(clock, 30*time.Minute, logger.New(logger.Opts{})), clock
}

func TestStartAndGet(t *testing.T) {
	m, _ := newTestManager(t)

	s, prev := m.Start(1)

	assert.Nil(t, prev)
	assert.Equal(t, AwaitingTitle, s.State)
	assert.Equal(t, int64(1), s.Draft.OwnerID)
	assert.Same(t, s, m.Get(1))
	assert.Nil(t, m.Get(2))
}

func TestStart_ReplacesAndReturnsPreview(t *testing.T) {
	m, _ := newTestManager(t)
	m.Start(1)
	m.Get(1).Draft.Title = "old"
	m.SetPreview(1, 10, 100)

	s, prev := m.Start(1)

	require.NotNil(t, prev)
	assert.Equal(t, int64(10), prev.ChatID)
	assert.Equal(t, 100, prev.MessageID)
	assert.Empty(t, s.Draft.Title)
}

func TestGet_ExpiresIdleSession(t *testing.T) {
	m, clock := newTestManager(t)
	m.Start(1)

	clock.Advance(29 * time.Minute)
	require.NotNil(t, m.Get(1), "session should survive under the idle threshold")

	// Get refreshed the activity stamp, so the clock restarts from here.
	clock.Advance(31 * time.Minute)
	assert.Nil(t, m.Get(1))
}

func TestGet_TouchKeepsSessionAlive(t *testing.T) {
	m, clock := newTestManager(t)
	m.Start(1)

	for i := 0; i < 4; i++ {
		clock.Advance(20 * time.Minute)
		require.NotNil(t, m.Get(1))
	}
}

func TestEnd_ReturnsPreview(t *testing.T) {
	m, _ := newTestManager(t)
	m.Start(1)
	m.SetPreview(1, 10, 55)

	prev := m.End(1)

	require.NotNil(t, prev)
	assert.Equal(t, 55, prev.MessageID)
	assert.Nil(t, m.Get(1))
	assert.Nil(t, m.End(1))
}

func TestSetPreview_ReturnsPrevious(t *testing.T) {
	m, _ := newTestManager(t)
	m.Start(1)

	assert.Nil(t, m.SetPreview(1, 10, 1))

	prev := m.SetPreview(1, 10, 2)
	require.NotNil(t, prev)
	assert.Equal(t, 1, prev.MessageID)

	assert.Nil(t, m.SetPreview(2, 10, 3), "no session, nothing recorded")
}

func TestSweep(t *testing.T) {
	m, clock := newTestManager(t)
	m.Start(1)
	m.Start(2)

	clock.Advance(20 * time.Minute)
	m.Get(2) // keep user 2 fresh
	clock.Advance(15 * time.Minute)

	assert.Equal(t, 1, m.Sweep())
	assert.Nil(t, m.Get(1))
	assert.NotNil(t, m.Get(2))
	assert.Equal(t, 0, m.Sweep())
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "awaiting_title", AwaitingTitle.String())
	assert.Equal(t, "confirming", Confirming.String())
	assert.Equal(t, "unknown(99)", Step(99).String())
}
