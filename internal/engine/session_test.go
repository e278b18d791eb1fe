package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/probably-a-wizard/internal/catalog"
	"github.com/talgya/probably-a-wizard/internal/economy"
	"github.com/talgya/probably-a-wizard/internal/metrics"
	"github.com/talgya/probably-a-wizard/internal/persistence"
	"github.com/talgya/probably-a-wizard/internal/tuning"
)

func openSession(t *testing.T, saves Saves, now time.Time) *Session {
	t.Helper()
	s := Open(context.Background(), saves, Options{
		Tuning:  tuning.Default(),
		Metrics: metrics.New(),
		Now:     func() time.Time { return now },
	})
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func memorySaves(t *testing.T) *persistence.Saves {
	t.Helper()
	saves, err := persistence.NewSaves(persistence.NewMemoryStore())
	require.NoError(t, err)
	return saves
}

func TestSessionColdStart(t *testing.T) {
	s := openSession(t, memorySaves(t), time.Now())
	st := s.Status()
	assert.NotEmpty(t, st.SessionID)
	assert.Equal(t, 4, st.Unlocked)
	assert.Equal(t, 0, st.Built)
	assert.Empty(t, s.TakeNotifications())
}

func TestSessionPersistsActions(t *testing.T) {
	ctx := context.Background()
	saves := memorySaves(t)
	now := time.UnixMilli(1_700_000_000_000)

	s := Open(ctx, saves, Options{Now: func() time.Time { return now }})
	res := s.Do("add", func(st *economy.State) economy.Result {
		return st.AddResource(catalog.Berries, 50)
	})
	require.True(t, res.OK)
	require.NoError(t, s.Close(ctx))

	snap, ok := saves.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, float64(50), snap.Inventory["berries"])
	assert.Equal(t, now.UnixMilli(), snap.LastActiveAt)

	res = s.Do("add", func(st *economy.State) economy.Result {
		return st.AddResource(catalog.Berries, 1)
	})
	assert.False(t, res.OK, "closed sessions reject actions")
}

func TestSessionOfflineCatchUp(t *testing.T) {
	ctx := context.Background()
	saves := memorySaves(t)
	now := time.UnixMilli(1_700_000_000_000)

	st := stateWith(t, nil, nil, map[string]string{"food-slot-0": "hunter"})
	require.NoError(t, saves.Save(ctx, st.Snapshot(now.Add(-20000*time.Second))))

	s := openSession(t, saves, now)
	var berries float64
	s.View(func(st *economy.State) { berries = st.Quantity(catalog.Berries) })
	assert.Equal(t, float64(6000), berries)

	notes := s.TakeNotifications()
	require.Len(t, notes, 1)
	require.NotNil(t, notes[0].Offline)
	assert.Equal(t, float64(20000), notes[0].Offline.ElapsedSeconds)
}

func TestShortSessionsKeepFractionalOutput(t *testing.T) {
	ctx := context.Background()
	saves := memorySaves(t)
	now := time.UnixMilli(1_700_000_000_000)

	st := economy.New()
	require.True(t, st.AssignToSlot("food-slot-0", catalog.Gatherer).OK)
	require.NoError(t, saves.Save(ctx, st.Snapshot(now)))

	// Each open credits 0.2 pps over a 4 s gap, then closes straight away.
	for range 10 {
		now = now.Add(4 * time.Second)
		at := now
		s := Open(ctx, saves, Options{Now: func() time.Time { return at }})
		s.Do("noop", func(st *economy.State) economy.Result { return st.AddResource(catalog.Berries, 0) })
		require.NoError(t, s.Close(ctx))
	}

	snap, ok := saves.Load(ctx)
	require.True(t, ok)
	assert.InDelta(t, 8.0, snap.Inventory["berries"], 1e-9)
}

func TestSessionIgnoresMissingLastActive(t *testing.T) {
	ctx := context.Background()
	saves := memorySaves(t)

	snap := stateWith(t, nil, nil, map[string]string{"food-slot-0": "hunter"}).Snapshot(time.Now())
	snap.LastActiveAt = 0
	require.NoError(t, saves.Save(ctx, snap))

	s := openSession(t, saves, time.UnixMilli(1_700_000_000_000))
	var berries float64
	s.View(func(st *economy.State) { berries = st.Quantity(catalog.Berries) })
	assert.Zero(t, berries)
	assert.Empty(t, s.TakeNotifications())
}

func TestSessionTickRunsProduction(t *testing.T) {
	s := openSession(t, memorySaves(t), time.Now())
	require.True(t, s.Do("assign", func(st *economy.State) economy.Result {
		return st.AssignToSlot("construction-slot-0", catalog.Builder)
	}).OK)

	for range 20 {
		s.Clock().Step()
	}
	snap := s.Snapshot()
	assert.Equal(t, float64(1), snap.Inventory["cool-sticks"])
}

func TestSessionPublishesNotifications(t *testing.T) {
	s := openSession(t, memorySaves(t), time.Now())

	var mu sync.Mutex
	var events []Event
	cancel := s.Subscribe(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})
	defer cancel()

	s.Do("grant", func(st *economy.State) economy.Result {
		st.AddResource(catalog.CoolSticks, 300)
		return st.AddResource(catalog.Berries, 100)
	})
	require.True(t, s.Do("build", func(st *economy.State) economy.Result {
		return st.BuildBuilding(catalog.TreeFort)
	}).OK)

	mu.Lock()
	require.Len(t, events, 1)
	assert.Equal(t, EventNotification, events[0].Kind)
	assert.Equal(t, "Cardboard Boxes", events[0].Notification.Label)
	mu.Unlock()

	// Already pushed notifications are not pushed again on later actions.
	s.Do("noop", func(st *economy.State) economy.Result { return st.AddResource(catalog.Berries, 1) })
	mu.Lock()
	assert.Len(t, events, 1)
	mu.Unlock()
}

func TestSessionCombine(t *testing.T) {
	s := openSession(t, memorySaves(t), time.Now())
	res := s.Combine(catalog.Gatherer, catalog.Builder)
	assert.True(t, res.OK)
	assert.Equal(t, catalog.Fisher, res.Discovered)
	assert.True(t, s.Combine(catalog.Builder, catalog.Gatherer).AlreadyKnown)
}

func TestSessionReset(t *testing.T) {
	ctx := context.Background()
	saves := memorySaves(t)
	s := openSession(t, saves, time.Now())

	s.Do("add", func(st *economy.State) economy.Result { return st.AddResource(catalog.Berries, 10) })
	require.NoError(t, s.Reset(ctx))

	_, ok := saves.Load(ctx)
	assert.False(t, ok)
	assert.Equal(t, float64(0), s.Snapshot().Inventory["berries"])
}

type failingSaves struct{}

func (failingSaves) Load(context.Context) (economy.Snapshot, bool) { return economy.Snapshot{}, false }
func (failingSaves) Save(context.Context, economy.Snapshot) error  { return errors.New("disk full") }
func (failingSaves) Clear(context.Context) error                   { return errors.New("disk full") }

func TestSessionSaveFailuresDoNotRollBack(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, failingSaves{}, Options{})

	res := s.Do("add", func(st *economy.State) economy.Result { return st.AddResource(catalog.Berries, 5) })
	require.True(t, res.OK)
	assert.Equal(t, float64(5), s.Snapshot().Inventory["berries"])

	assert.Error(t, s.Reset(ctx))
	assert.Equal(t, float64(0), s.Snapshot().Inventory["berries"], "reset still applies in memory")
	require.NoError(t, s.Close(ctx))
}
