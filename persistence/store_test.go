package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jorgeai/leadflow/types"
)

func openStores(t *testing.T) map[string]ContactStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	gs, err := NewGormStore(db)
	require.NoError(t, err)
	return map[string]ContactStore{
		"memory": NewMemoryStore(),
		"sqlite": gs,
	}
}

func sampleContact(id string) *types.Contact {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := types.NewContact(id, now)
	c.OwningAgent = types.AgentBuyer
	c.Temperature = types.TemperatureWarm
	c.Turns = []types.ConversationTurn{
		{ID: "t-1", ContactID: id, Direction: types.DirectionInbound, Text: "hi", Timestamp: now},
	}
	c.HandoffHistory = []types.HandoffEvent{
		{ID: "h-1", ContactID: id, FromAgent: types.AgentLead, ToAgent: types.AgentBuyer, Confidence: 0.8, Timestamp: now},
	}
	return c
}

func TestContactStore_RoundTrip(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := sampleContact("c-1")
			require.NoError(t, store.Put(ctx, want))

			got, err := store.Get(ctx, "c-1")
			require.NoError(t, err)
			assert.Equal(t, want.OwningAgent, got.OwningAgent)
			assert.Equal(t, want.Temperature, got.Temperature)
			require.Len(t, got.Turns, 1)
			assert.Equal(t, "hi", got.Turns[0].Text)
			require.Len(t, got.HandoffHistory, 1)
			assert.Equal(t, types.AgentBuyer, got.HandoffHistory[0].ToAgent)
		})
	}
}

func TestContactStore_GetMissing(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "nope")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestContactStore_PutOverwrites(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := sampleContact("c-1")
			require.NoError(t, store.Put(ctx, c))

			c.OwningAgent = types.AgentSeller
			c.Turns = append(c.Turns, types.ConversationTurn{ID: "t-2", Text: "more"})
			require.NoError(t, store.Put(ctx, c))

			got, err := store.Get(ctx, "c-1")
			require.NoError(t, err)
			assert.Equal(t, types.AgentSeller, got.OwningAgent)
			assert.Len(t, got.Turns, 2)

			n, err := store.Count(ctx)
			require.NoError(t, err)
			assert.EqualValues(t, 1, n)
		})
	}
}

func TestContactStore_Delete(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, sampleContact("c-1")))
			require.NoError(t, store.Delete(ctx, "c-1"))
			_, err := store.Get(ctx, "c-1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestContactStore_InvalidInput(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := store.Get(ctx, "")
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.ErrorIs(t, store.Put(ctx, nil), ErrInvalidInput)
			assert.ErrorIs(t, store.Put(ctx, &types.Contact{}), ErrInvalidInput)
		})
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, sampleContact("c-1")))

	a, err := store.Get(ctx, "c-1")
	require.NoError(t, err)
	a.Turns[0].Text = "mutated"

	b, err := store.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "hi", b.Turns[0].Text)
}

func TestMemoryStore_Closed(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.Ping(context.Background()), ErrStoreClosed)
	assert.ErrorIs(t, store.Put(context.Background(), sampleContact("c-1")), ErrStoreClosed)
}

func TestGormStore_CountByAgent(t *testing.T) {
	stores := openStores(t)
	gs := stores["sqlite"].(*GormStore)
	ctx := context.Background()

	a := sampleContact("c-1")
	b := sampleContact("c-2")
	b.OwningAgent = types.AgentSeller
	c := sampleContact("c-3")
	require.NoError(t, gs.Put(ctx, a))
	require.NoError(t, gs.Put(ctx, b))
	require.NoError(t, gs.Put(ctx, c))

	counts, err := gs.CountByAgent(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[types.AgentBuyer])
	assert.EqualValues(t, 1, counts[types.AgentSeller])
}

func TestOpen_Factory(t *testing.T) {
	s, err := Open(Config{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &GormStore{}, s)

	_, err = Open(Config{Driver: "cassandra"})
	assert.Error(t, err)
}
