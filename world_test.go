package tecs_test

import (
	"testing"

	"github.com/oriumgames/tecs"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// countSystem records how many entities its query held on each update.
type countSystem struct {
	all   []string
	query *tecs.Query
	seen  []int
	added []int
}

func (s *countSystem) Init(w *tecs.World) error {
	q, err := w.CreateQuery(tecs.QueryConfig{All: s.all, Persist: true, TrackAdded: true})
	if err != nil {
		return err
	}
	s.query = q
	return nil
}

func (s *countSystem) Update(*tecs.World) {
	s.seen = append(s.seen, s.query.Len())
	s.added = append(s.added, len(s.query.Added()))
}

func (s *countSystem) TrackedQueries() []*tecs.Query {
	return []*tecs.Query{s.query}
}

// spawnSystem creates one Tile entity per update.
type spawnSystem struct{}

func (spawnSystem) Update(w *tecs.World) {
	if _, err := w.CreateEntity(tecs.EntityDefinition{Tags: []string{"Tile"}}); err != nil {
		panic(err)
	}
}

type failingInit struct{}

func (failingInit) Init(*tecs.World) error { return eris.New("boom") }
func (failingInit) Update(*tecs.World)     {}

func TestDeferredDestroy(t *testing.T) {
	counter := &countSystem{all: []string{"Tile"}}
	w, err := tecs.NewBuilder().
		Config(tecs.Config{DeferredDestroy: true}).
		Tag("Tile").
		System("destroy", counter).
		Init()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"destroy": 2}, w.Groups())

	e, err := w.CreateEntity(tecs.EntityDefinition{Tags: []string{"Tile"}})
	require.NoError(t, err)
	keep, err := w.CreateEntity(tecs.EntityDefinition{Tags: []string{"Tile"}})
	require.NoError(t, err)

	e.Destroy()
	e.Destroy()
	assert.True(t, e.HasTag(tecs.DefaultDestroyTag))
	assert.False(t, e.Destroyed())
	assert.Equal(t, 2, w.EntityCount())

	require.NoError(t, w.RunSystems("destroy"))
	assert.Equal(t, 1, w.EntityCount())
	assert.Equal(t, []int{1}, counter.seen)
	assert.Same(t, keep, w.Entity(keep.ID()))
	assert.Equal(t, 0, w.FlushDestroyed())
}

func TestFlushDestroyedWithoutDeferral(t *testing.T) {
	w := newTestWorld(t)
	assert.Equal(t, 0, w.FlushDestroyed())
	assert.False(t, w.Registry().IsTag(tecs.DefaultDestroyTag))
}

func TestRunSystemsReindexesBetweenSystems(t *testing.T) {
	counter := &countSystem{all: []string{"Tile"}}
	w, err := tecs.NewBuilder().
		Tag("Tile").
		System("update", spawnSystem{}).
		System("update", counter).
		Init()
	require.NoError(t, err)

	require.NoError(t, w.RunSystems("update"))
	require.NoError(t, w.RunSystems("update"))
	assert.Equal(t, []int{1, 2}, counter.seen)
	assert.Equal(t, []int{1, 1}, counter.added)
	assert.Empty(t, counter.query.Added())

	err = w.RunSystems("render")
	assert.True(t, eris.Is(err, tecs.ErrUnknownGroup))
	assert.True(t, tecs.IsConfigurationError(err))
}

func TestRegisterSystemErrors(t *testing.T) {
	w := newTestWorld(t)
	assert.Error(t, w.RegisterSystem("update", failingInit{}))
	assert.True(t, eris.Is(w.RegisterSystem("update", nil), tecs.ErrInvalidValue))
	assert.Empty(t, w.Groups())

	_, err := tecs.NewBuilder().Tag("A").Tag("A").Init()
	assert.True(t, eris.Is(err, tecs.ErrDuplicateName))

	_, err = tecs.NewBuilder().System("update", &countSystem{all: []string{"Missing"}}).Init()
	assert.True(t, eris.Is(err, tecs.ErrUnknownType))
}

func TestTickCleansPools(t *testing.T) {
	w := newConfiguredWorld(t, tecs.Config{CleanupPools: true})
	ents := make([]*tecs.Entity, 100)
	for i := range ents {
		ents[i] = w.NewEntity()
	}
	for _, e := range ents {
		e.Destroy()
	}
	assert.Equal(t, 100, w.Stats().PooledEntities)

	assert.Equal(t, uint64(1), w.Tick())
	assert.Equal(t, 75, w.Stats().PooledEntities)
	assert.Equal(t, uint64(1), w.CurrentTick())
}

func TestPoolPresizing(t *testing.T) {
	w, err := tecs.NewWorld(tecs.Config{CleanupPools: true, EntityPoolSize: 16, ComponentPoolSize: 4})
	require.NoError(t, err)
	_, err = w.RegisterType("A", tecs.TypeSpec{})
	require.NoError(t, err)
	_, err = w.RegisterType("B", tecs.TypeSpec{PoolSize: 10})
	require.NoError(t, err)

	s := w.Stats()
	assert.Equal(t, 16, s.PooledEntities)
	assert.Equal(t, 14, s.PooledComponents)

	// Pooled capacity is never trimmed below the presized target.
	w.Tick()
	assert.Equal(t, 16, w.Stats().PooledEntities)
}

func TestWorldStatsAndLookup(t *testing.T) {
	w := newTestWorld(t)
	a, err := w.CreateEntity(tecs.EntityDefinition{ID: "a", Components: map[string]tecs.ComponentList{
		"Position": {{"x": 1}},
	}})
	require.NoError(t, err)
	b, err := w.CreateEntity(tecs.EntityDefinition{ID: "b"})
	require.NoError(t, err)
	_, err = b.AddComponent("Follow", tecs.Values{"target": a})
	require.NoError(t, err)

	s := w.Stats()
	assert.Equal(t, 2, s.Entities)
	assert.Equal(t, 2, s.Components)
	assert.Equal(t, 2, s.Dirty)
	assert.Equal(t, 1, s.Referenced)
	assert.Equal(t, []*tecs.Entity{a, b}, w.Entities())

	w.Reindex()
	assert.Equal(t, 0, w.Stats().Dirty)

	created, err := w.CreateEntities([]tecs.EntityDefinition{{ID: "c"}, {ID: "a"}, {ID: "d"}})
	assert.True(t, eris.Is(err, tecs.ErrDuplicateEntity))
	assert.Len(t, created, 1)
	assert.Equal(t, 3, w.EntityCount())
}

func TestWorldLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := newTestWorld(t, tecs.WithLogger(zap.New(core)))

	e := w.NewEntity()
	_, err := e.AddComponent("Position", tecs.Values{"z": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("tecs: dropping unknown field").Len())
	assert.Equal(t, 2, logs.FilterMessage("tecs: registered tag").Len())

	_, err = w.CreateQuery(tecs.QueryConfig{Not: []string{"Hidden"}})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("tecs: query has no required types, scanning all entities").Len())
}

func TestWithRegistry(t *testing.T) {
	r := tecs.NewRegistry()
	_, err := r.RegisterTag(tecs.DefaultDestroyTag)
	require.NoError(t, err)

	w, err := tecs.NewWorld(tecs.Config{DeferredDestroy: true}, tecs.WithRegistry(r))
	require.NoError(t, err)
	assert.Same(t, r, w.Registry())
	assert.Equal(t, 1, r.Len())

	r2 := tecs.NewRegistry()
	_, err = r2.RegisterType(tecs.DefaultDestroyTag, tecs.TypeSpec{})
	require.NoError(t, err)
	_, err = tecs.NewWorld(tecs.Config{DeferredDestroy: true}, tecs.WithRegistry(r2))
	assert.True(t, eris.Is(err, tecs.ErrDuplicateName))
}

func TestLifecycleHooks(t *testing.T) {
	w := newTestWorld(t)
	var events []string
	_, err := w.RegisterType("Hooked", tecs.TypeSpec{
		Fields:  []tecs.FieldSpec{tecs.Field("n", 1)},
		Init:    func(c *tecs.Component) { events = append(events, "init:"+string(c.Entity().ID())) },
		Destroy: func(c *tecs.Component) { events = append(events, "destroy:"+string(c.Entity().ID())) },
	})
	require.NoError(t, err)

	e, err := w.CreateEntity(tecs.EntityDefinition{ID: "h", Components: map[string]tecs.ComponentList{"Hooked": {{}}}})
	require.NoError(t, err)
	e.Destroy()
	assert.Equal(t, []string{"init:h", "destroy:h"}, events)
}
