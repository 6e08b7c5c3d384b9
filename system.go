package tecs

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// System is the interface implemented by per-tick logic.
// Update is called once each time the system's group runs.
type System interface {
	Update(w *World)
}

// Initializer is implemented by systems that need setup, typically to
// build their queries. Init runs once at registration.
type Initializer interface {
	Init(w *World) error
}

// ChangeTracker is implemented by systems that consume query diffs. The
// returned queries have their changes cleared after every Update.
type ChangeTracker interface {
	TrackedQueries() []*Query
}

// DestroySweep destroys entities carrying the destroy tag. It is installed
// first in the destroy group when deferred destruction is enabled.
type DestroySweep struct{}

// Update implements System.
func (DestroySweep) Update(w *World) {
	w.FlushDestroyed()
}

// RegisterSystem appends s to group, running its Init first.
func (w *World) RegisterSystem(group string, s System) error {
	if s == nil {
		return eris.Wrapf(ErrInvalidValue, "nil system in group %q", group)
	}
	if in, ok := s.(Initializer); ok {
		if err := in.Init(w); err != nil {
			return eris.Wrapf(err, "init system in group %q", group)
		}
	}
	w.systems[group] = append(w.systems[group], s)
	return nil
}

// RunSystems runs every system in group in registration order. The world
// is reindexed before each system so it observes all earlier mutations.
func (w *World) RunSystems(group string) error {
	systems, ok := w.systems[group]
	if !ok {
		return eris.Wrapf(ErrUnknownGroup, "run %q", group)
	}
	for _, s := range systems {
		w.Reindex()
		s.Update(w)
		if ct, ok := s.(ChangeTracker); ok {
			for _, q := range ct.TrackedQueries() {
				q.ClearChanges()
			}
		}
	}
	w.Reindex()
	w.log.Debug("tecs: ran systems",
		zap.String("group", group),
		zap.Int("systems", len(systems)),
		zap.Uint64("tick", w.tick))
	return nil
}

// Groups returns the number of systems per registered group.
func (w *World) Groups() map[string]int {
	out := make(map[string]int, len(w.systems))
	for g, s := range w.systems {
		out[g] = len(s)
	}
	return out
}
