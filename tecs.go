// Package tecs provides a tag-and-bitmask Entity Component System core.
//
// Every component type and tag registered with a world receives one bit.
// An entity's mask is the OR of the bits it carries, and queries are
// compiled into all/any/not masks matched against it. Persisted queries are
// kept current incrementally: structural changes mark entities dirty and
// Reindex replays only those entities.
//
// # Quick Start
//
//	w, err := tecs.NewBuilder().
//	    Type("Health", tecs.TypeSpec{Fields: []tecs.FieldSpec{tecs.Field("hp", 100)}}).
//	    Type("Inventory", tecs.TypeSpec{Fields: []tecs.FieldSpec{tecs.RefSetField("items")}}).
//	    Tag("Hidden").
//	    Init()
//
//	visible, _ := w.CreateQuery(tecs.QueryConfig{
//	    All:     []string{"Health"},
//	    Not:     []string{"Hidden"},
//	    Persist: true,
//	})
//
//	e, _ := w.CreateEntity(tecs.EntityDefinition{
//	    Components: map[string]tecs.ComponentList{"Health": {{"hp": 50}}},
//	})
//	w.Reindex()
//	for _, e := range visible.Execute() { ... }
//
// # Components
//
// Components are pooled records with a flat field table fixed at
// registration. Fields are plain values or entity references:
//
//	tecs.Field("hp", 100)             plain value with default
//	tecs.FactoryField("log", newLog)  plain value built per instance
//	tecs.RefField("target")           single entity reference
//	tecs.RefSetField("items")         set of entity references
//	tecs.RefMapField("slots")         entity references by key
//
// SpecOf derives the same table from a struct prototype.
//
// # References
//
// Reference fields hold entity ids, never pointers. The world records every
// reference edge; destroying an entity clears every field that pointed at
// it.
//
// # Systems
//
// Systems are grouped by name and run with RunSystems. The world is
// reindexed before each system, so a system always sees the mutations of the
// systems before it.
package tecs
