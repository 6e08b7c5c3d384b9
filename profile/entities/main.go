// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/oriumgames/tecs"
	"github.com/pkg/profile"
)

func main() {
	rounds := 20
	iters := 200
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		w, err := tecs.NewBuilder().
			Config(tecs.Config{CleanupPools: true, EntityPoolSize: numEntities, ComponentPoolSize: numEntities}).
			Type("Health", tecs.TypeSpec{Fields: []tecs.FieldSpec{tecs.Field("hp", 100)}}).
			Type("Inventory", tecs.TypeSpec{Fields: []tecs.FieldSpec{tecs.RefSetField("items")}}).
			Init()
		if err != nil {
			panic(err)
		}

		for range iters {
			owners := make([]*tecs.Entity, 0, numEntities)
			for range numEntities {
				e, err := w.CreateEntity(tecs.EntityDefinition{
					Components: map[string]tecs.ComponentList{
						"Health":    {{"hp": 50}},
						"Inventory": {{}},
					},
				})
				if err != nil {
					panic(err)
				}
				owners = append(owners, e)
			}
			for i := 1; i < len(owners); i++ {
				owners[i-1].Component("Inventory").RefSet("items").Add(owners[i])
			}
			for _, e := range owners {
				e.Destroy()
			}
			w.Tick()
		}
	}
}
