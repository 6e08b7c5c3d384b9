// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

package main

import (
	"fmt"

	"github.com/oriumgames/tecs"
	"github.com/pkg/profile"
)

func main() {
	rounds := 20
	iters := 500
	entities := 1000
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		w := must(tecs.NewBuilder().
			Type("Position", tecs.TypeSpec{Fields: []tecs.FieldSpec{tecs.Field("x", 0.0), tecs.Field("y", 0.0)}}).
			Type("Velocity", tecs.TypeSpec{Fields: []tecs.FieldSpec{tecs.Field("dx", 1.0), tecs.Field("dy", 1.0)}}).
			Tag("Frozen").
			Init())

		moving := must(w.CreateQuery(tecs.QueryConfig{
			All:        []string{"Position", "Velocity"},
			Not:        []string{"Frozen"},
			Persist:    true,
			TrackAdded: true,
		}))

		for i := range numEntities {
			e := w.NewEntity()
			must(e.AddComponent("Position", nil))
			if i%2 == 0 {
				must(e.AddComponent("Velocity", nil))
			}
		}

		for it := range iters {
			w.Reindex()
			for _, e := range moving.Execute() {
				pos := e.Component("Position")
				vel := e.Component("Velocity")
				_ = pos.Set("x", pos.Get("x").(float64)+vel.Get("dx").(float64))
				_ = pos.Set("y", pos.Get("y").(float64)+vel.Get("dy").(float64))
				if it%50 == 0 {
					_ = e.AddTag("Frozen")
				}
			}
			moving.ClearChanges()
			w.Tick()
		}
		fmt.Println(w.Stats())
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
