package tecs_test

import (
	"testing"

	"github.com/oriumgames/tecs"
	"github.com/stretchr/testify/assert"
)

func TestReferenceTrackerCounts(t *testing.T) {
	rt := tecs.NewReferenceTracker()

	rt.AddRef("b", "a", "c1", "Inventory", "items", "")
	rt.AddRef("b", "a", "c1", "Inventory", "items", "")
	rt.AddRef("b", "x", "c2", "Target", "target", "")
	assert.Equal(t, 3, rt.Count("b"))
	assert.Equal(t, 1, rt.Len())

	rt.DeleteRef("b", "a", "c1", "Inventory", "items", "")
	assert.Equal(t, 2, rt.Count("b"))

	edges := rt.Edges("b")
	if assert.Len(t, edges, 2) {
		assert.Equal(t, tecs.RefEdge{Source: "a", Component: "c1", Type: "Inventory", Field: "items", Count: 1}, edges[0])
		assert.Equal(t, "target", edges[1].Field)
	}

	rt.DeleteRef("b", "a", "c1", "Inventory", "items", "")
	rt.DeleteRef("b", "x", "c2", "Target", "target", "")
	assert.Equal(t, 0, rt.Count("b"))
	assert.Equal(t, 0, rt.Len())
}

func TestReferenceTrackerSources(t *testing.T) {
	rt := tecs.NewReferenceTracker()
	rt.AddRef("t", "b", "c1", "Inventory", "items", "")
	rt.AddRef("t", "a", "c2", "Inventory", "items", "")
	rt.AddRef("t", "a", "c3", "Slots", "slots", "head")
	rt.AddRef("", "a", "c4", "Slots", "slots", "hand")

	assert.Equal(t, []tecs.EntityID{"a", "b"}, rt.Sources("t", "Inventory"))
	assert.Equal(t, []tecs.EntityID{"a"}, rt.Sources("t", "Slots"))
	assert.Equal(t, []tecs.EntityID{"a", "b"}, rt.Sources("t", ""))
	assert.Equal(t, 1, rt.Len())

	rt.Forget("t")
	assert.Empty(t, rt.Sources("t", ""))
	assert.Empty(t, rt.Edges("t"))
}
