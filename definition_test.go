package tecs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oriumgames/tecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlDefinitions = `
entities:
  - id: door
    tags: [Tile]
    components:
      Position: {x: 1, y: 2}
      Item:
        - name: key
        - name: map
  - tags: [Hidden]
    components:
      mainHand:
        type: Item
        name: axe
      Inventory:
        items: [door]
`

const tomlDefinitions = `
[[entities]]
id = "door"
tags = ["Tile"]

  [entities.components.Position]
  x = 1
  y = 2

  [[entities.components.Item]]
  name = "key"

  [[entities.components.Item]]
  name = "map"
`

func TestDecodeYAMLDefinitions(t *testing.T) {
	defs, err := tecs.DecodeDefinitions([]byte(yamlDefinitions), tecs.FormatYAML)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "door", defs[0].ID)
	assert.Equal(t, tecs.ComponentList{{"x": 1, "y": 2}}, defs[0].Components["Position"])
	assert.Len(t, defs[0].Components["Item"], 2)

	w := newTestWorld(t)
	ents, err := w.CreateEntities(defs)
	require.NoError(t, err)
	require.Len(t, ents, 2)

	door, holder := ents[0], ents[1]
	assert.Equal(t, []string{"Tile"}, door.Tags())
	assert.Len(t, door.Components("Item"), 2)
	assert.Equal(t, "axe", holder.ComponentByKey("mainHand").Get("name"))
	assert.True(t, holder.Component("Inventory").RefSet("items").Has(door))

	door.Destroy()
	assert.Equal(t, 0, holder.Component("Inventory").RefSet("items").Len())
}

func TestDecodeTOMLDefinitions(t *testing.T) {
	defs, err := tecs.DecodeDefinitions([]byte(tomlDefinitions), tecs.FormatTOML)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, []string{"Tile"}, defs[0].Tags)
	assert.Equal(t, tecs.ComponentList{{"x": int64(1), "y": int64(2)}}, defs[0].Components["Position"])
	assert.Equal(t, tecs.ComponentList{{"name": "key"}, {"name": "map"}}, defs[0].Components["Item"])

	w := newTestWorld(t)
	e, err := w.CreateEntity(defs[0])
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.Component("Position").Get("y"))
}

func TestDecodeDefinitionErrors(t *testing.T) {
	_, err := tecs.DecodeDefinitions([]byte(yamlDefinitions), "json")
	assert.True(t, tecs.IsConfigurationError(err))

	_, err = tecs.DecodeDefinitions([]byte("entities:\n  - components:\n      Position: 3\n"), tecs.FormatYAML)
	assert.Error(t, err)

	_, err = tecs.LoadDefinitions("prefabs.json")
	assert.True(t, tecs.IsConfigurationError(err))
}

func TestLoadDefinitions(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "prefabs.yml")
	tomlPath := filepath.Join(dir, "prefabs.toml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlDefinitions), 0o600))
	require.NoError(t, os.WriteFile(tomlPath, []byte(tomlDefinitions), 0o600))

	defs, err := tecs.LoadDefinitions(yamlPath)
	require.NoError(t, err)
	assert.Len(t, defs, 2)

	defs, err = tecs.LoadDefinitions(tomlPath)
	require.NoError(t, err)
	assert.Len(t, defs, 1)

	_, err = tecs.LoadDefinitions(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestEncodeDefinitionsRoundTrip(t *testing.T) {
	src := newTestWorld(t)
	defs, err := tecs.DecodeDefinitions([]byte(yamlDefinitions), tecs.FormatYAML)
	require.NoError(t, err)
	ents, err := src.CreateEntities(defs)
	require.NoError(t, err)

	var out []tecs.EntityDefinition
	for _, e := range ents {
		out = append(out, e.GetObject(true))
	}
	data, err := tecs.EncodeDefinitions(out, tecs.FormatYAML)
	require.NoError(t, err)

	back, err := tecs.DecodeDefinitions(data, tecs.FormatYAML)
	require.NoError(t, err)

	dst := newTestWorld(t)
	clones, err := dst.CreateEntities(back)
	require.NoError(t, err)
	require.Len(t, clones, len(ents))
	for i := range ents {
		assert.Equal(t, ents[i].GetObject(true), clones[i].GetObject(true))
	}
}
