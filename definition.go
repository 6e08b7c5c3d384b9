package tecs

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// EntityDefinition is the plain form of an entity accepted by CreateEntity
// and produced by Entity.GetObject. Components maps a type name, or a
// component key whose entries carry a "type" field, to one or more value
// sets.
type EntityDefinition struct {
	ID         string                   `toml:"id,omitempty" yaml:"id,omitempty"`
	Tags       []string                 `toml:"tags,omitempty" yaml:"tags,omitempty"`
	Components map[string]ComponentList `toml:"components,omitempty" yaml:"components,omitempty"`
}

// ComponentList holds the value sets of one definition entry. In files an
// entry may be written as a single mapping or as a sequence of mappings.
type ComponentList []Values

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *ComponentList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.MappingNode:
		var v Values
		if err := n.Decode(&v); err != nil {
			return err
		}
		*l = ComponentList{v}
	case yaml.SequenceNode:
		var vs []Values
		if err := n.Decode(&vs); err != nil {
			return err
		}
		*l = vs
	default:
		return eris.Wrapf(ErrInvalidValue, "line %d: component entry must be a mapping or a sequence", n.Line)
	}
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (l *ComponentList) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case map[string]any:
		*l = ComponentList{Values(v)}
	case []map[string]any:
		out := make(ComponentList, len(v))
		for i, m := range v {
			out[i] = Values(m)
		}
		*l = out
	case []any:
		out := make(ComponentList, 0, len(v))
		for _, x := range v {
			m, ok := x.(map[string]any)
			if !ok {
				return eris.Wrapf(ErrInvalidValue, "component entry holds %T", x)
			}
			out = append(out, Values(m))
		}
		*l = out
	default:
		return eris.Wrapf(ErrInvalidValue, "component entry holds %T", data)
	}
	return nil
}

// Definition file formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

type definitionFile struct {
	Entities []EntityDefinition `toml:"entities" yaml:"entities"`
}

// DecodeDefinitions parses a definition document. The document holds an
// "entities" list of definitions.
func DecodeDefinitions(data []byte, format string) ([]EntityDefinition, error) {
	var f definitionFile
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatTOML:
		err = toml.Unmarshal(data, &f)
	default:
		return nil, eris.Wrapf(ErrInvalidValue, "definition format %q", format)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s definitions", format)
	}
	return f.Entities, nil
}

// EncodeDefinitions renders defs in the given format.
func EncodeDefinitions(defs []EntityDefinition, format string) ([]byte, error) {
	f := definitionFile{Entities: defs}
	switch format {
	case FormatYAML:
		out, err := yaml.Marshal(&f)
		if err != nil {
			return nil, eris.Wrap(err, "encode yaml definitions")
		}
		return out, nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(&f); err != nil {
			return nil, eris.Wrap(err, "encode toml definitions")
		}
		return buf.Bytes(), nil
	default:
		return nil, eris.Wrapf(ErrInvalidValue, "definition format %q", format)
	}
}

// LoadDefinitions reads a definition file, picking the format from the
// extension.
func LoadDefinitions(path string) ([]EntityDefinition, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read definitions %s", path)
	}
	return DecodeDefinitions(data, format)
}

func formatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", eris.Wrapf(ErrInvalidValue, "%s: unsupported format", path)
	}
}
