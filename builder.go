package tecs

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Builder configures a World before initialization.
// Use NewBuilder() to create a builder and chain configuration methods.
type Builder struct {
	cfg     Config
	logger  *zap.Logger
	types   []typeRegistration
	systems []systemRegistration
}

type typeRegistration struct {
	name string
	spec TypeSpec
	tag  bool
}

type systemRegistration struct {
	group  string
	system System
}

// NewBuilder creates a builder starting from DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// Config replaces the world configuration.
func (b *Builder) Config(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// Logger sets the world logger.
func (b *Builder) Logger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// Type registers a component type.
func (b *Builder) Type(name string, spec TypeSpec) *Builder {
	b.types = append(b.types, typeRegistration{name: name, spec: spec})
	return b
}

// Tag registers a tag.
func (b *Builder) Tag(name string) *Builder {
	b.types = append(b.types, typeRegistration{name: name, tag: true})
	return b
}

// System adds a system to a group. Systems run in the order they were
// added, after any built-in system of the same group.
func (b *Builder) System(group string, s System) *Builder {
	b.systems = append(b.systems, systemRegistration{group, s})
	return b
}

// Init creates the world, registers types and tags in declaration order,
// then registers systems. Systems are registered last so their Init can
// build queries over every declared type.
func (b *Builder) Init() (*World, error) {
	var opts []Option
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	w, err := NewWorld(b.cfg, opts...)
	if err != nil {
		return nil, err
	}

	for _, reg := range b.types {
		if reg.tag {
			_, err = w.RegisterTag(reg.name)
		} else {
			_, err = w.RegisterType(reg.name, reg.spec)
		}
		if err != nil {
			return nil, eris.Wrapf(err, "builder: register %q", reg.name)
		}
	}

	for _, reg := range b.systems {
		if err := w.RegisterSystem(reg.group, reg.system); err != nil {
			return nil, eris.Wrap(err, "builder")
		}
	}
	return w, nil
}
