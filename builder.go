package cligen

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// Builder is the declarative identity of a generated command: the struct
// type it binds, the struct type of its parent, and the function that
// builds its Command.
type Builder struct {
	Definition reflect.Type
	Parent     reflect.Type // nil for root commands
	Func       func(b *Builder) *Command

	children   []*Builder
	converters map[reflect.Type]func(string) (any, error)
}

// Children returns the builders whose Parent is this builder's Definition,
// in the order they were given to NewRegistry.
func (b *Builder) Children() []*Builder { return b.children }

// Build creates the command tree rooted at b.
func (b *Builder) Build() *Command {
	return b.Func(b)
}

func (b *Builder) String() string {
	if b.Definition == nil {
		return "<builder>"
	}
	return b.Definition.String()
}

// RegisterConverter makes fn the parser of T for the commands built by b.
func RegisterConverter[T any](b *Builder, fn func(string) (T, error)) {
	if b.converters == nil {
		b.converters = map[reflect.Type]func(string) (any, error){}
	}
	b.converters[TypeOf[T]()] = func(s string) (any, error) {
		v, err := fn(s)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func (b *Builder) converter(t reflect.Type) (func(string) (any, error), bool) {
	if b == nil || b.converters == nil {
		return nil, false
	}
	fn, ok := b.converters[t]
	return fn, ok
}

// ErrNoRoot is returned by Registry.Root when no builder is a root.
var ErrNoRoot = errors.New("no root command")

// Registry composes builders into trees by declared type identity.
type Registry struct {
	builders []*Builder
	byType   map[reflect.Type]*Builder
	roots    []*Builder
}

// NewRegistry links every builder to its parent. Builders may come from
// several packages; the order of builders is the order of children.
func NewRegistry(builders ...*Builder) (*Registry, error) {
	r := &Registry{byType: make(map[reflect.Type]*Builder, len(builders))}
	for i, b := range builders {
		if b == nil || b.Definition == nil || b.Func == nil {
			return nil, fmt.Errorf("builder %d is incomplete", i)
		}
		if _, dup := r.byType[b.Definition]; dup {
			return nil, fmt.Errorf("command %s is registered twice", b.Definition)
		}
		r.byType[b.Definition] = b
		r.builders = append(r.builders, b)
	}

	var errs []error
	for _, b := range r.builders {
		b.children = nil
	}
	for _, b := range r.builders {
		if b.Parent == nil {
			r.roots = append(r.roots, b)
			continue
		}
		parent, ok := r.byType[b.Parent]
		if !ok {
			errs = append(errs, fmt.Errorf("parent %s of command %s is not registered", b.Parent, b.Definition))
			continue
		}
		parent.children = append(parent.children, b)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Roots returns the builders without a parent.
func (r *Registry) Roots() []*Builder { return r.roots }

// Lookup finds the builder of a struct type.
func (r *Registry) Lookup(t reflect.Type) (*Builder, bool) {
	b, ok := r.byType[t]
	return b, ok
}

// Root returns the single root builder.
func (r *Registry) Root() (*Builder, error) {
	switch len(r.roots) {
	case 0:
		return nil, ErrNoRoot
	case 1:
		return r.roots[0], nil
	}
	return nil, fmt.Errorf("%d root commands, want exactly one: %v", len(r.roots), r.roots)
}

// Execute builds the single root command of builders and runs it with args.
func Execute(ctx context.Context, args []string, builders ...*Builder) error {
	r, err := NewRegistry(builders...)
	if err != nil {
		return err
	}
	root, err := r.Root()
	if err != nil {
		return err
	}
	return root.Build().Execute(ctx, args)
}
