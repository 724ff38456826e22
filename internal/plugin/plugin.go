// Package plugin defines the collector interface for ocitally.
package plugin

import (
	"context"
	"fmt"

	"github.com/yairfalse/ocitally/internal/tenancy"
	"github.com/yairfalse/ocitally/pkg/report"
)

// Scope is what a collector sweeps during one run.
type Scope struct {
	Run     report.Run
	Index   *tenancy.Index
	Regions []tenancy.Region // regions to sweep; a subset of Index.Regions()
}

// Collector produces one or more report families.
type Collector interface {
	// Name returns the collector identifier (e.g., "compute", "limit").
	Name() string

	// Families lists the report families this collector fills.
	Families() []string

	// Collect sweeps the scope and returns one collection per family.
	// Any provider error aborts the collection.
	Collect(ctx context.Context, scope Scope) ([]*report.Collection, error)
}

// Registry holds collectors in registration order. It is created per run.
type Registry struct {
	collectors []Collector
	byName     map[string]Collector
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Collector)}
}

// Register adds a collector. Names must be unique.
func (r *Registry) Register(c Collector) error {
	if _, ok := r.byName[c.Name()]; ok {
		return fmt.Errorf("collector %q already registered", c.Name())
	}
	r.byName[c.Name()] = c
	r.collectors = append(r.collectors, c)
	return nil
}

// MustRegister is Register for wiring code where a duplicate is a bug.
func (r *Registry) MustRegister(cs ...Collector) *Registry {
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// All returns every collector in registration order.
func (r *Registry) All() []Collector {
	out := make([]Collector, len(r.collectors))
	copy(out, r.collectors)
	return out
}

// Names returns collector names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.collectors))
	for _, c := range r.collectors {
		names = append(names, c.Name())
	}
	return names
}
