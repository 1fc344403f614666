// Package registry maps stable string identifiers to step, generator and
// exit-condition factories. Pipeline definitions reference these ids, so
// assembly from configuration stays fully separate from execution.
package registry

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/sepset/internal/generator"
	"github.com/roach88/sepset/internal/pipeline"
)

// Params carries the configuration of one factory invocation, decoded from
// a pipeline definition.
type Params map[string]any

// StepFactory builds a leaf pipeline step from parameters.
type StepFactory func(p Params) (pipeline.Step, error)

// GeneratorFactory builds a candidate generator from parameters. Wrapping
// generators receive their inner generator under the "inner" key.
type GeneratorFactory func(p Params) (generator.Generator, error)

// ExitFactory builds a loop exit condition from parameters.
type ExitFactory func(p Params) (pipeline.ExitCondition, error)

// Registry holds the factories of one application instance.
type Registry struct {
	steps      map[string]StepFactory
	generators map[string]GeneratorFactory
	exits      map[string]ExitFactory
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		steps:      make(map[string]StepFactory),
		generators: make(map[string]GeneratorFactory),
		exits:      make(map[string]ExitFactory),
	}
}

// RegisterStep adds a step factory. Empty ids, nil factories and duplicate
// registrations are configuration errors.
func (r *Registry) RegisterStep(id string, f StepFactory) error {
	if err := checkRegistration(id, f == nil); err != nil {
		return err
	}
	if _, ok := r.steps[id]; ok {
		return fmt.Errorf("step %q is already registered", id)
	}
	r.steps[id] = f
	return nil
}

// RegisterGenerator adds a generator factory.
func (r *Registry) RegisterGenerator(id string, f GeneratorFactory) error {
	if err := checkRegistration(id, f == nil); err != nil {
		return err
	}
	if _, ok := r.generators[id]; ok {
		return fmt.Errorf("generator %q is already registered", id)
	}
	r.generators[id] = f
	return nil
}

// RegisterExit adds an exit-condition factory.
func (r *Registry) RegisterExit(id string, f ExitFactory) error {
	if err := checkRegistration(id, f == nil); err != nil {
		return err
	}
	if _, ok := r.exits[id]; ok {
		return fmt.Errorf("exit condition %q is already registered", id)
	}
	r.exits[id] = f
	return nil
}

func checkRegistration(id string, nilFactory bool) error {
	if id == "" {
		return fmt.Errorf("registration id must not be empty")
	}
	if nilFactory {
		return fmt.Errorf("factory for %q must not be nil", id)
	}
	return nil
}

// BuildStep invokes the factory registered under id.
func (r *Registry) BuildStep(id string, p Params) (pipeline.Step, error) {
	f, ok := r.steps[id]
	if !ok {
		return nil, fmt.Errorf("unknown step %q (have %v)", id, r.Steps())
	}
	return f(p)
}

// BuildGenerator invokes the factory registered under id.
func (r *Registry) BuildGenerator(id string, p Params) (generator.Generator, error) {
	f, ok := r.generators[id]
	if !ok {
		return nil, fmt.Errorf("unknown generator %q (have %v)", id, r.Generators())
	}
	return f(p)
}

// BuildExit invokes the factory registered under id.
func (r *Registry) BuildExit(id string, p Params) (pipeline.ExitCondition, error) {
	f, ok := r.exits[id]
	if !ok {
		return nil, fmt.Errorf("unknown exit condition %q (have %v)", id, r.Exits())
	}
	return f(p)
}

// HasStep reports whether a step id resolves without building it.
func (r *Registry) HasStep(id string) bool {
	_, ok := r.steps[id]
	return ok
}

// HasGenerator reports whether a generator id resolves.
func (r *Registry) HasGenerator(id string) bool {
	_, ok := r.generators[id]
	return ok
}

// HasExit reports whether an exit-condition id resolves.
func (r *Registry) HasExit(id string) bool {
	_, ok := r.exits[id]
	return ok
}

// Steps lists the registered step ids in sorted order.
func (r *Registry) Steps() []string { return sortedKeys(r.steps) }

// Generators lists the registered generator ids in sorted order.
func (r *Registry) Generators() []string { return sortedKeys(r.generators) }

// Exits lists the registered exit-condition ids in sorted order.
func (r *Registry) Exits() []string { return sortedKeys(r.exits) }

func sortedKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}
