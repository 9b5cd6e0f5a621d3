// core/model/select.go
package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownModel reports a model-name lookup failure. Distinct from any
// numerical condition: selection errors are caller mistakes.
var ErrUnknownModel = errors.New("unknown model")

// constructors maps short model names to builders returning the interface.
var constructors = map[string]func(Config) Model{
	"basic":   func(cfg Config) Model { return NewBasic(cfg) },
	"repeats": func(cfg Config) Model { return NewRepeats(cfg) },
}

// Select resolves a model constructor by short name, accepting any
// unambiguous prefix ("b", "rep", ...).
func Select(name string) (func(Config) Model, error) {
	if c, ok := constructors[name]; ok {
		return c, nil
	}
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	var found func(Config) Model
	for _, n := range names {
		if len(name) > 0 && len(name) <= len(n) && n[:len(name)] == name {
			if found != nil {
				return nil, fmt.Errorf("%w: ambiguous prefix %q", ErrUnknownModel, name)
			}
			found = constructors[n]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownModel, name, names)
	}
	return found, nil
}
