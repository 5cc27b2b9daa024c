package mib

import (
	"fmt"
)

// Registry is the catalogue of adapter kinds. It is built once at start up
// and never changes afterwards.
type Registry struct {
	kinds []Kind
}

// NewRegistry returns a registry of kinds in the given order. A kind without
// a name, tags or constructor, or a duplicate name, is a programming error
// and panics.
func NewRegistry(kinds ...Kind) *Registry {
	seen := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		switch {
		case k.Name == "":
			panic("mib: kind without a name")
		case len(k.Tags) == 0:
			panic(fmt.Sprintf("mib: kind %s declares no tags", k.Name))
		case k.New == nil:
			panic(fmt.Sprintf("mib: kind %s has no constructor", k.Name))
		case seen[k.Name]:
			panic(fmt.Sprintf("mib: kind %s registered twice", k.Name))
		}
		seen[k.Name] = true
	}
	return &Registry{kinds: append([]Kind(nil), kinds...)}
}

// Kinds returns every registered kind.
func (r *Registry) Kinds() []Kind {
	return append([]Kind(nil), r.kinds...)
}

// ForTag returns the kinds declaring tag.
func (r *Registry) ForTag(tag Tag) []Kind {
	var kinds []Kind
	for _, k := range r.kinds {
		if k.Has(tag) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Names returns the registered MIB names.
func (r *Registry) Names() []string {
	names := make([]string, len(r.kinds))
	for i, k := range r.kinds {
		names[i] = k.Name
	}
	return names
}

// Len returns the number of kinds.
func (r *Registry) Len() int { return len(r.kinds) }
