package registry

import (
	"github.com/zeusync/introspect/internal/core/fields"
	"github.com/zeusync/introspect/internal/core/ids"
	"github.com/zeusync/introspect/internal/core/property"
)

// PropertyValue is an owned copy of one property at snapshot time.
type PropertyValue struct {
	Name  string
	Value fields.Value
	Flags property.Flags
}

// ObjectSnapshot holds one instance's properties in descriptor order.
type ObjectSnapshot struct {
	ID         ids.EntityID
	Properties []PropertyValue
}

// GetObjectPropertySnapshot copies every property of id. Slots the provider
// left empty carry an invalid Value.
func (r *Registry) GetObjectPropertySnapshot(id ids.EntityID) []PropertyValue {
	g := r.group(id.Type())
	if g.desc.Len() == 0 {
		return nil
	}
	set := r.GetProperties(id)
	out := make([]PropertyValue, g.desc.Len())
	for i, desc := range g.desc.Descriptors {
		out[i] = PropertyValue{Name: desc.Name, Flags: desc.Flags}
		if ref, ok := set.At(property.Index(i)); ok {
			out[i].Value = ref.Value()
		}
	}
	return out
}

// GetFullPropertySnapshot copies every property of every live instance of
// every public type. It visits all providers, instances and properties, so it
// belongs in save and export paths, not in per-tick code.
func (r *Registry) GetFullPropertySnapshot() []ObjectSnapshot {
	var out []ObjectSnapshot
	r.eachPublicInstance(func(id ids.EntityID) {
		out = append(out, ObjectSnapshot{ID: id, Properties: r.GetObjectPropertySnapshot(id)})
	})
	return out
}

// eachPublicInstance visits the instances of public types in tag order.
func (r *Registry) eachPublicInstance(fn func(id ids.EntityID)) {
	for tag, p := range r.providers {
		if p == nil || !p.AreTypesPublic() {
			continue
		}
		for _, id := range p.GetIdsOfType(ids.TypeTag(tag)) {
			fn(id)
		}
	}
}
