package registry

import (
	"fmt"

	"github.com/zeusync/introspect/internal/core/fields"
	"github.com/zeusync/introspect/internal/core/ids"
	"github.com/zeusync/introspect/internal/core/observability/log"
	"github.com/zeusync/introspect/internal/core/property"
)

// nameProperty is looked up by GetObjectName.
const nameProperty = "name"

// GetProperties asks the provider of id's type for the instance's properties.
// Types without a provider yield an empty set.
func (r *Registry) GetProperties(id ids.EntityID) property.ObjectPropertySet {
	p := r.provider(id.Type())
	if p == nil {
		return property.ObjectPropertySet{}
	}
	return p.GetProperties(id)
}

// GetProperty returns one property of id, or false when the type, the index or
// the instance does not supply it.
func (r *Registry) GetProperty(id ids.EntityID, idx property.Index) (property.Ref, bool) {
	if !r.GetPropertyDescriptor(id.Type(), idx).IsValid() {
		return property.InvalidRef, false
	}
	return r.GetProperties(id).At(idx)
}

// SetProperty writes v into property idx of id. Read-only properties are
// refused with ErrReadOnly. On success the provider and subscribers of
// EventPropertyChanged are notified.
func (r *Registry) SetProperty(id ids.EntityID, idx property.Index, v fields.Value) error {
	return r.write(id, idx, func(ref property.Ref) error { return ref.SetFromValue(v) })
}

// SetPropertyByName parses value as the named property's kind and writes it.
func (r *Registry) SetPropertyByName(id ids.EntityID, name, value string) error {
	idx := r.GetPropertyIndexByName(id.Type(), name)
	if idx == property.InvalidIndex {
		return &PropertyError{ID: id, Index: idx, Name: name, Err: ErrUnknownProperty}
	}
	return r.write(id, idx, func(ref property.Ref) error { return ref.SetFromString(value) })
}

func (r *Registry) write(id ids.EntityID, idx property.Index, apply func(property.Ref) error) error {
	desc := r.GetPropertyDescriptor(id.Type(), idx)
	wrap := func(err error) error {
		return &PropertyError{ID: id, Index: idx, Name: desc.Name, Err: err}
	}

	switch {
	case !desc.IsValid():
		return wrap(ErrInvalidIndex)
	case desc.IsReadOnly():
		return wrap(ErrReadOnly)
	}

	p := r.provider(id.Type())
	if p == nil {
		return wrap(ErrNoProvider)
	}
	ref, ok := p.GetProperties(id).At(idx)
	if !ok {
		return wrap(ErrNoProperty)
	}
	if err := apply(ref); err != nil {
		return wrap(err)
	}

	r.changed(p, id, idx)
	return nil
}

func (r *Registry) changed(p property.Provider, id ids.EntityID, idx property.Index) {
	p.OnPropertyChanged(id, idx)
	r.publish(EventPropertyChanged, PropertyChanged{ID: id, Index: idx})
}

// ImposeProperties writes values onto id in descriptor order. Invalid values,
// read-only properties, and with serializableOnly set, non-serializable ones
// are skipped, as are values the property's kind rejects. It returns the number
// of properties written.
func (r *Registry) ImposeProperties(id ids.EntityID, values []fields.Value, serializableOnly bool) int {
	p := r.provider(id.Type())
	if p == nil {
		return 0
	}
	g := r.group(id.Type())
	set := p.GetProperties(id)

	n := 0
	for i, v := range values {
		idx := property.Index(i)
		desc := g.desc.At(idx)
		if !v.IsValid() || !desc.IsValid() || desc.IsReadOnly() {
			continue
		}
		if serializableOnly && !desc.Flags.Serializable() {
			continue
		}
		ref, ok := set.At(idx)
		if !ok {
			continue
		}
		if err := ref.SetFromValue(v); err != nil {
			r.logger.Debug("imposed value skipped", log.Entity(id), log.Property(desc.Name), log.Error(err))
			continue
		}
		r.changed(p, id, idx)
		n++
	}
	return n
}

// OnPropertyUpdated announces that property idx of id was changed outside the
// registry.
func (r *Registry) OnPropertyUpdated(id ids.EntityID, idx property.Index) {
	p := r.provider(id.Type())
	if p == nil {
		return
	}
	r.changed(p, id, idx)
}

// GetObjectName returns a display name for id: its "name" property, else the
// "name" property of a type it also is, else TypeName[instance], else the raw
// id.
func (r *Registry) GetObjectName(id ids.EntityID) string {
	set := r.GetProperties(id)
	if name, ok := r.nameOf(id, set); ok {
		return name
	}
	for _, base := range set.IsA {
		if name, ok := r.nameOf(base, r.GetProperties(base)); ok {
			return name
		}
	}

	if typeName := r.TypeName(id.Type()); typeName != "" {
		return fmt.Sprintf("%s[%d]", typeName, id.Instance())
	}
	return id.String()
}

func (r *Registry) nameOf(id ids.EntityID, set property.ObjectPropertySet) (string, bool) {
	idx := r.GetPropertyIndexByName(id.Type(), nameProperty)
	if idx == property.InvalidIndex {
		return "", false
	}
	ref, ok := set.At(idx)
	if !ok {
		return "", false
	}
	return ref.String(), true
}
