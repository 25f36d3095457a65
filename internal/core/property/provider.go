package property

import (
	"github.com/zeusync/introspect/internal/core/ids"
)

// ObjectPropertySet is one instance's properties in descriptor order, plus the
// extra identities the instance answers to.
type ObjectPropertySet struct {
	// IsA lists ids of other types this instance also is, e.g. the generic
	// sensor behind a camera sensor.
	IsA []ids.EntityID
	// HasA lists ids of objects this instance owns and exposes.
	HasA []ids.EntityID
	// Properties is indexed by property Index.
	Properties []Ref
}

// Empty reports whether the set carries no properties.
func (s ObjectPropertySet) Empty() bool { return len(s.Properties) == 0 }

// At returns the Ref at idx, or false when the provider did not supply one.
func (s ObjectPropertySet) At(idx Index) (Ref, bool) {
	if int64(idx) >= int64(len(s.Properties)) {
		return InvalidRef, false
	}
	r := s.Properties[idx]
	return r, r.IsValid()
}

// Provider answers property requests for the live instances of one or more
// type tags. It is implemented by whatever owns those instances, usually a
// manager or factory.
//
// The Refs a provider returns point into instances it owns; they are only
// valid until control returns to the provider's owner.
type Provider interface {
	// GetProperties returns every property of the instance in descriptor
	// order. Unknown ids yield an empty set.
	GetProperties(id ids.EntityID) ObjectPropertySet

	// GetIdsOfType lists every live instance of tag owned by this provider.
	GetIdsOfType(tag ids.TypeTag) []ids.EntityID

	// OnPropertyChanged is called after the registry wrote a property.
	OnPropertyChanged(id ids.EntityID, idx Index)

	// AreTypesPublic reports whether the provider's types take part in
	// generic introspection such as snapshots and documentation.
	AreTypesPublic() bool
}

// ProviderDefaults supplies the optional half of Provider. Embed it and
// implement GetProperties and GetIdsOfType.
type ProviderDefaults struct{}

func (ProviderDefaults) OnPropertyChanged(ids.EntityID, Index) {}
func (ProviderDefaults) AreTypesPublic() bool                  { return true }
