// Package sim holds the reference object types that expose their state through
// the property registry.
package sim

import (
	"fmt"

	"github.com/zeusync/introspect/internal/core/ids"
	"github.com/zeusync/introspect/internal/core/property"
	"github.com/zeusync/introspect/internal/core/schema/registry"
)

// Type tags of the reference object types.
const (
	TypeVehicle      ids.TypeTag = 1
	TypeSensor       ids.TypeTag = 2
	TypeCameraSensor ids.TypeTag = 3
	TypeController   ids.TypeTag = 7
)

// PropertySpec describes one property a type registers.
type PropertySpec struct {
	Name        string
	Description string
	Flags       property.Flags
}

// RegisterProperties registers specs for tag in order and checks that each one
// received the index matching its position, which GetProperties relies on.
// Descriptors outlive their provider, so a reloaded provider finds its group
// already present: those entries are checked by name and only the missing
// tail is registered.
func RegisterProperties(reg *registry.Registry, tag ids.TypeTag, typeName string, specs []PropertySpec) error {
	if err := reg.RegisterTypeName(tag, typeName); err != nil {
		return err
	}
	existing := reg.GetNumProperties(tag)
	if existing > len(specs) {
		return fmt.Errorf("register %s properties: %d already registered, have %d", typeName, existing, len(specs))
	}
	for i, spec := range specs[:existing] {
		if got := reg.GetPropertyDescriptor(tag, property.Index(i)).Name; got != spec.Name {
			return fmt.Errorf("register %s properties: index %d is %q, want %q", typeName, i, got, spec.Name)
		}
	}
	for i, spec := range specs[existing:] {
		i += existing
		idx, err := reg.RegisterProperty(tag, spec.Name, spec.Description, spec.Flags)
		if err != nil {
			return fmt.Errorf("register %s properties: %w", typeName, err)
		}
		if int(idx) != i {
			return fmt.Errorf("register %s properties: %q got index %d, want %d", typeName, spec.Name, idx, i)
		}
	}
	return nil
}
