package property

import (
	"strings"

	"github.com/zeusync/introspect/internal/core/ids"
)

// Index is the zero-based position of a property in its type's descriptor
// list. It is assigned in registration order and never changes.
type Index uint32

// InvalidIndex is returned by lookups that find nothing.
const InvalidIndex Index = 0xFFFFFFFF

// Flags describe how a property may be used.
type Flags uint32

const (
	ReadOnly        Flags = 0x01
	NonSerializable Flags = 0x02
	Hidden          Flags = 0x04
	Advanced        Flags = 0x08
	Developer       Flags = 0x10

	// Valid marks a populated descriptor slot. The registry sets it; callers
	// never pass it.
	Valid Flags = 0x8000

	// PublicFlags are the flags a caller may set when registering.
	PublicFlags = ReadOnly | NonSerializable | Hidden | Advanced | Developer
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{ReadOnly, "ReadOnly"},
	{NonSerializable, "NonSerializable"},
	{Hidden, "Hidden"},
	{Advanced, "Advanced"},
	{Developer, "Developer"},
	{Valid, "Valid"},
}

func (f Flags) Has(flag Flags) bool { return f&flag == flag }

// Serializable reports whether a property with these flags is written to
// documents.
func (f Flags) Serializable() bool { return f&(NonSerializable|Hidden) == 0 }

func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

// Descriptor is the static description of one property slot of a type.
type Descriptor struct {
	Name        string
	Description string
	Flags       Flags
}

func (d Descriptor) IsValid() bool    { return d.Flags.Has(Valid) }
func (d Descriptor) IsReadOnly() bool { return d.Flags.Has(ReadOnly) }

// GroupDescriptor is the ordered descriptor list of one type. It only grows.
type GroupDescriptor struct {
	Type        ids.TypeTag
	TypeName    string
	Descriptors []Descriptor
}

// Len returns the number of registered properties.
func (g *GroupDescriptor) Len() int { return len(g.Descriptors) }

// At returns the descriptor at idx, or an invalid descriptor when idx is out of
// range.
func (g *GroupDescriptor) At(idx Index) Descriptor {
	if int64(idx) >= int64(len(g.Descriptors)) {
		return Descriptor{}
	}
	return g.Descriptors[idx]
}

// Names returns the property names in index order.
func (g *GroupDescriptor) Names() []string {
	names := make([]string, len(g.Descriptors))
	for i, d := range g.Descriptors {
		names[i] = d.Name
	}
	return names
}
