package registry

import (
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/cases"

	"github.com/zeusync/introspect/internal/core/ids"
	"github.com/zeusync/introspect/internal/core/observability/log"
	"github.com/zeusync/introspect/internal/core/property"
)

// group is a GroupDescriptor plus its case-insensitive name index.
type group struct {
	desc   property.GroupDescriptor
	folded []string
	byName map[uint64][]property.Index
}

func newGroup(tag ids.TypeTag) *group {
	return &group{
		desc:   property.GroupDescriptor{Type: tag},
		byName: make(map[uint64][]property.Index),
	}
}

// foldName maps a property name to its case-insensitive key. A Caser keeps
// state, so one is built per call.
func foldName(name string) string {
	return cases.Fold().String(name)
}

func (g *group) lookup(name string) property.Index {
	key := foldName(name)
	for _, idx := range g.byName[xxhash.Sum64String(key)] {
		if g.folded[idx] == key {
			return idx
		}
	}
	return property.InvalidIndex
}

func (g *group) add(name, description string, flags property.Flags) property.Index {
	key := foldName(name)
	idx := property.Index(len(g.desc.Descriptors))
	g.desc.Descriptors = append(g.desc.Descriptors, property.Descriptor{
		Name:        name,
		Description: description,
		Flags:       flags | property.Valid,
	})
	g.folded = append(g.folded, key)
	h := xxhash.Sum64String(key)
	g.byName[h] = append(g.byName[h], idx)
	return idx
}

// group resolves tag to its descriptor group. Tags without one share the
// empty group in slot 0.
func (r *Registry) group(tag ids.TypeTag) *group {
	if int64(tag) >= int64(len(r.slots)) {
		return r.groups[0]
	}
	return r.groups[r.slots[tag]]
}

func (r *Registry) ensureGroup(tag ids.TypeTag) (*group, error) {
	if g := r.group(tag); g.desc.Type == tag {
		return g, nil
	}
	if len(r.groups) > math.MaxUint16 {
		return nil, ErrTooManyTypes
	}
	if int(tag) >= len(r.slots) {
		grown := make([]uint16, int(tag)+1, max(int(tag)+1, 2*len(r.slots)))
		copy(grown, r.slots)
		r.slots = grown
	}

	g := newGroup(tag)
	g.desc.TypeName = r.typeNames[tag]
	r.slots[tag] = uint16(len(r.groups))
	r.groups = append(r.groups, g)
	return g, nil
}

// RegisterProperty appends a property to tag's descriptor list and returns its
// index. Names are unique per type, ignoring case. flags may only hold
// property.PublicFlags.
//
// All properties of a type are registered before instances of it are read.
func (r *Registry) RegisterProperty(tag ids.TypeTag, name, description string, flags property.Flags) (property.Index, error) {
	fail := func(err error) (property.Index, error) {
		r.logger.Error("property registration rejected",
			log.TypeTag(tag), log.Property(name), log.Error(err))
		return property.InvalidIndex, err
	}

	if err := r.checkTag(tag); err != nil {
		return fail(err)
	}
	if strings.TrimSpace(name) == "" {
		return fail(ErrEmptyName)
	}
	if flags&^property.PublicFlags != 0 {
		return fail(ErrReservedFlags)
	}

	g, err := r.ensureGroup(tag)
	if err != nil {
		return fail(err)
	}
	if existing := g.lookup(name); existing != property.InvalidIndex {
		return fail(&DuplicateNameError{Type: tag, Name: name, Existing: existing})
	}

	idx := g.add(name, description, flags)
	r.logger.Debug("property registered",
		log.TypeTag(tag), log.Property(name), log.Uint32("index", uint32(idx)), log.Stringer("flags", flags))
	return idx, nil
}

// MustRegisterProperty is RegisterProperty for setup code that treats a
// failure as a defect.
func (r *Registry) MustRegisterProperty(tag ids.TypeTag, name, description string, flags property.Flags) property.Index {
	idx, err := r.RegisterProperty(tag, name, description, flags)
	if err != nil {
		panic(err)
	}
	return idx
}

// GetPropertyIndexByName finds a property of tag by name, ignoring case.
func (r *Registry) GetPropertyIndexByName(tag ids.TypeTag, name string) property.Index {
	return r.group(tag).lookup(name)
}

// GetPropertyGroupDescriptor never returns nil. Unregistered tags get the
// shared empty descriptor. The result must not be modified.
func (r *Registry) GetPropertyGroupDescriptor(tag ids.TypeTag) *property.GroupDescriptor {
	return &r.group(tag).desc
}

// GetPropertyDescriptor returns an invalid descriptor when idx is out of range.
func (r *Registry) GetPropertyDescriptor(tag ids.TypeTag, idx property.Index) property.Descriptor {
	return r.group(tag).desc.At(idx)
}

func (r *Registry) GetNumProperties(tag ids.TypeTag) int { return r.group(tag).desc.Len() }

func (r *Registry) GetPropertyNames(tag ids.TypeTag) []string { return r.group(tag).desc.Names() }

// DescribedTypes lists every tag with at least one registered property,
// ascending. Descriptors outlive providers, so tags may appear here without
// one.
func (r *Registry) DescribedTypes() []ids.TypeTag {
	var out []ids.TypeTag
	for tag, slot := range r.slots {
		if slot != 0 {
			out = append(out, ids.TypeTag(tag))
		}
	}
	return out
}
