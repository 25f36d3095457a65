package ids

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TypeTag identifies a registered object type. Tag 0 is reserved and never
// names a type.
type TypeTag uint32

// InstanceIndex identifies one instance within a type tag. It is assigned by
// the owning provider and only needs to be unique within its tag.
type InstanceIndex uint32

// EntityID encodes a type tag in the upper 32 bits and an instance index in the
// lower 32 bits. Decoding needs no registry state.
type EntityID uint64

const (
	instanceBits = 32
	instanceMask = 1<<instanceBits - 1

	// InvalidTypeTag is the reserved "no type" tag.
	InvalidTypeTag TypeTag = 0
	// InvalidID is the reserved invalid entity id.
	InvalidID EntityID = 0
)

var ErrMalformedID = errors.New("malformed entity id")

// MakeID packs a type tag and an instance index into an EntityID.
func MakeID(tag TypeTag, instance InstanceIndex) EntityID {
	return EntityID(uint64(tag)<<instanceBits | uint64(instance))
}

// TypeID returns the id that stands for the type itself (instance 0). It is
// accepted wherever a lookup only needs the type.
func TypeID(tag TypeTag) EntityID {
	return MakeID(tag, 0)
}

// TypeOf returns the type tag encoded in id.
func TypeOf(id EntityID) TypeTag { return TypeTag(uint64(id) >> instanceBits) }

// InstanceOf returns the instance index encoded in id.
func InstanceOf(id EntityID) InstanceIndex { return InstanceIndex(uint64(id) & instanceMask) }

// IsValid reports whether id carries a real type tag.
func IsValid(id EntityID) bool { return TypeOf(id) != InvalidTypeTag }

func (id EntityID) Type() TypeTag           { return TypeOf(id) }
func (id EntityID) Instance() InstanceIndex { return InstanceOf(id) }
func (id EntityID) IsValid() bool           { return IsValid(id) }

// String renders the raw id as 0x followed by 16 hex digits.
func (id EntityID) String() string {
	return fmt.Sprintf("0x%016x", uint64(id))
}

// Parse reads an id in the form produced by String. A bare decimal number is
// also accepted.
func Parse(s string) (EntityID, error) {
	s = strings.TrimSpace(s)
	var (
		v   uint64
		err error
	)
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		v, err = strconv.ParseUint(rest, 16, 64)
	} else {
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return InvalidID, fmt.Errorf("%w: %q", ErrMalformedID, s)
	}
	return EntityID(v), nil
}
