package registry

import (
	"errors"
	"fmt"

	"github.com/zeusync/introspect/internal/core/ids"
	"github.com/zeusync/introspect/internal/core/property"
)

var (
	ErrAlreadyRegistered = errors.New("type already has a property provider")
	ErrDuplicateName     = errors.New("duplicate property name")
	ErrInvalidTypeTag    = errors.New("invalid type tag")
	ErrTypeTagOutOfRange = errors.New("type tag out of range")
	ErrTooManyTypes      = errors.New("descriptor table full")
	ErrReservedFlags     = errors.New("reserved property flags")
	ErrEmptyName         = errors.New("empty property name")
	ErrNilProvider       = errors.New("nil property provider")

	ErrNoProvider      = errors.New("no property provider")
	ErrUnknownProperty = errors.New("unknown property")
	ErrInvalidIndex    = errors.New("invalid property index")
	ErrNoProperty      = errors.New("provider did not supply property")
	ErrReadOnly        = errors.New("property is read-only")
)

// AlreadyRegisteredError reports a second provider for one type tag.
type AlreadyRegisteredError struct {
	Type ids.TypeTag
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("type %d already has a property provider", e.Type)
}

func (e *AlreadyRegisteredError) Unwrap() error { return ErrAlreadyRegistered }

// DuplicateNameError reports a property name registered twice for one type.
// Existing is the index the first registration received.
type DuplicateNameError struct {
	Type     ids.TypeTag
	Name     string
	Existing property.Index
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("type %d: property %q already registered at index %d", e.Type, e.Name, e.Existing)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// PropertyError wraps a failed instance write with the property it targeted.
type PropertyError struct {
	ID    ids.EntityID
	Index property.Index
	Name  string
	Err   error
}

func (e *PropertyError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: property %q: %v", e.ID, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: property %d: %v", e.ID, e.Index, e.Err)
}

func (e *PropertyError) Unwrap() error { return e.Err }
