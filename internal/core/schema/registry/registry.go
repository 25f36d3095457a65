package registry

import (
	"fmt"
	"slices"

	"github.com/zeusync/introspect/internal/core/events/bus"
	"github.com/zeusync/introspect/internal/core/ids"
	"github.com/zeusync/introspect/internal/core/observability/log"
	"github.com/zeusync/introspect/internal/core/property"
)

const (
	// EventProviderDestroyed is published with a ProviderDestroyed payload
	// after a provider is unregistered from a type tag.
	EventProviderDestroyed = "provider.destroyed"
	// EventPropertyChanged is published with a PropertyChanged payload after
	// the registry wrote a property or was told one changed.
	EventPropertyChanged = "property.changed"

	eventSource = "registry"
)

// ProviderDestroyed is the payload of EventProviderDestroyed.
type ProviderDestroyed struct {
	Type ids.TypeTag
}

// PropertyChanged is the payload of EventPropertyChanged.
type PropertyChanged struct {
	ID    ids.EntityID
	Index property.Index
}

// Listener is notified when a type loses its provider, so caches keyed by type
// can drop their entries.
type Listener interface {
	OnPropertyProviderDestroyed(tag ids.TypeTag)
}

// ProviderInfo pairs a type tag with the provider serving it.
type ProviderInfo struct {
	Type     ids.TypeTag
	Provider property.Provider
}

type Options struct {
	// MaxTypeTag bounds the tags that may be registered. Tables grow lazily up
	// to this bound.
	MaxTypeTag ids.TypeTag
	// InitialTypes preallocates table slots.
	InitialTypes int
	// RootElement and ObjectElement name the nodes of whole-registry documents.
	RootElement   string
	ObjectElement string
}

func DefaultOptions() Options {
	return Options{
		MaxTypeTag:    0xFFFF,
		InitialTypes:  64,
		RootElement:   "Properties",
		ObjectElement: "Object",
	}
}

// Registry ties providers, descriptors and instances together.
//
// A Registry performs no locking. Registration and unregistration belong to
// setup and teardown; every other call may run concurrently with other reads
// only. Hosts that write from more than one goroutine serialize access
// themselves.
type Registry struct {
	logger log.Log
	events bus.EventBus
	opts   Options

	// providers is indexed by type tag.
	providers []property.Provider

	// slots maps a type tag to its position in groups. Slot 0 is the shared
	// empty group every unregistered tag resolves to.
	slots  []uint16
	groups []*group

	typeNames map[ids.TypeTag]string
	listeners map[Listener]bus.Subscription
}

// New builds an empty registry. A nil events bus gets a private one.
func New(logger log.Log, events bus.EventBus, opts Options) *Registry {
	def := DefaultOptions()
	if opts.MaxTypeTag == 0 {
		opts.MaxTypeTag = def.MaxTypeTag
	}
	if opts.InitialTypes <= 0 {
		opts.InitialTypes = def.InitialTypes
	}
	if opts.RootElement == "" {
		opts.RootElement = def.RootElement
	}
	if opts.ObjectElement == "" {
		opts.ObjectElement = def.ObjectElement
	}
	if logger == nil {
		logger = log.NewNop()
	}
	if events == nil {
		events = bus.New()
	}

	return &Registry{
		logger:    logger.Named("registry"),
		events:    events,
		opts:      opts,
		providers: make([]property.Provider, 0, opts.InitialTypes),
		slots:     make([]uint16, 0, opts.InitialTypes),
		groups:    []*group{newGroup(ids.InvalidTypeTag)},
		typeNames: make(map[ids.TypeTag]string),
		listeners: make(map[Listener]bus.Subscription),
	}
}

// Events returns the bus the registry publishes on.
func (r *Registry) Events() bus.EventBus { return r.events }

func (r *Registry) checkTag(tag ids.TypeTag) error {
	switch {
	case tag == ids.InvalidTypeTag:
		return ErrInvalidTypeTag
	case tag > r.opts.MaxTypeTag:
		return fmt.Errorf("%w: %d > %d", ErrTypeTagOutOfRange, tag, r.opts.MaxTypeTag)
	}
	return nil
}

// RegisterPropertyProvider makes p answer for every instance of tag. A tag has
// at most one provider.
func (r *Registry) RegisterPropertyProvider(tag ids.TypeTag, p property.Provider) error {
	if p == nil {
		return ErrNilProvider
	}
	if err := r.checkTag(tag); err != nil {
		r.logger.Error("provider registration rejected", log.TypeTag(tag), log.Error(err))
		return err
	}
	if r.provider(tag) != nil {
		err := &AlreadyRegisteredError{Type: tag}
		r.logger.Error("provider registration rejected", log.TypeTag(tag), log.Error(err))
		return err
	}

	if int(tag) >= len(r.providers) {
		r.providers = slices.Grow(r.providers, int(tag)+1-len(r.providers))[:int(tag)+1]
	}
	r.providers[tag] = p

	r.logger.Debug("property provider registered", log.TypeTag(tag), log.String("type_name", r.TypeName(tag)))
	return nil
}

// MustRegisterPropertyProvider is RegisterPropertyProvider for setup code that
// treats a failure as a defect.
func (r *Registry) MustRegisterPropertyProvider(tag ids.TypeTag, p property.Provider) {
	if err := r.RegisterPropertyProvider(tag, p); err != nil {
		panic(err)
	}
}

// UnregisterPropertyProvider clears the provider of tag and notifies
// listeners. It reports whether a provider was registered.
func (r *Registry) UnregisterPropertyProvider(tag ids.TypeTag) bool {
	if r.provider(tag) == nil {
		return false
	}
	r.providers[tag] = nil
	r.logger.Debug("property provider unregistered", log.TypeTag(tag))
	r.publish(EventProviderDestroyed, ProviderDestroyed{Type: tag})
	return true
}

// UnregisterProvider clears every tag served by p and returns how many there
// were. Providers are compared by identity, so p must be a comparable value
// such as a pointer.
func (r *Registry) UnregisterProvider(p property.Provider) int {
	if p == nil {
		return 0
	}
	n := 0
	for tag, cur := range r.providers {
		if cur != nil && cur == p {
			r.UnregisterPropertyProvider(ids.TypeTag(tag))
			n++
		}
	}
	return n
}

func (r *Registry) provider(tag ids.TypeTag) property.Provider {
	if int64(tag) >= int64(len(r.providers)) {
		return nil
	}
	return r.providers[tag]
}

// Provider returns the provider of tag, or nil.
func (r *Registry) Provider(tag ids.TypeTag) property.Provider { return r.provider(tag) }

// GetPropertyProviderInfo lists every registered provider in tag order.
func (r *Registry) GetPropertyProviderInfo() []ProviderInfo {
	var out []ProviderInfo
	for tag, p := range r.providers {
		if p != nil {
			out = append(out, ProviderInfo{Type: ids.TypeTag(tag), Provider: p})
		}
	}
	return out
}

// GetHandledTypes lists every tag that has a provider, ascending.
func (r *Registry) GetHandledTypes() []ids.TypeTag {
	var out []ids.TypeTag
	for tag, p := range r.providers {
		if p != nil {
			out = append(out, ids.TypeTag(tag))
		}
	}
	return out
}

// GetIdsOfType lists the live instances of tag. A tag with no provider has
// none.
func (r *Registry) GetIdsOfType(tag ids.TypeTag) []ids.EntityID {
	p := r.provider(tag)
	if p == nil {
		return nil
	}
	return p.GetIdsOfType(tag)
}

// RegisterTypeName sets the display name of tag used by GetObjectName and
// documentation.
func (r *Registry) RegisterTypeName(tag ids.TypeTag, name string) error {
	if err := r.checkTag(tag); err != nil {
		return err
	}
	r.typeNames[tag] = name
	if g := r.group(tag); g.desc.Type == tag {
		g.desc.TypeName = name
	}
	return nil
}

// TypeName returns the display name of tag, or "" when none was registered.
func (r *Registry) TypeName(tag ids.TypeTag) string { return r.typeNames[tag] }

// AddListener subscribes l to provider destruction. Adding the same listener
// twice has no further effect.
func (r *Registry) AddListener(l Listener) {
	if l == nil {
		return
	}
	if _, ok := r.listeners[l]; ok {
		return
	}
	sub, err := r.events.Subscribe(EventProviderDestroyed, func(e bus.Event) error {
		if data, ok := e.Data().(ProviderDestroyed); ok {
			l.OnPropertyProviderDestroyed(data.Type)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("listener subscription failed", log.Error(err))
		return
	}
	r.listeners[l] = sub
}

// RemoveListener stops notifications to l.
func (r *Registry) RemoveListener(l Listener) {
	sub, ok := r.listeners[l]
	if !ok {
		return
	}
	delete(r.listeners, l)
	_ = r.events.Unsubscribe(sub)
}

func (r *Registry) publish(eventType string, data any) {
	if err := r.events.Publish(bus.NewEvent(eventType, eventSource, data)); err != nil {
		r.logger.Warn("event handler failed", log.String("event", eventType), log.Error(err))
	}
}
