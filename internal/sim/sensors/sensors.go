package sensors

import (
	"slices"
	"time"

	"github.com/zeusync/introspect/internal/core/fields"
	"github.com/zeusync/introspect/internal/core/ids"
	"github.com/zeusync/introspect/internal/core/observability/log"
	"github.com/zeusync/introspect/internal/core/property"
	"github.com/zeusync/introspect/internal/core/schema/registry"
	"github.com/zeusync/introspect/internal/sim"
)

// Sensor is the part every sensor kind shares.
type Sensor struct {
	ID          ids.EntityID
	Name        string
	Mount       fields.Coordinate
	Enabled     bool
	Owner       ids.EntityID
	Settings    fields.NameValueList
	LastUpdate  time.Time
	SampleCount uint32
}

var sensorProperties = []sim.PropertySpec{
	{Name: "Name", Description: "Display name"},
	{Name: "Mount", Description: "Mount point relative to the owner"},
	{Name: "Enabled", Description: "Whether the sensor produces samples"},
	{Name: "Owner", Description: "Object the sensor is attached to", Flags: property.ReadOnly},
	{Name: "Settings", Description: "Free-form driver settings", Flags: property.Advanced},
	{Name: "Last Update", Description: "Time of the last sample", Flags: property.ReadOnly | property.NonSerializable},
	{Name: "Sample Count", Description: "Samples produced so far", Flags: property.ReadOnly | property.NonSerializable},
}

func (s *Sensor) properties() []property.Ref {
	return []property.Ref{
		property.StringRef(&s.Name),
		property.CoordinateRef(&s.Mount),
		property.BoolRef(&s.Enabled),
		property.EntityIDRef(&s.Owner),
		property.NameValueListRef(&s.Settings),
		property.DateTimeRef(&s.LastUpdate),
		property.Uint32Ref(&s.SampleCount),
	}
}

// Manager owns the shared part of every sensor. Sensor kinds keep their own
// state in their factories and point back here through isA.
type Manager struct {
	property.ProviderDefaults

	logger  log.Log
	sensors map[ids.InstanceIndex]*Sensor
	next    ids.InstanceIndex
}

var (
	_ property.Provider = (*Manager)(nil)
	_ registry.Listener = (*Manager)(nil)
)

func NewManager(logger log.Log) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Manager{
		logger:  logger.Named("sensors"),
		sensors: make(map[ids.InstanceIndex]*Sensor),
		next:    1,
	}
}

// Register installs the manager as provider of generic sensors and subscribes
// it to provider destruction so sensors of vanished owners are detached.
func (m *Manager) Register(reg *registry.Registry) error {
	if err := reg.RegisterPropertyProvider(sim.TypeSensor, m); err != nil {
		return err
	}
	reg.AddListener(m)
	return sim.RegisterProperties(reg, sim.TypeSensor, "Sensor", sensorProperties)
}

// Attach creates a sensor mounted on owner.
func (m *Manager) Attach(owner ids.EntityID, name string, mount fields.Coordinate) ids.EntityID {
	inst := m.next
	m.next++
	s := &Sensor{
		ID:      ids.MakeID(sim.TypeSensor, inst),
		Name:    name,
		Mount:   mount,
		Enabled: true,
		Owner:   owner,
	}
	m.sensors[inst] = s
	m.logger.Debug("sensor attached", log.Entity(s.ID), log.Stringer("owner", owner))
	return s.ID
}

func (m *Manager) Detach(id ids.EntityID) bool {
	if _, ok := m.Sensor(id); !ok {
		return false
	}
	delete(m.sensors, id.Instance())
	return true
}

func (m *Manager) Sensor(id ids.EntityID) (*Sensor, bool) {
	if id.Type() != sim.TypeSensor {
		return nil, false
	}
	s, ok := m.sensors[id.Instance()]
	return s, ok
}

// Record notes a sample taken at t.
func (m *Manager) Record(id ids.EntityID, t time.Time) {
	if s, ok := m.Sensor(id); ok && s.Enabled {
		s.LastUpdate = t
		s.SampleCount++
	}
}

// OnPropertyProviderDestroyed disables and detaches every sensor whose owner
// belongs to tag.
func (m *Manager) OnPropertyProviderDestroyed(tag ids.TypeTag) {
	for _, s := range m.sensors {
		if s.Owner.IsValid() && s.Owner.Type() == tag {
			s.Owner = ids.InvalidID
			s.Enabled = false
		}
	}
	m.logger.Debug("owner type gone", log.TypeTag(tag))
}

func (m *Manager) GetProperties(id ids.EntityID) property.ObjectPropertySet {
	s, ok := m.Sensor(id)
	if !ok {
		return property.ObjectPropertySet{}
	}
	return property.ObjectPropertySet{Properties: s.properties()}
}

func (m *Manager) GetIdsOfType(tag ids.TypeTag) []ids.EntityID {
	if tag != sim.TypeSensor {
		return nil
	}
	out := make([]ids.EntityID, 0, len(m.sensors))
	for inst := range m.sensors {
		out = append(out, ids.MakeID(tag, inst))
	}
	slices.Sort(out)
	return out
}
