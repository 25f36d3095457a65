package vehicles

import (
	"math"
	"slices"
	"time"

	"github.com/zeusync/introspect/internal/core/fields"
	"github.com/zeusync/introspect/internal/core/ids"
	"github.com/zeusync/introspect/internal/core/observability/log"
	"github.com/zeusync/introspect/internal/core/property"
	"github.com/zeusync/introspect/internal/core/schema/registry"
	"github.com/zeusync/introspect/internal/sim"
)

const (
	GearEnum   = "Gear"
	LightsFlag = "Lights"
)

const (
	LightsHead uint32 = 1 << iota
	LightsBrake
	LightsHazard
)

type Vehicle struct {
	ID          ids.EntityID
	Name        string
	Position    fields.Vector3
	Orientation fields.Quaternion
	Speed       float64
	Gear        fields.Enum
	Lights      fields.Flag
	Paint       fields.Color
	Route       fields.ValueList
	Odometer    uint64
	Mass        float32
	Created     time.Time
	Controller  ids.EntityID
}

// Controller is the network-attached drive controller of a vehicle.
type Controller struct {
	ID           ids.EntityID
	IPAddress    string
	DesiredSpeed float64
	DesiredYaw   float64
}

var vehicleProperties = []sim.PropertySpec{
	{Name: "Name", Description: "Display name"},
	{Name: "Position", Description: "Position in world meters"},
	{Name: "Orientation", Description: "Body orientation"},
	{Name: "Speed", Description: "Current speed in m/s", Flags: property.ReadOnly},
	{Name: "Gear", Description: "Transmission gear"},
	{Name: "Lights", Description: "Active light groups"},
	{Name: "Paint", Description: "Body color"},
	{Name: "Route", Description: "Waypoints still to visit", Flags: property.Advanced},
	{Name: "Odometer", Description: "Distance driven in meters", Flags: property.ReadOnly},
	{Name: "Mass", Description: "Vehicle mass in kg", Flags: property.Advanced},
	{Name: "Created", Description: "Spawn time", Flags: property.ReadOnly | property.Developer},
	{Name: "Controller", Description: "Attached drive controller", Flags: property.ReadOnly | property.NonSerializable},
}

var controllerProperties = []sim.PropertySpec{
	{Name: "IP Address", Description: "Address the controller listens on", Flags: property.ReadOnly},
	{Name: "Desired Speed", Description: "Commanded speed in m/s"},
	{Name: "Desired Yaw", Description: "Commanded yaw rate in rad/s"},
}

func (v *Vehicle) properties() []property.Ref {
	return []property.Ref{
		property.StringRef(&v.Name),
		property.Vector3Ref(&v.Position),
		property.QuaternionRef(&v.Orientation),
		property.Float64Ref(&v.Speed),
		property.EnumRef(&v.Gear),
		property.FlagRef(&v.Lights),
		property.ColorRef(&v.Paint),
		property.ValueListRef(&v.Route),
		property.Uint64Ref(&v.Odometer),
		property.Float32Ref(&v.Mass),
		property.DateTimeRef(&v.Created),
		property.EntityIDRef(&v.Controller),
	}
}

func (c *Controller) properties() []property.Ref {
	return []property.Ref{
		property.StringRef(&c.IPAddress),
		property.Float64Ref(&c.DesiredSpeed),
		property.Float64Ref(&c.DesiredYaw),
	}
}

// Manager owns every vehicle and controller and answers property requests for
// both types.
type Manager struct {
	logger      log.Log
	now         func() time.Time
	vehicles    map[ids.InstanceIndex]*Vehicle
	controllers map[ids.InstanceIndex]*Controller
	next        ids.InstanceIndex
	dirty       map[ids.EntityID]struct{}
}

var _ property.Provider = (*Manager)(nil)

func NewManager(logger log.Log) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Manager{
		logger:      logger.Named("vehicles"),
		now:         time.Now,
		vehicles:    make(map[ids.InstanceIndex]*Vehicle),
		controllers: make(map[ids.InstanceIndex]*Controller),
		next:        1,
		dirty:       make(map[ids.EntityID]struct{}),
	}
}

// Register installs the manager as provider of vehicles and controllers.
func (m *Manager) Register(reg *registry.Registry) error {
	if err := reg.RegisterPropertyProvider(sim.TypeVehicle, m); err != nil {
		return err
	}
	if err := reg.RegisterPropertyProvider(sim.TypeController, m); err != nil {
		reg.UnregisterProvider(m)
		return err
	}
	if err := sim.RegisterProperties(reg, sim.TypeVehicle, "Vehicle", vehicleProperties); err != nil {
		return err
	}
	return sim.RegisterProperties(reg, sim.TypeController, "Controller", controllerProperties)
}

// Spawn creates a vehicle and its controller and returns the vehicle id. The
// controller shares the vehicle's instance index.
func (m *Manager) Spawn(name string, position fields.Vector3, ip string) ids.EntityID {
	inst := m.next
	m.next++

	v := &Vehicle{
		ID:          ids.MakeID(sim.TypeVehicle, inst),
		Name:        name,
		Position:    position,
		Orientation: fields.IdentityQuaternion,
		Gear:        fields.Enum{Type: GearEnum, Name: "Park"},
		Lights:      fields.Flag{Type: LightsFlag},
		Paint:       fields.Color{R: 1, G: 1, B: 1, A: 1},
		Mass:        1500,
		Created:     m.now().UTC(),
		Controller:  ids.MakeID(sim.TypeController, inst),
	}
	m.vehicles[inst] = v
	m.controllers[inst] = &Controller{ID: v.Controller, IPAddress: ip}

	m.logger.Debug("vehicle spawned", log.Entity(v.ID), log.String("name", name))
	return v.ID
}

// Despawn removes a vehicle and its controller.
func (m *Manager) Despawn(id ids.EntityID) bool {
	v, ok := m.Vehicle(id)
	if !ok {
		return false
	}
	inst := id.Instance()
	delete(m.vehicles, inst)
	delete(m.controllers, inst)
	delete(m.dirty, id)
	delete(m.dirty, ids.MakeID(sim.TypeController, inst))
	m.logger.Debug("vehicle despawned", log.Entity(id), log.Uint64("odometer", v.Odometer))
	return true
}

func (m *Manager) Vehicle(id ids.EntityID) (*Vehicle, bool) {
	if id.Type() != sim.TypeVehicle {
		return nil, false
	}
	v, ok := m.vehicles[id.Instance()]
	return v, ok
}

func (m *Manager) Controller(id ids.EntityID) (*Controller, bool) {
	if id.Type() != sim.TypeController {
		return nil, false
	}
	c, ok := m.controllers[id.Instance()]
	return c, ok
}

// Step advances every vehicle by dt seconds: speed follows the controller's
// desired speed and heading turns at its desired yaw rate.
func (m *Manager) Step(dt time.Duration) {
	sec := dt.Seconds()
	for inst, v := range m.vehicles {
		c := m.controllers[inst]
		v.Speed = c.DesiredSpeed
		yaw := headingOf(v.Orientation) + c.DesiredYaw*sec
		v.Orientation = fromHeading(yaw)

		dist := v.Speed * sec
		v.Position.X += dist * math.Cos(yaw)
		v.Position.Y += dist * math.Sin(yaw)
		v.Odometer += uint64(math.Abs(dist))

		switch {
		case v.Speed > 0:
			v.Gear.Name = "Drive"
		case v.Speed < 0:
			v.Gear.Name = "Reverse"
		default:
			v.Gear.Name = "Park"
		}
	}
}

func headingOf(q fields.Quaternion) float64 {
	return math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z))
}

func fromHeading(yaw float64) fields.Quaternion {
	return fields.Quaternion{W: math.Cos(yaw / 2), Z: math.Sin(yaw / 2)}
}

func (m *Manager) GetProperties(id ids.EntityID) property.ObjectPropertySet {
	switch id.Type() {
	case sim.TypeVehicle:
		v, ok := m.vehicles[id.Instance()]
		if !ok {
			return property.ObjectPropertySet{}
		}
		return property.ObjectPropertySet{
			HasA:       []ids.EntityID{v.Controller},
			Properties: v.properties(),
		}
	case sim.TypeController:
		c, ok := m.controllers[id.Instance()]
		if !ok {
			return property.ObjectPropertySet{}
		}
		return property.ObjectPropertySet{Properties: c.properties()}
	}
	return property.ObjectPropertySet{}
}

func (m *Manager) GetIdsOfType(tag ids.TypeTag) []ids.EntityID {
	if tag != sim.TypeVehicle && tag != sim.TypeController {
		return nil
	}
	out := make([]ids.EntityID, 0, len(m.vehicles))
	for inst := range m.vehicles {
		out = append(out, ids.MakeID(tag, inst))
	}
	slices.Sort(out)
	return out
}

// OnPropertyChanged marks the instance dirty for the next TakeDirty.
func (m *Manager) OnPropertyChanged(id ids.EntityID, idx property.Index) {
	m.dirty[id] = struct{}{}
	m.logger.Debug("property changed", log.Entity(id), log.Uint32("index", uint32(idx)))
}

func (m *Manager) AreTypesPublic() bool { return true }

// TakeDirty returns the instances changed through the registry since the last
// call, ascending, and clears the set.
func (m *Manager) TakeDirty() []ids.EntityID {
	out := make([]ids.EntityID, 0, len(m.dirty))
	for id := range m.dirty {
		out = append(out, id)
	}
	slices.Sort(out)
	clear(m.dirty)
	return out
}
