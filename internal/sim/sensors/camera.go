package sensors

import (
	"slices"

	"github.com/zeusync/introspect/internal/core/fields"
	"github.com/zeusync/introspect/internal/core/ids"
	"github.com/zeusync/introspect/internal/core/property"
	"github.com/zeusync/introspect/internal/core/schema/registry"
	"github.com/zeusync/introspect/internal/sim"
)

const (
	DefaultFrameRate     float32 = 30
	DefaultQualityFactor int32   = 85

	qualityFactorIndex property.Index = 1
)

// Camera is an image sensor streaming compressed frames.
type Camera struct {
	ID            ids.EntityID
	Base          ids.EntityID
	FrameRate     float32
	QualityFactor int32
	Resolution    fields.Vector2
	Sequence      int64
}

var cameraProperties = []sim.PropertySpec{
	{Name: "Frame Rate", Description: "Frame rate to be sent"},
	{Name: "Quality Factor", Description: "Image compression quality factor"},
	{Name: "Resolution", Description: "Frame size in pixels"},
	{Name: "Sequence", Description: "Frames sent so far", Flags: property.Hidden | property.Developer},
}

func (c *Camera) properties() []property.Ref {
	return []property.Ref{
		property.Float32Ref(&c.FrameRate),
		property.Int32Ref(&c.QualityFactor),
		property.Vector2Ref(&c.Resolution),
		property.Int64Ref(&c.Sequence),
	}
}

// CameraFactory creates cameras and provides their properties. Each camera
// also has a generic sensor in the Manager, reported through isA.
type CameraFactory struct {
	property.ProviderDefaults

	sensors *Manager
	cameras map[ids.InstanceIndex]*Camera
	next    ids.InstanceIndex
}

var _ property.Provider = (*CameraFactory)(nil)

func NewCameraFactory(sensors *Manager) *CameraFactory {
	return &CameraFactory{
		sensors: sensors,
		cameras: make(map[ids.InstanceIndex]*Camera),
		next:    1,
	}
}

func (f *CameraFactory) Register(reg *registry.Registry) error {
	if err := reg.RegisterPropertyProvider(sim.TypeCameraSensor, f); err != nil {
		return err
	}
	return sim.RegisterProperties(reg, sim.TypeCameraSensor, "Camera Sensor", cameraProperties)
}

// Create mounts a new camera on owner.
func (f *CameraFactory) Create(owner ids.EntityID, name string, mount fields.Coordinate) ids.EntityID {
	inst := f.next
	f.next++
	c := &Camera{
		ID:            ids.MakeID(sim.TypeCameraSensor, inst),
		Base:          f.sensors.Attach(owner, name, mount),
		FrameRate:     DefaultFrameRate,
		QualityFactor: DefaultQualityFactor,
		Resolution:    fields.Vector2{X: 640, Y: 480},
	}
	f.cameras[inst] = c
	return c.ID
}

func (f *CameraFactory) Camera(id ids.EntityID) (*Camera, bool) {
	if id.Type() != sim.TypeCameraSensor {
		return nil, false
	}
	c, ok := f.cameras[id.Instance()]
	return c, ok
}

// Destroy removes a camera and its generic sensor.
func (f *CameraFactory) Destroy(id ids.EntityID) bool {
	c, ok := f.Camera(id)
	if !ok {
		return false
	}
	f.sensors.Detach(c.Base)
	delete(f.cameras, id.Instance())
	return true
}

func (f *CameraFactory) GetProperties(id ids.EntityID) property.ObjectPropertySet {
	c, ok := f.Camera(id)
	if !ok {
		return property.ObjectPropertySet{}
	}
	return property.ObjectPropertySet{
		IsA:        []ids.EntityID{c.Base},
		Properties: c.properties(),
	}
}

func (f *CameraFactory) GetIdsOfType(tag ids.TypeTag) []ids.EntityID {
	if tag != sim.TypeCameraSensor {
		return nil
	}
	out := make([]ids.EntityID, 0, len(f.cameras))
	for inst := range f.cameras {
		out = append(out, ids.MakeID(tag, inst))
	}
	slices.Sort(out)
	return out
}

// OnPropertyChanged clamps the quality factor to the encoder's 1..100 range.
func (f *CameraFactory) OnPropertyChanged(id ids.EntityID, idx property.Index) {
	c, ok := f.Camera(id)
	if !ok || idx != qualityFactorIndex {
		return
	}
	c.QualityFactor = min(max(c.QualityFactor, 1), 100)
}
