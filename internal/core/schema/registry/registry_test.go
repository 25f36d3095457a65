package registry

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/introspect/internal/core/events/bus"
	"github.com/zeusync/introspect/internal/core/fields"
	"github.com/zeusync/introspect/internal/core/ids"
	"github.com/zeusync/introspect/internal/core/observability/log"
	"github.com/zeusync/introspect/internal/core/property"
)

const controllerTag ids.TypeTag = 7

type controller struct {
	IPAddress    string
	DesiredSpeed float64
	DesiredYaw   float64
}

type controllerProvider struct {
	property.ProviderDefaults
	objects map[ids.InstanceIndex]*controller
	changed []property.Index
	private bool
}

func newControllerProvider() *controllerProvider {
	return &controllerProvider{objects: make(map[ids.InstanceIndex]*controller)}
}

func (p *controllerProvider) GetProperties(id ids.EntityID) property.ObjectPropertySet {
	c, ok := p.objects[id.Instance()]
	if !ok || id.Type() != controllerTag {
		return property.ObjectPropertySet{}
	}
	return property.ObjectPropertySet{Properties: []property.Ref{
		property.StringRef(&c.IPAddress),
		property.Float64Ref(&c.DesiredSpeed),
		property.Float64Ref(&c.DesiredYaw),
	}}
}

func (p *controllerProvider) GetIdsOfType(tag ids.TypeTag) []ids.EntityID {
	out := make([]ids.EntityID, 0, len(p.objects))
	for inst := range p.objects {
		out = append(out, ids.MakeID(tag, inst))
	}
	slices.Sort(out)
	return out
}

func (p *controllerProvider) OnPropertyChanged(_ ids.EntityID, idx property.Index) {
	p.changed = append(p.changed, idx)
}

func (p *controllerProvider) AreTypesPublic() bool { return !p.private }

type recordingListener struct {
	destroyed []ids.TypeTag
}

func (l *recordingListener) OnPropertyProviderDestroyed(tag ids.TypeTag) {
	l.destroyed = append(l.destroyed, tag)
}

func newRegistry() *Registry {
	return New(log.NewNop(), bus.New(), DefaultOptions())
}

// setupController registers the controller type with instance 2 holding
// ("10.0.0.5", 1.0, -0.3).
func setupController(t *testing.T) (*Registry, *controllerProvider, ids.EntityID) {
	t.Helper()
	r := newRegistry()
	p := newControllerProvider()

	require.NoError(t, r.RegisterPropertyProvider(controllerTag, p))
	require.NoError(t, r.RegisterTypeName(controllerTag, "Controller"))
	r.MustRegisterProperty(controllerTag, "IP Address", "Address the controller listens on", property.ReadOnly)
	r.MustRegisterProperty(controllerTag, "Desired Speed", "Target speed in m/s", 0)
	r.MustRegisterProperty(controllerTag, "Desired Yaw", "Target yaw rate in rad/s", 0)

	p.objects[2] = &controller{IPAddress: "10.0.0.5", DesiredSpeed: 1.0, DesiredYaw: -0.3}
	return r, p, ids.MakeID(controllerTag, 2)
}

func TestRegisterProperty_CaseInsensitiveAndOrdered(t *testing.T) {
	r := newRegistry()
	const tag ids.TypeTag = 3

	speed, err := r.RegisterProperty(tag, "Speed", "", 0)
	require.NoError(t, err)
	yaw, err := r.RegisterProperty(tag, "Yaw", "", property.Advanced)
	require.NoError(t, err)

	assert.Equal(t, property.Index(0), speed)
	assert.Equal(t, property.Index(1), yaw)
	assert.Equal(t, property.Index(0), r.GetPropertyIndexByName(tag, "speed"))
	assert.Equal(t, property.Index(1), r.GetPropertyIndexByName(tag, "YAW"))
	assert.Equal(t, property.InvalidIndex, r.GetPropertyIndexByName(tag, "pitch"))
	assert.Equal(t, property.InvalidIndex, r.GetPropertyIndexByName(99, "speed"))

	assert.Equal(t, 2, r.GetNumProperties(tag))
	assert.Equal(t, []string{"Speed", "Yaw"}, r.GetPropertyNames(tag))

	desc := r.GetPropertyDescriptor(tag, yaw)
	assert.True(t, desc.IsValid())
	assert.True(t, desc.Flags.Has(property.Advanced))
}

func TestRegisterProperty_DuplicateName(t *testing.T) {
	r := newRegistry()
	const tag ids.TypeTag = 3
	first := r.MustRegisterProperty(tag, "Speed", "first", 0)

	idx, err := r.RegisterProperty(tag, "SPEED", "second", 0)
	require.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, property.InvalidIndex, idx)

	var dup *DuplicateNameError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, first, dup.Existing)

	assert.Equal(t, first, r.GetPropertyIndexByName(tag, "speed"))
	assert.Equal(t, 1, r.GetNumProperties(tag))
	assert.Equal(t, "first", r.GetPropertyDescriptor(tag, first).Description)

	assert.Panics(t, func() { r.MustRegisterProperty(tag, "speed", "", 0) })
}

func TestRegisterProperty_Rejections(t *testing.T) {
	r := newRegistry()

	_, err := r.RegisterProperty(ids.InvalidTypeTag, "Speed", "", 0)
	assert.ErrorIs(t, err, ErrInvalidTypeTag)

	_, err = r.RegisterProperty(0x10000, "Speed", "", 0)
	assert.ErrorIs(t, err, ErrTypeTagOutOfRange)

	_, err = r.RegisterProperty(3, "Speed", "", property.Valid)
	assert.ErrorIs(t, err, ErrReservedFlags)

	_, err = r.RegisterProperty(3, "  ", "", 0)
	assert.ErrorIs(t, err, ErrEmptyName)

	assert.Zero(t, r.GetNumProperties(3))
}

func TestRegisterProperty_UnicodeFolding(t *testing.T) {
	r := newRegistry()
	idx := r.MustRegisterProperty(3, "Straße", "", 0)
	assert.Equal(t, idx, r.GetPropertyIndexByName(3, "STRASSE"))
}

func TestGetPropertyGroupDescriptor_Unregistered(t *testing.T) {
	r := newRegistry()
	g := r.GetPropertyGroupDescriptor(42)
	require.NotNil(t, g)
	assert.Zero(t, g.Len())
	assert.False(t, g.At(0).IsValid())
	assert.Same(t, g, r.GetPropertyGroupDescriptor(43), "unregistered tags share one empty descriptor")

	r.MustRegisterProperty(5, "Speed", "", 0)
	require.NoError(t, r.RegisterTypeName(5, "Vehicle"))
	g5 := r.GetPropertyGroupDescriptor(5)
	assert.Equal(t, ids.TypeTag(5), g5.Type)
	assert.Equal(t, "Vehicle", g5.TypeName)
	assert.Zero(t, r.GetPropertyGroupDescriptor(42).Len())
}

func TestRegisterPropertyProvider_AlreadyRegistered(t *testing.T) {
	r := newRegistry()
	p := newControllerProvider()

	require.NoError(t, r.RegisterPropertyProvider(controllerTag, p))
	err := r.RegisterPropertyProvider(controllerTag, newControllerProvider())
	require.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Same(t, p, r.Provider(controllerTag))

	assert.True(t, r.UnregisterPropertyProvider(controllerTag))
	assert.False(t, r.UnregisterPropertyProvider(controllerTag))
	assert.NoError(t, r.RegisterPropertyProvider(controllerTag, newControllerProvider()))

	assert.ErrorIs(t, r.RegisterPropertyProvider(8, nil), ErrNilProvider)
	assert.ErrorIs(t, r.RegisterPropertyProvider(0, p), ErrInvalidTypeTag)
	assert.Panics(t, func() { r.MustRegisterPropertyProvider(controllerTag, p) })
}

func TestProviderInfo(t *testing.T) {
	r := newRegistry()
	a, b := newControllerProvider(), newControllerProvider()
	require.NoError(t, r.RegisterPropertyProvider(9, b))
	require.NoError(t, r.RegisterPropertyProvider(4, a))

	assert.Equal(t, []ids.TypeTag{4, 9}, r.GetHandledTypes())
	info := r.GetPropertyProviderInfo()
	require.Len(t, info, 2)
	assert.Equal(t, ids.TypeTag(4), info[0].Type)
	assert.Same(t, a, info[0].Provider)

	a.objects[1] = &controller{}
	assert.Equal(t, []ids.EntityID{ids.MakeID(4, 1)}, r.GetIdsOfType(4))
	assert.Nil(t, r.GetIdsOfType(5))
}

func TestGetProperties_NoProviderIsEmpty(t *testing.T) {
	r := newRegistry()
	r.MustRegisterProperty(5, "Speed", "", 0)

	set := r.GetProperties(ids.MakeID(5, 1))
	assert.True(t, set.Empty())
	assert.Nil(t, r.GetObjectPropertySnapshot(ids.MakeID(6, 1)))

	_, ok := r.GetProperty(ids.MakeID(5, 1), 0)
	assert.False(t, ok)
}

func TestControllerScenario(t *testing.T) {
	r, p, id := setupController(t)

	set := r.GetProperties(id)
	require.Len(t, set.Properties, 3)
	assert.Equal(t, "10.0.0.5", set.Properties[0].Str())
	assert.Equal(t, 1.0, set.Properties[1].Float64())
	assert.Equal(t, -0.3, set.Properties[2].Float64())

	el := r.AddPropertiesToElement(id, nil, "Controller", true)
	require.NotNil(t, el)
	assert.Equal(t, id.String(), el.SelectAttrValue("id", ""))

	entries := el.SelectElements("Property")
	require.Len(t, entries, 3)
	for _, e := range entries {
		switch e.SelectAttrValue("name", "") {
		case "Desired Speed":
			e.CreateAttr("value", "2.0")
		case "IP Address":
			assert.Equal(t, "10.0.0.5", e.SelectAttrValue("value", ""))
			e.CreateAttr("value", "192.168.1.1")
		}
	}

	n := r.GetPropertiesFromElement(id, el)
	assert.Equal(t, 2, n, "speed and yaw are written, the read-only address is not")

	c := p.objects[2]
	assert.Equal(t, "10.0.0.5", c.IPAddress)
	assert.Equal(t, 2.0, c.DesiredSpeed)
	assert.Equal(t, -0.3, c.DesiredYaw)
	assert.Equal(t, []property.Index{1, 2}, p.changed)
}

func TestDocumentRoundTripRestoresValues(t *testing.T) {
	r, p, id := setupController(t)
	c := p.objects[2]
	c.DesiredSpeed = 0.1 + 0.2
	c.DesiredYaw = -1e-9

	parent := etree.NewElement("Vehicles")
	el := r.AddPropertiesToElement(id, parent, "Controller", true)
	require.NotNil(t, el)
	assert.Len(t, parent.ChildElements(), 1)

	c.IPAddress = "changed"
	c.DesiredSpeed = 99
	c.DesiredYaw = 99

	r.GetPropertiesFromElement(id, el)
	assert.Equal(t, 0.1+0.2, c.DesiredSpeed)
	assert.Equal(t, -1e-9, c.DesiredYaw)
	assert.Equal(t, "changed", c.IPAddress, "read-only keeps its pre-load value")
}

func TestGetPropertiesFromElement_Tolerance(t *testing.T) {
	r, p, id := setupController(t)

	el := etree.NewElement("Controller")
	add := func(name, value string) {
		e := el.CreateElement("Property")
		e.CreateAttr("name", name)
		e.CreateAttr("value", value)
	}
	add("Turbo Mode", "true")
	add("desired speed", "fast")
	add("DESIRED YAW", "0.25")
	el.CreateElement("Property").CreateAttr("name", "Desired Speed")

	n := r.GetPropertiesFromElement(id, el)
	assert.Equal(t, 1, n)

	c := p.objects[2]
	assert.Equal(t, 1.0, c.DesiredSpeed, "unparsable value is skipped")
	assert.Equal(t, 0.25, c.DesiredYaw, "later entries still load")
	assert.Equal(t, "10.0.0.5", c.IPAddress)
}

func TestGetPropertiesFromElement_UnknownOnlyChangesNothing(t *testing.T) {
	r, p, id := setupController(t)
	before := *p.objects[2]

	el := etree.NewElement("Controller")
	e := el.CreateElement("Property")
	e.CreateAttr("name", "Obsolete Field")
	e.CreateAttr("value", "1")

	assert.Zero(t, r.GetPropertiesFromElement(id, el))
	assert.Equal(t, before, *p.objects[2])
	assert.Empty(t, p.changed)
}

func TestAddPropertiesToElement_SkipsUnserializable(t *testing.T) {
	r := newRegistry()
	const tag ids.TypeTag = 11
	var secret, hidden, visible string = "s", "h", "v"
	p := &fnProvider{props: func(ids.EntityID) []property.Ref {
		return []property.Ref{property.StringRef(&secret), property.StringRef(&hidden), property.StringRef(&visible)}
	}}
	require.NoError(t, r.RegisterPropertyProvider(tag, p))
	r.MustRegisterProperty(tag, "Secret", "", property.NonSerializable)
	r.MustRegisterProperty(tag, "Hidden", "", property.Hidden)

	parent := etree.NewElement("Root")
	assert.Nil(t, r.AddPropertiesToElement(ids.MakeID(tag, 1), parent, "Obj", true))
	assert.Empty(t, parent.ChildElements(), "nothing serializable adds nothing")

	r.MustRegisterProperty(tag, "Visible", "", property.Developer)
	el := r.AddPropertiesToElement(ids.MakeID(tag, 1), parent, "Obj", false)
	require.NotNil(t, el)
	assert.Nil(t, el.SelectAttr("id"))
	entries := el.SelectElements("Property")
	require.Len(t, entries, 1)
	assert.Equal(t, "Visible", entries[0].SelectAttrValue("name", ""))
	assert.Equal(t, "v", entries[0].SelectAttrValue("value", ""))
}

type fnProvider struct {
	property.ProviderDefaults
	props func(ids.EntityID) []property.Ref
	isA   []ids.EntityID
	live  []ids.EntityID
}

func (p *fnProvider) GetProperties(id ids.EntityID) property.ObjectPropertySet {
	return property.ObjectPropertySet{IsA: p.isA, Properties: p.props(id)}
}

func (p *fnProvider) GetIdsOfType(ids.TypeTag) []ids.EntityID { return p.live }

func TestGetObjectName(t *testing.T) {
	r := newRegistry()
	const named, base, unnamed ids.TypeTag = 20, 21, 22

	label := "Front Camera"
	require.NoError(t, r.RegisterPropertyProvider(named, &fnProvider{props: func(ids.EntityID) []property.Ref {
		return []property.Ref{property.StringRef(&label)}
	}}))
	r.MustRegisterProperty(named, "Name", "", 0)
	assert.Equal(t, "Front Camera", r.GetObjectName(ids.MakeID(named, 1)))

	rate := 30.0
	require.NoError(t, r.RegisterPropertyProvider(unnamed, &fnProvider{
		props: func(ids.EntityID) []property.Ref { return []property.Ref{property.Float64Ref(&rate)} },
		isA:   []ids.EntityID{ids.MakeID(named, 1)},
	}))
	r.MustRegisterProperty(unnamed, "Frame Rate", "", 0)
	assert.Equal(t, "Front Camera", r.GetObjectName(ids.MakeID(unnamed, 3)), "name found through isA")

	require.NoError(t, r.RegisterTypeName(base, "TypeX"))
	assert.Equal(t, "TypeX[3]", r.GetObjectName(ids.MakeID(base, 3)))

	raw := ids.MakeID(99, 3)
	assert.Equal(t, raw.String(), r.GetObjectName(raw))
	assert.Equal(t, ids.InvalidID.String(), r.GetObjectName(ids.InvalidID))
}

func TestListeners(t *testing.T) {
	r := newRegistry()
	p := newControllerProvider()
	l := &recordingListener{}
	r.AddListener(l)
	r.AddListener(l)

	require.NoError(t, r.RegisterPropertyProvider(3, p))
	require.NoError(t, r.RegisterPropertyProvider(4, p))
	require.NoError(t, r.RegisterPropertyProvider(5, newControllerProvider()))

	assert.Equal(t, 2, r.UnregisterProvider(p))
	assert.Equal(t, []ids.TypeTag{3, 4}, l.destroyed)
	assert.Equal(t, []ids.TypeTag{5}, r.GetHandledTypes())

	r.RemoveListener(l)
	r.UnregisterPropertyProvider(5)
	assert.Equal(t, []ids.TypeTag{3, 4}, l.destroyed)
	assert.Zero(t, r.Events().Subscribers(EventProviderDestroyed))
}

func TestDescriptorsOutliveProvider(t *testing.T) {
	r, _, id := setupController(t)
	r.UnregisterPropertyProvider(controllerTag)

	assert.Equal(t, property.Index(1), r.GetPropertyIndexByName(controllerTag, "desired speed"))
	assert.True(t, r.GetProperties(id).Empty())

	el := etree.NewElement("Controller")
	e := el.CreateElement("Property")
	e.CreateAttr("name", "Desired Speed")
	e.CreateAttr("value", "3")
	assert.Zero(t, r.GetPropertiesFromElement(id, el))
	assert.Equal(t, []ids.TypeTag{controllerTag}, r.DescribedTypes())
}

func TestSetProperty(t *testing.T) {
	r, p, id := setupController(t)
	var events []PropertyChanged
	_, err := r.Events().Subscribe(EventPropertyChanged, func(e bus.Event) error {
		events = append(events, e.Data().(PropertyChanged))
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, r.SetProperty(id, 1, fields.Float64Value(4.5)))
	assert.Equal(t, 4.5, p.objects[2].DesiredSpeed)

	require.NoError(t, r.SetPropertyByName(id, "desired yaw", "0.125"))
	assert.Equal(t, 0.125, p.objects[2].DesiredYaw)

	assert.Equal(t, []property.Index{1, 2}, p.changed)
	assert.Equal(t, []PropertyChanged{{ID: id, Index: 1}, {ID: id, Index: 2}}, events)

	err = r.SetProperty(id, 0, fields.StringValue("1.1.1.1"))
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.Equal(t, "10.0.0.5", p.objects[2].IPAddress)

	err = r.SetProperty(id, 1, fields.StringValue("fast"))
	assert.ErrorIs(t, err, fields.ErrTypeMismatch)

	err = r.SetPropertyByName(id, "Desired Speed", "fast")
	assert.ErrorIs(t, err, fields.ErrUnparsable)

	var perr *PropertyError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Desired Speed", perr.Name)

	assert.ErrorIs(t, r.SetPropertyByName(id, "Turbo", "1"), ErrUnknownProperty)
	assert.ErrorIs(t, r.SetProperty(id, 7, fields.Float64Value(1)), ErrInvalidIndex)
	assert.ErrorIs(t, r.SetProperty(ids.MakeID(controllerTag, 5), 1, fields.Float64Value(1)), ErrNoProperty)

	r.UnregisterPropertyProvider(controllerTag)
	assert.ErrorIs(t, r.SetProperty(id, 1, fields.Float64Value(1)), ErrNoProvider)
	assert.Len(t, events, 2)
}

func TestImposeProperties(t *testing.T) {
	r, p, id := setupController(t)

	n := r.ImposeProperties(id, []fields.Value{
		fields.StringValue("1.1.1.1"),
		{},
		fields.Float64Value(0.5),
		fields.Float64Value(8),
	}, true)

	assert.Equal(t, 1, n)
	c := p.objects[2]
	assert.Equal(t, "10.0.0.5", c.IPAddress)
	assert.Equal(t, 1.0, c.DesiredSpeed)
	assert.Equal(t, 0.5, c.DesiredYaw)

	n = r.ImposeProperties(id, []fields.Value{{}, fields.Int32Value(3)}, false)
	assert.Zero(t, n, "kind mismatch is skipped")
}

func TestOnPropertyUpdated(t *testing.T) {
	r, p, id := setupController(t)
	r.OnPropertyUpdated(id, 2)
	r.OnPropertyUpdated(ids.MakeID(50, 1), 0)
	assert.Equal(t, []property.Index{2}, p.changed)
}

func TestSnapshots(t *testing.T) {
	r, p, id := setupController(t)
	p.objects[4] = &controller{IPAddress: "10.0.0.9", DesiredSpeed: 3}

	hidden := newControllerProvider()
	hidden.private = true
	hidden.objects[1] = &controller{}
	require.NoError(t, r.RegisterPropertyProvider(8, hidden))

	snap := r.GetObjectPropertySnapshot(id)
	require.Len(t, snap, 3)
	assert.Equal(t, "IP Address", snap[0].Name)
	assert.True(t, snap[0].Flags.Has(property.ReadOnly|property.Valid))
	assert.Equal(t, fields.Float64Value(-0.3), snap[2].Value)

	p.objects[2].DesiredYaw = 5
	assert.Equal(t, -0.3, snap[2].Value.Float64(), "snapshots own their values")

	full := r.GetFullPropertySnapshot()
	require.Len(t, full, 2)
	assert.Equal(t, id, full[0].ID)
	assert.Equal(t, ids.MakeID(controllerTag, 4), full[1].ID)
	assert.Equal(t, "10.0.0.9", full[1].Properties[0].Value.Str())
}

func TestExportImport(t *testing.T) {
	r, p, id := setupController(t)
	p.objects[4] = &controller{IPAddress: "10.0.0.9", DesiredSpeed: 3, DesiredYaw: 0.5}

	var buf bytes.Buffer
	require.NoError(t, r.Export(&buf))
	out := buf.String()
	assert.Contains(t, out, `<Properties>`)
	assert.Contains(t, out, `<Object id="`+id.String()+`">`)
	assert.Contains(t, out, `<Property name="Desired Yaw" value="-0.3"/>`)

	p.objects[2].DesiredSpeed = 0
	p.objects[4].DesiredYaw = 0

	n, err := r.Import(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 1.0, p.objects[2].DesiredSpeed)
	assert.Equal(t, 0.5, p.objects[4].DesiredYaw)

	_, err = r.Import(strings.NewReader(`<Other/>`))
	assert.Error(t, err)

	doc := `<Properties><Object id="bogus"/><Object id="` + id.String() + `"><Property name="Desired Speed" value="6"/></Object></Properties>`
	n, err = r.Import(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 6.0, p.objects[2].DesiredSpeed)
}

func TestWriteDocumentation(t *testing.T) {
	r, _, _ := setupController(t)
	r.MustRegisterProperty(controllerTag, "Debug Bus", "internal", property.Hidden)
	r.MustRegisterProperty(12, "Gain <dB>", "Amplifier gain", property.Advanced)

	var buf bytes.Buffer
	require.NoError(t, r.WriteDocumentation(&buf))
	html := buf.String()

	assert.Contains(t, html, "<h2 id=\"type-7\">Controller</h2>")
	assert.Contains(t, html, "<td>IP Address</td><td>ReadOnly</td><td>Address the controller listens on</td>")
	assert.Contains(t, html, "Type 12")
	assert.Contains(t, html, "Gain &lt;dB&gt;")
	assert.NotContains(t, html, "Debug Bus")
}
