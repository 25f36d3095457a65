package property

import (
	"time"

	"github.com/zeusync/introspect/internal/core/fields"
	"github.com/zeusync/introspect/internal/core/ids"
)

// Ref is a non-owning, kind-tagged handle onto one live field of one live
// instance. Providers build Refs on demand; a Ref must not outlive the call that
// produced it because the owner may free or move the instance on a later tick.
//
// Typed accessors must match the Ref's kind. A mismatch means a provider
// registered a field with the wrong kind and panics with a
// *fields.TypeMismatchError.
type Ref struct {
	kind fields.Kind
	ptr  any
}

// InvalidRef is the zero Ref. It has kind fields.KindInvalid.
var InvalidRef = Ref{}

func BoolRef(p *bool) Ref                          { return newRef(fields.KindBool, p) }
func Int32Ref(p *int32) Ref                        { return newRef(fields.KindInt32, p) }
func Uint32Ref(p *uint32) Ref                      { return newRef(fields.KindUint32, p) }
func Int64Ref(p *int64) Ref                        { return newRef(fields.KindInt64, p) }
func Uint64Ref(p *uint64) Ref                      { return newRef(fields.KindUint64, p) }
func Float32Ref(p *float32) Ref                    { return newRef(fields.KindFloat32, p) }
func Float64Ref(p *float64) Ref                    { return newRef(fields.KindFloat64, p) }
func StringRef(p *string) Ref                      { return newRef(fields.KindString, p) }
func EnumRef(p *fields.Enum) Ref                   { return newRef(fields.KindEnum, p) }
func FlagRef(p *fields.Flag) Ref                   { return newRef(fields.KindFlag, p) }
func Vector2Ref(p *fields.Vector2) Ref             { return newRef(fields.KindVector2, p) }
func Vector3Ref(p *fields.Vector3) Ref             { return newRef(fields.KindVector3, p) }
func Vector4Ref(p *fields.Vector4) Ref             { return newRef(fields.KindVector4, p) }
func QuaternionRef(p *fields.Quaternion) Ref       { return newRef(fields.KindQuaternion, p) }
func ColorRef(p *fields.Color) Ref                 { return newRef(fields.KindColor, p) }
func CoordinateRef(p *fields.Coordinate) Ref       { return newRef(fields.KindCoordinate, p) }
func DateTimeRef(p *time.Time) Ref                 { return newRef(fields.KindDateTime, p) }
func ValueListRef(p *fields.ValueList) Ref         { return newRef(fields.KindValueList, p) }
func NameValueListRef(p *fields.NameValueList) Ref { return newRef(fields.KindNameValueList, p) }
func EntityIDRef(p *ids.EntityID) Ref              { return newRef(fields.KindEntityID, p) }

func newRef[T any](kind fields.Kind, p *T) Ref {
	if p == nil {
		panic("property: nil field pointer for " + kind.String() + " ref")
	}
	return Ref{kind: kind, ptr: p}
}

// Kind returns the declared kind of the referenced field.
func (r Ref) Kind() fields.Kind { return r.kind }

func (r Ref) IsValid() bool { return r.kind.IsValid() }

func (r Ref) Bool() bool                          { return *field[bool](r, fields.KindBool) }
func (r Ref) SetBool(v bool)                      { *field[bool](r, fields.KindBool) = v }
func (r Ref) Int32() int32                        { return *field[int32](r, fields.KindInt32) }
func (r Ref) SetInt32(v int32)                    { *field[int32](r, fields.KindInt32) = v }
func (r Ref) Uint32() uint32                      { return *field[uint32](r, fields.KindUint32) }
func (r Ref) SetUint32(v uint32)                  { *field[uint32](r, fields.KindUint32) = v }
func (r Ref) Int64() int64                        { return *field[int64](r, fields.KindInt64) }
func (r Ref) SetInt64(v int64)                    { *field[int64](r, fields.KindInt64) = v }
func (r Ref) Uint64() uint64                      { return *field[uint64](r, fields.KindUint64) }
func (r Ref) SetUint64(v uint64)                  { *field[uint64](r, fields.KindUint64) = v }
func (r Ref) Float32() float32                    { return *field[float32](r, fields.KindFloat32) }
func (r Ref) SetFloat32(v float32)                { *field[float32](r, fields.KindFloat32) = v }
func (r Ref) Float64() float64                    { return *field[float64](r, fields.KindFloat64) }
func (r Ref) SetFloat64(v float64)                { *field[float64](r, fields.KindFloat64) = v }
func (r Ref) Str() string                         { return *field[string](r, fields.KindString) }
func (r Ref) SetStr(v string)                     { *field[string](r, fields.KindString) = v }
func (r Ref) Enum() fields.Enum                   { return *field[fields.Enum](r, fields.KindEnum) }
func (r Ref) SetEnum(v fields.Enum)               { *field[fields.Enum](r, fields.KindEnum) = v }
func (r Ref) Flag() fields.Flag                   { return *field[fields.Flag](r, fields.KindFlag) }
func (r Ref) SetFlag(v fields.Flag)               { *field[fields.Flag](r, fields.KindFlag) = v }
func (r Ref) Vector2() fields.Vector2             { return *field[fields.Vector2](r, fields.KindVector2) }
func (r Ref) SetVector2(v fields.Vector2)         { *field[fields.Vector2](r, fields.KindVector2) = v }
func (r Ref) Vector3() fields.Vector3             { return *field[fields.Vector3](r, fields.KindVector3) }
func (r Ref) SetVector3(v fields.Vector3)         { *field[fields.Vector3](r, fields.KindVector3) = v }
func (r Ref) Vector4() fields.Vector4             { return *field[fields.Vector4](r, fields.KindVector4) }
func (r Ref) SetVector4(v fields.Vector4)         { *field[fields.Vector4](r, fields.KindVector4) = v }
func (r Ref) Quaternion() fields.Quaternion       { return *field[fields.Quaternion](r, fields.KindQuaternion) }
func (r Ref) SetQuaternion(v fields.Quaternion)   { *field[fields.Quaternion](r, fields.KindQuaternion) = v }
func (r Ref) Color() fields.Color                 { return *field[fields.Color](r, fields.KindColor) }
func (r Ref) SetColor(v fields.Color)             { *field[fields.Color](r, fields.KindColor) = v }
func (r Ref) Coordinate() fields.Coordinate       { return *field[fields.Coordinate](r, fields.KindCoordinate) }
func (r Ref) SetCoordinate(v fields.Coordinate)   { *field[fields.Coordinate](r, fields.KindCoordinate) = v }
func (r Ref) DateTime() time.Time                 { return *field[time.Time](r, fields.KindDateTime) }
func (r Ref) SetDateTime(v time.Time)             { *field[time.Time](r, fields.KindDateTime) = v }
func (r Ref) ValueList() fields.ValueList         { return *field[fields.ValueList](r, fields.KindValueList) }
func (r Ref) SetValueList(v fields.ValueList)     { *field[fields.ValueList](r, fields.KindValueList) = v }
func (r Ref) NameValueList() fields.NameValueList { return *field[fields.NameValueList](r, fields.KindNameValueList) }
func (r Ref) SetNameValueList(v fields.NameValueList) {
	*field[fields.NameValueList](r, fields.KindNameValueList) = v
}
func (r Ref) EntityID() ids.EntityID     { return *field[ids.EntityID](r, fields.KindEntityID) }
func (r Ref) SetEntityID(v ids.EntityID) { *field[ids.EntityID](r, fields.KindEntityID) = v }

// Value copies the current field value into an owned fields.Value.
func (r Ref) Value() fields.Value {
	switch r.kind {
	case fields.KindBool:
		return fields.BoolValue(r.Bool())
	case fields.KindInt32:
		return fields.Int32Value(r.Int32())
	case fields.KindUint32:
		return fields.Uint32Value(r.Uint32())
	case fields.KindInt64:
		return fields.Int64Value(r.Int64())
	case fields.KindUint64:
		return fields.Uint64Value(r.Uint64())
	case fields.KindFloat32:
		return fields.Float32Value(r.Float32())
	case fields.KindFloat64:
		return fields.Float64Value(r.Float64())
	case fields.KindString:
		return fields.StringValue(r.Str())
	case fields.KindEnum:
		return fields.EnumValue(r.Enum())
	case fields.KindFlag:
		return fields.FlagValue(r.Flag())
	case fields.KindVector2:
		return fields.Vector2Value(r.Vector2())
	case fields.KindVector3:
		return fields.Vector3Value(r.Vector3())
	case fields.KindVector4:
		return fields.Vector4Value(r.Vector4())
	case fields.KindQuaternion:
		return fields.QuaternionValue(r.Quaternion())
	case fields.KindColor:
		return fields.ColorValue(r.Color())
	case fields.KindCoordinate:
		return fields.CoordinateValue(r.Coordinate())
	case fields.KindDateTime:
		return fields.DateTimeValue(r.DateTime())
	case fields.KindValueList:
		return fields.ValueListValue(r.ValueList())
	case fields.KindNameValueList:
		return fields.NameValueListValue(r.NameValueList())
	case fields.KindEntityID:
		return fields.EntityIDValue(r.EntityID())
	default:
		return fields.Value{}
	}
}

// SetFromValue writes v into the live field. Unlike the typed setters, a kind
// mismatch is reported as a *fields.TypeMismatchError and the field is left
// untouched.
func (r Ref) SetFromValue(v fields.Value) error {
	if v.Kind() != r.kind || !r.IsValid() {
		return &fields.TypeMismatchError{Expected: r.kind, Actual: v.Kind()}
	}
	switch r.kind {
	case fields.KindBool:
		r.SetBool(v.Bool())
	case fields.KindInt32:
		r.SetInt32(v.Int32())
	case fields.KindUint32:
		r.SetUint32(v.Uint32())
	case fields.KindInt64:
		r.SetInt64(v.Int64())
	case fields.KindUint64:
		r.SetUint64(v.Uint64())
	case fields.KindFloat32:
		r.SetFloat32(v.Float32())
	case fields.KindFloat64:
		r.SetFloat64(v.Float64())
	case fields.KindString:
		r.SetStr(v.Str())
	case fields.KindEnum:
		r.SetEnum(v.Enum())
	case fields.KindFlag:
		r.SetFlag(v.Flag())
	case fields.KindVector2:
		r.SetVector2(v.Vector2())
	case fields.KindVector3:
		r.SetVector3(v.Vector3())
	case fields.KindVector4:
		r.SetVector4(v.Vector4())
	case fields.KindQuaternion:
		r.SetQuaternion(v.Quaternion())
	case fields.KindColor:
		r.SetColor(v.Color())
	case fields.KindCoordinate:
		r.SetCoordinate(v.Coordinate())
	case fields.KindDateTime:
		r.SetDateTime(v.DateTime())
	case fields.KindValueList:
		r.SetValueList(v.ValueList())
	case fields.KindNameValueList:
		r.SetNameValueList(v.NameValueList())
	case fields.KindEntityID:
		r.SetEntityID(v.EntityID())
	}
	return nil
}

// SetFromString parses s as the Ref's own kind and writes the result.
func (r Ref) SetFromString(s string) error {
	v, err := fields.Parse(r.kind, s)
	if err != nil {
		return err
	}
	return r.SetFromValue(v)
}

// String renders the current value regardless of kind. An invalid Ref renders
// as the empty string.
func (r Ref) String() string {
	if !r.IsValid() {
		return ""
	}
	return fields.Format(r.Value())
}

func field[T any](r Ref, want fields.Kind) *T {
	if r.kind != want {
		panic(&fields.TypeMismatchError{Expected: want, Actual: r.kind})
	}
	return r.ptr.(*T)
}
