package fields

import (
	"slices"
	"time"

	"github.com/zeusync/introspect/internal/core/ids"
)

// Value owns a copy of one value of one Kind. The zero Value is invalid.
//
// Accessors must be called with the kind the value holds; asking an int32 value
// for a string is a programming error and panics with a *TypeMismatchError.
type Value struct {
	kind Kind
	v    any
}

func BoolValue(v bool) Value                   { return Value{KindBool, v} }
func Int32Value(v int32) Value                 { return Value{KindInt32, v} }
func Uint32Value(v uint32) Value               { return Value{KindUint32, v} }
func Int64Value(v int64) Value                 { return Value{KindInt64, v} }
func Uint64Value(v uint64) Value               { return Value{KindUint64, v} }
func Float32Value(v float32) Value             { return Value{KindFloat32, v} }
func Float64Value(v float64) Value             { return Value{KindFloat64, v} }
func StringValue(v string) Value               { return Value{KindString, v} }
func EnumValue(v Enum) Value                   { return Value{KindEnum, v} }
func FlagValue(v Flag) Value                   { return Value{KindFlag, v} }
func Vector2Value(v Vector2) Value             { return Value{KindVector2, v} }
func Vector3Value(v Vector3) Value             { return Value{KindVector3, v} }
func Vector4Value(v Vector4) Value             { return Value{KindVector4, v} }
func QuaternionValue(v Quaternion) Value       { return Value{KindQuaternion, v} }
func ColorValue(v Color) Value                 { return Value{KindColor, v} }
func CoordinateValue(v Coordinate) Value       { return Value{KindCoordinate, v} }
func DateTimeValue(v time.Time) Value          { return Value{KindDateTime, v} }
func ValueListValue(v ValueList) Value         { return Value{KindValueList, cloneValueList(v)} }
func NameValueListValue(v NameValueList) Value { return Value{KindNameValueList, slices.Clone(v)} }
func EntityIDValue(v ids.EntityID) Value       { return Value{KindEntityID, v} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsValid() bool { return v.kind.IsValid() }

// Any returns the held value as its concrete Go type.
func (v Value) Any() any { return v.v }

func (v Value) Bool() bool                   { return as[bool](v, KindBool) }
func (v Value) Int32() int32                 { return as[int32](v, KindInt32) }
func (v Value) Uint32() uint32               { return as[uint32](v, KindUint32) }
func (v Value) Int64() int64                 { return as[int64](v, KindInt64) }
func (v Value) Uint64() uint64               { return as[uint64](v, KindUint64) }
func (v Value) Float32() float32             { return as[float32](v, KindFloat32) }
func (v Value) Float64() float64             { return as[float64](v, KindFloat64) }
func (v Value) Str() string                  { return as[string](v, KindString) }
func (v Value) Enum() Enum                   { return as[Enum](v, KindEnum) }
func (v Value) Flag() Flag                   { return as[Flag](v, KindFlag) }
func (v Value) Vector2() Vector2             { return as[Vector2](v, KindVector2) }
func (v Value) Vector3() Vector3             { return as[Vector3](v, KindVector3) }
func (v Value) Vector4() Vector4             { return as[Vector4](v, KindVector4) }
func (v Value) Quaternion() Quaternion       { return as[Quaternion](v, KindQuaternion) }
func (v Value) Color() Color                 { return as[Color](v, KindColor) }
func (v Value) Coordinate() Coordinate       { return as[Coordinate](v, KindCoordinate) }
func (v Value) DateTime() time.Time          { return as[time.Time](v, KindDateTime) }
func (v Value) ValueList() ValueList         { return cloneValueList(as[ValueList](v, KindValueList)) }
func (v Value) NameValueList() NameValueList { return slices.Clone(as[NameValueList](v, KindNameValueList)) }
func (v Value) EntityID() ids.EntityID       { return as[ids.EntityID](v, KindEntityID) }

// String renders the value with Format.
func (v Value) String() string { return Format(v) }

// Equal compares kinds and rendered forms, so values that serialize the same
// are equal.
func (v Value) Equal(other Value) bool {
	return v.kind == other.kind && Format(v) == Format(other)
}

func as[T any](v Value, want Kind) T {
	if v.kind != want {
		panic(&TypeMismatchError{Expected: want, Actual: v.kind})
	}
	return v.v.(T)
}

func cloneValueList(l ValueList) ValueList {
	if l == nil {
		return nil
	}
	out := make(ValueList, len(l))
	for i, v := range l {
		out[i] = v.clone()
	}
	return out
}

func (v Value) clone() Value {
	switch v.kind {
	case KindValueList:
		return Value{KindValueList, cloneValueList(v.v.(ValueList))}
	case KindNameValueList:
		return Value{KindNameValueList, slices.Clone(v.v.(NameValueList))}
	default:
		return v
	}
}
