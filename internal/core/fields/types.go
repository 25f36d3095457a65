package fields

// Kind identifies which member of the Value union is in use. It is also the
// declared kind of a property slot; a slot only ever accepts values of its own
// kind, there is no implicit widening.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindEnum
	KindFlag
	KindVector2
	KindVector3
	KindVector4
	KindQuaternion
	KindColor
	KindCoordinate
	KindDateTime
	KindValueList
	KindNameValueList
	KindEntityID

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:       "invalid",
	KindBool:          "bool",
	KindInt32:         "int32",
	KindUint32:        "uint32",
	KindInt64:         "int64",
	KindUint64:        "uint64",
	KindFloat32:       "float32",
	KindFloat64:       "float64",
	KindString:        "string",
	KindEnum:          "enum",
	KindFlag:          "flag",
	KindVector2:       "vector2",
	KindVector3:       "vector3",
	KindVector4:       "vector4",
	KindQuaternion:    "quaternion",
	KindColor:         "color",
	KindCoordinate:    "coordinate",
	KindDateTime:      "datetime",
	KindValueList:     "valuelist",
	KindNameValueList: "namevaluelist",
	KindEntityID:      "entityid",
}

func (k Kind) String() string {
	if k >= kindCount {
		return "invalid"
	}
	return kindNames[k]
}

// IsValid reports whether k names one of the supported kinds.
func (k Kind) IsValid() bool {
	return k > KindInvalid && k < kindCount
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k := KindBool; k < kindCount; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return KindInvalid, false
}
