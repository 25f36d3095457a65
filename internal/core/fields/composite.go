package fields

import (
	"strconv"
	"strings"
)

type Vector2 struct {
	X, Y float64
}

type Vector3 struct {
	X, Y, Z float64
}

type Vector4 struct {
	X, Y, Z, W float64
}

// Quaternion is stored scalar first.
type Quaternion struct {
	W, X, Y, Z float64
}

// IdentityQuaternion is the no-rotation quaternion.
var IdentityQuaternion = Quaternion{W: 1}

// Color channels are in [0,1].
type Color struct {
	R, G, B, A float32
}

// CoordinateSystem names the frame a Coordinate is expressed in.
type CoordinateSystem uint8

const (
	// Local is a simulation-local cartesian frame in meters.
	Local CoordinateSystem = iota
	// Geodetic is latitude, longitude in degrees and altitude in meters.
	Geodetic
	// UTM is easting, northing and altitude in meters.
	UTM
)

var coordinateSystemNames = map[CoordinateSystem]string{
	Local:    "local",
	Geodetic: "geodetic",
	UTM:      "utm",
}

func (c CoordinateSystem) String() string {
	if name, ok := coordinateSystemNames[c]; ok {
		return name
	}
	return "system(" + strconv.Itoa(int(c)) + ")"
}

func parseCoordinateSystem(name string) (CoordinateSystem, bool) {
	for sys, n := range coordinateSystemNames {
		if strings.EqualFold(n, name) {
			return sys, true
		}
	}
	return Local, false
}

type Coordinate struct {
	System  CoordinateSystem
	X, Y, Z float64
}

// Enum is a named value of a named enumeration, rendered as Type.Name.
type Enum struct {
	Type string
	Name string
}

// Flag is a bit vector of a named flag set, rendered as Type.0x<bits>.
type Flag struct {
	Type string
	Bits uint32
}

func (f Flag) Has(bits uint32) bool { return f.Bits&bits == bits }

// ValueList is an ordered list of heterogeneous values.
type ValueList []Value

type NameValue struct {
	Name  string
	Value string
}

// NameValueList is an ordered list of string pairs.
type NameValueList []NameValue

// Get returns the value stored for name, matching names exactly.
func (l NameValueList) Get(name string) (string, bool) {
	for _, nv := range l {
		if nv.Name == name {
			return nv.Value, true
		}
	}
	return "", false
}
