package fields

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zeusync/introspect/internal/core/ids"
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Format renders v as the string used both for display and for documents.
// Parse(v.Kind(), Format(v)) yields a value equal to v.
func Format(v Value) string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.v.(bool))
	case KindInt32:
		return strconv.FormatInt(int64(v.v.(int32)), 10)
	case KindUint32:
		return strconv.FormatUint(uint64(v.v.(uint32)), 10)
	case KindInt64:
		return strconv.FormatInt(v.v.(int64), 10)
	case KindUint64:
		return strconv.FormatUint(v.v.(uint64), 10)
	case KindFloat32:
		return formatFloat32(v.v.(float32))
	case KindFloat64:
		return formatFloat(v.v.(float64))
	case KindString:
		return v.v.(string)
	case KindEnum:
		return formatEnum(v.v.(Enum))
	case KindFlag:
		f := v.v.(Flag)
		return fmt.Sprintf("%s.0x%x", f.Type, f.Bits)
	case KindVector2:
		p := v.v.(Vector2)
		return joinFloats(p.X, p.Y)
	case KindVector3:
		p := v.v.(Vector3)
		return joinFloats(p.X, p.Y, p.Z)
	case KindVector4:
		p := v.v.(Vector4)
		return joinFloats(p.X, p.Y, p.Z, p.W)
	case KindQuaternion:
		q := v.v.(Quaternion)
		return joinFloats(q.W, q.X, q.Y, q.Z)
	case KindColor:
		c := v.v.(Color)
		return strings.Join([]string{
			formatFloat32(c.R), formatFloat32(c.G), formatFloat32(c.B), formatFloat32(c.A),
		}, " ")
	case KindCoordinate:
		c := v.v.(Coordinate)
		return c.System.String() + " " + joinFloats(c.X, c.Y, c.Z)
	case KindDateTime:
		return v.v.(time.Time).Format(time.RFC3339Nano)
	case KindValueList:
		return formatValueList(v.v.(ValueList))
	case KindNameValueList:
		return formatNameValueList(v.v.(NameValueList))
	case KindEntityID:
		return v.v.(ids.EntityID).String()
	default:
		return ""
	}
}

// Parse reads s as a value of the given kind. Surrounding whitespace is
// ignored for every kind except strings.
func Parse(kind Kind, s string) (Value, error) {
	if kind == KindString {
		return StringValue(s), nil
	}
	t := strings.TrimSpace(s)

	switch kind {
	case KindBool:
		b, ok := parseBool(t)
		if !ok {
			return Value{}, unparsable(kind, s, nil)
		}
		return BoolValue(b), nil
	case KindInt32:
		n, err := strconv.ParseInt(t, 10, 32)
		if err != nil {
			return Value{}, unparsable(kind, s, err)
		}
		return Int32Value(int32(n)), nil
	case KindUint32:
		n, err := strconv.ParseUint(t, 10, 32)
		if err != nil {
			return Value{}, unparsable(kind, s, err)
		}
		return Uint32Value(uint32(n)), nil
	case KindInt64:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return Value{}, unparsable(kind, s, err)
		}
		return Int64Value(n), nil
	case KindUint64:
		n, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return Value{}, unparsable(kind, s, err)
		}
		return Uint64Value(n), nil
	case KindFloat32:
		f, err := strconv.ParseFloat(t, 32)
		if err != nil {
			return Value{}, unparsable(kind, s, err)
		}
		return Float32Value(float32(f)), nil
	case KindFloat64:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return Value{}, unparsable(kind, s, err)
		}
		return Float64Value(f), nil
	case KindEnum:
		return parseEnum(t)
	case KindFlag:
		dot := strings.LastIndexByte(t, '.')
		if dot < 0 {
			return Value{}, unparsable(kind, s, nil)
		}
		bits, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(t[dot+1:]), "0x"), 16, 32)
		if err != nil {
			return Value{}, unparsable(kind, s, err)
		}
		return FlagValue(Flag{Type: t[:dot], Bits: uint32(bits)}), nil
	case KindVector2:
		f, err := parseFloats(kind, t, 2)
		if err != nil {
			return Value{}, err
		}
		return Vector2Value(Vector2{f[0], f[1]}), nil
	case KindVector3:
		f, err := parseFloats(kind, t, 3)
		if err != nil {
			return Value{}, err
		}
		return Vector3Value(Vector3{f[0], f[1], f[2]}), nil
	case KindVector4:
		f, err := parseFloats(kind, t, 4)
		if err != nil {
			return Value{}, err
		}
		return Vector4Value(Vector4{f[0], f[1], f[2], f[3]}), nil
	case KindQuaternion:
		f, err := parseFloats(kind, t, 4)
		if err != nil {
			return Value{}, err
		}
		return QuaternionValue(Quaternion{W: f[0], X: f[1], Y: f[2], Z: f[3]}), nil
	case KindColor:
		return parseColor(t)
	case KindCoordinate:
		return parseCoordinate(t)
	case KindDateTime:
		for _, layout := range dateTimeLayouts {
			if ts, err := time.Parse(layout, t); err == nil {
				return DateTimeValue(ts), nil
			}
		}
		return Value{}, unparsable(kind, s, nil)
	case KindValueList:
		return parseValueList(t)
	case KindNameValueList:
		return parseNameValueList(t)
	case KindEntityID:
		id, err := ids.Parse(t)
		if err != nil {
			return Value{}, unparsable(kind, s, err)
		}
		return EntityIDValue(id), nil
	default:
		return Value{}, unparsable(kind, s, nil)
	}
}

// formatEnum renders Type.Name, or Name alone for an untyped enum. Halves that
// contain a dot, a quote or surrounding space are quoted: "a.b"."c".
func formatEnum(e Enum) string {
	if !needsEnumQuote(e.Type) && !needsEnumQuote(e.Name) {
		if e.Type == "" {
			return e.Name
		}
		return e.Type + "." + e.Name
	}
	return strconv.Quote(e.Type) + "." + strconv.Quote(e.Name)
}

func needsEnumQuote(s string) bool {
	return strings.ContainsAny(s, `."`) || s != strings.TrimSpace(s)
}

func parseEnum(s string) (Value, error) {
	if !strings.HasPrefix(s, `"`) {
		typ, name, found := strings.Cut(s, ".")
		if !found {
			return EnumValue(Enum{Name: s}), nil
		}
		return EnumValue(Enum{Type: typ, Name: name}), nil
	}
	typ, rest, err := scanQuoted(s)
	if err != nil || !strings.HasPrefix(rest, ".") {
		return Value{}, unparsable(KindEnum, s, err)
	}
	name, rest, err := scanQuoted(rest[1:])
	if err != nil || rest != "" {
		return Value{}, unparsable(KindEnum, s, err)
	}
	return EnumValue(Enum{Type: typ, Name: name}), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatFloat32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func joinFloats(fs ...float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = formatFloat(f)
	}
	return strings.Join(parts, " ")
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "1", "t", "true", "yes", "on":
		return true, true
	case "0", "f", "false", "no", "off":
		return false, true
	}
	return false, false
}

// parseFloats accepts space or comma separated components.
func parseFloats(kind Kind, s string, n int) ([]float64, error) {
	parts := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(parts) != n {
		return nil, unparsable(kind, s, fmt.Errorf("want %d components, got %d", n, len(parts)))
	}
	out := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, unparsable(kind, s, err)
		}
		out[i] = f
	}
	return out, nil
}

func parseColor(s string) (Value, error) {
	parts := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(parts) != 3 && len(parts) != 4 {
		return Value{}, unparsable(KindColor, s, nil)
	}
	c := [4]float32{3: 1}
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return Value{}, unparsable(KindColor, s, err)
		}
		c[i] = float32(f)
	}
	return ColorValue(Color{R: c[0], G: c[1], B: c[2], A: c[3]}), nil
}

func parseCoordinate(s string) (Value, error) {
	system, rest, found := strings.Cut(s, " ")
	if !found {
		return Value{}, unparsable(KindCoordinate, s, nil)
	}
	sys, ok := parseCoordinateSystem(system)
	if !ok {
		return Value{}, unparsable(KindCoordinate, s, fmt.Errorf("unknown coordinate system %q", system))
	}
	f, err := parseFloats(KindCoordinate, rest, 3)
	if err != nil {
		return Value{}, err
	}
	return CoordinateValue(Coordinate{System: sys, X: f[0], Y: f[1], Z: f[2]}), nil
}

// formatValueList renders [kind:"value" kind:"value"].
func formatValueList(l ValueList) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range l {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(v.kind.String())
		b.WriteByte(':')
		b.WriteString(strconv.Quote(Format(v)))
	}
	b.WriteByte(']')
	return b.String()
}

// formatNameValueList renders {"name"="value" "name"="value"}.
func formatNameValueList(l NameValueList) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, nv := range l {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Quote(nv.Name))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(nv.Value))
	}
	b.WriteByte('}')
	return b.String()
}

func parseValueList(s string) (Value, error) {
	body, ok := unwrap(s, '[', ']')
	if !ok {
		return Value{}, unparsable(KindValueList, s, nil)
	}
	out := ValueList{}
	for {
		body = strings.TrimLeft(body, " \t\r\n")
		if body == "" {
			break
		}
		name, rest, found := strings.Cut(body, ":")
		if !found {
			return Value{}, unparsable(KindValueList, s, nil)
		}
		kind, ok := ParseKind(name)
		if !ok {
			return Value{}, unparsable(KindValueList, s, fmt.Errorf("unknown kind %q", name))
		}
		raw, rest, err := scanQuoted(rest)
		if err != nil {
			return Value{}, unparsable(KindValueList, s, err)
		}
		elem, err := Parse(kind, raw)
		if err != nil {
			return Value{}, err
		}
		out = append(out, elem)
		body = rest
	}
	return Value{KindValueList, out}, nil
}

func parseNameValueList(s string) (Value, error) {
	body, ok := unwrap(s, '{', '}')
	if !ok {
		return Value{}, unparsable(KindNameValueList, s, nil)
	}
	out := NameValueList{}
	for {
		body = strings.TrimLeft(body, " \t\r\n")
		if body == "" {
			break
		}
		name, rest, err := scanQuoted(body)
		if err != nil {
			return Value{}, unparsable(KindNameValueList, s, err)
		}
		if !strings.HasPrefix(rest, "=") {
			return Value{}, unparsable(KindNameValueList, s, nil)
		}
		value, rest, err := scanQuoted(rest[1:])
		if err != nil {
			return Value{}, unparsable(KindNameValueList, s, err)
		}
		out = append(out, NameValue{Name: name, Value: value})
		body = rest
	}
	return Value{KindNameValueList, out}, nil
}

func unwrap(s string, start, end byte) (string, bool) {
	if len(s) < 2 || s[0] != start || s[len(s)-1] != end {
		return "", false
	}
	return s[1 : len(s)-1], true
}

// scanQuoted reads one Go-quoted string from the front of s and returns its
// unquoted form and the remainder.
func scanQuoted(s string) (string, string, error) {
	q, err := strconv.QuotedPrefix(s)
	if err != nil {
		return "", "", err
	}
	u, err := strconv.Unquote(q)
	if err != nil {
		return "", "", err
	}
	return u, s[len(q):], nil
}
