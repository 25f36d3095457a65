package log

import (
	"fmt"
	"strings"

	"github.com/zeusync/introspect/internal/core/ids"
)

type Log interface {
	Log(level Level, msg string, fields ...Field)

	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	With(fields ...Field) Log
	Named(name string) Log

	SetLevel(level Level)
	GetLevel() Level
}

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent Level = 101
)

var levelNames = map[string]Level{
	"debug":  LevelDebug,
	"info":   LevelInfo,
	"warn":   LevelWarn,
	"error":  LevelError,
	"silent": LevelSilent,
}

// ParseLevel reads a level name as used in configuration files.
func ParseLevel(name string) (Level, error) {
	if lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lvl, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", name)
}

type Field struct {
	Key   string
	Type  FieldType
	Value any
}

// A FieldType indicates which member of the Field union struct should be used
// and how it should be serialized.
type FieldType uint8

const (
	UnknownType FieldType = iota
	BoolType
	IntType
	Uint32Type
	Uint64Type
	StringType
	StringerType
	ErrorType
)

func Any(key string, val any) Field {
	return Field{Key: key, Type: UnknownType, Value: val}
}

func Bool(key string, val bool) Field {
	return Field{Key: key, Type: BoolType, Value: val}
}

func Int(key string, val int) Field {
	return Field{Key: key, Type: IntType, Value: val}
}

func Uint32(key string, val uint32) Field {
	return Field{Key: key, Type: Uint32Type, Value: val}
}

func Uint64(key string, val uint64) Field {
	return Field{Key: key, Type: Uint64Type, Value: val}
}

func String(key string, val string) Field {
	return Field{Key: key, Type: StringType, Value: val}
}

func Stringer(key string, val fmt.Stringer) Field {
	return Field{Key: key, Type: StringerType, Value: val}
}

func Error(val error) Field {
	return Field{Key: "error", Type: ErrorType, Value: val}
}

// TypeTag logs a type tag under "type".
func TypeTag(tag ids.TypeTag) Field {
	return Uint32("type", uint32(tag))
}

// Entity logs an entity id under "entity" in its hex form.
func Entity(id ids.EntityID) Field {
	return Stringer("entity", id)
}

// Property logs a property name under "property".
func Property(name string) Field {
	return String("property", name)
}
