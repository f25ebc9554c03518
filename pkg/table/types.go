package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
)

// Type is the semantic type tag of a column. Types form a small hierarchy:
// [TypeAny] is a supertype of every type and [TypeNumber] is a supertype of
// the four numeric types.
//
// The zero value, [TypeInvalid], is returned for out-of-range lookups.
type Type int

const (
	// TypeInvalid marks the absence of a type (unknown column, nil value).
	TypeInvalid Type = iota
	// TypeAny accepts values of every type.
	TypeAny
	// TypeNumber accepts int, long, float and double values.
	TypeNumber
	// TypeBool holds Go bool values.
	TypeBool
	// TypeInt holds Go int values.
	TypeInt
	// TypeLong holds Go int64 values.
	TypeLong
	// TypeFloat holds Go float32 values.
	TypeFloat
	// TypeDouble holds Go float64 values.
	TypeDouble
	// TypeString holds Go string values.
	TypeString
	// TypeTime holds time.Time values.
	TypeTime
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeAny:     "any",
	TypeNumber:  "number",
	TypeBool:    "bool",
	TypeInt:     "int",
	TypeLong:    "long",
	TypeFloat:   "float",
	TypeDouble:  "double",
	TypeString:  "string",
	TypeTime:    "time",
}

// String returns the lowercase type name used in config and JSON documents.
func (t Type) String() string {
	if t < TypeInvalid || t > TypeTime {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType returns the Type named s (case-insensitive).
// "object" and "date" are accepted as aliases of "any" and "time".
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "object":
		return TypeAny, nil
	case "date":
		return TypeTime, nil
	case "integer":
		return TypeInt, nil
	}
	for t := TypeAny; t <= TypeTime; t++ {
		if typeNames[t] == name {
			return t, nil
		}
	}
	return TypeInvalid, oerrors.New(oerrors.ErrCodeInvalidInput, "unknown column type %q", s)
}

// Valid reports whether t is a usable column type.
func (t Type) Valid() bool { return t > TypeInvalid && t <= TypeTime }

// IsNumeric reports whether t is TypeNumber or one of its subtypes.
func (t Type) IsNumeric() bool {
	switch t {
	case TypeNumber, TypeInt, TypeLong, TypeFloat, TypeDouble:
		return true
	}
	return false
}

// AssignableFrom reports whether a value of type other can be used where t is
// expected, that is t equals other or t is one of other's supertypes.
func (t Type) AssignableFrom(other Type) bool {
	if !t.Valid() || !other.Valid() {
		return false
	}
	switch t {
	case other, TypeAny:
		return true
	case TypeNumber:
		return other.IsNumeric()
	}
	return false
}

// TypeOf returns the semantic type of a Go value. Values of Go types with no
// dedicated tag map to [TypeAny]. A nil value has no type and returns false.
func TypeOf(v any) (Type, bool) {
	switch v.(type) {
	case nil:
		return TypeInvalid, false
	case bool:
		return TypeBool, true
	case int:
		return TypeInt, true
	case int64:
		return TypeLong, true
	case float32:
		return TypeFloat, true
	case float64:
		return TypeDouble, true
	case string:
		return TypeString, true
	case time.Time:
		return TypeTime, true
	}
	return TypeAny, true
}

// convertValue checks that v may be stored in a column of type col and returns
// the value to store. Lossless widenings are applied (int32 to int, int and
// int32 to int64, float32 to float64); anything else must already be
// assignable to col. Nil is accepted everywhere.
func convertValue(col Type, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch col {
	case TypeInt:
		if x, ok := v.(int32); ok {
			return int(x), nil
		}
	case TypeLong:
		switch x := v.(type) {
		case int:
			return int64(x), nil
		case int32:
			return int64(x), nil
		}
	case TypeDouble:
		if x, ok := v.(float32); ok {
			return float64(x), nil
		}
	}
	vt, _ := TypeOf(v)
	if !col.AssignableFrom(vt) {
		return nil, oerrors.New(oerrors.ErrCodeTypeMismatch, "cannot store %T in %s column", v, col)
	}
	return v, nil
}

// ParseValue parses the text form of a value for a column of type t, as
// typed on a command line. "null" parses to nil for every type; numbers
// parse to the Go type of t, with [TypeNumber] preferring int64.
func ParseValue(t Type, s string) (any, error) {
	if s == "null" {
		return nil, nil
	}
	var (
		v   any
		err error
	)
	switch t {
	case TypeAny, TypeString:
		return s, nil
	case TypeBool:
		v, err = strconv.ParseBool(s)
	case TypeInt:
		v, err = strconv.Atoi(s)
	case TypeLong:
		v, err = strconv.ParseInt(s, 10, 64)
	case TypeFloat:
		var f float64
		f, err = strconv.ParseFloat(s, 32)
		v = float32(f)
	case TypeDouble:
		v, err = strconv.ParseFloat(s, 64)
	case TypeNumber:
		if i, ierr := strconv.ParseInt(s, 10, 64); ierr == nil {
			return i, nil
		}
		v, err = strconv.ParseFloat(s, 64)
	case TypeTime:
		v, err = time.Parse(time.RFC3339, s)
	default:
		return nil, oerrors.New(oerrors.ErrCodeInvalidInput, "cannot parse values of type %s", t)
	}
	if err != nil {
		return nil, oerrors.Wrap(oerrors.ErrCodeTypeMismatch, err, "parse %q as %s", s, t)
	}
	return v, nil
}
