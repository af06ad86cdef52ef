// Package serialize encodes response values for AJAX form clients.
//
// It accepts a deliberately small value model: nil, booleans, numbers,
// strings, slices/arrays and string-keyed maps of those, plus a few special
// cases. Lazy translatable strings are forced with the request's localizer,
// times and dates get fixed layouts, and values can opt in through ToJSON or
// json.Marshaler. Anything else, notably plain structs, is an error rather
// than a guess. Map keys are always sorted, so equal values encode to equal
// bytes.
package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/dalemusser/fhurl/i18n"
)

// Layouts used for time values.
const (
	DateTimeLayout = "2006-01-02T15:04:05"
	DateLayout     = "2006-01-02"
)

// maxDepth bounds nesting; deeper values are almost certainly cycles.
const maxDepth = 64

// Promise is a lazily evaluated string, resolved at encode time.
type Promise interface {
	Force(l *i18n.Localizer) string
}

// JSONer values are replaced by the result of ToJSON before encoding.
type JSONer interface {
	ToJSON() any
}

// Date is a calendar date; it encodes as YYYY-MM-DD.
type Date struct {
	time.Time
}

// DateOf returns the date part of t.
func DateOf(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())}
}

// SerializationError reports a value the encoder does not know how to encode.
type SerializationError struct {
	Type string
	Path string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize: cannot encode value of type %s at %s", e.Type, e.Path)
}

// Option configures Marshal.
type Option func(*encoder)

// WithLocalizer sets the localizer used to force Promise values.
func WithLocalizer(l *i18n.Localizer) Option {
	return func(e *encoder) {
		e.loc = l
	}
}

// Marshal encodes v as JSON.
func Marshal(v any, opts ...Option) ([]byte, error) {
	e := &encoder{}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.encode(reflect.ValueOf(v), "$", 0); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

type encoder struct {
	buf bytes.Buffer
	loc *i18n.Localizer
}

var (
	promiseType   = reflect.TypeOf((*Promise)(nil)).Elem()
	jsonerType    = reflect.TypeOf((*JSONer)(nil)).Elem()
	marshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	timeType      = reflect.TypeOf(time.Time{})
	dateType      = reflect.TypeOf(Date{})
)

func (e *encoder) encode(v reflect.Value, path string, depth int) error {
	if depth > maxDepth {
		return &SerializationError{Type: typeName(v), Path: path}
	}

	// Unwrap interfaces and pointers; nil anywhere along the way is null.
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		if v.Kind() == reflect.Pointer && pointerOnlyMethod(v.Type()) {
			break
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		e.buf.WriteString("null")
		return nil
	}

	switch t := v.Type(); {
	case t == dateType:
		e.writeString(v.Interface().(Date).Format(DateLayout))
		return nil
	case t == timeType:
		e.writeString(v.Interface().(time.Time).Format(DateTimeLayout))
		return nil
	case t.Implements(promiseType):
		e.writeString(v.Interface().(Promise).Force(e.loc))
		return nil
	case t.Implements(jsonerType):
		return e.encode(reflect.ValueOf(v.Interface().(JSONer).ToJSON()), path, depth+1)
	case t.Implements(marshalerType):
		b, err := v.Interface().(json.Marshaler).MarshalJSON()
		if err != nil {
			return fmt.Errorf("serialize: %s at %s: %w", t, path, err)
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, b); err != nil {
			return fmt.Errorf("serialize: %s at %s produced invalid JSON: %w", t, path, err)
		}
		e.buf.Write(compact.Bytes())
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		e.buf.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.buf.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.buf.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		b, err := json.Marshal(v.Float())
		if err != nil {
			return &SerializationError{Type: v.Type().String(), Path: path}
		}
		e.buf.Write(b)
	case reflect.String:
		e.writeString(v.String())
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		e.buf.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.encode(v.Index(i), path+"["+strconv.Itoa(i)+"]", depth+1); err != nil {
				return err
			}
		}
		e.buf.WriteByte(']')
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return &SerializationError{Type: v.Type().String(), Path: path}
		}
		if v.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		e.buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.writeString(k.String())
			e.buf.WriteByte(':')
			if err := e.encode(v.MapIndex(k), path+"."+k.String(), depth+1); err != nil {
				return err
			}
		}
		e.buf.WriteByte('}')
	default:
		return &SerializationError{Type: v.Type().String(), Path: path}
	}
	return nil
}

// pointerOnlyMethod reports whether pointer type t has an opt-in method that
// its element type lacks, so it must be encoded without dereferencing.
func pointerOnlyMethod(t reflect.Type) bool {
	for _, iface := range []reflect.Type{promiseType, jsonerType, marshalerType} {
		if t.Implements(iface) && !t.Elem().Implements(iface) {
			return true
		}
	}
	return false
}

func typeName(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}
	return v.Type().String()
}

func (e *encoder) writeString(s string) {
	b, _ := json.Marshal(s)
	e.buf.Write(b)
}
