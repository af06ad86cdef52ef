// form/object.go
package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrNotStruct is returned when an object argument is not a struct or a
// pointer to one.
var ErrNotStruct = errors.New("form: object must be a struct or pointer to struct")

// InitializeWithObject copies struct fields of obj into field-level initial
// values. Each entry of fields is either a name present on both sides, or
// "formField=objField". With no entries, every form field that has a
// matching struct field is copied.
//
// Struct fields match by `form:"name"` tag first, then by case-insensitive
// Go field name.
func (b *Base) InitializeWithObject(obj any, fields ...string) error {
	v, err := structValue(obj)
	if err != nil {
		return err
	}

	pairs := fields
	if len(pairs) == 0 {
		for _, f := range b.fields {
			if _, ok := lookupField(v, f.Name); ok {
				pairs = append(pairs, f.Name)
			}
		}
	}

	for _, p := range pairs {
		formName, objName := splitPair(p)
		i, ok := b.index[formName]
		if !ok {
			return fmt.Errorf("form: unknown field %q", formName)
		}
		sv, ok := lookupField(v, objName)
		if !ok {
			return fmt.Errorf("form: %s has no field %q", v.Type(), objName)
		}
		b.fields[i].Initial = sv.Interface()
	}
	return nil
}

// UpdateObject writes cleaned values into obj, which must be a pointer to
// a struct. Each entry of fields is either a name present on both sides, or
// "objField=formField". With no entries, every cleaned value with a
// matching struct field is written. Values are converted when the types
// are convertible (int64 into int, string into a named string type).
func (b *Base) UpdateObject(obj any, fields ...string) error {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrNotStruct
	}
	v := rv.Elem()
	if v.Kind() != reflect.Struct {
		return ErrNotStruct
	}

	pairs := fields
	if len(pairs) == 0 {
		for _, f := range b.fields {
			if _, ok := b.cleaned[f.Name]; !ok {
				continue
			}
			if _, ok := lookupField(v, f.Name); ok {
				pairs = append(pairs, f.Name)
			}
		}
	}

	for _, p := range pairs {
		objName, formName := splitPair(p)
		val, ok := b.cleaned[formName]
		if !ok {
			return fmt.Errorf("form: no cleaned value for %q", formName)
		}
		sv, ok := lookupField(v, objName)
		if !ok {
			return fmt.Errorf("form: %s has no field %q", v.Type(), objName)
		}
		if err := assign(sv, val); err != nil {
			return fmt.Errorf("form: set %s.%s: %w", v.Type(), objName, err)
		}
	}
	return nil
}

func structValue(obj any) (reflect.Value, error) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, ErrNotStruct
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, ErrNotStruct
	}
	return v, nil
}

// splitPair splits "left=right"; a bare name is used for both sides.
func splitPair(p string) (string, string) {
	if left, right, ok := strings.Cut(p, "="); ok {
		return strings.TrimSpace(left), strings.TrimSpace(right)
	}
	p = strings.TrimSpace(p)
	return p, p
}

func lookupField(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(sf.Tag.Get("form"), ",")
		if tag == name {
			return v.Field(i), true
		}
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.IsExported() && sf.Tag.Get("form") == "" && strings.EqualFold(sf.Name, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func assign(dst reflect.Value, val any) error {
	if val == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	src := reflect.ValueOf(val)
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case isNumber(src.Kind()) && isNumber(dst.Kind()),
		src.Kind() == reflect.String && dst.Kind() == reflect.String,
		src.Kind() == reflect.Bool && dst.Kind() == reflect.Bool:
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot assign %s to %s", src.Type(), dst.Type())
	}
	return nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
