package exporter

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupportedValue is returned for values that have no JSON-safe representation
var ErrUnsupportedValue = errors.New("unsupported value")

var timeType = reflect.TypeOf(time.Time{})

// Sanitize converts v into a tree of map[string]any, []any, string, bool, int64,
// float64 and nil. NaN and ±Inf become nil. Structs are keyed by their json tag
// names and dates are rendered as YYYY-MM-DD. Sanitize is idempotent.
// Cyclic references are rejected with ErrUnsupportedValue.
func Sanitize(v any) (any, error) {
	s := &sanitizer{visiting: make(map[visit]struct{})}
	return s.value(reflect.ValueOf(v), "$")
}

// visit identifies a pointer, map or slice on the current descent path
type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

type sanitizer struct {
	visiting map[visit]struct{}
}

// enter marks v as being walked and reports a cycle when it already is.
// The returned func unmarks it.
func (s *sanitizer) enter(v reflect.Value, path string) (func(), error) {
	key := visit{ptr: v.Pointer(), typ: v.Type()}
	if v.Kind() == reflect.Slice {
		key.len = v.Len()
	}
	if _, cyclic := s.visiting[key]; cyclic {
		return nil, fmt.Errorf("%s: cyclic reference: %w", path, ErrUnsupportedValue)
	}
	s.visiting[key] = struct{}{}
	return func() { delete(s.visiting, key) }, nil
}

func (s *sanitizer) value(v reflect.Value, path string) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}
	if v.Type() == timeType {
		return v.Interface().(time.Time).Format("2006-01-02"), nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return s.value(v.Elem(), path)

	case reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		leave, err := s.enter(v, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		return s.value(v.Elem(), path)

	case reflect.Bool:
		return v.Bool(), nil

	case reflect.String:
		return v.String(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%s: integer %d overflows int64: %w", path, u, ErrUnsupportedValue)
		}
		return int64(u), nil

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, nil
		}
		return f, nil

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice {
			if v.IsNil() {
				return []any{}, nil
			}
			leave, err := s.enter(v, path)
			if err != nil {
				return nil, err
			}
			defer leave()
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			item, err := s.value(v.Index(i), path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil

	case reflect.Map:
		if v.IsNil() {
			return map[string]any{}, nil
		}
		leave, err := s.enter(v, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		return s.mapValue(v, path)

	case reflect.Struct:
		out := make(map[string]any)
		if err := s.collectFields(v, path, out); err != nil {
			return nil, err
		}
		return out, nil
	}

	return nil, fmt.Errorf("%s: kind %s: %w", path, v.Kind(), ErrUnsupportedValue)
}

func (s *sanitizer) mapValue(v reflect.Value, path string) (any, error) {
	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key, err := mapKey(iter.Key())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		item, err := s.value(iter.Value(), path+"."+key)
		if err != nil {
			return nil, err
		}
		out[key] = item
	}
	return out, nil
}

func mapKey(k reflect.Value) (string, error) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fmt.Errorf("map key of kind %s: %w", k.Kind(), ErrUnsupportedValue)
}

// collectFields adds the exported fields of v to out, promoting the fields of
// untagged embedded structs the way encoding/json does
func (s *sanitizer) collectFields(v reflect.Value, path string, out map[string]any) error {
	for _, f := range jsonFields(v.Type()) {
		fv := v.FieldByIndex(f.index)
		if f.inline {
			if err := s.collectFields(fv, path, out); err != nil {
				return err
			}
			continue
		}
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		item, err := s.value(fv, path+"."+f.name)
		if err != nil {
			return err
		}
		out[f.name] = item
	}
	return nil
}

// jsonField is one serializable struct field
type jsonField struct {
	name      string
	index     []int
	inline    bool
	omitEmpty bool
}

// jsonFields lists the serializable fields of a struct type in declaration order.
// Embedded structs without a tag are marked inline.
func jsonFields(t reflect.Type) []jsonField {
	fields := make([]jsonField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct && sf.Type != timeType {
			fields = append(fields, jsonField{index: sf.Index, inline: true})
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		fields = append(fields, jsonField{
			name:      name,
			index:     sf.Index,
			omitEmpty: strings.Contains(opts, "omitempty"),
		})
	}
	return fields
}

// columns lists the flattened column names of a struct type in declaration order
func columns(t reflect.Type) []string {
	var names []string
	for _, f := range jsonFields(t) {
		if f.inline {
			names = append(names, columns(t.FieldByIndex(f.index).Type)...)
			continue
		}
		names = append(names, f.name)
	}
	return names
}

// cells returns the flattened field values of a struct in columns order
func cells(v reflect.Value) []reflect.Value {
	var out []reflect.Value
	for _, f := range jsonFields(v.Type()) {
		fv := v.FieldByIndex(f.index)
		if f.inline {
			out = append(out, cells(fv)...)
			continue
		}
		out = append(out, fv)
	}
	return out
}
