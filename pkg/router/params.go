package router

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrBindTarget is returned when BindParams receives something other than a
// pointer to a struct.
var ErrBindTarget = errors.New("router: bind target must be a pointer to a struct")

var uuidType = reflect.TypeOf(uuid.UUID{})

// BindParams copies matched params into the fields of target tagged with
// `param:"name"`. Missing params leave fields untouched.
//
//	var p struct {
//	    ID   int      `param:"id"`
//	    Path []string `param:"path"` // from /files/:path*
//	}
//	err := router.BindParams(nav.Params, &p)
//
// Supported field kinds are strings, integers, floats, booleans, string
// slices (split on "/") and uuid.UUID.
func BindParams(params map[string]string, target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w, got %T", ErrBindTarget, target)
	}
	v = v.Elem()

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("param")
		if name == "" {
			continue
		}
		value, ok := params[name]
		if !ok {
			continue
		}
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if err := setField(fv, value); err != nil {
			return fmt.Errorf("router: param %q: %w", name, err)
		}
	}
	return nil
}

func setField(field reflect.Value, value string) error {
	if field.Type() == uuidType {
		id, err := uuid.Parse(value)
		if err != nil {
			return fmt.Errorf("invalid UUID: %s", value)
		}
		field.Set(reflect.ValueOf(id))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %s", value)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type: %s", field.Type().Elem().Kind())
		}
		// "a/b/c" from a repeated param → ["a", "b", "c"]
		var parts []string
		if value != "" {
			parts = strings.Split(value, "/")
		}
		field.Set(reflect.ValueOf(parts))

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}
	return nil
}
