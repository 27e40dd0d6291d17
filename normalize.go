package toon

import (
	"fmt"
	"reflect"
	"time"

	json "github.com/goccy/go-json"
)

// normalizeValue reduces an arbitrary Go value to the TOON value model:
// nil, bool, float64, string, *Object, map[string]interface{} or
// []interface{}. time.Time values become their RFC 3339 string before the
// unsupported-type check, so they encode as quoted strings. Structs are
// flattened through a JSON round-trip.
func normalizeValue(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool, float64, string:
		return val, nil
	case time.Time:
		return val.Format(time.RFC3339Nano), nil
	case *time.Time:
		if val == nil {
			return nil, nil
		}
		return val.Format(time.RFC3339Nano), nil
	case *Object:
		if val == nil {
			return nil, nil
		}
		out := NewObject()
		for _, key := range val.keys {
			norm, err := normalizeValue(val.values[key])
			if err != nil {
				return nil, err
			}
			out.Set(key, norm)
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return normalizeValue(rv.Elem().Interface())
	case reflect.Map:
		result := make(map[string]interface{}, rv.Len())
		for _, key := range rv.MapKeys() {
			keyStr := fmt.Sprintf("%v", key.Interface())
			norm, err := normalizeValue(rv.MapIndex(key).Interface())
			if err != nil {
				return nil, err
			}
			result[keyStr] = norm
		}
		return result, nil
	case reflect.Slice, reflect.Array:
		result := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			norm, err := normalizeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			result[i] = norm
		}
		return result, nil
	case reflect.Struct:
		jsonBytes, err := json.Marshal(v)
		if err != nil {
			return nil, errorf("unsupported value of type %T: %v", v, err)
		}
		var decoded interface{}
		if err := json.Unmarshal(jsonBytes, &decoded); err != nil {
			return nil, errorf("unsupported value of type %T: %v", v, err)
		}
		return decoded, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	default:
		return nil, errorf("unsupported value of type %T", v)
	}
}
