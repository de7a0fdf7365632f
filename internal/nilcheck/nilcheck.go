// Package nilcheck detects nil values hidden behind interfaces.
package nilcheck

import "reflect"

// IsNil reports whether v is nil or an interface holding a nil pointer, map, slice,
// channel or func. Value types such as structs are never nil.
func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface,
		reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
