package core

import (
	"fmt"
	"reflect"
)

// Result converts results[index] to T for typed wrappers around Spy.Invoke.
// A missing or nil value yields the zero T; a value of another type panics.
func Result[T any](results []any, index int) T {
	var zero T

	if index < 0 || index >= len(results) || results[index] == nil {
		return zero
	}

	value, ok := results[index].(T)
	if !ok {
		panic(fmt.Sprintf("impspy: result %d: expected %v, got %T", index, reflect.TypeFor[T](), results[index]))
	}

	return value
}
