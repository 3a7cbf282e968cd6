package core

import (
	"fmt"
	"reflect"
)

// Matcher defines the interface for flexible value matching.
// gomega matchers satisfy it without adaptation.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// MatchValue checks if actual matches expected.
// If expected implements the Matcher interface, uses its Match method.
// Otherwise, uses reflect.DeepEqual for comparison.
// Returns (success, errorMessage). If success is true, errorMessage is empty.
func MatchValue(actual, expected any) (bool, string) {
	if matcher, ok := expected.(Matcher); ok {
		success, err := matcher.Match(actual)
		if err != nil {
			return false, err.Error()
		}

		if !success {
			return false, matcher.FailureMessage(actual)
		}

		return true, ""
	}

	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	return false, fmt.Sprintf("expected %#v, got %#v", expected, actual)
}

// argsMatch returns nil when actual lines up with expected, value by value.
func argsMatch(actual, expected []any) error {
	if len(actual) != len(expected) {
		//nolint:err113 // validation error with dynamic context
		return fmt.Errorf("expected %d args, got %d", len(expected), len(actual))
	}

	for index, want := range expected {
		ok, msg := MatchValue(actual[index], want)
		if ok {
			continue
		}

		if msg == "" {
			msg = fmt.Sprintf("matcher failed for value %#v", actual[index])
		}

		//nolint:err113 // validation error with dynamic context
		return fmt.Errorf("arg %d: %s", index, msg)
	}

	return nil
}
