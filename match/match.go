// Package match provides matchers for impspy's CalledWith and NthCalledWith.
// It is designed to be dot-imported alongside gomega matchers:
//
//	import (
//	    . "github.com/onsi/gomega"
//	    . "github.com/toejough/impspy/match"
//	)
//
//	ctrl.Render.Expect(t).CalledWith(BeOfType[int]())
package match

import (
	"errors"
	"fmt"
	"reflect"
)

// errTypeMismatch is a sentinel error for type assertion failures.
var errTypeMismatch = errors.New("type mismatch")

// Matcher defines the interface for flexible value matching.
// Compatible with gomega.GomegaMatcher via duck typing.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// BeAny is a matcher that matches any value, nil included.
//
//nolint:gochecknoglobals // Intentional exported constant-like value
var BeAny Matcher = anyMatcher{}

// BeOfType returns a matcher that succeeds when the value's dynamic type is T,
// or implements T when T is an interface.
func BeOfType[T any]() Matcher {
	return typeMatcher[T]{}
}

// Satisfies returns a matcher that uses a predicate function to check for a match.
// The predicate returns nil on a match, or an error describing the mismatch.
//
// Example:
//
//	ctrl.Render.Expect(t).CalledWith(Satisfies(func(page int) error {
//	    if page < 1 { return fmt.Errorf("page %d out of range", page) }
//	    return nil
//	}))
func Satisfies[T any](predicate func(T) error) Matcher {
	return &satisfyMatcher[T]{predicate: predicate}
}

type anyMatcher struct{}

func (anyMatcher) FailureMessage(any) string {
	return ""
}

func (anyMatcher) Match(any) (bool, error) {
	return true, nil
}

type satisfyMatcher[T any] struct {
	predicate func(T) error
	lastErr   error
}

func (m *satisfyMatcher[T]) FailureMessage(actual any) string {
	if m.lastErr != nil {
		return fmt.Sprintf("value %v does not satisfy predicate: %v", actual, m.lastErr)
	}

	return fmt.Sprintf("value %v does not satisfy predicate", actual)
}

func (m *satisfyMatcher[T]) Match(actual any) (bool, error) {
	val, ok := actual.(T)
	if !ok {
		return false, fmt.Errorf("%w: expected %v, got %T", errTypeMismatch, reflect.TypeFor[T](), actual)
	}

	m.lastErr = m.predicate(val)

	return m.lastErr == nil, nil
}

type typeMatcher[T any] struct{}

func (typeMatcher[T]) FailureMessage(actual any) string {
	return fmt.Sprintf("expected a value of type %v, got %T", reflect.TypeFor[T](), actual)
}

func (typeMatcher[T]) Match(actual any) (bool, error) {
	_, ok := actual.(T)

	return ok, nil
}
