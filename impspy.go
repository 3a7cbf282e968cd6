// Package impspy provides spy objects for Go tests: a named bundle of
// recording stand-ins, one per method of a collaborator interface.
//
// This is the public API entry point. Implementation lives in internal/core.
package impspy

import (
	"github.com/toejough/impspy/internal/core"
)

// Exported variables.
var (
	// ErrInvalidArgument marks misuse of the factory (empty name, bad method name).
	ErrInvalidArgument = core.ErrInvalidArgument
	// ErrNoSuchCall is returned when asking a spy for a call it never received.
	ErrNoSuchCall = core.ErrNoSuchCall
)

// Call is one recorded invocation of a spy.
type Call = core.Call

// Clock abstracts the time source used to stamp recorded calls.
type Clock = core.Clock

// Expectation asserts on a spy's recorded history.
type Expectation = core.Expectation

// Matcher defines the interface for flexible value matching.
type Matcher = core.Matcher

// Spy is a recording stand-in for a single method.
type Spy = core.Spy

// SpyObject is a named bundle of spies, one per declared method.
type SpyObject = core.SpyObject

// TestReporter is the minimal interface impspy needs from test frameworks.
type TestReporter = core.TestReporter

// MatchValue checks if actual matches expected.
func MatchValue(actual, expected any) (bool, string) {
	return core.MatchValue(actual, expected)
}

// MustNew creates a SpyObject, failing the test through t on misuse.
func MustNew(t TestReporter, name string, methods ...string) *SpyObject {
	t.Helper()

	return core.MustNew(t, name, methods...)
}

// New creates a SpyObject named name with one spy per method.
func New(name string, methods ...string) (*SpyObject, error) {
	return core.New(name, methods...)
}

// NewWithClock creates a SpyObject whose calls are stamped by clock.
func NewWithClock(clock Clock, name string, methods ...string) (*SpyObject, error) {
	return core.NewWithClock(clock, name, methods...)
}

// Result converts results[index] to T for typed wrappers around Spy.Invoke.
func Result[T any](results []any, index int) T {
	return core.Result[T](results, index)
}
