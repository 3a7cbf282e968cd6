// Package core provides the internal implementation of impspy's spy objects:
// the factory, the per-method spies, and the matching and expectation helpers
// built on top of their call history.
package core

import (
	"errors"
	"fmt"
	"go/token"
	"reflect"
	"time"

	"go.uber.org/atomic"
)

// Exported variables.
var (
	// ErrInvalidArgument marks misuse of the spy object factory itself.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoSuchCall is returned when asking for a call a spy never received.
	ErrNoSuchCall = errors.New("no such call")
)

// Clock abstracts the time source used to stamp recorded calls.
type Clock interface {
	Now() time.Time
}

// SpyObject is a named bundle of spies, one per declared method.
// A SpyObject belongs to the test that created it; build a fresh one per test.
type SpyObject struct {
	name    string
	methods []string
	spies   map[string]*Spy
	seq     *atomic.Uint64
	clock   Clock
}

// MustNew creates a SpyObject, failing the test through t if the arguments are invalid.
func MustNew(t TestReporter, name string, methods ...string) *SpyObject {
	t.Helper()

	obj, err := New(name, methods...)
	if err != nil {
		t.Fatalf("impspy: %v", err)

		return nil
	}

	return obj
}

// New creates a SpyObject named name with one spy per method.
// Duplicate method names collapse onto the first occurrence. An empty method
// list is valid and yields an object with no spies.
func New(name string, methods ...string) (*SpyObject, error) {
	return NewWithClock(realClock{}, name, methods...)
}

// NewWithClock creates a SpyObject whose calls are stamped by clock.
func NewWithClock(clock Clock, name string, methods ...string) (*SpyObject, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: spy object name must not be empty", ErrInvalidArgument)
	}

	if isNilClock(clock) {
		return nil, fmt.Errorf("%w: spy object %q needs a clock", ErrInvalidArgument, name)
	}

	obj := &SpyObject{
		name:    name,
		methods: make([]string, 0, len(methods)),
		spies:   make(map[string]*Spy, len(methods)),
		seq:     atomic.NewUint64(0),
		clock:   clock,
	}

	for index, method := range methods {
		if !token.IsIdentifier(method) {
			return nil, fmt.Errorf(
				"%w: spy object %q: method %d (%q) is not a valid identifier",
				ErrInvalidArgument, name, index, method,
			)
		}

		if _, ok := obj.spies[method]; ok {
			continue
		}

		obj.methods = append(obj.methods, method)
		obj.spies[method] = newSpy(obj, method)
	}

	return obj, nil
}

// Methods returns the method names in declaration order.
func (o *SpyObject) Methods() []string {
	methods := make([]string, len(o.methods))
	copy(methods, o.methods)

	return methods
}

// MustSpy returns the spy for method, panicking if the object has no such method.
func (o *SpyObject) MustSpy(method string) *Spy {
	spy, ok := o.spies[method]
	if !ok {
		panic(fmt.Sprintf("impspy: spy object %q has no method %q (methods: %v)", o.name, method, o.methods))
	}

	return spy
}

// Name returns the diagnostic label of the object.
func (o *SpyObject) Name() string {
	return o.name
}

// Spies returns the spies in declaration order.
func (o *SpyObject) Spies() []*Spy {
	spies := make([]*Spy, 0, len(o.methods))
	for _, method := range o.methods {
		spies = append(spies, o.spies[method])
	}

	return spies
}

// Spy returns the spy for method and whether it exists.
func (o *SpyObject) Spy(method string) (*Spy, bool) {
	spy, ok := o.spies[method]

	return spy, ok
}

// String renders the object for failure messages.
func (o *SpyObject) String() string {
	return fmt.Sprintf("%s%v", o.name, o.methods)
}

// nextSeq hands out the object-wide call sequence number, starting at 1.
func (o *SpyObject) nextSeq() uint64 {
	return o.seq.Inc()
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// isNilClock reports whether clock is nil, including a typed nil.
func isNilClock(clock Clock) bool {
	if clock == nil {
		return true
	}

	value := reflect.ValueOf(clock)
	switch value.Kind() { //nolint:exhaustive // only nillable kinds matter
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return value.IsNil()
	default:
		return false
	}
}
