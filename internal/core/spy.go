package core

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Call is one recorded invocation of a spy.
type Call struct {
	Seq  uint64 // object-wide order, starting at 1
	Args []any
	At   time.Time
}

// Spy is a recording stand-in for a single method.
// Every invocation is recorded before the configured behavior runs.
// Spies only come from a SpyObject; the zero Spy is not usable.
type Spy struct {
	owner  *SpyObject
	method string

	mu       sync.Mutex // Protects calls and behavior
	calls    []Call
	behavior behavior
}

// CallArgs returns the arguments of the nth call (0-based).
func (s *Spy) CallArgs(n int) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 0 || n >= len(s.calls) {
		return nil, fmt.Errorf("%w: %s has %d calls, asked for call %d", ErrNoSuchCall, s.Name(), len(s.calls), n)
	}

	return copyArgs(s.calls[n].Args), nil
}

// CallCount returns how many times the spy was invoked.
func (s *Spy) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

// Called reports whether the spy was invoked at least once.
func (s *Spy) Called() bool {
	return s.CallCount() > 0
}

// CalledWith reports whether any recorded call matches args.
// Expected values may be Matchers; anything else is compared with reflect.DeepEqual.
func (s *Spy) CalledWith(args ...any) bool {
	for _, call := range s.Calls() {
		if argsMatch(call.Args, args) == nil {
			return true
		}
	}

	return false
}

// Calls returns a copy of the call history in call order.
func (s *Spy) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]Call, len(s.calls))
	for i, call := range s.calls {
		calls[i] = Call{Seq: call.Seq, Args: copyArgs(call.Args), At: call.At}
	}

	return calls
}

// CallsFake makes every call delegate to fn, whose return slice becomes the result.
func (s *Spy) CallsFake(fn func(args []any) []any) *Spy {
	return s.setBehavior(behavior{kind: behaviorFake, fake: fn})
}

// Fails makes every call return the single result err.
func (s *Spy) Fails(err error) *Spy {
	return s.Returns(err)
}

// Invoke records a call with args and then applies the configured behavior.
// A spy configured with Panics panics here, after the call is recorded.
func (s *Spy) Invoke(args ...any) []any {
	if s.owner == nil {
		panic(errDetachedSpy)
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Seq:  s.owner.nextSeq(),
		Args: copyArgs(args),
		At:   s.owner.clock.Now(),
	})
	current := s.behavior.next()
	s.mu.Unlock()

	switch current.kind {
	case behaviorPanic:
		panic(current.panicValue)
	case behaviorFake:
		return current.fake(copyArgs(args))
	case behaviorReturn:
		return copyArgs(current.values)
	case behaviorStub, behaviorSequence:
		return nil
	}

	return nil
}

// Method returns the name of the method this spy stands in for.
func (s *Spy) Method() string {
	return s.method
}

// MostRecentCall returns the latest call, if any.
func (s *Spy) MostRecentCall() (Call, bool) {
	calls := s.Calls()
	if len(calls) == 0 {
		return Call{}, false
	}

	return calls[len(calls)-1], true
}

// Name returns "<object>.<method>" for diagnostics.
func (s *Spy) Name() string {
	return s.owner.name + "." + s.method
}

// Object returns the SpyObject that owns this spy.
func (s *Spy) Object() *SpyObject {
	return s.owner
}

// Panics makes every call panic with value once the call is recorded.
func (s *Spy) Panics(value any) *Spy {
	return s.setBehavior(behavior{kind: behaviorPanic, panicValue: value})
}

// Returns makes every call return values.
func (s *Spy) Returns(values ...any) *Spy {
	return s.setBehavior(behavior{kind: behaviorReturn, values: copyArgs(values)})
}

// ReturnsInOrder makes successive calls return successive result sets.
// Once the sets run out, the last one repeats.
func (s *Spy) ReturnsInOrder(sets ...[]any) *Spy {
	if len(sets) == 0 {
		return s.Stub()
	}

	copied := make([][]any, len(sets))
	for i, set := range sets {
		copied[i] = copyArgs(set)
	}

	return s.setBehavior(behavior{kind: behaviorSequence, sequence: copied})
}

// String renders the spy and its history for failure messages.
func (s *Spy) String() string {
	calls := s.Calls()

	var buf strings.Builder

	fmt.Fprintf(&buf, "%s (%d calls)", s.Name(), len(calls))

	for i, call := range calls {
		fmt.Fprintf(&buf, "\n  %d: #%d %s", i, call.Seq, formatArgs(call.Args))
	}

	return buf.String()
}

// Stub restores the default behavior: return no values. History is kept.
func (s *Spy) Stub() *Spy {
	return s.setBehavior(behavior{})
}

func (s *Spy) setBehavior(b behavior) *Spy {
	s.mu.Lock()
	s.behavior = b
	s.mu.Unlock()

	return s
}

// unexported variables.
var (
	errDetachedSpy = errors.New("impspy: spy has no SpyObject (get spies from SpyObject.Spy or MustSpy)")
)

type behavior struct {
	kind       behaviorKind
	values     []any
	sequence   [][]any
	cursor     int
	panicValue any
	fake       func(args []any) []any
}

// next resolves sequence behaviors to the return for the current call.
// Must be called with the owning spy's mutex held.
func (b *behavior) next() behavior {
	if b.kind != behaviorSequence {
		return *b
	}

	values := b.sequence[b.cursor]
	if b.cursor < len(b.sequence)-1 {
		b.cursor++
	}

	return behavior{kind: behaviorReturn, values: values}
}

type behaviorKind int

const (
	behaviorStub behaviorKind = iota
	behaviorReturn
	behaviorSequence
	behaviorPanic
	behaviorFake
)

func copyArgs(args []any) []any {
	copied := make([]any, len(args))
	copy(copied, args)

	return copied
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = fmt.Sprintf("%#v", arg)
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

func newSpy(owner *SpyObject, method string) *Spy {
	return &Spy{owner: owner, method: method}
}
