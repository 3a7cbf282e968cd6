package core

// TestReporter is the minimal interface impspy needs from test frameworks.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
}

// Expectation asserts on a spy's recorded history, failing through a TestReporter.
type Expectation struct {
	t   TestReporter
	spy *Spy
}

// Expect starts an assertion on the spy's history.
func (s *Spy) Expect(t TestReporter) *Expectation {
	return &Expectation{t: t, spy: s}
}

// Called fails unless the spy was invoked at least once.
func (e *Expectation) Called() {
	e.t.Helper()

	if !e.spy.Called() {
		e.t.Fatalf("expected %s to be called, but it was not", e.spy.Name())
	}
}

// CalledBefore fails unless the first call to this spy precedes the first call to other.
// Both spies must belong to the same SpyObject for the order to be meaningful.
func (e *Expectation) CalledBefore(other *Spy) {
	e.t.Helper()

	mine := e.spy.Calls()
	theirs := other.Calls()

	switch {
	case e.spy.owner != other.owner:
		e.t.Fatalf("cannot order %s against %s: different spy objects", e.spy.Name(), other.Name())
	case len(mine) == 0:
		e.t.Fatalf("expected %s to be called before %s, but it was not called", e.spy.Name(), other.Name())
	case len(theirs) > 0 && theirs[0].Seq < mine[0].Seq:
		e.t.Fatalf(
			"expected %s (call #%d) to be called before %s (call #%d)",
			e.spy.Name(), mine[0].Seq, other.Name(), theirs[0].Seq,
		)
	}
}

// CalledTimes fails unless the spy was invoked exactly n times.
func (e *Expectation) CalledTimes(n int) {
	e.t.Helper()

	if count := e.spy.CallCount(); count != n {
		e.t.Fatalf("expected %s to be called %d times, got %d\n%s", e.spy.Name(), n, count, e.spy)
	}
}

// CalledWith fails unless some recorded call matches args.
func (e *Expectation) CalledWith(args ...any) {
	e.t.Helper()

	if !e.spy.CalledWith(args...) {
		e.t.Fatalf("expected %s to be called with %s\n%s", e.spy.Name(), formatArgs(args), e.spy)
	}
}

// NotCalled fails if the spy was invoked at all.
func (e *Expectation) NotCalled() {
	e.t.Helper()

	if e.spy.Called() {
		e.t.Fatalf("expected %s not to be called\n%s", e.spy.Name(), e.spy)
	}
}

// NthCalledWith fails unless the nth call (0-based) matches args.
func (e *Expectation) NthCalledWith(n int, args ...any) {
	e.t.Helper()

	actual, err := e.spy.CallArgs(n)
	if err != nil {
		e.t.Fatalf("%v", err)

		return
	}

	if err := argsMatch(actual, args); err != nil {
		e.t.Fatalf("%s call %d: %v", e.spy.Name(), n, err)
	}
}
