package core_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/impspy/internal/core"
)

func TestMatchValue_DeepEqual(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ok, msg := core.MatchValue([]int{1, 2}, []int{1, 2})
	g.Expect(ok).To(BeTrue())
	g.Expect(msg).To(BeEmpty())

	ok, msg = core.MatchValue(42, 41)
	g.Expect(ok).To(BeFalse())
	g.Expect(msg).To(Equal("expected 41, got 42"))
}

func TestMatchValue_Matcher(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ok, msg := core.MatchValue(42, BeNumerically(">", 40))
	g.Expect(ok).To(BeTrue())
	g.Expect(msg).To(BeEmpty())

	ok, msg = core.MatchValue(42, BeNumerically("<", 40))
	g.Expect(ok).To(BeFalse())
	g.Expect(msg).To(ContainSubstring("to be <"))
}

func TestMatchValue_MatcherError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ok, msg := core.MatchValue("x", erroringMatcher{})
	g.Expect(ok).To(BeFalse())
	g.Expect(msg).To(Equal("cannot match"))
}

type erroringMatcher struct{}

func (erroringMatcher) FailureMessage(any) string { return "unused" }

func (erroringMatcher) Match(any) (bool, error) { return false, errors.New("cannot match") }
