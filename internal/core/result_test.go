package core_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/impspy/internal/core"
)

func TestResult(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	boom := errors.New("boom")
	results := []any{"html", boom, nil}

	g.Expect(core.Result[string](results, 0)).To(Equal("html"))
	g.Expect(core.Result[error](results, 1)).To(BeIdenticalTo(boom))
	g.Expect(core.Result[error](results, 2)).To(BeNil())
	g.Expect(core.Result[int](results, 3)).To(BeZero(), "missing index yields zero")
	g.Expect(core.Result[int](nil, 0)).To(BeZero())
	g.Expect(core.Result[string](results, -1)).To(BeEmpty())
}

func TestResult_WrongTypePanics(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(func() { core.Result[error]([]any{"not an error"}, 0) }).
		To(PanicWith("impspy: result 0: expected error, got string"))
}
