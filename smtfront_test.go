package smtfront

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nilforge/smtfront/backend/refbackend"
)

func run(t *testing.T, script string, opts *Options) (string, ParseResult, error) {
	t.Helper()
	var out bytes.Buffer
	be := refbackend.New()
	if opts == nil {
		opts = NewOptions()
	}
	result, err := Parse(be, nil, bytes.NewBufferString(script), "test.smt2", &out, opts, nil)
	return out.String(), result, err
}

func TestS1BitVecEquality(t *testing.T) {
	out, result, err := run(t, `
(set-logic QF_BV)
(declare-const x (_ BitVec 8))
(assert (= x (_ bv5 8)))
(check-sat)
(exit)
`, nil)
	require.NoError(t, err)
	require.Equal(t, "success\nsuccess\nsuccess\nsat\nsuccess\n", out)
	require.Equal(t, "QF_BV", result.Logic)
	require.Equal(t, 1, result.NSatCalls)
}

func TestS2LetShadowing(t *testing.T) {
	out, _, err := run(t, `
(set-logic QF_BV)
(declare-const x (_ BitVec 4))
(assert (let ((x #b0000)) (= x #b0000)))
(check-sat)
`, nil)
	require.NoError(t, err)
	require.Contains(t, out, "sat\n")
}

func TestS3CheckSatAssuming(t *testing.T) {
	opts := NewOptions()
	opts.Incremental = true
	opts.ProduceUnsatAssumptions = true
	out, _, err := run(t, `
(set-option :incremental true)
(set-logic QF_BV)
(declare-const p (_ BitVec 1))
(assert (= p #b1))
(check-sat-assuming (p))
(check-sat-assuming ((bvnot p)))
(get-unsat-assumptions)
`, opts)
	require.NoError(t, err)
	lines := splitLines(out)
	require.Equal(t, "sat", lines[len(lines)-3])
	require.Equal(t, "unsat", lines[len(lines)-2])
	require.Equal(t, "((bvnot p))", lines[len(lines)-1])
}

func TestS5PushPopSymmetry(t *testing.T) {
	out, _, err := run(t, `
(set-logic QF_BV)
(push 1)
(declare-const y (_ BitVec 1))
(assert (= y #b0))
(pop 1)
(declare-const y (_ BitVec 1))
(check-sat)
`, nil)
	require.NoError(t, err)
	require.Contains(t, out, "sat\n")
	for _, line := range splitLines(out)[:len(splitLines(out))-1] {
		require.Equal(t, "success", line)
	}
}

func TestS4ArrayWellTypednessError(t *testing.T) {
	_, _, err := run(t, `
(set-logic QF_ABV)
(declare-const a (Array (_ BitVec 8) (_ BitVec 32)))
(assert (= (select a #b0) #x00000000))
`, nil)
	require.Error(t, err)
}

func TestS6ExtractBounds(t *testing.T) {
	out, _, err := run(t, `
(set-logic QF_BV)
(declare-const z (_ BitVec 8))
(assert (= ((_ extract 7 0) z) z))
(assert (= ((_ extract 8 0) z) z))
`, nil)
	require.Error(t, err)
	require.Contains(t, out, "success\n")
	require.Contains(t, out, "too large for bit-vector argument of bit-width 8")
}

func TestLogicInferredWhenNeverSet(t *testing.T) {
	_, result, err := run(t, `
(declare-fun f ((_ BitVec 4)) (_ BitVec 4))
(declare-const x (_ BitVec 4))
(assert (= (f x) x))
(check-sat)
`, nil)
	require.NoError(t, err)
	require.Equal(t, "QF_UFBV", result.Logic)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return lines
}
