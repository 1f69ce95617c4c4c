package command

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/nilforge/smtfront/backend/refbackend"
	"github.com/nilforge/smtfront/emit"
	"github.com/nilforge/smtfront/lexer"
	"github.com/nilforge/smtfront/lexer/keyword"
	"github.com/nilforge/smtfront/reporter"
	"github.com/nilforge/smtfront/sort"
	"github.com/nilforge/smtfront/symtab"
	"github.com/nilforge/smtfront/term"
)

// newDriver wires a Driver the same way smtfront.Parse does, for tests that
// need to inspect Driver-specific state (Logic, CheckSatCount) that the
// package boundary otherwise hides.
func newDriver(t *testing.T, src string, opts *Options) (*Driver, *bytes.Buffer) {
	t.Helper()
	tbl := symtab.NewTable(true)
	keyword.Populate(tbl)
	lex := lexer.New([]byte(src), "test.smt2", tbl)
	be := refbackend.New()
	sorts := sort.NewRegistry(be)
	handler := reporter.NewHandler()
	ctx := term.NewContext(lex, tbl, sorts, be, handler)
	if opts == nil {
		opts = NewOptions()
	}
	var out bytes.Buffer
	return New(ctx, opts, emit.New(&out), nil), &out
}

func TestDeclareSortRequiresConfiguredWidth(t *testing.T) {
	d, out := newDriver(t, `(declare-sort S 0)`, nil)
	err := d.Run()
	require.Error(t, err)
	require.Contains(t, out.String(), "no default bit-vector width configured")
}

func TestDeclareSortUsesConfiguredWidth(t *testing.T) {
	opts := NewOptions()
	opts.DeclSortBVWidth = 8
	d, out := newDriver(t, `
(declare-sort S 0)
(declare-const x S)
(assert (= x (_ bv1 8)))
(check-sat)
`, opts)
	require.NoError(t, d.Run())
	require.Equal(t, "success\nsuccess\nsuccess\nsat\n", out.String())
}

func TestDefineFunZeroArity(t *testing.T) {
	d, out := newDriver(t, `
(declare-const x (_ BitVec 4))
(define-fun y () (_ BitVec 4) x)
(assert (= y #b0000))
(assert (= x #b0000))
(check-sat)
`, nil)
	require.NoError(t, d.Run())
	require.Contains(t, out.String(), "sat\n")
}

func TestDefineFunWithParametersBecomesForallMacro(t *testing.T) {
	d, out := newDriver(t, `
(declare-const x (_ BitVec 4))
(define-fun id ((a (_ BitVec 4))) (_ BitVec 4) a)
(assert (= (id x) x))
(check-sat)
`, nil)
	require.NoError(t, d.Run())
	require.Contains(t, out.String(), "sat\n")
	require.True(t, d.ctx.NeedFunctions)
}

func TestCheckSatAssumingRejectedWithoutIncremental(t *testing.T) {
	d, out := newDriver(t, `
(declare-const p (_ BitVec 1))
(check-sat-assuming (p))
`, nil)
	err := d.Run()
	require.Error(t, err)
	require.Contains(t, out.String(), "requires :incremental true")
}

func TestGetModelRejectedWithoutProduceModels(t *testing.T) {
	d, out := newDriver(t, `(get-model)`, nil)
	err := d.Run()
	require.Error(t, err)
	require.Contains(t, out.String(), "requires :produce-models true")
}

func TestModelBlockDefinesNestedFunctions(t *testing.T) {
	opts := NewOptions()
	opts.ProduceModels = true
	d, out := newDriver(t, `
(declare-const x (_ BitVec 4))
(model
  (define-fun x () (_ BitVec 4) #b0001))
`, opts)
	require.NoError(t, d.Run())
	require.Equal(t, "success\n", out.String())
}

func TestModelBlockRejectsNonZeroArity(t *testing.T) {
	d, _ := newDriver(t, `
(declare-fun f ((_ BitVec 4)) (_ BitVec 4))
(model
  (define-fun f ((a (_ BitVec 4))) (_ BitVec 4) a))
`, nil)
	require.Error(t, d.Run())
}

func TestPushPopRestoresSymbolTableExactly(t *testing.T) {
	d, out := newDriver(t, `
(push 1)
(declare-const y (_ BitVec 1))
(pop 1)
(declare-const y (_ BitVec 2))
(check-sat)
`, nil)
	require.NoError(t, d.Run())
	require.Equal(t, "success\nsuccess\nsuccess\nsuccess\nsat\n", out.String())
}

func TestPopBeyondPushDepthIsAnError(t *testing.T) {
	d, _ := newDriver(t, `(pop 1)`, nil)
	require.Error(t, d.Run())
}

func TestDeclareConstDuplicateNameIsAnError(t *testing.T) {
	d, out := newDriver(t, `
(declare-const x (_ BitVec 4))
(declare-const x (_ BitVec 4))
`, nil)
	err := d.Run()
	require.Error(t, err)
	require.Contains(t, out.String(), "already defined")
}

func TestEchoPrintsStringLiteralVerbatim(t *testing.T) {
	d, out := newDriver(t, `(echo "hi")`, nil)
	require.NoError(t, d.Run())
	require.Equal(t, "hi\n", out.String())
}

func TestLogicInferenceEscalatesWithArraysAndFunctions(t *testing.T) {
	d, _ := newDriver(t, `
(declare-const a (Array (_ BitVec 4) (_ BitVec 4)))
(declare-fun f ((_ BitVec 4)) (_ BitVec 4))
`, nil)
	require.NoError(t, d.Run())
	require.Equal(t, "QF_AUFBV", d.Logic())
}

func TestGetValueRoundTripsSourceTextAndValue(t *testing.T) {
	d, out := newDriver(t, `
(declare-const x (_ BitVec 4))
(assert (= x #b0011))
(check-sat)
(get-value (x #b1010))
`, nil)
	require.NoError(t, d.Run())

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	got := lines[len(lines)-1]
	// refbackend only reports a concrete value for literal constants; a
	// declared variable has no tracked witness, hence "?" for x.
	want := "((x ?) (#b1010 #b1010))"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("get-value response mismatch (-want +got):\n%s", diff)
	}
}

func TestExitStopsProcessingFurtherCommands(t *testing.T) {
	d, out := newDriver(t, `
(exit)
(assert true)
`, nil)
	require.NoError(t, d.Run())
	require.Equal(t, "success\n", out.String())
}
