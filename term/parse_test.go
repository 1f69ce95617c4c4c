package term

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nilforge/smtfront/backend"
	"github.com/nilforge/smtfront/backend/refbackend"
	"github.com/nilforge/smtfront/lexer"
	"github.com/nilforge/smtfront/lexer/keyword"
	"github.com/nilforge/smtfront/reporter"
	"github.com/nilforge/smtfront/sort"
	"github.com/nilforge/smtfront/symtab"
	"github.com/nilforge/smtfront/token"
)

// newCtx wires a fresh Context over src and advances to the first token,
// ready for a direct ParseTerm/ParseSort call, the same precondition the
// command driver establishes before calling into this package.
func newCtx(t *testing.T, src string) (*Context, *refbackend.Backend) {
	t.Helper()
	tbl := symtab.NewTable(true)
	keyword.Populate(tbl)
	lex := lexer.New([]byte(src), "test.smt2", tbl)
	be := refbackend.New()
	sorts := sort.NewRegistry(be)
	handler := reporter.NewHandler()
	ctx := NewContext(lex, tbl, sorts, be, handler)
	require.NoError(t, ctx.Advance())
	return ctx, be
}

func declare(t *testing.T, ctx *Context, be *refbackend.Backend, name string, s backend.Sort) {
	t.Helper()
	n := be.DeclareVariable(name, s)
	be.SetSymbol(n, name)
	e := ctx.Tbl.NewEntry(token.SYMBOL, name, ctx.ScopeLevel, token.Pos{})
	e.Node = n
	ctx.Tbl.Insert(e)
}

func TestParseHexAndBinaryLiteralWidths(t *testing.T) {
	ctx, _ := newCtx(t, "#xFF")
	n, err := ParseTerm(ctx)
	require.NoError(t, err)
	require.Equal(t, 8, n.Sort().BitVecWidth())

	ctx2, _ := newCtx(t, "#b101")
	n2, err := ParseTerm(ctx2)
	require.NoError(t, err)
	require.Equal(t, 3, n2.Sort().BitVecWidth())
}

func TestParseBvKLiteralRoundTrips(t *testing.T) {
	ctx, be := newCtx(t, "(_ bv5 8)")
	n, err := ParseTerm(ctx)
	require.NoError(t, err)
	require.Equal(t, 8, n.Sort().BitVecWidth())
	v, ok := be.ConstBVValue(n)
	require.True(t, ok)
	require.Equal(t, uint64(5), v)
}

func TestParseTermLeavesCurAfterTerm(t *testing.T) {
	ctx, _ := newCtx(t, "#b0000 )")
	_, err := ParseTerm(ctx)
	require.NoError(t, err)
	require.Equal(t, token.RPAR, ctx.Cur.Kind)
}

func TestUndefinedSymbolIsAnError(t *testing.T) {
	ctx, _ := newCtx(t, "x")
	_, err := ParseTerm(ctx)
	require.Error(t, err)
}

func TestLetShadowsOuterBinding(t *testing.T) {
	ctx, be := newCtx(t, "(let ((x #b0000)) x)")
	declare(t, ctx, be, "x", be.BitVecSort(4))
	n, err := ParseTerm(ctx)
	require.NoError(t, err)
	v, ok := be.ConstBVValue(n)
	require.True(t, ok)
	require.Equal(t, uint64(0), v)
}

func TestQuantifierBindsUniqueParamName(t *testing.T) {
	ctx, _ := newCtx(t, "(forall ((x (_ BitVec 4))) (= x x))")
	n, err := ParseTerm(ctx)
	require.NoError(t, err)
	require.Equal(t, backend.KindBool, n.Sort().Kind())
	// The bound "x" must not leak into the surrounding scope: only the
	// lexer's own unbound scope-0 entry for the name remains.
	e := ctx.Tbl.Find("x")
	require.NotNil(t, e)
	require.Nil(t, e.Node)
	require.Equal(t, 0, e.ScopeLevel)
}

func TestExtractOutOfBoundsIsAnError(t *testing.T) {
	ctx, be := newCtx(t, "((_ extract 8 0) z)")
	declare(t, ctx, be, "z", be.BitVecSort(8))
	_, err := ParseTerm(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "too large for bit-vector argument of bit-width 8")
}

func TestExtractWithinBoundsSucceeds(t *testing.T) {
	ctx, be := newCtx(t, "((_ extract 7 0) z)")
	declare(t, ctx, be, "z", be.BitVecSort(8))
	n, err := ParseTerm(ctx)
	require.NoError(t, err)
	require.Equal(t, 8, n.Sort().BitVecWidth())
}

func TestSelectRequiresMatchingIndexWidth(t *testing.T) {
	ctx, be := newCtx(t, "(select a #b0)")
	arrSort := be.ArraySort(be.BitVecSort(8), be.BitVecSort(32))
	declare(t, ctx, be, "a", arrSort)
	_, err := ParseTerm(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "first (array) argument of 'select' has index bit-width 8 but the second (index) argument has bit-width 1")
}

func TestParseSortArray(t *testing.T) {
	ctx, _ := newCtx(t, "(Array (_ BitVec 8) (_ BitVec 32))")
	s, err := ParseSort(ctx)
	require.NoError(t, err)
	require.Equal(t, backend.KindArray, s.Kind())
	idx, elem := s.ArrayIndexElem()
	require.Equal(t, 8, idx.BitVecWidth())
	require.Equal(t, 32, elem.BitVecWidth())
}

func TestParseSortBitVec(t *testing.T) {
	ctx, _ := newCtx(t, "(_ BitVec 16)")
	s, err := ParseSort(ctx)
	require.NoError(t, err)
	require.Equal(t, 16, s.BitVecWidth())
}

func TestExtRotateLeftRequiresConstantAmount(t *testing.T) {
	ctx, be := newCtx(t, "(ext_rotate_left z x)")
	declare(t, ctx, be, "z", be.BitVecSort(4))
	declare(t, ctx, be, "x", be.BitVecSort(4))
	_, err := ParseTerm(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must be a bit-vector constant")
}

func TestBoolAndOneBitBVAreInterchangeableInIsBoolLike(t *testing.T) {
	ctx, be := newCtx(t, "")
	require.True(t, IsBoolLike(ctx.Sorts.Bool()))
	require.True(t, IsBoolLike(be.BitVecSort(1)))
	require.False(t, IsBoolLike(be.BitVecSort(2)))
}
