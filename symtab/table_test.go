package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nilforge/smtfront/token"
)

func TestQuoteEquivalence(t *testing.T) {
	tbl := NewTable(true)
	e := tbl.NewEntry(token.SYMBOL, "x", 0, token.Pos{Line: 1, Col: 1})
	tbl.Insert(e)

	require.Same(t, e, tbl.Find("x"))
	require.Same(t, e, tbl.Find("|x|"))
}

func TestQuoteEquivalenceDisabled(t *testing.T) {
	tbl := NewTable(false)
	e := tbl.NewEntry(token.SYMBOL, "x", 0, token.Pos{})
	tbl.Insert(e)

	require.Same(t, e, tbl.Find("x"))
	require.Nil(t, tbl.Find("|x|"))
}

func TestShadowingInnermostFirst(t *testing.T) {
	tbl := NewTable(true)
	outer := tbl.NewEntry(token.SYMBOL, "x", 0, token.Pos{})
	tbl.Insert(outer)
	inner := tbl.NewEntry(token.SYMBOL, "x", 1, token.Pos{})
	tbl.Insert(inner)

	require.Same(t, inner, tbl.Find("x"))

	removed := tbl.CloseScope(1, false)
	require.Len(t, removed, 1)
	require.Same(t, inner, removed[0])
	require.Same(t, outer, tbl.Find("x"))
}

func TestCloseScopeRespectsGlobalDeclarations(t *testing.T) {
	tbl := NewTable(true)
	e := tbl.NewEntry(token.SYMBOL, "y", 2, token.Pos{})
	tbl.Insert(e)

	removed := tbl.CloseScope(2, true)
	require.Empty(t, removed)
	require.Same(t, e, tbl.Find("y"))
}

func TestRemoveByIdentityNotByName(t *testing.T) {
	tbl := NewTable(true)
	a := tbl.NewEntry(token.SYMBOL, "x", 0, token.Pos{})
	tbl.Insert(a)
	b := tbl.NewEntry(token.SYMBOL, "x", 1, token.Pos{})
	tbl.Insert(b)

	tbl.Remove(b)
	require.Same(t, a, tbl.Find("x"))
	require.Equal(t, 1, tbl.Len())
}

func TestGrowPreservesChainOrder(t *testing.T) {
	tbl := NewTable(true)
	var entries []*Entry
	for i := 0; i < initialCapacity+5; i++ {
		e := tbl.NewEntry(token.SYMBOL, "x", i, token.Pos{})
		tbl.Insert(e)
		entries = append(entries, e)
	}
	// The most recently inserted entry for "x" must still shadow all
	// earlier ones after at least one grow() has occurred.
	require.Same(t, entries[len(entries)-1], tbl.Find("x"))
}
