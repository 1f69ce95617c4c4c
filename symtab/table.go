// Package symtab implements a hash-chained, scope-aware symbol table. It is
// owned exclusively by one Context/Driver pair for the lifetime of a single
// parse, so it needs no locking.
package symtab

import (
	"github.com/nilforge/smtfront/backend"
	"github.com/nilforge/smtfront/token"
)

// Entry is a single binding of a name at a scope level. Multiple Entries
// may share a Name; they are linked in LIFO order (innermost scope first)
// so lookups naturally implement shadowing. Identity for removal is by ID,
// not by Name, since a shadowing chain can hold several entries with the
// same Name at different scope levels, and only one of them should be
// unlinked when its scope closes.
type Entry struct {
	ID          uint64
	Tag         token.Kind
	Name        string // canonical (unquoted) name
	ScopeLevel  int
	Pos         token.Pos
	Bound       bool
	IsSortAlias bool
	Node        backend.Node
	SortAlias   backend.Sort

	next *Entry // next entry in this bucket's chain
}

const initialCapacity = 64

// Table is the hash-chained scoped symbol table.
type Table struct {
	buckets          []*Entry
	count            int
	nextID           uint64
	quoteEquivalence bool
}

// NewTable returns an empty table. quoteEquivalence controls whether |x|
// and x are treated as the same name.
func NewTable(quoteEquivalence bool) *Table {
	return &Table{
		buckets:          make([]*Entry, initialCapacity),
		quoteEquivalence: quoteEquivalence,
	}
}

func (t *Table) bucketIndex(name string) int {
	return int(hashName(name) % uint64(len(t.buckets)))
}

// NewEntry allocates an Entry with a fresh monotonic ID but does not insert
// it; callers populate remaining fields and call Insert.
func (t *Table) NewEntry(tag token.Kind, name string, scopeLevel int, pos token.Pos) *Entry {
	t.nextID++
	return &Entry{
		ID:         t.nextID,
		Tag:        tag,
		Name:       canonicalize(name, t.quoteEquivalence),
		ScopeLevel: scopeLevel,
		Pos:        pos,
	}
}

// Insert prepends e to the chain for its name's bucket, doubling the table
// first if it is full. Doubling rehashes every entry but preserves each
// bucket's relative insertion order so innermost-first shadowing survives
// a resize.
func (t *Table) Insert(e *Entry) {
	if t.count >= len(t.buckets) {
		t.grow()
	}
	idx := t.bucketIndex(e.Name)
	e.next = t.buckets[idx]
	t.buckets[idx] = e
	t.count++
}

func (t *Table) grow() {
	old := t.buckets
	t.buckets = make([]*Entry, len(old)*2)
	t.count = 0
	// Walk each old bucket in order and re-insert; since Insert prepends,
	// walking front-to-back and inserting would reverse the chain. Collect
	// each bucket's chain (already innermost-first) and reinsert from the
	// back so the relative order is preserved.
	for _, head := range old {
		var chain []*Entry
		for e := head; e != nil; e = e.next {
			chain = append(chain, e)
		}
		for i := len(chain) - 1; i >= 0; i-- {
			e := chain[i]
			e.next = nil
			idx := t.bucketIndex(e.Name)
			e.next = t.buckets[idx]
			t.buckets[idx] = e
			t.count++
		}
	}
}

// Find returns the innermost entry for name, or nil. Quote-equivalence is
// applied to name before hashing and comparing, so Find("|x|") ==
// Find("x") whenever either exists.
func (t *Table) Find(name string) *Entry {
	canon := canonicalize(name, t.quoteEquivalence)
	idx := t.bucketIndex(canon)
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.Name == canon {
			return e
		}
	}
	return nil
}

// Remove unlinks e from its bucket's chain by identity (pointer/ID
// equality), since a chain may contain multiple entries with the same
// name differing only in scope level.
func (t *Table) Remove(e *Entry) {
	idx := t.bucketIndex(e.Name)
	var prev *Entry
	for cur := t.buckets[idx]; cur != nil; cur = cur.next {
		if cur.ID == e.ID {
			if prev == nil {
				t.buckets[idx] = cur.next
			} else {
				prev.next = cur.next
			}
			t.count--
			return
		}
		prev = cur
	}
}

// CloseScope removes every entry with ScopeLevel == level, unless
// globalDeclarations is set (the :global-declarations option keeps
// declarations alive across push/pop). It returns the removed entries so
// the caller (the command driver) can release any backend resources they
// held.
func (t *Table) CloseScope(level int, globalDeclarations bool) []*Entry {
	if globalDeclarations {
		return nil
	}
	var removed []*Entry
	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			if e.ScopeLevel == level {
				removed = append(removed, e)
			}
		}
	}
	for _, e := range removed {
		t.Remove(e)
	}
	return removed
}

// Len reports how many entries are currently present, for tests.
func (t *Table) Len() int { return t.count }
