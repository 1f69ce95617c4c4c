// Package sort hash-conses sort handles so that the same (e.g.) BitVec 32
// sort is only constructed once with the Backend and subsequent requests
// are served from cache: sort constructors exposed by the Backend are
// called exactly once per distinct parsed sort and the result is cached
// for reuse.
//
// The cache is keyed by each sort's canonical string encoding and backed by
// an adaptive radix tree rather than a Go map, since keys that share a
// prefix (e.g. every "bv:" sort) share tree structure, which is exactly the
// shape bit-vector sort keys of nearby widths have.
package sort

import (
	"fmt"

	art "github.com/plar/go-adaptive-radix-tree"

	"github.com/nilforge/smtfront/backend"
)

// Registry hash-conses backend.Sort values by canonical key and records
// user-level sort aliases introduced by define-sort.
type Registry struct {
	be      backend.Backend
	cache   art.Tree
	aliases map[string]backend.Sort
}

// NewRegistry creates a Registry bound to a Backend instance.
func NewRegistry(be backend.Backend) *Registry {
	return &Registry{
		be:      be,
		cache:   art.New(),
		aliases: make(map[string]backend.Sort),
	}
}

// Predefined FloatingPoint aliases.
var fpAliases = map[string][2]int{
	"Float16":  {5, 11},
	"Float32":  {8, 24},
	"Float64":  {11, 53},
	"Float128": {15, 113},
}

func bvKey(width int) string { return fmt.Sprintf("bv:%d", width) }
func fpKey(eb, sb int) string { return fmt.Sprintf("fp:%d:%d", eb, sb) }
func arrKey(i, e string) string { return fmt.Sprintf("arr:%s:%s", i, e) }

func (r *Registry) lookup(key string) (backend.Sort, bool) {
	v, found := r.cache.Search(art.Key(key))
	if !found {
		return nil, false
	}
	return v.(backend.Sort), true
}

func (r *Registry) store(key string, s backend.Sort) {
	r.cache.Insert(art.Key(key), s)
}

// Bool returns the (singleton) Bool sort.
func (r *Registry) Bool() backend.Sort {
	const key = "bool"
	if s, ok := r.lookup(key); ok {
		return s
	}
	s := r.be.BoolSort()
	r.store(key, s)
	return s
}

// BitVec returns the BitVec n sort, constructing it with the Backend only
// the first time width n is requested. n must be at least 1.
func (r *Registry) BitVec(width int) (backend.Sort, error) {
	if width < 1 {
		return nil, fmt.Errorf("bit-vector width must be at least 1, got %d", width)
	}
	key := bvKey(width)
	if s, ok := r.lookup(key); ok {
		return s, nil
	}
	s := r.be.BitVecSort(width)
	r.store(key, s)
	return s, nil
}

// RoundingMode returns the (singleton) RoundingMode sort.
func (r *Registry) RoundingMode() backend.Sort {
	const key = "roundingmode"
	if s, ok := r.lookup(key); ok {
		return s
	}
	s := r.be.RoundingModeSort()
	r.store(key, s)
	return s
}

// FloatingPoint returns the FloatingPoint eb sb sort. eb and sb must each be
// at least 1.
func (r *Registry) FloatingPoint(eb, sb int) (backend.Sort, error) {
	if eb < 1 || sb < 1 {
		return nil, fmt.Errorf("floating-point exponent and significand widths must be at least 1, got (%d,%d)", eb, sb)
	}
	key := fpKey(eb, sb)
	if s, ok := r.lookup(key); ok {
		return s, nil
	}
	s := r.be.FloatingPointSort(eb, sb)
	r.store(key, s)
	return s, nil
}

// FloatingPointAlias resolves one of Float16/32/64/128 to its (eb,sb) pair,
// or reports it is not a predefined FP alias.
func FloatingPointAlias(name string) (eb, sb int, ok bool) {
	p, ok := fpAliases[name]
	return p[0], p[1], ok
}

// Array returns the Array i e sort.
func (r *Registry) Array(index, elem backend.Sort) backend.Sort {
	key := arrKey(index.String(), elem.String())
	if s, ok := r.lookup(key); ok {
		return s
	}
	s := r.be.ArraySort(index, elem)
	r.store(key, s)
	return s
}

// Function returns (uncached, since arities/signatures vary widely and
// function sorts are rarely repeated verbatim) a function sort.
func (r *Registry) Function(args []backend.Sort, result backend.Sort) backend.Sort {
	return r.be.FunctionSort(args, result)
}

// DefineAlias records a nullary sort alias introduced by define-sort.
// Parametric sort definitions (ones with parameters) are rejected by the
// caller before this is reached; only nullary aliases are recorded here.
func (r *Registry) DefineAlias(name string, target backend.Sort) error {
	if _, exists := r.aliases[name]; exists {
		return fmt.Errorf("sort alias '%s' already defined", name)
	}
	r.aliases[name] = target
	return nil
}

// ResolveAlias looks up a previously defined sort alias.
func (r *Registry) ResolveAlias(name string) (backend.Sort, bool) {
	s, ok := r.aliases[name]
	return s, ok
}

// SameSort reports whether two sorts denote the same sort, using the
// canonical string key so callers don't need Backend-level equality.
func SameSort(a, b backend.Sort) bool {
	return a == b || a.String() == b.String()
}

// Describe renders a human-readable sort description for error messages,
// e.g. for a BitVec mismatch: "(_ BitVec 8)".
func Describe(s backend.Sort) string {
	switch s.Kind() {
	case backend.KindBool:
		return "Bool"
	default:
		return s.String()
	}
}

// IsBV reports whether s is a bit-vector sort and, if so, its width.
func IsBV(s backend.Sort) (width int, ok bool) {
	if s.Kind() != backend.KindBitVec {
		return 0, false
	}
	return s.BitVecWidth(), true
}
