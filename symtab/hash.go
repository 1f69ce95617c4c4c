package symtab

// hashName computes a polynomial hash over the bytes of name using four
// rotating large primes, chosen to avoid common collisions on solver-style
// symbol patterns — dense runs of names like x0, x1, x2, ... and bv-sort-
// shaped names like bv5, bv32.
func hashName(name string) uint64 {
	primes := [4]uint64{1099511628211, 2654435761, 805306457, 1610612741}
	var h uint64 = 1469598103934665603
	for i := 0; i < len(name); i++ {
		h ^= uint64(name[i])
		h *= primes[i&3]
		h = (h << 13) | (h >> 51)
	}
	return h
}

// canonicalize strips surrounding '|' quote bars so that |x| and x hash and
// compare equal. Kept as a constructor option rather than always-on, since
// some callers want strict quoted/unquoted distinction.
func canonicalize(name string, quoteEquivalence bool) string {
	if quoteEquivalence && len(name) >= 2 && name[0] == '|' && name[len(name)-1] == '|' {
		return name[1 : len(name)-1]
	}
	return name
}
