package rules

// CanonicalPair orders two user ids so that (a, b) and (b, a) produce the
// same key. Comparison is plain string ordering.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
