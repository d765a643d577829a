package parser

// PairByIndex aligns two independently recovered ordered sequences: the k-th
// label is paired with the k-th value for k up to the shorter length, and the
// unmatched tail of either sequence is dropped. Labels without a value are
// reported missing by the caller, never as an error.
func PairByIndex(labels, values []string) map[string]string {
	n := len(labels)
	if len(values) < n {
		n = len(values)
	}
	out := make(map[string]string, n)
	for k := 0; k < n; k++ {
		out[labels[k]] = values[k]
	}
	return out
}
