package gobind

// NoMatch is returned by Select for names with no binding.
const NoMatch = -1

// selector is the precomputed key table of a binding: JSON name to binding
// index.
type selector map[string]int

func (s selector) Select(name string) int {
	if i, ok := s[name]; ok {
		return i
	}
	return NoMatch
}
