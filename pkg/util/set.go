package util

// Set holds distinct comparable values
type Set[K comparable] map[K]struct{}

// SetOf builds a Set from values, dropping repeats
func SetOf[K comparable](values ...K) Set[K] {
	res := make(Set[K], len(values))
	res.Add(values...)
	return res
}

func (s Set[K]) Add(values ...K) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

func (s Set[K]) Remove(values ...K) {
	for _, v := range values {
		delete(s, v)
	}
}

func (s Set[K]) Contains(v K) bool {
	_, ok := s[v]
	return ok
}

func (s Set[K]) Len() int {
	return len(s)
}

func (s Set[K]) IsEmpty() bool {
	return len(s) == 0
}
