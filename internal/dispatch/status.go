package dispatch

import "sort"

// StatusSet is an immutable set of HTTP status codes.
type StatusSet struct {
	codes map[int]struct{}
}

func NewStatusSet(codes ...int) StatusSet {
	s := StatusSet{codes: make(map[int]struct{}, len(codes))}
	for _, c := range codes {
		s.codes[c] = struct{}{}
	}
	return s
}

// DefaultSuccessStatus is the allow-list of statuses classified as
// success: 200 through 206. Redirects and informational statuses that
// reach the dispatcher are errors.
func DefaultSuccessStatus() StatusSet {
	return NewStatusSet(200, 201, 202, 203, 204, 205, 206)
}

func (s StatusSet) Contains(code int) bool {
	_, ok := s.codes[code]
	return ok
}

// Codes returns the members in ascending order.
func (s StatusSet) Codes() []int {
	codes := make([]int, 0, len(s.codes))
	for c := range s.codes {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}
