package util

// InPlaceFilter keeps only the elements of s matching p, without allocating.
func InPlaceFilter[T any](s *[]T, p func(T) bool) {
	i := 0
	for _, e := range *s {
		if p(e) {
			(*s)[i] = e
			i++
		}
	}
	*s = (*s)[:i]
}

// RemoveAt deletes the element at index i, preserving order.
func RemoveAt[T any](s []T, i int) []T {
	return append(s[:i], s[i+1:]...)
}

func Sum[T int | int64 | float64](s []T) T {
	var total T
	for _, e := range s {
		total += e
	}
	return total
}
