// Package utils holds small generic helpers for the pointer-valued optional
// fields of the token wire types.
package utils

// Value dereferences v, returning the zero value for a nil pointer.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Ptr returns a pointer to v, for populating optional fields inline.
func Ptr[T any](v T) *T {
	return &v
}
