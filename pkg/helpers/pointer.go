package helpers

func Ptr[T any](val T) *T {
	return &val
}

// Value dereferences val, giving the zero value for nil.
func Value[T any](val *T) T {
	if val == nil {
		var zero T
		return zero
	}
	return *val
}

// NonZero is Ptr for set values and nil for the zero value, for optional
// request fields where "" means absent.
func NonZero[T comparable](val T) *T {
	var zero T
	if val == zero {
		return nil
	}
	return &val
}
