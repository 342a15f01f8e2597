package transform

// Result carries a stage output and whether it is the degraded substitute.
// Value always has every field of its kind populated.
type Result[T any] struct {
	Value    T
	Degraded bool
	// Reason is a short description of why the degraded path was taken.
	Reason string
}

func parsed[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func degraded[T any](v T, reason string) Result[T] {
	return Result[T]{Value: v, Degraded: true, Reason: reason}
}
