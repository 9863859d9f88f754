package client

// State of an operation result.
type State int

const (
	Pending State = iota
	Fulfilled
	Rejected
)

func (s State) String() string {
	switch s {
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Result is the tagged outcome of a store operation. Value is only meaningful
// when State is Fulfilled, Err only when it is Rejected.
type Result[T any] struct {
	State State
	Value T
	Err   error
}

func fulfilled[T any](v T) Result[T] {
	return Result[T]{State: Fulfilled, Value: v}
}

func rejected[T any](err error) Result[T] {
	return Result[T]{State: Rejected, Err: err}
}

// OK reports whether the operation was fulfilled.
func (r Result[T]) OK() bool {
	return r.State == Fulfilled
}
