// Package pipes rewrites ">>" and "<<" chains into function applications.
//
// A link "left >> right" feeds left into right. If right mentions the
// placeholder "_" (or the spread "*_"), left is substituted there.
// Otherwise left is passed as an argument: ">>" prepends it to an existing
// call's arguments and "<<" appends it. A right-hand side that is not a call
// is called with left as its only argument.
//
//	v >> f          =>  f(v)
//	v >> f(a)       =>  f(v, a)
//	v << f(a)       =>  f(a, v)
//	v >> _.m(a)     =>  v.m(a)
//	v >> [1, *_]    =>  [1, *v]
package pipes

// Placeholder is the default placeholder identifier.
const Placeholder = "_"

// Decorator is the default name of the decorator that activates the rewrite.
const Decorator = "pipes"

// Direction selects where the piped value is inserted into an existing call
// when no placeholder is present.
type Direction int

const (
	// Forward (">>") inserts the value as the first argument.
	Forward Direction = iota
	// Backward ("<<") inserts the value as the last argument.
	Backward
)

// String returns the operator for the direction.
func (d Direction) String() string {
	if d == Backward {
		return "<<"
	}
	return ">>"
}

// DirectionOf returns the direction for a pipe operator.
func DirectionOf(op string) (Direction, bool) {
	switch op {
	case ">>":
		return Forward, true
	case "<<":
		return Backward, true
	}
	return Forward, false
}
