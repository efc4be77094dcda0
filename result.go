package zskema

// Result is the outcome of one validation call: either a value or a
// non-empty list of issues. It is created fresh per call and never mutated.
type Result[T any] struct {
	Value  T
	Issues Issues
}

// Success builds a successful Result.
func Success[T any](v T) Result[T] { return Result[T]{Value: v} }

// Failure builds a failed Result. Callers must pass at least one issue.
func Failure[T any](iss Issues) Result[T] { return Result[T]{Issues: iss} }

// OK reports whether validation succeeded.
func (r Result[T]) OK() bool { return len(r.Issues) == 0 }

// Err returns the issues as an error, or nil on success.
func (r Result[T]) Err() error {
	if len(r.Issues) == 0 {
		return nil
	}
	return r.Issues
}

// Unwrap returns the value together with Err().
func (r Result[T]) Unwrap() (T, error) { return r.Value, r.Err() }

// Flatten projects a failed result; it is empty for successes.
func (r Result[T]) Flatten() FlattenedError { return Flatten(r.Issues) }

// Treeify projects a failed result into a tree; it is empty for successes.
func (r Result[T]) Treeify() *ErrorTree { return Treeify(r.Issues) }
