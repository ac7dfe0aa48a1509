package command

import "fmt"

// IncompleteHandlingError indicates that an invocation's handler chain was
// exhausted without producing a terminal result. It is a defect in the
// command's handler configuration, not a user error, and must be surfaced.
type IncompleteHandlingError struct {
	Invocation Invocation
}

func (e *IncompleteHandlingError) Error() string {
	return fmt.Sprintf("handler chain for %q ended without a terminal result", e.Invocation)
}

// InvalidChainError indicates that a command's placement in the tree is
// incompatible with its ancestors. Detected at registration, never at
// execution.
type InvalidChainError struct {
	Invocation Invocation
	Reason     string
}

func (e *InvalidChainError) Error() string {
	return fmt.Sprintf("invalid command chain at %q: %s", e.Invocation, e.Reason)
}

// ResultSignal is an error carrying a prebuilt result. A handler deep in a
// call stack may return it (typically via Terminate) to end the invocation
// with that result, identically to returning the result directly.
type ResultSignal struct {
	Result Result
}

func (e *ResultSignal) Error() string {
	return fmt.Sprintf("terminated with result %T", e.Result)
}

// Terminate creates an error that ends the invocation with the given result.
func Terminate(r Result) error {
	return &ResultSignal{Result: r}
}
