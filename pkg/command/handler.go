package command

import "context"

// InvocationHandler executes one step of a command's handler chain. Returning
// ResultContinue passes control to the next handler; any other result is
// terminal. A returned error wraps into a ResultFault unless it is a
// ResultSignal, whose carried result terminates the invocation directly.
type InvocationHandler func(ctx context.Context, cc Context) (Result, error)

// ResultHandler reacts to the terminal result of an invocation. Returning
// true marks the result handled and stops further result handlers from
// running.
type ResultHandler func(ctx context.Context, cc Context, result Result) (bool, error)
