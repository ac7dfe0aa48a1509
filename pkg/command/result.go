package command

import (
	"fmt"

	"modcmd/pkg/access"
)

// Result is the outcome of an invocation handler. The type is closed: every
// variant is defined in this package, so result handlers can switch over them
// exhaustively. Only ResultContinue lets the handler chain proceed; every
// other variant is terminal.
type Result interface {
	isResult()
}

// ResultContinue defers to the next handler in the chain.
type ResultContinue struct{}

// ResultSuccess indicates the command completed successfully.
type ResultSuccess struct{}

// ResultSuccessMessage indicates success with a message for the caller.
type ResultSuccessMessage struct {
	Message string
}

// ResultFailure indicates the command failed due to user error.
type ResultFailure struct{}

// ResultFailureMessage indicates user-error failure with a message for the
// caller.
type ResultFailureMessage struct {
	Message string
}

// ResultInvalidArgument indicates that an argument was rejected. Parameter
// names the offending parameter; it is empty when the failure is not tied to
// a single parameter.
type ResultInvalidArgument struct {
	Parameter string
	Reason    string
}

// ResultNotAllowed indicates the caller was denied by a permission group.
type ResultNotAllowed struct {
	Group access.Group
}

// ResultError indicates an internal error with a diagnostic message.
type ResultError struct {
	Message string
}

// ResultFault indicates an internal error caused by an unexpected fault from
// a handler. The cause is preserved for diagnostics.
type ResultFault struct {
	Cause error
}

func (ResultContinue) isResult()        {}
func (ResultSuccess) isResult()         {}
func (ResultSuccessMessage) isResult()  {}
func (ResultFailure) isResult()         {}
func (ResultFailureMessage) isResult()  {}
func (ResultInvalidArgument) isResult() {}
func (ResultNotAllowed) isResult()      {}
func (ResultError) isResult()           {}
func (ResultFault) isResult()           {}

// Continue creates a result that defers to the next handler.
func Continue() Result { return ResultContinue{} }

// Success creates a plain success result.
func Success() Result { return ResultSuccess{} }

// Successf creates a success result with a formatted message.
func Successf(format string, args ...any) Result {
	return ResultSuccessMessage{Message: fmt.Sprintf(format, args...)}
}

// Fail creates a plain failure result.
func Fail() Result { return ResultFailure{} }

// Failf creates a failure result with a formatted message.
func Failf(format string, args ...any) Result {
	return ResultFailureMessage{Message: fmt.Sprintf(format, args...)}
}

// InvalidArg creates a result rejecting the named parameter.
func InvalidArg(parameter, reason string) Result {
	return ResultInvalidArgument{Parameter: parameter, Reason: reason}
}

// NotAllowed creates a result denying the caller on behalf of a group.
func NotAllowed(group access.Group) Result {
	return ResultNotAllowed{Group: group}
}

// Errorf creates an internal-error result with a formatted message.
func Errorf(format string, args ...any) Result {
	return ResultError{Message: fmt.Sprintf(format, args...)}
}

// Fault creates an internal-error result wrapping the given cause.
func Fault(cause error) Result {
	return ResultFault{Cause: cause}
}

// IsTerminal reports whether the result ends the handler chain.
func IsTerminal(r Result) bool {
	_, cont := r.(ResultContinue)
	return !cont
}

// IsErrorClass reports whether the result represents an internal error rather
// than a user-facing outcome. Unconsumed error-class results must be surfaced,
// never swallowed.
func IsErrorClass(r Result) bool {
	switch r.(type) {
	case ResultError, ResultFault:
		return true
	default:
		return false
	}
}
