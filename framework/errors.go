package framework

import "fmt"

// InvalidConfigError indicates that part of a suite document failed schema
// validation or referenced something that does not exist. It is always detected
// at construction time and is always fatal: the object is never built.
type InvalidConfigError struct {
	Detail string
}

func (e *InvalidConfigError) Error() string {
	return "invalid test config: " + e.Detail
}

// NewInvalidConfigError creates an InvalidConfigError with a formatted detail message.
func NewInvalidConfigError(format string, args ...interface{}) *InvalidConfigError {
	return &InvalidConfigError{Detail: fmt.Sprintf(format, args...)}
}

// MissingCapabilityError indicates that an object was expected to expose a
// capability that it does not have. When the object is a referenced step this is
// fatal to the referencing step but not to the rest of the case's teardown.
type MissingCapabilityError struct {
	Capability string
}

func (e *MissingCapabilityError) Error() string {
	return fmt.Sprintf("capability %q not found", e.Capability)
}

// ExpectationFailureError indicates that an assertion about received data did not
// hold. It carries both the expected and the actual value so reporters can show a
// useful diff.
type ExpectationFailureError struct {
	Title    string
	Expected interface{}
	Actual   interface{}
}

func (e *ExpectationFailureError) Error() string {
	return fmt.Sprintf("%s: expected %v, actual %v", e.Title, e.Expected, e.Actual)
}

// NewExpectationFailureError creates an ExpectationFailureError.
func NewExpectationFailureError(title string, expected, actual interface{}) *ExpectationFailureError {
	return &ExpectationFailureError{Title: title, Expected: expected, Actual: actual}
}
