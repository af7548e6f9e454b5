// Package builtins contains the transport-independent step kinds that every
// Dugway build registers: sleep, setVariable, and the message step that
// consumes content captured by another step.
package builtins
