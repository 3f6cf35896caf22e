package htn

import "errors"

// ErrValidation indicates malformed input to a Task or Method builder,
// such as an empty name or a method with no subtasks. It is a programmer
// error: fix the domain data rather than handling it at runtime.
var ErrValidation = errors.New("validation failed")

// ErrImmutableState indicates a mutation was attempted on a frozen
// WorldState snapshot. Use CopyMutable to obtain a writable copy.
var ErrImmutableState = errors.New("world state is immutable")

// ErrNotExecutable indicates a compound task was asked to convert itself
// into an executable action. Only primitive tasks map to actions.
var ErrNotExecutable = errors.New("task is not executable")
