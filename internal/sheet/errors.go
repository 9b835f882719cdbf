package sheet

import (
	"fmt"
	"strings"
)

// EngineErrorCode mirrors the teacher's AppErrorCode enum (sheet.go):
// a small, closed set of host-facing outcomes for the mutating API, kept
// separate from the formula-level lang.EvalError taxonomy.
type EngineErrorCode uint8

const (
	EngineErrOK EngineErrorCode = iota
	EngineErrNotFound
	EngineErrCycle
	EngineErrInvalidArgument
)

// EngineError is returned by Delete (and recorded by RunnableSheet's
// Value/Log) when the operation itself cannot be performed, as opposed to
// a formula evaluating to an error value (which is stored on the cell, not
// returned here). A rejected SetSource returns a *CycleError instead.
type EngineError struct {
	Code    EngineErrorCode
	Message string
}

func (e *EngineError) Error() string { return e.Message }

func NewEngineError(code EngineErrorCode, message string) *EngineError {
	return &EngineError{Code: code, Message: message}
}

// CycleError reports the DFS stack, from the offending node back to its
// first occurrence, that would have closed a cycle in the push-edge graph
// (spec §4.6). Accepting the edit that produced it is refused; the sheet is
// left exactly as it was.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: %s", strings.Join(e.Cycle, " -> "))
}
