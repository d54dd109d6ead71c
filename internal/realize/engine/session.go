// Package engine realizes and discretizes systems by scripting an external
// numeric engine session.
//
// The backend only talks to the session through named variables and textual
// commands; opening and closing the session belongs to the caller.
package engine

// Array is a real matrix in the engine's column-major layout.
type Array struct {
	Rows int
	Cols int
	Data []float64
}

// Session is a live engine workspace.
type Session interface {
	Put(name string, a Array) error
	Eval(cmd string) error
	Get(name string) (Array, error)
}
