package nae

import (
	"errors"
	"fmt"
)

// Contract violations. The engine panics with a *ContractError wrapping one
// of these; recover and test with errors.Is.
var (
	ErrBuilderStarted    = errors.New("nae: path builder already started")
	ErrBuilderNotStarted = errors.New("nae: path builder not started")
	ErrBuilderClosed     = errors.New("nae: path builder already ended")
	ErrBuilderNotClosed  = errors.New("nae: path builder not ended")
	ErrBuilderConsumed   = errors.New("nae: path builder already tessellated")
	ErrEmptyPath         = errors.New("nae: path has no segments")
	ErrStackUnderflow    = errors.New("nae: pop on base transform")
	ErrNotRecording      = errors.New("nae: draw call outside begin/end")
	ErrAlreadyRecording  = errors.New("nae: begin called twice")
	ErrInvalidVertices   = errors.New("nae: malformed vertex data")
	ErrInvalidTexture    = errors.New("nae: invalid texture handle")
)

// ContractError reports API misuse. It is the panic value for every
// contract violation.
type ContractError struct {
	Op  string
	Err error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }

func violation(op string, err error) {
	panic(&ContractError{Op: op, Err: err})
}

// Catch runs fn and converts a contract-violation panic into an error.
// Other panics propagate unchanged. Hosts that execute untrusted scene code
// (scripts, plugins) use it to keep a bad call from taking the process down.
func Catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*ContractError)
			if !ok {
				panic(r)
			}
			err = ce
		}
	}()
	fn()
	return nil
}
