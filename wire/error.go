package wire

import "fmt"

// UnknownOpError is returned by a dispatcher that is given a message
// with an invalid opcode.
type UnknownOpError struct {
	Sender uint32
	Op     uint16
}

func (err UnknownOpError) Error() string {
	return fmt.Sprintf("unknown opcode %v for object %v", err.Op, err.Sender)
}

// UnknownWindowError is returned by an attempt to dispatch a message
// that names a window the receiver doesn't know about.
type UnknownWindowError struct {
	ID uint32
}

func (err UnknownWindowError) Error() string {
	return fmt.Sprintf("unknown window ID: %v", err.ID)
}
