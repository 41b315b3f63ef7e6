package machine

import "errors"

// Errors that stop the execution of a program.
var (
	ErrProgramTooLarge   = errors.New("program exceeds available memory")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrAddressOutOfRange = errors.New("memory address out of range")
	ErrInvalidKey        = errors.New("key index out of range")
)
