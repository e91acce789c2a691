package objects

import (
	"errors"
	"fmt"
)

// Codec errors. Typed errors below match these with errors.Is.
var (
	ErrMalformedHeader        = errors.New("malformed object header")
	ErrUnknownType            = errors.New("unknown object type")
	ErrInvalidLength          = errors.New("invalid object length")
	ErrSizeMismatch           = errors.New("object size mismatch")
	ErrUnimplementedStructure = errors.New("object structure not yet supported")
	ErrCorruptStream          = errors.New("corrupt object stream")
)

type UnknownTypeError struct {
	Token string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownType, e.Token)
}

func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}

type InvalidLengthError struct {
	Field string
	Err   error
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("%v: %q: %v", ErrInvalidLength, e.Field, e.Err)
}

func (e *InvalidLengthError) Is(target error) bool {
	return target == ErrInvalidLength
}

func (e *InvalidLengthError) Unwrap() error {
	return e.Err
}

// SizeMismatchError is the truncation guard: the body read from the stream
// does not have the length declared in the header.
type SizeMismatchError struct {
	Declared int64
	Actual   int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("%v: header declares %d bytes, stream holds %d", ErrSizeMismatch, e.Declared, e.Actual)
}

func (e *SizeMismatchError) Is(target error) bool {
	return target == ErrSizeMismatch
}

// UnimplementedStructureError is returned for types whose body has no
// structured form yet. When raised by decoding, Content holds the verified
// body so the caller still has every byte.
type UnimplementedStructureError struct {
	Type    ObjectType
	Content []byte
}

func (e *UnimplementedStructureError) Error() string {
	return fmt.Sprintf("%v: %s", ErrUnimplementedStructure, e.Type)
}

func (e *UnimplementedStructureError) Is(target error) bool {
	return target == ErrUnimplementedStructure
}
