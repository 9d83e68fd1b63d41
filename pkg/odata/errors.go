package odata

import "fmt"

var ErrBadRequest = fmt.Errorf("bad request")
var ErrInternal = fmt.Errorf("internal error")
var ErrNotFound = fmt.Errorf("not found")
var ErrUnsupportedOption = fmt.Errorf("unsupported query option")

type svcError struct {
	msg    string
	target error
}

func (e svcError) Error() string        { return e.msg }
func (e svcError) Is(target error) bool { return target == e.target }

// NewBadRequestError reports a resource path that could not be parsed.
func NewBadRequestError(msg string) error {
	return &svcError{
		msg:    msg,
		target: ErrBadRequest,
	}
}

func NewInternalError(msg string) error {
	return &svcError{
		msg:    msg,
		target: ErrInternal,
	}
}

// NewNotFoundError reports an unknown entity type, an unknown key or an
// empty filtered result. It is a defined outcome, not a failure.
func NewNotFoundError(msg string) error {
	return &svcError{
		msg:    msg,
		target: ErrNotFound,
	}
}

// NewUnsupportedOptionError reports an option kind the active executor
// cannot handle. This is a capability gap between schema and executor,
// never bad user input.
func NewUnsupportedOptionError(optionKind string) error {
	return &svcError{
		msg:    fmt.Sprintf("executor does not support query option %s", optionKind),
		target: ErrUnsupportedOption,
	}
}
