package errs

import (
	"errors"
	"fmt"
	"strings"
)

type CodeError interface {
	error
	Code() int32
	Print(extras ...string) CodeError
	Printf(format string, args ...any) CodeError
	Wrap(err error) CodeError
	Is(error) bool
}

func CreateCodeError(code int32, desc string) CodeError {
	return &codeError{
		Errno: code, // 错误码
		Desc:  desc, // 错误描述, 如：CLOSED、CONFIG
	}
}

// WrapError 非CodeError包装成Unknown
func WrapError(err error) CodeError {
	if err == nil {
		return nil
	}
	var x *codeError
	if errors.As(err, &x) {
		return x
	}
	return Unknown.Wrap(err)
}

type codeError struct {
	Errno int32
	Desc  string
	cause error
}

func (e *codeError) Code() int32 {
	return e.Errno
}

func (e *codeError) Error() string {
	if e.cause != nil {
		return e.Desc + ": " + e.cause.Error()
	}
	return e.Desc
}

func (e *codeError) String() string {
	return fmt.Sprintf("errno: %d, desc: %s", e.Errno, e.Error())
}

func (e *codeError) Unwrap() error {
	return e.cause
}

func (e *codeError) Print(extras ...string) CodeError {
	if len(extras) == 0 {
		return e
	}
	ns := len(e.Desc) + len(extras)
	for _, extra := range extras {
		ns += len(extra)
	}
	builder := strings.Builder{}
	builder.Grow(ns)
	builder.WriteString(e.Desc)
	for _, extra := range extras {
		builder.WriteByte(',')
		builder.WriteString(extra)
	}
	return &codeError{
		Errno: e.Errno,
		Desc:  builder.String(),
		cause: e.cause,
	}
}

func (e *codeError) Printf(format string, args ...any) CodeError {
	if len(format) == 0 {
		return e
	}
	return &codeError{
		Errno: e.Errno,
		Desc:  e.Desc + "," + fmt.Sprintf(format, args...),
		cause: e.cause,
	}
}

// Wrap 保留错误码，附带底层错误
func (e *codeError) Wrap(err error) CodeError {
	if err == nil {
		return e
	}
	return &codeError{
		Errno: e.Errno,
		Desc:  e.Desc,
		cause: err,
	}
}

// Is 错误码相同即相等
func (e *codeError) Is(target error) bool {
	if x, ok := target.(*codeError); ok {
		return x.Errno == e.Errno
	}
	return false
}
