package auth

import (
	"errors"
	"fmt"
)

// Failure kinds.
var (
	ErrTransport             = errors.New("transport error")
	ErrHTTPStatus            = errors.New("unexpected http status")
	ErrMalformedResponse     = errors.New("malformed response")
	ErrInvalidResponseFormat = errors.New("invalid response format")
	ErrExtractionIncomplete  = errors.New("extraction incomplete")
)

// Pipeline steps. An *Error matches both its step and its kind with errors.Is.
var (
	ErrOtpRequestFailed      = errors.New("otp request failed")
	ErrOtpVerificationFailed = errors.New("otp verification failed")
	ErrProtectedFetchFailed  = errors.New("protected fetch failed")
	ErrCodeEntry             = errors.New("otp code entry failed")
	ErrExtract               = errors.New("credential extraction failed")
)

// Error describes where in the pipeline a call failed and what the server
// answered, if anything.
type Error struct {
	Op         error
	Kind       error
	StatusCode int
	Body       string
	Message    string
	Err        error
}

func NewError(op, kind error, statusCode int, body, message string, err error) *Error {
	return &Error{
		Op:         op,
		Kind:       kind,
		StatusCode: statusCode,
		Body:       body,
		Message:    message,
		Err:        err,
	}
}

func (e *Error) Error() string {
	msg := e.Op.Error()
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Op || (e.Kind != nil && target == e.Kind)
}

// stepError converts a failed round trip into an *Error for op. A nil err
// means the server answered with a non-2xx status.
func stepError(op error, resp *Response, err error) *Error {
	if err != nil {
		return NewError(op, ErrTransport, 0, "", "", err)
	}
	return NewError(op, ErrHTTPStatus, resp.StatusCode, string(resp.Body), errorMessage(resp.Body), nil)
}
