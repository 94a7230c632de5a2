// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/diffeo/go-collection/collection"
	"github.com/satori/go.uuid"
)

// ErrorStatus describes errors that correspond to specific HTTP status
// codes.
type ErrorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrUnsupportedMediaType is returned from Decode() if the provided
// Content-Type: is unrecognized.  This translates directly into the
// equivalent HTTP 415 error.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrNotFound is a wrapper error that indicates that, due to the
// embedded error, a REST service should return a 404 Not Found error.
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 404 Not Found error code.
func (e ErrNotFound) HTTPStatus() int {
	return http.StatusNotFound
}

// ErrBadRequest is returned as an error when there is an error decoding
// HTTP headers or the request body.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 400 Bad Request HTTP status code.
func (e ErrBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

// ErrorDetail is one entry in the details list of an error body.
// Validation failures produce one detail per problem found.
type ErrorDetail struct {
	// Code is the snake_case code for this specific problem.
	Code string `json:"code"`

	// Message is a human-oriented description.
	Message string `json:"message"`

	// Target names the query parameter, field, or sort token at
	// fault.
	Target string `json:"target,omitempty"`
}

// ErrorBody is the payload of an ErrorResponse.
type ErrorBody struct {
	// EventID is a server-generated unique identifier for this
	// error occurrence, suitable for correlating a client report
	// with server logs.
	EventID string `json:"event_id"`

	// Code is a snake_case code identifying the overall failure.
	Code string `json:"code"`

	// Message is a human-oriented description of the failure.
	Message string `json:"message"`

	// Target identifies the failing request as "METHOD|url".
	Target string `json:"target,omitempty"`

	// Details itemizes the problems for failures that can have
	// more than one, such as query validation.
	Details []ErrorDetail `json:"details,omitempty"`

	// Stack is a server stack trace, only present for panics.
	Stack string `json:"stack,omitempty"`
}

// ErrorResponse is the envelope for all error payloads.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse creates an error response with a fresh event ID
// and a request target, filled in from an error value.
func NewErrorResponse(err error, method, url string) ErrorResponse {
	resp := ErrorResponse{}
	resp.Error.EventID = uuid.NewV4().String()
	resp.Error.Target = method + "|" + url
	resp.FromError(err)
	return resp
}

// FromError populates an ErrorResponse's code, message, and details
// based on an error value.  This remaps the well-known collection
// errors to specific codes so that ToError() can reconstruct them on
// the far side.
func (e *ErrorResponse) FromError(err error) {
	e.Error.Message = err.Error()
	e.Error.Code = "internal"
	switch err {
	case collection.ErrGone:
		e.Error.Code = "gone"
	case collection.ErrWrongBackend:
		e.Error.Code = "wrong_backend"
	}
	switch et := err.(type) {
	case collection.ErrNoSuchCollection:
		e.Error.Code = "no_such_collection"
		e.Error.Details = []ErrorDetail{{
			Code:    e.Error.Code,
			Message: et.Error(),
			Target:  et.Name,
		}}
	case collection.ErrBadConfig:
		e.Error.Code = "bad_config"
		e.Error.Details = []ErrorDetail{{
			Code:    e.Error.Code,
			Message: et.Error(),
			Target:  et.Reason,
		}}
	case collection.ValidationError:
		// The top-level code is the validation kind itself, so
		// clients can dispatch without digging into details.
		code, err2 := et.Kind.MarshalText()
		if err2 != nil {
			code = []byte("invalid_query")
		}
		e.Error.Code = string(code)
		e.Error.Details = []ErrorDetail{{
			Code:    string(code),
			Message: et.Error(),
			Target:  et.Target,
		}}
	case ErrNotFound:
		// Discard this wrapper and use the embedded error
		e.FromError(et.Err)
	case ErrBadRequest:
		e.FromError(et.Err)
	}
}

// ToError converts e back to a collection error, if that is possible.
// If not, returns a plain error with e's message text.
func (e *ErrorResponse) ToError() error {
	switch e.Error.Code {
	case "gone":
		return collection.ErrGone
	case "wrong_backend":
		return collection.ErrWrongBackend
	case "no_such_collection":
		return collection.ErrNoSuchCollection{Name: e.detailTarget()}
	case "bad_config":
		return collection.ErrBadConfig{Reason: e.detailTarget()}
	default:
		verr := collection.ValidationError{Target: e.detailTarget()}
		if verr.Kind.UnmarshalText([]byte(e.Error.Code)) == nil {
			return verr
		}
	}
	return errors.New(e.Error.Message)
}

func (e *ErrorResponse) detailTarget() string {
	if len(e.Error.Details) > 0 {
		return e.Error.Details[0].Target
	}
	return ""
}

// FromPanic populates an error response based on a panic.  Typical use
// is:
//
//     defer func() {
//         if obj := recover(); obj != nil {
//             resp := restdata.ErrorResponse{}
//             resp.FromPanic(obj)
//             // write resp out as makes sense
//         }
//    }
func (e *ErrorResponse) FromPanic(obj interface{}) {
	e.Error.Code = "panic"
	if recoveredError, isError := obj.(error); isError {
		e.Error.Message = recoveredError.Error()
	} else {
		e.Error.Message = fmt.Sprintf("%+v", obj)
	}
	var stack [4096]byte
	n := runtime.Stack(stack[:], false)
	e.Error.Stack = string(stack[:n])
}
