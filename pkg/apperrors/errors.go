package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an error for HTTP translation at the delivery boundary.
type Kind int

const (
	KindValidation Kind = iota // malformed input, rejected before any external call
	KindAuth                   // missing session or expired/missing provider token
	KindNotFound               // missing account/resource
	KindStorage                // database operation failed
	KindUpstream               // third-party API call failed
)

// Error is the application error type. Known indicates the client can act on
// the failure (e.g. prompt for reauthentication) instead of showing a generic
// error.
type Error struct {
	Kind    Kind
	Message string
	Known   bool
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg, Known: true}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "storage operation failed", Err: err}
}

// Upstream keeps the upstream message visible for diagnostics.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// Status maps an error kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes the JSON error body for err. Typed errors keep their status
// and isKnownError flag; anything else becomes a generic 500.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if errors.As(err, &appErr) {
		body := gin.H{"error": appErr.Error()}
		if appErr.Known {
			body["isKnownError"] = true
		}
		c.JSON(appErr.Kind.Status(), body)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
