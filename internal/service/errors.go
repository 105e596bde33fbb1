package service

import (
	"errors"
	"fmt"

	"github.com/jask/contratos/internal/api"
)

var (
	// ErrAuth is the only error login reports; server detail is not passed on.
	ErrAuth = errors.New("falha no login")
	// ErrBusy means the workflow already has a request in flight.
	ErrBusy = errors.New("operation already in progress")
	// ErrFinished means the workflow reached a terminal state; reopen the dialog.
	ErrFinished = errors.New("workflow already finished")
	// ErrNotReady means a required input is still empty.
	ErrNotReady = errors.New("required input missing")
)

// FetchError is a failed collection load. The console shows an empty list
// and only logs it.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubmissionError is a failed upload, export or contract save. Message is
// what the user sees.
type SubmissionError struct {
	Op      string
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// submissionError converts a transport or API failure into a SubmissionError
// whose message is the server detail when there is one, else fallback.
func submissionError(op string, err error, fallback string) *SubmissionError {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se
	}
	msg := api.Detail(err)
	if msg == "" {
		msg = fallback
	}
	return &SubmissionError{Op: op, Message: msg, Err: err}
}

// Message returns the user-facing text for err, or fallback.
func Message(err error, fallback string) string {
	var se *SubmissionError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if errors.Is(err, ErrAuth) {
		return "Falha no login"
	}
	return fallback
}
