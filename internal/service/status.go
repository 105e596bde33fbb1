package service

import (
	"io"

	"github.com/charmbracelet/log"
)

// Phase is where a workflow instance stands.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the state of one dialog's workflow. Message is only set when
// Phase is PhaseFailed.
type Status struct {
	Phase   Phase
	Message string
}

func idle() Status                 { return Status{Phase: PhaseIdle} }
func pending() Status              { return Status{Phase: PhasePending} }
func succeeded() Status            { return Status{Phase: PhaseSucceeded} }
func failed(message string) Status { return Status{Phase: PhaseFailed, Message: message} }

func (s Status) Idle() bool      { return s.Phase == PhaseIdle }
func (s Status) Pending() bool   { return s.Phase == PhasePending }
func (s Status) Succeeded() bool { return s.Phase == PhaseSucceeded }
func (s Status) Failed() bool    { return s.Phase == PhaseFailed }

// Settled reports whether the last attempt finished, either way.
func (s Status) Settled() bool { return s.Succeeded() || s.Failed() }

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}
