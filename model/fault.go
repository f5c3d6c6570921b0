package model

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FaultKind classifies a failed turn.
type FaultKind int

const (
	FaultTransport FaultKind = iota + 1
	FaultService
	FaultMalformedResponse
)

func (k FaultKind) String() string {
	switch k {
	case FaultTransport:
		return "transport"
	case FaultService:
		return "service"
	case FaultMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// ErrEmptyResponse is returned when a provider answers with neither content
// nor tool calls.
var ErrEmptyResponse = errors.New("response contained no content")

// Fault is a per-turn failure. It never leaves session history modified.
type Fault struct {
	Kind FaultKind
	Op   string
	Err  error
}

func NewFault(kind FaultKind, op string, err error) *Fault {
	return &Fault{Kind: kind, Op: op, Err: err}
}

func (f *Fault) Error() string {
	if f.Op == "" {
		return fmt.Sprintf("%s fault: %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("%s fault: %s: %v", f.Kind, f.Op, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Diagnostic returns a message suitable for showing to the user.
func (f *Fault) Diagnostic() string {
	switch f.Kind {
	case FaultTransport:
		if errors.Is(f.Err, context.DeadlineExceeded) {
			return "The model service did not answer in time. Please try again."
		}
		if errors.Is(f.Err, context.Canceled) {
			return "The request was cancelled."
		}
		return fmt.Sprintf("Could not reach the model service: %v. Check your connection and try again.", f.Err)
	case FaultMalformedResponse:
		return fmt.Sprintf("The model service returned a response that could not be used: %v", f.Err)
	default:
		return fmt.Sprintf("Error getting AI response: %v", f.Err)
	}
}

// AsFault classifies err. Faults pass through unchanged; context and network
// errors become transport faults; anything else is a service fault.
func AsFault(op string, err error) *Fault {
	if err == nil {
		return nil
	}

	var fault *Fault
	if errors.As(err, &fault) {
		return fault
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewFault(FaultTransport, op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewFault(FaultTransport, op, err)
	}

	return NewFault(FaultService, op, err)
}
