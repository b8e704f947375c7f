package log

import (
	"fmt"

	"github.com/eroshov/xsort/strutil"
)

// Message is an interface to print structured logs.
type Message interface {
	fmt.Stringer
	JSON() string
}

// InfoMessage is a generic message structure for successful operations.
type InfoMessage struct {
	Operation   string `json:"operation"`
	Success     bool   `json:"success"`
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// String is the string representation of InfoMessage.
func (i InfoMessage) String() string {
	if i.Destination == "" {
		return fmt.Sprintf("%v %v", i.Operation, i.Source)
	}
	return fmt.Sprintf("%v %v %v", i.Operation, i.Source, i.Destination)
}

// JSON is the JSON representation of InfoMessage.
func (i InfoMessage) JSON() string {
	i.Success = true
	return strutil.JSON(i)
}

// ErrorMessage is a generic message structure for unsuccessful operations.
type ErrorMessage struct {
	Operation string `json:"operation,omitempty"`
	Command   string `json:"command,omitempty"`
	Err       string `json:"error"`
}

// String is the string representation of ErrorMessage.
func (e ErrorMessage) String() string {
	if e.Command == "" {
		return fmt.Sprint(e.Err)
	}
	return fmt.Sprintf("%q: %v", e.Command, e.Err)
}

// JSON is the JSON representation of ErrorMessage.
func (e ErrorMessage) JSON() string {
	return strutil.JSON(e)
}

// DebugMessage is a generic message structure for diagnostics.
type DebugMessage struct {
	Operation string `json:"operation,omitempty"`
	Command   string `json:"command,omitempty"`
	Message   string `json:"message"`
}

// String is the string representation of DebugMessage.
func (d DebugMessage) String() string {
	if d.Command == "" {
		return d.Message
	}
	return fmt.Sprintf("%q: %v", d.Command, d.Message)
}

// JSON is the JSON representation of DebugMessage.
func (d DebugMessage) JSON() string {
	return strutil.JSON(d)
}

// TraceMessage is a message structure for fine-grained progress events, such
// as individual chunk and merge-batch completions.
type TraceMessage struct {
	Operation string `json:"operation"`
	Target    string `json:"target,omitempty"`
	Message   string `json:"message,omitempty"`
}

// String is the string representation of TraceMessage.
func (t TraceMessage) String() string {
	if t.Message == "" {
		return fmt.Sprintf("%v %v", t.Operation, t.Target)
	}
	return fmt.Sprintf("%v %v: %v", t.Operation, t.Target, t.Message)
}

// JSON is the JSON representation of TraceMessage.
func (t TraceMessage) JSON() string {
	return strutil.JSON(t)
}
