package operation

import "fmt"

// Status is the outcome of one operation.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusCancelled
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of executing an operation. Exactly one of Message
// (Success) or Err (Failure) is meaningful; Cancelled carries neither.
type Result struct {
	Status  Status
	Message string
	Err     error
	// ReportPath is set on Build and Test failures when a report was written.
	ReportPath string
}

// Success creates a successful result.
func Success(message string) Result {
	return Result{Status: StatusSuccess, Message: message}
}

// Failure creates a failed result.
func Failure(err error) Result {
	return Result{Status: StatusFailure, Err: err}
}

// Cancelled creates a result for an operation the user declined.
func Cancelled() Result {
	return Result{Status: StatusCancelled}
}

func (r Result) Succeeded() bool { return r.Status == StatusSuccess }

func (r Result) Failed() bool { return r.Status == StatusFailure }

func (r Result) Cancelled() bool { return r.Status == StatusCancelled }

// String renders the result for display.
func (r Result) String() string {
	switch r.Status {
	case StatusSuccess:
		return r.Message
	case StatusFailure:
		if r.Err == nil {
			return "failed"
		}
		return r.Err.Error()
	default:
		return r.Status.String()
	}
}
