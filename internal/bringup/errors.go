package bringup

import (
	"errors"
	"strings"
)

// Error kinds. Every *Error matches exactly one of them with errors.Is.
var (
	ErrBusClaim            = errors.New("bus claim failed")
	ErrPeripheralAttach    = errors.New("peripheral attach failed")
	ErrConfiguration       = errors.New("configuration failed")
	ErrDisplayConstruction = errors.New("display construction failed")
)

// Error is a stage failure.
type Error struct {
	Stage      string
	Kind       error
	Peripheral string
	Reason     string
	Err        error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("bringup ")
	sb.WriteString(e.Stage)
	sb.WriteString(": ")
	if e.Kind != nil {
		sb.WriteString(e.Kind.Error())
	} else {
		sb.WriteString("failed")
	}
	if e.Peripheral != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Peripheral)
		sb.WriteString(")")
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the error kind.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && e.Kind == target
}

func attachErr(peripheral string, err error) *Error {
	return &Error{Kind: ErrPeripheralAttach, Peripheral: peripheral, Err: err}
}

func configErr(peripheral, reason string, err error) *Error {
	return &Error{Kind: ErrConfiguration, Peripheral: peripheral, Reason: reason, Err: err}
}

// Faults collects non-fatal stage failures in the order they happened.
type Faults struct {
	errs []*Error
}

func (f *Faults) Add(e *Error) {
	if e != nil {
		f.errs = append(f.errs, e)
	}
}

func (f *Faults) Len() int { return len(f.errs) }

// List returns the recorded failures.
func (f *Faults) List() []*Error { return f.errs }

// Has reports whether stage degraded.
func (f *Faults) Has(stage string) bool {
	for _, e := range f.errs {
		if e.Stage == stage {
			return true
		}
	}
	return false
}

// Err joins the recorded failures, or returns nil.
func (f *Faults) Err() error {
	if len(f.errs) == 0 {
		return nil
	}
	errs := make([]error, len(f.errs))
	for i, e := range f.errs {
		errs[i] = e
	}
	return errors.Join(errs...)
}
