package deckfill

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports a missing sheet, structured table, table row or
// slide. Kind names what was looked for ("sheet", "table", "row", "slide").
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// MissingParameterError lists every required template parameter absent from a
// run's parameter map. All missing names are collected before the run aborts,
// not just the first.
type MissingParameterError struct {
	Names []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameters: %s", strings.Join(e.Names, ", "))
}

// UnsupportedError reports an operation the session backend cannot perform,
// such as chart export without a rendering engine. Callers treat these as
// best-effort degradations, never as run failures.
type UnsupportedError struct {
	Op string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s is not supported by this backend", e.Op)
}

// IsUnsupported reports whether err wraps an UnsupportedError.
func IsUnsupported(err error) bool {
	var u *UnsupportedError
	return errors.As(err, &u)
}

// transientSignatures are substrings of automation-host error messages known
// to indicate a transient failure of the external application rather than a
// real fault. Matching errors are retried after a host-process sweep.
var transientSignatures = []string{"enumeration", "rejected", "automation"}

// IsTransient reports whether err carries a known transient automation-host
// failure signature.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range transientSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
