package domain

import (
	"errors"
	"fmt"
)

// Kind classifies settlement errors so that handlers and callers can act on
// the class rather than match on message text. Reconciliation is terminal:
// an irreversible external effect happened but the local state could not be
// confirmed consistent with it. It must never be auto-retried.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthz
	KindNotFound
	KindExternal // external call failed before any irreversible effect; retryable
	KindConfig   // unresolvable external identifiers; needs an operator fix
	KindReconciliation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindAuthz:
		return "AUTHZ"
	case KindNotFound:
		return "NOT_FOUND"
	case KindExternal:
		return "EXTERNAL_SERVICE"
	case KindConfig:
		return "CONFIGURATION"
	case KindReconciliation:
		return "RECONCILIATION_REQUIRED"
	default:
		return "UNKNOWN"
	}
}

type Error struct {
	Kind Kind
	Op   string // operation, e.g. "settlement.CheckIn"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

func Wrap(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf extracts the kind from an error chain, KindUnknown otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
