package common

import "errors"

// Kind is the error taxonomy shared across every component so hosts can map
// a returned error to a stable recovery strategy without string matching.
type Kind string

const (
	KindInvalidParameters  Kind = "INVALID_PARAMETERS"
	KindNotOwner           Kind = "NOT_OWNER"
	KindNotGuardian        Kind = "NOT_GUARDIAN"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindAlreadyReleased    Kind = "ALREADY_RELEASED"
	KindNotRequested       Kind = "NOT_REQUESTED"
	KindTimelockNotExpired Kind = "TIMELOCK_NOT_EXPIRED"
	KindWillNotFound       Kind = "WILL_NOT_FOUND"
	KindTransferFailed     Kind = "TRANSFER_FAILED"
	KindInsufficientBal    Kind = "INSUFFICIENT_BALANCE"
	KindChecksumMismatch   Kind = "CHECKSUM_MISMATCH"
	KindPaused             Kind = "PAUSED"
	KindUnknown            Kind = "UNKNOWN"
)

// TaxonomyError binds a sentinel error message to a Kind so it survives
// wrapping with fmt.Errorf("%w", ...) and errors.Is/As comparisons.
type TaxonomyError struct {
	kind Kind
	msg  string
}

// NewError constructs a taxonomy-tagged sentinel error. Components declare
// these as package-level vars, the same way the teacher declares plain
// errors.New sentinels.
func NewError(kind Kind, msg string) *TaxonomyError {
	return &TaxonomyError{kind: kind, msg: msg}
}

// Error implements error.
func (e *TaxonomyError) Error() string {
	if e == nil {
		return ""
	}
	return e.msg
}

// Kind reports the taxonomy classification of this error.
func (e *TaxonomyError) Kind() Kind {
	if e == nil {
		return KindUnknown
	}
	return e.kind
}

// KindedError is implemented by any error that can classify itself.
type KindedError interface {
	error
	Kind() Kind
}

// ErrorKind walks err's wrap chain for a KindedError and returns its Kind,
// or KindUnknown if none is found. A nil err yields the empty Kind.
func ErrorKind(err error) Kind {
	if err == nil {
		return ""
	}
	var ke KindedError
	if errors.As(err, &ke) {
		return ke.Kind()
	}
	return KindUnknown
}
