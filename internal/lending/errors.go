// internal/lending/errors.go
package lending

import "errors"

// Kind classifies a lending failure. Callers branch on the kind; the message
// text is presentation only and varies with the configured locale.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotEligible
	KindOutOfStock
	KindAlreadyReturned
	KindNotFound
	KindInvalidArgument
	KindTransactionFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotEligible:
		return "not_eligible"
	case KindOutOfStock:
		return "out_of_stock"
	case KindAlreadyReturned:
		return "already_returned"
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindTransactionFailure:
		return "transaction_failure"
	}
	return "unknown"
}

// Error is a lending failure with a stable kind and a human-readable,
// locale-configurable message.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}
