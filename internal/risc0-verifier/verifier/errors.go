package verifier

import "fmt"

// Kind classifies verification failures. None of them is retryable.
type Kind int

const (
	// KindUnknown is never returned by this package
	KindUnknown Kind = iota

	// KindInvalidConfig means the context cannot verify anything
	KindInvalidConfig

	// KindUnknownHashSuite means the receipt names a hash function the
	// context does not provide
	KindUnknownHashSuite

	// KindUnsupportedParameters means the receipt was made for other
	// verifier parameters or a trace size the context does not allow
	KindUnsupportedParameters

	// KindControlIDMismatch means the circuit identity is not trusted
	KindControlIDMismatch

	// KindInvalidProof means the seal does not verify
	KindInvalidProof

	// KindDiscontinuousExecution means consecutive segments do not chain
	KindDiscontinuousExecution

	// KindClaimMismatch means the proof is valid for another key or journal
	KindClaimMismatch

	// KindReceiptFormat means the receipt is structurally unacceptable
	KindReceiptFormat

	// KindInvalidInput means the caller's arguments are malformed
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindInvalidConfig:
		return "invalid config"
	case KindUnknownHashSuite:
		return "unknown hash suite"
	case KindUnsupportedParameters:
		return "unsupported parameters"
	case KindControlIDMismatch:
		return "control_id mismatch"
	case KindInvalidProof:
		return "invalid proof"
	case KindDiscontinuousExecution:
		return "discontinuous execution"
	case KindClaimMismatch:
		return "claim mismatch"
	case KindReceiptFormat:
		return "receipt format"
	case KindInvalidInput:
		return "invalid input"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by verification
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the cause of the error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Sentinels for errors.Is
var (
	ErrUnknownHashSuite       = &Error{Kind: KindUnknownHashSuite}
	ErrUnsupportedParameters  = &Error{Kind: KindUnsupportedParameters}
	ErrControlIDMismatch      = &Error{Kind: KindControlIDMismatch}
	ErrInvalidProof           = &Error{Kind: KindInvalidProof}
	ErrDiscontinuousExecution = &Error{Kind: KindDiscontinuousExecution}
	ErrClaimMismatch          = &Error{Kind: KindClaimMismatch}
	ErrReceiptFormat          = &Error{Kind: KindReceiptFormat}
)
