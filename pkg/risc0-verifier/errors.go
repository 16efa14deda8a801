package risc0verifier

import (
	"errors"
	"fmt"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/receipt"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/verifier"
)

// ErrorCode represents a verification error code. Codes are errors
// themselves, so errors.Is(err, ErrClaimMismatch) works on any error
// returned by this package.
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration error
	ErrInvalidConfig

	// ErrUnknownHashSuite represents a receipt hash function the verifier
	// does not provide
	ErrUnknownHashSuite

	// ErrUnsupportedParameters represents a receipt made for a trace size or
	// parameters the verifier does not allow
	ErrUnsupportedParameters

	// ErrControlIDMismatch represents an untrusted circuit identity
	ErrControlIDMismatch

	// ErrInvalidProof represents a seal that does not verify
	ErrInvalidProof

	// ErrDiscontinuousExecution represents segments that do not chain
	ErrDiscontinuousExecution

	// ErrClaimMismatch represents a valid proof of another key or journal
	ErrClaimMismatch

	// ErrReceiptFormat represents a structurally unacceptable receipt
	ErrReceiptFormat

	// ErrInvalidInput represents an invalid input error
	ErrInvalidInput
)

var codeNames = map[ErrorCode]string{
	ErrUnknown:                "unknown",
	ErrInvalidConfig:          "invalid config",
	ErrUnknownHashSuite:       "unknown hash suite",
	ErrUnsupportedParameters:  "unsupported parameters",
	ErrControlIDMismatch:      "control_id mismatch",
	ErrInvalidProof:           "invalid proof",
	ErrDiscontinuousExecution: "discontinuous execution",
	ErrClaimMismatch:          "claim mismatch",
	ErrReceiptFormat:          "receipt format",
	ErrInvalidInput:           "invalid input",
}

// String returns the name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code %d", int(c))
}

// Error makes a code usable as an errors.Is target
func (c ErrorCode) Error() string {
	return c.String()
}

// VerifierError represents a verification error
type VerifierError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *VerifierError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("risc0-verifier error [%s]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("risc0-verifier error [%s]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *VerifierError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *VerifierError) Is(target error) bool {
	switch t := target.(type) {
	case *VerifierError:
		return e.Code == t.Code
	case ErrorCode:
		return e.Code == t
	}
	return false
}

// CodeOf returns the code of err, ErrUnknown if it carries none
func CodeOf(err error) ErrorCode {
	var ve *VerifierError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ErrUnknown
}

var kindCodes = map[verifier.Kind]ErrorCode{
	verifier.KindInvalidConfig:          ErrInvalidConfig,
	verifier.KindUnknownHashSuite:       ErrUnknownHashSuite,
	verifier.KindUnsupportedParameters:  ErrUnsupportedParameters,
	verifier.KindControlIDMismatch:      ErrControlIDMismatch,
	verifier.KindInvalidProof:           ErrInvalidProof,
	verifier.KindDiscontinuousExecution: ErrDiscontinuousExecution,
	verifier.KindClaimMismatch:          ErrClaimMismatch,
	verifier.KindReceiptFormat:          ErrReceiptFormat,
	verifier.KindInvalidInput:           ErrInvalidInput,
}

// wrap converts internal errors to a VerifierError
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var ve *VerifierError
	if errors.As(err, &ve) {
		return err
	}
	var ie *verifier.Error
	if errors.As(err, &ie) {
		code, ok := kindCodes[ie.Kind]
		if !ok {
			code = ErrUnknown
		}
		return &VerifierError{Code: code, Message: ie.Message, Cause: ie.Cause}
	}
	if errors.Is(err, receipt.ErrFormat) {
		return &VerifierError{Code: ErrReceiptFormat, Message: "malformed proof", Cause: err}
	}
	return &VerifierError{Code: ErrUnknown, Message: err.Error()}
}

func invalidInput(format string, args ...any) error {
	return &VerifierError{Code: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}
