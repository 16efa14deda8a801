// Package kernel is the proof-system kernel: it checks the opening data of a
// seal against a circuit definition and a hash suite and returns the global
// outputs the seal commits to.
//
// A seal is a sequence of 32-bit words:
//
//	[seal version]                       only when the circuit defines one
//	outputs[OutputSize]                  global output slots
//	po2                                  log2 of the trace length
//	control id[8]                        circuit control identifier
//	trace root[8]                        Merkle root of the trace rows
//	Queries x (row, next row, path, next path)
//
// Query positions are sampled from a Tip5 Fiat-Shamir transcript over the
// header, and every opened pair of rows must satisfy the transition
// constraint of the circuit over the Goldilocks field.
//
// Stark is a self-contained reference kernel, not the RISC Zero proof
// system: its seals carry no execution witness and cannot be produced by
// the RISC Zero prover, and Prove builds an accepted seal for any outputs
// under a given control id. Its binding comes from the control id checks
// alone. A kernel for real seals is supplied through CircuitKernel.
package kernel

import (
	"errors"
	"fmt"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/circuit"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/suite"
)

// ControlCheck decides whether the control id found in a seal is acceptable
// for a trace of size po2
type ControlCheck func(po2 uint32, controlID core.Digest) error

// CircuitKernel opens seals for a circuit definition
type CircuitKernel interface {
	// Open verifies seal and returns its global outputs
	Open(def *circuit.Def, hs suite.HashSuite, seal []uint32, check ControlCheck) ([]uint32, error)
}

// Error is returned by Open. Control is set when the failure comes from the
// control id check rather than from the opening itself.
type Error struct {
	Control   bool
	ControlID core.Digest
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Control {
		return fmt.Sprintf("control_id mismatch for %s: %s", e.ControlID, msg)
	}
	return "invalid proof: " + msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsControlMismatch reports whether err is a control id failure
func IsControlMismatch(err error) bool {
	var kerr *Error
	return errors.As(err, &kerr) && kerr.Control
}

func invalid(format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// ExpectControlID returns a check accepting exactly expected
func ExpectControlID(expected core.Digest) ControlCheck {
	return func(_ uint32, controlID core.Digest) error {
		if controlID != expected {
			return fmt.Errorf("expected %s", expected)
		}
		return nil
	}
}
