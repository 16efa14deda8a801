package receipt

import (
	"encoding/json"
	"fmt"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
)

// ExitKind is the system-level part of an exit code
type ExitKind uint8

const (
	// ExitHalted means the program ran to completion
	ExitHalted ExitKind = iota

	// ExitPaused means the program paused and may be resumed
	ExitPaused

	// ExitSystemSplit means the segment ended and execution continues in the next one
	ExitSystemSplit

	// ExitSessionLimit means the session cycle limit was reached
	ExitSessionLimit
)

func (k ExitKind) String() string {
	switch k {
	case ExitHalted:
		return "halted"
	case ExitPaused:
		return "paused"
	case ExitSystemSplit:
		return "system_split"
	case ExitSessionLimit:
		return "session_limit"
	default:
		return fmt.Sprintf("ExitKind(%d)", uint8(k))
	}
}

// ExitCode is the exit status of an execution
type ExitCode struct {
	Kind ExitKind `json:"kind" cbor:"1,keyasint"`
	User uint32   `json:"user" cbor:"2,keyasint"`
}

// Exit code constructors
func Halted(user uint32) ExitCode { return ExitCode{Kind: ExitHalted, User: user} }
func Paused(user uint32) ExitCode { return ExitCode{Kind: ExitPaused, User: user} }

var (
	SystemSplit  = ExitCode{Kind: ExitSystemSplit}
	SessionLimit = ExitCode{Kind: ExitSessionLimit, User: 2}
)

// Pair returns the (system, user) encoding used in claim digests
func (e ExitCode) Pair() (uint32, uint32) {
	switch e.Kind {
	case ExitHalted:
		return 0, e.User
	case ExitPaused:
		return 1, e.User
	case ExitSystemSplit:
		return 2, 0
	default:
		return 2, 2
	}
}

// ExitCodeFromPair decodes a (system, user) pair
func ExitCodeFromPair(sys, user uint32) (ExitCode, error) {
	switch {
	case sys == 0:
		return Halted(user), nil
	case sys == 1:
		return Paused(user), nil
	case sys == 2 && user == 0:
		return SystemSplit, nil
	case sys == 2 && user == 2:
		return SessionLimit, nil
	default:
		return ExitCode{}, fmt.Errorf("invalid exit code pair (%d, %d)", sys, user)
	}
}

func (e ExitCode) String() string {
	switch e.Kind {
	case ExitHalted, ExitPaused:
		return fmt.Sprintf("%s(%d)", e.Kind, e.User)
	default:
		return e.Kind.String()
	}
}

func (e ExitCode) validate() error {
	sys, user := e.Pair()
	decoded, err := ExitCodeFromPair(sys, user)
	if err != nil || decoded != e {
		return fmt.Errorf("invalid exit code %s", e)
	}
	return nil
}

// SystemState is a memory commitment at a program counter
type SystemState struct {
	PC         uint32      `json:"pc" cbor:"1,keyasint"`
	MerkleRoot core.Digest `json:"merkle_root" cbor:"2,keyasint"`
}

// Digest implements core.Digestible
func (s SystemState) Digest() core.Digest {
	return core.TaggedStruct("risc0.SystemState", []core.Digest{s.MerkleRoot}, []uint32{s.PC})
}

// Journal is the public output of a program
type Journal struct {
	Bytes []byte `json:"bytes" cbor:"1,keyasint"`
}

// NewJournal wraps b
func NewJournal(b []byte) Journal {
	return Journal{Bytes: b}
}

// Digest implements core.Digestible
func (j Journal) Digest() core.Digest {
	return core.HashBytes(j.Bytes)
}

// Assumption is a claim, proven under a control root, that an execution
// relied on
type Assumption struct {
	Claim       core.Digest `json:"claim" cbor:"1,keyasint"`
	ControlRoot core.Digest `json:"control_root" cbor:"2,keyasint"`
}

// Digest implements core.Digestible
func (a Assumption) Digest() core.Digest {
	return core.TaggedStruct("risc0.Assumption", []core.Digest{a.Claim, a.ControlRoot}, nil)
}

// Assumptions is the ordered assumption list of an output
type Assumptions []MaybePruned[Assumption]

// MarshalJSON encodes a nil list as an empty array
func (as Assumptions) MarshalJSON() ([]byte, error) {
	if as == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]MaybePruned[Assumption](as))
}

// Digest implements core.Digestible
func (as Assumptions) Digest() core.Digest {
	ds := make([]core.Digest, len(as))
	for i, a := range as {
		ds[i] = a.Digest()
	}
	return core.TaggedList("risc0.Assumptions", ds)
}

// Output is the journal and assumptions of an execution
type Output struct {
	Journal     MaybePruned[Journal]     `json:"journal" cbor:"1,keyasint"`
	Assumptions MaybePruned[Assumptions] `json:"assumptions" cbor:"2,keyasint"`
}

// Digest implements core.Digestible
func (o Output) Digest() core.Digest {
	return core.TaggedStruct("risc0.Output", []core.Digest{o.Journal.Digest(), o.Assumptions.Digest()}, nil)
}

// ReceiptClaim is the statement a receipt proves about an execution
type ReceiptClaim struct {
	Pre      MaybePruned[SystemState]    `json:"pre" cbor:"1,keyasint"`
	Post     MaybePruned[SystemState]    `json:"post" cbor:"2,keyasint"`
	ExitCode ExitCode                    `json:"exit_code" cbor:"3,keyasint"`
	Input    core.Digest                 `json:"input" cbor:"4,keyasint"`
	Output   MaybePruned[Option[Output]] `json:"output" cbor:"5,keyasint"`
}

// Digest implements core.Digestible
func (c ReceiptClaim) Digest() core.Digest {
	sys, user := c.ExitCode.Pair()
	return core.TaggedStruct("risc0.ReceiptClaim",
		[]core.Digest{c.Input, c.Pre.Digest(), c.Post.Digest(), c.Output.Digest()},
		[]uint32{sys, user})
}

// OkClaim is the claim of a successful run of imageID producing journal
func OkClaim(imageID core.Digest, journal core.Digest) ReceiptClaim {
	return ReceiptClaim{
		Pre:      Pruned[SystemState](imageID),
		Post:     Value(SystemState{PC: 0, MerkleRoot: core.ZeroDigest}),
		ExitCode: Halted(0),
		Input:    core.ZeroDigest,
		Output: Value(Some(Output{
			Journal:     Pruned[Journal](journal),
			Assumptions: Value(Assumptions{}),
		})),
	}
}

func (c ReceiptClaim) validate() error {
	if err := c.Pre.validate("pre"); err != nil {
		return err
	}
	if err := c.Post.validate("post"); err != nil {
		return err
	}
	if err := c.Output.validate("output"); err != nil {
		return err
	}
	if c.Output.Value != nil && c.Output.Value.Some != nil {
		out := c.Output.Value.Some
		if err := out.Journal.validate("output.journal"); err != nil {
			return err
		}
		if err := out.Assumptions.validate("output.assumptions"); err != nil {
			return err
		}
		if out.Assumptions.Value != nil {
			for i, a := range *out.Assumptions.Value {
				if err := a.validate(fmt.Sprintf("output.assumptions[%d]", i)); err != nil {
					return err
				}
			}
		}
	}
	return c.ExitCode.validate()
}
