// Package receipt is the receipt object model: segment, succinct and
// composite receipts, the claims they prove, and their wire encodings.
package receipt

import (
	"errors"
	"fmt"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
)

// MaxAssumptionDepth bounds nesting of assumption receipts
const MaxAssumptionDepth = 8

// SegmentReceipt proves the execution of one segment
type SegmentReceipt struct {
	Seal               []uint32     `json:"seal" cbor:"1,keyasint"`
	Index              uint32       `json:"index" cbor:"2,keyasint"`
	HashFn             string       `json:"hashfn" cbor:"3,keyasint"`
	VerifierParameters core.Digest  `json:"verifier_parameters" cbor:"4,keyasint"`
	Claim              ReceiptClaim `json:"claim" cbor:"5,keyasint"`
}

// SuccinctReceipt is a recursion-circuit proof folding other receipts
type SuccinctReceipt struct {
	Seal                  []uint32                  `json:"seal" cbor:"1,keyasint"`
	ControlID             core.Digest               `json:"control_id" cbor:"2,keyasint"`
	Claim                 MaybePruned[ReceiptClaim] `json:"claim" cbor:"3,keyasint"`
	HashFn                string                    `json:"hashfn" cbor:"4,keyasint"`
	VerifierParameters    core.Digest               `json:"verifier_parameters" cbor:"5,keyasint"`
	ControlInclusionProof core.MerkleProof          `json:"control_inclusion_proof" cbor:"6,keyasint"`
}

// CompositeReceipt is a chain of segment receipts and the receipts
// resolving the assumptions of its final segment
type CompositeReceipt struct {
	Segments           []SegmentReceipt `json:"segments" cbor:"1,keyasint"`
	AssumptionReceipts []InnerReceipt   `json:"assumption_receipts" cbor:"2,keyasint"`
	VerifierParameters core.Digest      `json:"verifier_parameters" cbor:"3,keyasint"`
}

// InnerReceipt holds exactly one receipt shape
type InnerReceipt struct {
	Segment   *SegmentReceipt   `json:"segment,omitempty" cbor:"1,keyasint,omitempty"`
	Composite *CompositeReceipt `json:"composite,omitempty" cbor:"2,keyasint,omitempty"`
	Succinct  *SuccinctReceipt  `json:"succinct,omitempty" cbor:"3,keyasint,omitempty"`
}

// Proof is the top-level value handed to the verifier
type Proof struct {
	Inner InnerReceipt `json:"inner" cbor:"1,keyasint"`
}

// Shape names the receipt kind held by an InnerReceipt
type Shape int

const (
	ShapeInvalid Shape = iota
	ShapeSegment
	ShapeComposite
	ShapeSuccinct
)

func (s Shape) String() string {
	switch s {
	case ShapeSegment:
		return "segment"
	case ShapeComposite:
		return "composite"
	case ShapeSuccinct:
		return "succinct"
	default:
		return "invalid"
	}
}

// Shape returns the kind of receipt held
func (r *InnerReceipt) Shape() Shape {
	n := 0
	shape := ShapeInvalid
	if r.Segment != nil {
		n, shape = n+1, ShapeSegment
	}
	if r.Composite != nil {
		n, shape = n+1, ShapeComposite
	}
	if r.Succinct != nil {
		n, shape = n+1, ShapeSuccinct
	}
	if n != 1 {
		return ShapeInvalid
	}
	return shape
}

// NewSegmentProof wraps a single segment receipt
func NewSegmentProof(r *SegmentReceipt) *Proof {
	return &Proof{Inner: InnerReceipt{Segment: r}}
}

// NewCompositeProof wraps a composite receipt
func NewCompositeProof(r *CompositeReceipt) *Proof {
	return &Proof{Inner: InnerReceipt{Composite: r}}
}

// NewSuccinctProof wraps a succinct receipt
func NewSuccinctProof(r *SuccinctReceipt) *Proof {
	return &Proof{Inner: InnerReceipt{Succinct: r}}
}

// ErrFormat is wrapped by every structural validation error
var ErrFormat = errors.New("malformed receipt")

func formatError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

// Validate checks the structure of the proof. It is the decode layer's
// guarantee to the verifier and does not check any cryptography.
func (p *Proof) Validate() error {
	return p.Inner.validate(0)
}

func (r *InnerReceipt) validate(depth int) error {
	if depth > MaxAssumptionDepth {
		return formatError("assumption receipts nested deeper than %d", MaxAssumptionDepth)
	}
	switch r.Shape() {
	case ShapeSegment:
		return r.Segment.validate()
	case ShapeComposite:
		return r.Composite.validate(depth)
	case ShapeSuccinct:
		return r.Succinct.validate()
	default:
		return formatError("receipt must hold exactly one of segment, composite or succinct")
	}
}

func (r *SegmentReceipt) validate() error {
	if len(r.Seal) == 0 {
		return formatError("segment %d: empty seal", r.Index)
	}
	if r.HashFn == "" {
		return formatError("segment %d: missing hashfn", r.Index)
	}
	if err := r.Claim.validate(); err != nil {
		return formatError("segment %d claim: %v", r.Index, err)
	}
	return nil
}

func (r *CompositeReceipt) validate(depth int) error {
	if len(r.Segments) == 0 {
		return formatError("composite receipt has no segments")
	}
	for i := range r.Segments {
		if err := r.Segments[i].validate(); err != nil {
			return err
		}
	}
	for i := range r.AssumptionReceipts {
		if err := r.AssumptionReceipts[i].validate(depth + 1); err != nil {
			return fmt.Errorf("assumption receipt %d: %w", i, err)
		}
	}
	return nil
}

func (r *SuccinctReceipt) validate() error {
	if len(r.Seal) == 0 {
		return formatError("succinct receipt: empty seal")
	}
	if r.HashFn == "" {
		return formatError("succinct receipt: missing hashfn")
	}
	if err := r.Claim.validate("claim"); err != nil {
		return formatError("succinct receipt: %v", err)
	}
	if r.Claim.Value != nil {
		if err := r.Claim.Value.validate(); err != nil {
			return formatError("succinct receipt claim: %v", err)
		}
	}
	if len(r.ControlInclusionProof.Digests) > 32 {
		return formatError("succinct receipt: control inclusion proof too deep")
	}
	return nil
}

// ClaimDigest returns the digest of the claim proven by the receipt.
// Composite receipts report the claim with resolved assumptions removed.
func (r *InnerReceipt) ClaimDigest() (core.Digest, error) {
	switch r.Shape() {
	case ShapeSegment:
		return r.Segment.Claim.Digest(), nil
	case ShapeComposite:
		c, err := r.Composite.Claim()
		if err != nil {
			return core.Digest{}, err
		}
		return c.Digest(), nil
	case ShapeSuccinct:
		return r.Succinct.Claim.Digest(), nil
	default:
		return core.Digest{}, formatError("receipt must hold exactly one of segment, composite or succinct")
	}
}

// Claim returns the claim of the whole chain: the first segment's pre-state
// and input with the last segment's post-state, exit code and output, its
// assumptions cleared
func (r *CompositeReceipt) Claim() (ReceiptClaim, error) {
	if len(r.Segments) == 0 {
		return ReceiptClaim{}, formatError("composite receipt has no segments")
	}
	first := r.Segments[0].Claim
	last := r.Segments[len(r.Segments)-1].Claim

	out, err := last.Output.AsValue()
	if err != nil {
		return ReceiptClaim{}, formatError("final segment output is pruned")
	}
	output := None[Output]()
	if out.Some != nil {
		output = Some(Output{
			Journal:     out.Some.Journal,
			Assumptions: Value(Assumptions{}),
		})
	}

	return ReceiptClaim{
		Pre:      first.Pre,
		Post:     last.Post,
		ExitCode: last.ExitCode,
		Input:    first.Input,
		Output:   Value(output),
	}, nil
}

// Assumptions returns the assumptions of the final segment
func (r *CompositeReceipt) Assumptions() ([]Assumption, error) {
	if len(r.Segments) == 0 {
		return nil, formatError("composite receipt has no segments")
	}
	last := r.Segments[len(r.Segments)-1].Claim

	out, err := last.Output.AsValue()
	if err != nil {
		return nil, formatError("final segment output is pruned")
	}
	if out.Some == nil {
		return nil, nil
	}
	if out.Some.Assumptions.Digest().IsZero() {
		return nil, nil
	}
	list, err := out.Some.Assumptions.AsValue()
	if err != nil {
		return nil, formatError("final segment assumptions are pruned")
	}
	result := make([]Assumption, len(list))
	for i, a := range list {
		v, err := a.AsValue()
		if err != nil {
			return nil, formatError("assumption %d is pruned", i)
		}
		result[i] = v
	}
	return result, nil
}
