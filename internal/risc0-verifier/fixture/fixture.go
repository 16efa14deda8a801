// Package fixture produces deterministic receipts for every protocol version.
// The receipts are real: they open under the verifier's kernel and chain the
// way an executor would chain them, so tests and the generate command never
// need binary blobs.
package fixture

import (
	"encoding/binary"
	"fmt"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/circuit"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/controlid"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/kernel"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/receipt"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/suite"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/verifier"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/versions"
)

// Image is the initial state of a program
type Image struct {
	PC   uint32
	Root core.Digest
}

// NewImage derives an image from a label
func NewImage(label string) Image {
	return Image{PC: 0x0020_0000, Root: core.HashBytes([]byte("image:" + label))}
}

// Resolved pairs an assumption with the receipt proving it
type Resolved struct {
	Assumption receipt.Assumption
	Receipt    receipt.InnerReceipt
}

// Session describes an execution to prove as a composite receipt
type Session struct {
	Image    Image
	Journal  []byte
	Segments int
	Hash     string
	Po2      uint32
	Exit     receipt.ExitCode

	// Assumptions are resolved by receipts attached to the composite
	Assumptions []Resolved
}

// Prover builds receipts for one protocol version
type Prover struct {
	ctx      *versions.Context
	controls *controlid.RecursionControlSet
	succinct *controlid.SuccinctParams
}

// NewProver returns a prover matching the shared context of v
func NewProver(v versions.ProtocolVersion) (*Prover, error) {
	ctx, err := versions.Get(v)
	if err != nil {
		return nil, err
	}
	hs, ok := suite.Lookup(controlid.ControlRootHash)
	if !ok {
		return nil, fmt.Errorf("hash suite %q unavailable", controlid.ControlRootHash)
	}
	set, err := controlid.NewRecursionControlSet(ctx.Recursion, controlid.RecursionPrograms(versions.UsesUnion(v)), hs)
	if err != nil {
		return nil, err
	}
	return &Prover{ctx: ctx, controls: set, succinct: ctx.SuccinctParams}, nil
}

// MustNewProver is NewProver for tests
func MustNewProver(v versions.ProtocolVersion) *Prover {
	p, err := NewProver(v)
	if err != nil {
		panic(err)
	}
	return p
}

// Context returns the verifier context the prover targets
func (p *Prover) Context() *versions.Context {
	return p.ctx
}

// ControlRoot is the root succinct receipts of this prover are proven under
func (p *Prover) ControlRoot() core.Digest {
	return p.succinct.ControlRoot
}

// Under returns a prover whose succinct receipts are proven under a control
// set of the given programs instead of the release's
func (p *Prover) Under(programs []string) (*Prover, error) {
	hs, _ := suite.Lookup(controlid.ControlRootHash)
	set, err := controlid.NewRecursionControlSet(p.ctx.Recursion, programs, hs)
	if err != nil {
		return nil, err
	}
	return &Prover{
		ctx:      p.ctx,
		controls: set,
		succinct: p.ctx.SuccinctParams.WithControlRoot(set.Root()),
	}, nil
}

func (p *Prover) v2() bool {
	return p.ctx.Version.Major() >= 2
}

// initial is the first pre-state of img. From v2 on the entry point is not
// part of the committed state.
func (p *Prover) initial(img Image) receipt.SystemState {
	s := receipt.SystemState{PC: img.PC, MerkleRoot: img.Root}
	if p.v2() {
		s.PC = 0
	}
	return s
}

// ImageID is the image id of img, the digest of its initial state
func (p *Prover) ImageID(img Image) core.Digest {
	return p.initial(img).Digest()
}

// state returns the deterministic memory state after segment i
func (p *Prover) state(img Image, i int) receipt.SystemState {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(i))
	root := core.TaggedStruct("fixture.state", []core.Digest{img.Root, core.HashBytes(buf[:])}, nil)
	s := receipt.SystemState{PC: img.PC + 4*uint32(i+1), MerkleRoot: root}
	if p.v2() {
		s.PC = 0
	}
	return s
}

// Segment proves a single segment claim
func (p *Prover) Segment(claim receipt.ReceiptClaim, hashName string, po2 uint32, index uint32) (*receipt.SegmentReceipt, error) {
	hs, ok := suite.Lookup(hashName)
	if !ok {
		return nil, &suite.UnknownError{Name: hashName}
	}
	outputs, err := verifier.SegmentOutputs(p.ctx.Version, p.ctx.Segment, claim)
	if err != nil {
		return nil, err
	}
	controlID := controlid.SegmentControlID(p.ctx.Segment, hashName, po2)
	seal, err := kernel.Prove(p.ctx.Segment, hs, po2, controlID, outputs)
	if err != nil {
		return nil, fmt.Errorf("segment %d: %w", index, err)
	}
	return &receipt.SegmentReceipt{
		Seal:               seal,
		Index:              index,
		HashFn:             hashName,
		VerifierParameters: p.ctx.SegmentParams.Digest(),
		Claim:              claim,
	}, nil
}

// Composite proves a session as a chain of segments
func (p *Prover) Composite(s Session) (*receipt.CompositeReceipt, error) {
	if s.Segments < 1 {
		return nil, fmt.Errorf("session needs at least one segment")
	}
	if s.Hash == "" {
		s.Hash = suite.Poseidon2
	}
	if s.Po2 == 0 {
		s.Po2 = circuit.MinCyclesPo2
	}

	assumptions := make(receipt.Assumptions, len(s.Assumptions))
	resolving := make([]receipt.InnerReceipt, len(s.Assumptions))
	for i, a := range s.Assumptions {
		assumptions[i] = receipt.Value(a.Assumption)
		resolving[i] = a.Receipt
	}

	pre := p.initial(s.Image)
	segments := make([]receipt.SegmentReceipt, s.Segments)
	for i := range segments {
		claim := receipt.ReceiptClaim{
			Pre:      receipt.Value(pre),
			ExitCode: receipt.SystemSplit,
			Output:   receipt.Value(receipt.None[receipt.Output]()),
		}
		post := p.state(s.Image, i)
		if i == len(segments)-1 {
			claim.ExitCode = s.Exit
			if s.Exit.Kind == receipt.ExitHalted {
				post = receipt.SystemState{}
			}
			claim.Output = receipt.Value(receipt.Some(receipt.Output{
				Journal:     receipt.Value(receipt.NewJournal(s.Journal)),
				Assumptions: receipt.Value(assumptions),
			}))
		}
		claim.Post = receipt.Value(post)

		seg, err := p.Segment(claim, s.Hash, s.Po2, uint32(i))
		if err != nil {
			return nil, err
		}
		segments[i] = *seg
		pre = post
	}

	return &receipt.CompositeReceipt{
		Segments:           segments,
		AssumptionReceipts: resolving,
		VerifierParameters: p.ctx.SegmentParams.Digest(),
	}, nil
}

// Succinct proves claim with the recursion program named program
func (p *Prover) Succinct(claim receipt.MaybePruned[receipt.ReceiptClaim], program string) (*receipt.SuccinctReceipt, error) {
	hs, _ := suite.Lookup(controlid.ControlRootHash)
	controlID, inclusion, err := p.controls.Inclusion(program)
	if err != nil {
		return nil, err
	}
	outputs, err := circuit.EncodeRecursionOutputs(circuit.RecursionOutputs{
		ControlRoot: p.succinct.ExpectedOutputRoot(),
		Claim:       claim.Digest(),
	}, p.ctx.Recursion.OutputSize)
	if err != nil {
		return nil, err
	}
	seal, err := kernel.Prove(p.ctx.Recursion, hs, circuit.RecursionPo2, controlID, outputs)
	if err != nil {
		return nil, err
	}
	return &receipt.SuccinctReceipt{
		Seal:                  seal,
		ControlID:             controlID,
		Claim:                 claim,
		HashFn:                hs.Name(),
		VerifierParameters:    p.succinct.Digest(),
		ControlInclusionProof: *inclusion,
	}, nil
}

// Compress folds a composite receipt into a succinct one
func (p *Prover) Compress(c *receipt.CompositeReceipt) (*receipt.SuccinctReceipt, error) {
	claim, err := c.Claim()
	if err != nil {
		return nil, err
	}
	program := controlid.ProgramJoin
	if len(c.Segments) == 1 {
		po2, err := kernel.ExtractPo2(p.ctx.Segment, c.Segments[0].Seal)
		if err != nil {
			return nil, err
		}
		program = controlid.LiftProgram(po2)
	}
	return p.Succinct(receipt.Value(claim), program)
}

// Resolve proves a session and wraps it as the resolution of an assumption
// proven under this prover's control root. Receipts of the release's own
// control set are attached with a zero control root.
func (p *Prover) Resolve(s Session, succinct bool) (Resolved, error) {
	c, err := p.Composite(s)
	if err != nil {
		return Resolved{}, err
	}
	inner := receipt.InnerReceipt{Composite: c}
	if succinct {
		sr, err := p.Compress(c)
		if err != nil {
			return Resolved{}, err
		}
		inner = receipt.InnerReceipt{Succinct: sr}
	}
	digest, err := inner.ClaimDigest()
	if err != nil {
		return Resolved{}, err
	}

	var root core.Digest
	if p.succinct.ControlRoot != p.ctx.SuccinctParams.ControlRoot {
		root = p.succinct.ControlRoot
	}
	return Resolved{
		Assumption: receipt.Assumption{Claim: digest, ControlRoot: root},
		Receipt:    inner,
	}, nil
}
