package controlid

import (
	"fmt"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/circuit"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
)

// DefaultMaxPo2 is the largest segment po2 accepted by default
const DefaultMaxPo2 = 21

type segmentKey struct {
	hash string
	po2  uint32
}

// SegmentParams are the verifier parameters for segment receipts
type SegmentParams struct {
	ProofSystemInfo circuit.ProtocolInfo
	CircuitInfo     circuit.ProtocolInfo
	MaxPo2          uint32

	table      map[segmentKey]core.Digest
	controlIDs []core.Digest
}

// NewSegmentParams builds the allow-list of def for hashNames and
// po2 in [def.MinPo2, maxPo2]
func NewSegmentParams(def *circuit.Def, hashNames []string, maxPo2 uint32) (*SegmentParams, error) {
	if def.Kind != circuit.KindSegment {
		return nil, fmt.Errorf("segment parameters need a segment circuit, got %s", def.Kind)
	}
	if maxPo2 < def.MinPo2 || maxPo2 > def.MaxPo2 {
		return nil, fmt.Errorf("max po2 %d outside circuit range [%d, %d]", maxPo2, def.MinPo2, def.MaxPo2)
	}
	if len(hashNames) == 0 {
		return nil, fmt.Errorf("segment parameters need at least one hash suite")
	}

	p := &SegmentParams{
		ProofSystemInfo: circuit.ProofSystemInfo,
		CircuitInfo:     def.Info,
		MaxPo2:          maxPo2,
		table:           make(map[segmentKey]core.Digest),
	}
	for _, name := range hashNames {
		for po2 := def.MinPo2; po2 <= maxPo2; po2++ {
			id := SegmentControlID(def, name, po2)
			p.table[segmentKey{name, po2}] = id
			p.controlIDs = append(p.controlIDs, id)
		}
	}
	sortDigests(p.controlIDs)
	return p, nil
}

// AllowedControlID returns the control id for (hashName, po2), or false when
// po2 exceeds the maximum or the hash function is not allowed
func (p *SegmentParams) AllowedControlID(hashName string, po2 uint32) (core.Digest, bool) {
	if po2 > p.MaxPo2 {
		return core.Digest{}, false
	}
	id, ok := p.table[segmentKey{hashName, po2}]
	return id, ok
}

// ControlIDs returns the sorted allow-list
func (p *SegmentParams) ControlIDs() []core.Digest {
	return append([]core.Digest(nil), p.controlIDs...)
}

// Digest fingerprints the parameters. Receipts carry this value.
func (p *SegmentParams) Digest() core.Digest {
	return core.TaggedStruct("risc0.SegmentReceiptVerifierParameters",
		[]core.Digest{
			core.TaggedList("risc0.ControlIdSet", p.controlIDs),
			core.HashBytes(p.ProofSystemInfo[:]),
			core.HashBytes(p.CircuitInfo[:]),
		}, nil)
}

// SuccinctParams are the verifier parameters for succinct receipts
type SuccinctParams struct {
	// ControlRoot commits to the allowed recursion programs
	ControlRoot core.Digest

	// InnerControlRoot, when set, is the root expected in the seal outputs
	// instead of ControlRoot. No release sets it.
	InnerControlRoot *core.Digest

	ProofSystemInfo circuit.ProtocolInfo
	CircuitInfo     circuit.ProtocolInfo
}

// NewSuccinctParams computes the parameters of the recursion circuit def
func NewSuccinctParams(def *circuit.Def, withUnion bool) (*SuccinctParams, error) {
	if def.Kind != circuit.KindRecursion {
		return nil, fmt.Errorf("succinct parameters need a recursion circuit, got %s", def.Kind)
	}
	root, err := AllowedControlRoot(def, withUnion)
	if err != nil {
		return nil, err
	}
	return &SuccinctParams{
		ControlRoot:     root,
		ProofSystemInfo: circuit.ProofSystemInfo,
		CircuitInfo:     def.Info,
	}, nil
}

// ExpectedOutputRoot is the control root a seal must report
func (p *SuccinctParams) ExpectedOutputRoot() core.Digest {
	if p.InnerControlRoot != nil {
		return *p.InnerControlRoot
	}
	return p.ControlRoot
}

// WithControlRoot returns a copy of p rooted at root with no inner root
func (p *SuccinctParams) WithControlRoot(root core.Digest) *SuccinctParams {
	return &SuccinctParams{
		ControlRoot:     root,
		ProofSystemInfo: p.ProofSystemInfo,
		CircuitInfo:     p.CircuitInfo,
	}
}

// Digest fingerprints the parameters. Receipts carry this value.
func (p *SuccinctParams) Digest() core.Digest {
	return core.TaggedStruct("risc0.SuccinctReceiptVerifierParameters",
		[]core.Digest{
			p.ControlRoot,
			p.ExpectedOutputRoot(),
			core.HashBytes(p.ProofSystemInfo[:]),
			core.HashBytes(p.CircuitInfo[:]),
		}, nil)
}
