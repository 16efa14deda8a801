package fixture

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/receipt"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/versions"
)

// Proof shapes a case can be generated in
const (
	ShapeSegment   = "segment"
	ShapeComposite = "composite"
	ShapeSuccinct  = "succinct"
)

// Shapes lists the generated proof shapes
var Shapes = []string{ShapeSegment, ShapeComposite, ShapeSuccinct}

// Case is a self-contained verification input: a key, a journal and a proof
// that must verify under Version
type Case struct {
	Version versions.ProtocolVersion `json:"version"`
	Vk      core.Digest              `json:"vk"`
	Journal hexutil.Bytes            `json:"journal"`
	Proof   *receipt.Proof           `json:"proof"`
}

// CaseOptions selects what Generate proves
type CaseOptions struct {
	Label    string
	Journal  []byte
	Shape    string
	Segments int
	Hash     string
	Po2      uint32
}

// Generate proves a successful execution for v
func Generate(v versions.ProtocolVersion, opts CaseOptions) (*Case, error) {
	p, err := NewProver(v)
	if err != nil {
		return nil, err
	}
	if opts.Segments == 0 {
		opts.Segments = 1
	}
	if opts.Shape == ShapeSegment && opts.Segments != 1 {
		return nil, fmt.Errorf("segment proofs have exactly one segment, got %d", opts.Segments)
	}

	img := NewImage(opts.Label)
	c, err := p.Composite(Session{
		Image:    img,
		Journal:  opts.Journal,
		Segments: opts.Segments,
		Hash:     opts.Hash,
		Po2:      opts.Po2,
		Exit:     receipt.Halted(0),
	})
	if err != nil {
		return nil, err
	}

	var proof *receipt.Proof
	switch opts.Shape {
	case ShapeSegment:
		proof = receipt.NewSegmentProof(&c.Segments[0])
	case ShapeComposite, "":
		proof = receipt.NewCompositeProof(c)
	case ShapeSuccinct:
		sr, err := p.Compress(c)
		if err != nil {
			return nil, err
		}
		proof = receipt.NewSuccinctProof(sr)
	default:
		return nil, fmt.Errorf("unknown proof shape %q", opts.Shape)
	}

	return &Case{
		Version: v,
		Vk:      p.ImageID(img),
		Journal: opts.Journal,
		Proof:   proof,
	}, nil
}
