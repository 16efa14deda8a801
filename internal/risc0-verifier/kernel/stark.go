package kernel

import (
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/circuit"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/suite"
)

// Stark is the default CircuitKernel, a reference proof system that does
// not accept seals from the RISC Zero prover. It holds no state and is safe
// for concurrent use.
type Stark struct{}

// NewStark returns the default kernel
func NewStark() *Stark {
	return &Stark{}
}

// Open verifies seal against def and returns the global outputs
//
// Verification steps:
// 1. Parse the header and check the seal shape
// 2. Check the control id
// 3. Rebuild the transcript and sample query positions
// 4. Check every query's Merkle paths and transition constraint
func (s *Stark) Open(def *circuit.Def, hs suite.HashSuite, seal []uint32, check ControlCheck) ([]uint32, error) {
	// Step 1: header
	h, r, err := parseHeader(def, seal)
	if err != nil {
		return nil, err
	}

	// Step 2: control id
	if check != nil {
		if err := check(h.po2, h.controlID); err != nil {
			return nil, &Error{Control: true, ControlID: h.controlID, Message: "control id rejected", Cause: err}
		}
	}

	// Step 3: transcript
	a := newAIR(def, hs, h.po2, h.controlID, h.outputs)
	positions, err := samplePositions(a, h.root, def.Queries)
	if err != nil {
		return nil, &Error{Message: "transcript", Cause: err}
	}
	if len(positions) != def.Queries {
		return nil, invalid("sampled %d query positions, expected %d", len(positions), def.Queries)
	}

	// Step 4: queries
	mask := a.rows - 1
	for q, idx := range positions {
		if idx < 0 || idx >= a.rows {
			return nil, invalid("query %d: position %d out of range", q, idx)
		}
		row := r.take(2 * rowWords)
		cur, err := decodeElement(row[0], row[1])
		if err != nil {
			return nil, &Error{Message: "query row", Cause: err}
		}
		nxt, err := decodeElement(row[2], row[3])
		if err != nil {
			return nil, &Error{Message: "query row", Cause: err}
		}

		curPath := core.MerkleProof{Index: uint32(idx), Digests: r.path(h.po2)}
		if err := curPath.Verify(leaf(hs, cur), h.root, hs); err != nil {
			return nil, invalid("query %d: row %d: %v", q, idx, err)
		}
		nxtPath := core.MerkleProof{Index: uint32((idx + 1) & mask), Digests: r.path(h.po2)}
		if err := nxtPath.Verify(leaf(hs, nxt), h.root, hs); err != nil {
			return nil, invalid("query %d: row %d: %v", q, (idx+1)&mask, err)
		}

		if err := a.check(idx, cur, nxt); err != nil {
			return nil, invalid("query %d: %v", q, err)
		}
	}

	return append([]uint32(nil), h.outputs...), nil
}

// samplePositions absorbs the binding and the trace root, then samples
func samplePositions(a *air, root core.Digest, queries int) ([]int, error) {
	t := NewTranscript()
	t.AbsorbDigest(a.binding)
	t.AbsorbDigest(root)
	return t.SampleIndices(a.rows, queries)
}
