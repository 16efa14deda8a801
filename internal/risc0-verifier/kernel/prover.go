package kernel

import (
	"fmt"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/circuit"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/suite"
)

// Prove builds a seal for def committing to outputs under controlID.
// It is the inverse of Stark.Open and is used to produce test vectors.
func Prove(def *circuit.Def, hs suite.HashSuite, po2 uint32, controlID core.Digest, outputs []uint32) ([]uint32, error) {
	if len(outputs) != def.OutputSize {
		return nil, fmt.Errorf("expected %d outputs, got %d", def.OutputSize, len(outputs))
	}
	if po2 < def.MinPo2 || po2 > def.MaxPo2 {
		return nil, fmt.Errorf("po2 %d outside [%d, %d]", po2, def.MinPo2, def.MaxPo2)
	}

	a := newAIR(def, hs, po2, controlID, outputs)
	rows := a.trace()
	leaves := make([]core.Digest, len(rows))
	for i, row := range rows {
		leaves[i] = leaf(hs, row)
	}
	tree, err := core.NewMerkleTree(leaves, hs)
	if err != nil {
		return nil, fmt.Errorf("failed to commit trace: %w", err)
	}

	positions, err := samplePositions(a, tree.Root(), def.Queries)
	if err != nil {
		return nil, fmt.Errorf("failed to sample queries: %w", err)
	}

	seal := make([]uint32, 0, SealLen(def, po2))
	if def.SealVersion != 0 {
		seal = append(seal, def.SealVersion)
	}
	seal = append(seal, outputs...)
	seal = append(seal, po2)
	seal = append(seal, controlID[:]...)
	root := tree.Root()
	seal = append(seal, root[:]...)

	mask := a.rows - 1
	for _, idx := range positions {
		next := (idx + 1) & mask
		lo, hi := encodeElement(rows[idx])
		seal = append(seal, lo, hi)
		lo, hi = encodeElement(rows[next])
		seal = append(seal, lo, hi)
		for _, at := range []int{idx, next} {
			proof, err := tree.Proof(at)
			if err != nil {
				return nil, err
			}
			for _, d := range proof.Digests {
				seal = append(seal, d[:]...)
			}
		}
	}
	return seal, nil
}
