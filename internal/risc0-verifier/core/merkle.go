package core

import (
	"fmt"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/utils"
)

// PairHasher compresses two digests into one. Hash suites implement it.
type PairHasher interface {
	HashPair(left, right Digest) Digest
}

// MerkleTree is a binary Merkle tree over digest leaves.
// The leaf count is padded with ZeroDigest up to the next power of two.
type MerkleTree struct {
	hasher PairHasher
	levels [][]Digest
	count  int
}

// NewMerkleTree builds a tree from the given leaves
func NewMerkleTree(leaves []Digest, hasher PairHasher) (*MerkleTree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("cannot create Merkle tree with no leaves")
	}
	if hasher == nil {
		return nil, fmt.Errorf("cannot create Merkle tree without a hasher")
	}

	base := make([]Digest, utils.NextPowerOfTwo(len(leaves)))
	copy(base, leaves)

	levels := [][]Digest{base}
	current := base
	for len(current) > 1 {
		next := make([]Digest, len(current)/2)
		for i := range next {
			next[i] = hasher.HashPair(current[2*i], current[2*i+1])
		}
		levels = append(levels, next)
		current = next
	}

	return &MerkleTree{
		hasher: hasher,
		levels: levels,
		count:  len(leaves),
	}, nil
}

// Root returns the Merkle root
func (mt *MerkleTree) Root() Digest {
	return mt.levels[len(mt.levels)-1][0]
}

// Depth returns the number of levels above the leaves
func (mt *MerkleTree) Depth() int {
	return len(mt.levels) - 1
}

// Leaf returns the leaf at index
func (mt *MerkleTree) Leaf(index int) Digest {
	return mt.levels[0][index]
}

// Proof returns the inclusion proof for the leaf at index
func (mt *MerkleTree) Proof(index int) (*MerkleProof, error) {
	if index < 0 || index >= mt.count {
		return nil, fmt.Errorf("index %d out of range [0, %d)", index, mt.count)
	}

	siblings := make([]Digest, 0, mt.Depth())
	idx := index
	for level := 0; level < mt.Depth(); level++ {
		siblings = append(siblings, mt.levels[level][idx^1])
		idx >>= 1
	}

	return &MerkleProof{Index: uint32(index), Digests: siblings}, nil
}

// MerkleProof is an inclusion proof: the leaf index and the sibling digests
// from the leaf level up to just below the root.
type MerkleProof struct {
	Index   uint32   `json:"index" cbor:"1,keyasint"`
	Digests []Digest `json:"digests" cbor:"2,keyasint"`
}

// Root computes the root implied by this proof for leaf
func (p *MerkleProof) Root(leaf Digest, hasher PairHasher) Digest {
	cur := leaf
	idx := p.Index
	for _, sibling := range p.Digests {
		if idx&1 == 0 {
			cur = hasher.HashPair(cur, sibling)
		} else {
			cur = hasher.HashPair(sibling, cur)
		}
		idx >>= 1
	}
	return cur
}

// Verify checks that leaf is included under root
func (p *MerkleProof) Verify(leaf, root Digest, hasher PairHasher) error {
	if len(p.Digests) < 32 && p.Index>>uint(len(p.Digests)) != 0 {
		return fmt.Errorf("merkle index %d exceeds tree of depth %d", p.Index, len(p.Digests))
	}
	if got := p.Root(leaf, hasher); got != root {
		return fmt.Errorf("merkle root mismatch: computed %s, expected %s", got, root)
	}
	return nil
}
