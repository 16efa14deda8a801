package suite

import (
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/poseidon2"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
)

// Poseidon2 parameters: width 2 compression over the BLS12-381 scalar field
const (
	poseidon2Width         = 2
	poseidon2FullRounds    = 8
	poseidon2PartialRounds = 56
	poseidon2Seed          = "RISC0_VERIFIER_POSEIDON2_SEED"

	// bytes packed per field element when absorbing raw data
	poseidon2ChunkSize = 31
)

var permutation = sync.OnceValue(func() *poseidon2.Permutation {
	return poseidon2.NewPermutationWithSeed(poseidon2Width, poseidon2FullRounds, poseidon2PartialRounds, poseidon2Seed)
})

type poseidon2Suite struct{}

func newPoseidon2Suite() poseidon2Suite { return poseidon2Suite{} }

func (poseidon2Suite) Name() string { return Poseidon2 }

// HashBytes folds 31-byte chunks into a length-seeded accumulator
func (poseidon2Suite) HashBytes(data []byte) core.Digest {
	var acc fr.Element
	acc.SetUint64(uint64(len(data)))
	for start := 0; start < len(data); start += poseidon2ChunkSize {
		end := min(start+poseidon2ChunkSize, len(data))
		var e fr.Element
		e.SetBytes(data[start:end])
		acc = compress(acc, e)
	}
	return elementDigest(acc)
}

// HashPair splits each digest into two 128-bit halves so the mapping into
// the field is injective
func (poseidon2Suite) HashPair(left, right core.Digest) core.Digest {
	l0, l1 := digestElements(left)
	r0, r1 := digestElements(right)
	return elementDigest(compress(compress(l0, l1), compress(r0, r1)))
}

func compress(x, y fr.Element) fr.Element {
	vars := [poseidon2Width]fr.Element{x, y}
	if err := permutation().Permutation(vars[:]); err != nil {
		// only fails on a width mismatch, which is fixed above
		panic(err)
	}
	var ret fr.Element
	ret.Add(&vars[1], &y)
	return ret
}

func digestElements(d core.Digest) (fr.Element, fr.Element) {
	b := d.Bytes()
	var lo, hi fr.Element
	lo.SetBytes(b[:core.DigestBytes/2])
	hi.SetBytes(b[core.DigestBytes/2:])
	return lo, hi
}

func elementDigest(e fr.Element) core.Digest {
	return core.DigestFromBytes(e.Bytes())
}
