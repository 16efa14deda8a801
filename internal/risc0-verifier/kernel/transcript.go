package kernel

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/utils"
)

// Transcript is the Fiat-Shamir state shared by prover and verifier.
// Both sides absorb the same header words in the same order.
type Transcript struct {
	sponge *hash.Tip5
}

// NewTranscript creates an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{sponge: hash.Init()}
}

// AbsorbWords absorbs each word as one field element
func (t *Transcript) AbsorbWords(words []uint32) {
	elems := make([]field.Element, len(words))
	for i, w := range words {
		elems[i] = field.New(uint64(w))
	}
	t.sponge.PadAndAbsorbAll(elems)
}

// AbsorbDigest absorbs the words of d
func (t *Transcript) AbsorbDigest(d core.Digest) {
	t.AbsorbWords(d[:])
}

// SampleIndices produces n indices in [0, upperBound).
// The upperBound must be a power of 2.
func (t *Transcript) SampleIndices(upperBound int, n int) ([]int, error) {
	if !utils.IsPowerOfTwo(upperBound) {
		return nil, fmt.Errorf("upperBound must be a power of 2, got %d", upperBound)
	}
	if uint64(upperBound) > field.P-1 {
		return nil, fmt.Errorf("upperBound %d exceeds field maximum", upperBound)
	}

	indices := t.sponge.SampleIndices(uint32(upperBound), n)
	result := make([]int, len(indices))
	for i, idx := range indices {
		result[i] = int(idx)
	}
	return result, nil
}
