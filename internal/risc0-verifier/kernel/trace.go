package kernel

import (
	"encoding/binary"
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/circuit"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/suite"
)

// rowWords is the number of seal words per opened trace row
const rowWords = 2

// air holds the public parameters of the transition constraint
//
//	row[0]   = seed
//	row[i+1] = row[i] * mix + (i + 1)
//
// seed and mix are drawn from the binding digest, so the trace depends on
// the circuit, the control id, the trace size and every output slot.
type air struct {
	binding core.Digest
	seed    field.Element
	mix     field.Element
	rows    int
}

func newAIR(def *circuit.Def, hs suite.HashSuite, po2 uint32, controlID core.Digest, outputs []uint32) *air {
	words := make([]uint32, 0, 2*circuit.ProtocolInfoLen/4+1+core.DigestWords+len(outputs))
	words = appendInfo(words, def.Info)
	words = appendInfo(words, circuit.ProofSystemInfo)
	words = append(words, po2)
	words = append(words, controlID[:]...)
	words = append(words, outputs...)

	binding := suite.HashWords(hs, words)
	return &air{
		binding: binding,
		seed:    elementFromWords(binding[0], binding[1]),
		mix:     elementFromWords(binding[2], binding[3]),
		rows:    1 << po2,
	}
}

func appendInfo(words []uint32, info circuit.ProtocolInfo) []uint32 {
	for i := 0; i < circuit.ProtocolInfoLen; i += 4 {
		words = append(words, binary.LittleEndian.Uint32(info[i:]))
	}
	return words
}

// next applies the transition from row i
func (a *air) next(cur field.Element, i int) field.Element {
	return cur.Mul(a.mix).Add(field.New(uint64(i + 1)))
}

// check verifies an opened pair (row idx, row idx+1 mod rows)
func (a *air) check(idx int, cur, nxt field.Element) error {
	if idx == 0 && !cur.Equal(a.seed) {
		return fmt.Errorf("boundary constraint failed at row 0")
	}
	if idx == a.rows-1 {
		if !nxt.Equal(a.seed) {
			return fmt.Errorf("wrap constraint failed at row %d", idx)
		}
		return nil
	}
	if !nxt.Equal(a.next(cur, idx)) {
		return fmt.Errorf("transition constraint failed at row %d", idx)
	}
	return nil
}

// trace computes every row
func (a *air) trace() []field.Element {
	rows := make([]field.Element, a.rows)
	rows[0] = a.seed
	for i := 0; i+1 < a.rows; i++ {
		rows[i+1] = a.next(rows[i], i)
	}
	return rows
}

func elementFromWords(lo, hi uint32) field.Element {
	return field.New((uint64(lo) | uint64(hi)<<32) % field.P)
}

// decodeElement reads a canonical field element from two seal words
func decodeElement(lo, hi uint32) (field.Element, error) {
	v := uint64(lo) | uint64(hi)<<32
	if v >= field.P {
		return field.Zero, fmt.Errorf("non-canonical field element %#x", v)
	}
	return field.New(v), nil
}

func encodeElement(e field.Element) (uint32, uint32) {
	v := e.Value()
	return uint32(v), uint32(v >> 32)
}

// leaf hashes a row into a Merkle leaf
func leaf(hs suite.HashSuite, e field.Element) core.Digest {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], e.Value())
	return hs.HashBytes(b[:])
}
