package kernel

import (
	"fmt"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/circuit"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
)

// queryWords returns the number of seal words per query at trace size po2
func queryWords(po2 uint32) int {
	return 2*rowWords + 2*int(po2)*core.DigestWords
}

// SealLen returns the exact seal length for def at trace size po2
func SealLen(def *circuit.Def, po2 uint32) int {
	return def.SealOffset() + def.OutputSize + 1 + 2*core.DigestWords + def.Queries*queryWords(po2)
}

// ExtractPo2 reads the trace size from a seal without verifying it
func ExtractPo2(def *circuit.Def, seal []uint32) (uint32, error) {
	at := def.SealOffset() + def.OutputSize
	if len(seal) <= at {
		return 0, fmt.Errorf("seal of %d words too short for po2 at %d", len(seal), at)
	}
	return seal[at], nil
}

// sealReader walks a seal word by word
type sealReader struct {
	words []uint32
	pos   int
}

func (r *sealReader) take(n int) []uint32 {
	out := r.words[r.pos : r.pos+n]
	r.pos += n
	return out
}

func (r *sealReader) word() uint32 {
	return r.take(1)[0]
}

func (r *sealReader) digest() core.Digest {
	var d core.Digest
	copy(d[:], r.take(core.DigestWords))
	return d
}

func (r *sealReader) path(po2 uint32) []core.Digest {
	out := make([]core.Digest, po2)
	for i := range out {
		out[i] = r.digest()
	}
	return out
}

// header is the parsed fixed part of a seal
type header struct {
	outputs   []uint32
	po2       uint32
	controlID core.Digest
	root      core.Digest
}

// parseHeader checks the seal version, the trace size bounds and the exact
// seal length, then reads the fixed part
func parseHeader(def *circuit.Def, seal []uint32) (*header, *sealReader, error) {
	if def.SealVersion != 0 {
		if len(seal) == 0 {
			return nil, nil, invalid("empty seal")
		}
		if seal[0] != def.SealVersion {
			return nil, nil, invalid("unsupported seal version %d, expected %d", seal[0], def.SealVersion)
		}
	}

	po2, err := ExtractPo2(def, seal)
	if err != nil {
		return nil, nil, &Error{Message: "malformed seal", Cause: err}
	}
	if po2 < def.MinPo2 || po2 > def.MaxPo2 {
		return nil, nil, invalid("po2 %d outside [%d, %d]", po2, def.MinPo2, def.MaxPo2)
	}
	if want := SealLen(def, po2); len(seal) != want {
		return nil, nil, invalid("seal has %d words, expected %d", len(seal), want)
	}

	r := &sealReader{words: seal, pos: def.SealOffset()}
	h := &header{outputs: r.take(def.OutputSize)}
	h.po2 = r.word()
	h.controlID = r.digest()
	h.root = r.digest()
	return h, r, nil
}
