package circuit

import (
	"fmt"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
)

// Global outputs are written as slots small enough to embed in the trace
// field. SHA digests and 32-bit words are split into 16-bit halves.
const (
	halfBits = 16
	halfMask = 1<<halfBits - 1

	// digestHalves is the number of slots for a SHA digest
	digestHalves = 2 * core.DigestWords

	// SegmentOutputMinSize is the number of slots used by the segment claim
	SegmentOutputMinSize = digestHalves*4 + 2*4

	// RecursionOutputMinSize is the number of slots used by recursion outputs
	RecursionOutputMinSize = 2 * digestHalves
)

// SegmentOutputs is the claim a segment seal commits to
type SegmentOutputs struct {
	Input    core.Digest
	PrePC    uint32
	PreRoot  core.Digest
	PostPC   uint32
	PostRoot core.Digest
	SysExit  uint32
	UserExit uint32
	Output   core.Digest
}

// RecursionOutputs is what a recursion seal commits to: the control root the
// recursion program was verified under and the digest of the folded claim
type RecursionOutputs struct {
	ControlRoot core.Digest
	Claim       core.Digest
}

// halfWriter appends words and digests as 16-bit halves
type halfWriter struct {
	slots []uint32
}

func (w *halfWriter) word(v uint32) {
	w.slots = append(w.slots, v&halfMask, v>>halfBits)
}

func (w *halfWriter) digest(d core.Digest) {
	for _, v := range d {
		w.word(v)
	}
}

// halfReader consumes slots written by halfWriter
type halfReader struct {
	slots []uint32
	pos   int
	err   error
}

func (r *halfReader) word() uint32 {
	if r.err != nil {
		return 0
	}
	if r.pos+2 > len(r.slots) {
		r.err = fmt.Errorf("outputs truncated at slot %d", r.pos)
		return 0
	}
	lo, hi := r.slots[r.pos], r.slots[r.pos+1]
	if lo > halfMask || hi > halfMask {
		r.err = fmt.Errorf("output slot %d is not a 16-bit half", r.pos)
		return 0
	}
	r.pos += 2
	return lo | hi<<halfBits
}

func (r *halfReader) digest() core.Digest {
	var d core.Digest
	for i := range d {
		d[i] = r.word()
	}
	return d
}

// padding checks every remaining slot is zero
func (r *halfReader) padding() {
	if r.err != nil {
		return
	}
	for i := r.pos; i < len(r.slots); i++ {
		if r.slots[i] != 0 {
			r.err = fmt.Errorf("non-zero padding in output slot %d", i)
			return
		}
	}
}

// EncodeSegmentOutputs lays out o into size slots
func EncodeSegmentOutputs(o SegmentOutputs, size int) ([]uint32, error) {
	if size < SegmentOutputMinSize {
		return nil, fmt.Errorf("segment output size %d below %d", size, SegmentOutputMinSize)
	}
	w := &halfWriter{slots: make([]uint32, 0, size)}
	w.digest(o.Input)
	w.word(o.PrePC)
	w.digest(o.PreRoot)
	w.word(o.PostPC)
	w.digest(o.PostRoot)
	w.word(o.SysExit)
	w.word(o.UserExit)
	w.digest(o.Output)
	for len(w.slots) < size {
		w.slots = append(w.slots, 0)
	}
	return w.slots, nil
}

// DecodeSegmentOutputs reads segment outputs back from slots
func DecodeSegmentOutputs(slots []uint32) (SegmentOutputs, error) {
	r := &halfReader{slots: slots}
	o := SegmentOutputs{
		Input:    r.digest(),
		PrePC:    r.word(),
		PreRoot:  r.digest(),
		PostPC:   r.word(),
		PostRoot: r.digest(),
		SysExit:  r.word(),
		UserExit: r.word(),
		Output:   r.digest(),
	}
	r.padding()
	if r.err != nil {
		return SegmentOutputs{}, r.err
	}
	return o, nil
}

// EncodeRecursionOutputs lays out o into size slots. The control root uses
// the even slots of its 16 slot region, the claim digest is split in halves.
func EncodeRecursionOutputs(o RecursionOutputs, size int) ([]uint32, error) {
	if size < RecursionOutputMinSize {
		return nil, fmt.Errorf("recursion output size %d below %d", size, RecursionOutputMinSize)
	}
	slots := make([]uint32, 0, size)
	for _, v := range o.ControlRoot {
		slots = append(slots, v, 0)
	}
	w := &halfWriter{slots: slots}
	w.digest(o.Claim)
	for len(w.slots) < size {
		w.slots = append(w.slots, 0)
	}
	return w.slots, nil
}

// DecodeRecursionOutputs reads recursion outputs back from slots
func DecodeRecursionOutputs(slots []uint32) (RecursionOutputs, error) {
	if len(slots) < RecursionOutputMinSize {
		return RecursionOutputs{}, fmt.Errorf("recursion outputs truncated: %d slots", len(slots))
	}
	var o RecursionOutputs
	for i := range o.ControlRoot {
		if slots[2*i+1] != 0 {
			return RecursionOutputs{}, fmt.Errorf("non-zero padding in control root slot %d", 2*i+1)
		}
		o.ControlRoot[i] = slots[2*i]
	}
	r := &halfReader{slots: slots, pos: digestHalves}
	o.Claim = r.digest()
	r.padding()
	if r.err != nil {
		return RecursionOutputs{}, r.err
	}
	return o, nil
}
