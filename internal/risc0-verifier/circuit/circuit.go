// Package circuit holds the per-version definitions of the segment (RV32IM)
// and recursion circuits: protocol info strings, output layout and the
// shape parameters the kernel checks a seal against.
package circuit

import (
	"fmt"
)

// ProtocolInfoLen is the fixed length of a protocol info string
const ProtocolInfoLen = 16

// ProtocolInfo is a 16 byte version identifier for a proof system or circuit
type ProtocolInfo [ProtocolInfoLen]byte

// NewProtocolInfo converts a 16 character string into a ProtocolInfo
func NewProtocolInfo(s string) (ProtocolInfo, error) {
	var p ProtocolInfo
	if len(s) != ProtocolInfoLen {
		return p, fmt.Errorf("protocol info %q must be %d bytes, got %d", s, ProtocolInfoLen, len(s))
	}
	copy(p[:], s)
	return p, nil
}

// MustProtocolInfo is NewProtocolInfo for static tables
func MustProtocolInfo(s string) ProtocolInfo {
	p, err := NewProtocolInfo(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the info as text
func (p ProtocolInfo) String() string {
	return string(p[:])
}

// MarshalText implements encoding.TextMarshaler
func (p ProtocolInfo) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ProofSystemInfo identifies the STARK proof system shared by all circuits
var ProofSystemInfo = MustProtocolInfo("RISC0_STARK:v1__")

// Kind distinguishes the two circuit families
type Kind int

const (
	// KindSegment is the RV32IM execution circuit
	KindSegment Kind = iota

	// KindRecursion is the recursion circuit that folds receipts
	KindRecursion
)

func (k Kind) String() string {
	switch k {
	case KindSegment:
		return "segment"
	case KindRecursion:
		return "recursion"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Def describes one circuit instantiation
type Def struct {
	Kind Kind

	// Info is the circuit info string bound into verifier parameters
	Info ProtocolInfo

	// OutputSize is the number of global output slots at the head of a seal
	OutputSize int

	// MinPo2 and MaxPo2 bound the trace length (log2 of rows)
	MinPo2 uint32
	MaxPo2 uint32

	// Queries is the number of Fiat-Shamir sampled trace openings
	Queries int

	// SealVersion, when non-zero, is the word expected at seal[0]
	SealVersion uint32
}

// SealOffset returns the number of leading words before the outputs
func (d *Def) SealOffset() int {
	if d.SealVersion != 0 {
		return 1
	}
	return 0
}

// Validate checks the definition is internally consistent
func (d *Def) Validate() error {
	if d.OutputSize <= 0 {
		return fmt.Errorf("%s circuit %s: output size must be positive", d.Kind, d.Info)
	}
	if d.Kind == KindSegment && d.OutputSize < SegmentOutputMinSize {
		return fmt.Errorf("segment circuit %s: output size %d below claim layout %d", d.Info, d.OutputSize, SegmentOutputMinSize)
	}
	if d.Kind == KindRecursion && d.OutputSize < RecursionOutputMinSize {
		return fmt.Errorf("recursion circuit %s: output size %d below claim layout %d", d.Info, d.OutputSize, RecursionOutputMinSize)
	}
	if d.MinPo2 == 0 || d.MinPo2 > d.MaxPo2 {
		return fmt.Errorf("%s circuit %s: invalid po2 range [%d, %d]", d.Kind, d.Info, d.MinPo2, d.MaxPo2)
	}
	if d.MaxPo2 > MaxSupportedPo2 {
		return fmt.Errorf("%s circuit %s: max po2 %d exceeds %d", d.Kind, d.Info, d.MaxPo2, MaxSupportedPo2)
	}
	if d.Queries <= 0 {
		return fmt.Errorf("%s circuit %s: queries must be positive", d.Kind, d.Info)
	}
	return nil
}

// MaxSupportedPo2 caps trace length so seal sizes stay bounded
const MaxSupportedPo2 = 24
