package controlid

import (
	"testing"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/circuit"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/suite"
)

var allHashes = []string{suite.Blake2b, suite.Poseidon2, suite.Sha256}

// TestAllowedControlID tests lookups at the edges of the table
func TestAllowedControlID(t *testing.T) {
	params, err := NewSegmentParams(circuit.SegmentV1_2, allHashes, DefaultMaxPo2)
	if err != nil {
		t.Fatalf("NewSegmentParams() error: %v", err)
	}

	tests := []struct {
		name    string
		hash    string
		po2     uint32
		allowed bool
	}{
		{"min po2", suite.Sha256, circuit.MinCyclesPo2, true},
		{"max po2", suite.Poseidon2, DefaultMaxPo2, true},
		{"above max", suite.Poseidon2, DefaultMaxPo2 + 1, false},
		{"below min", suite.Blake2b, circuit.MinCyclesPo2 - 1, false},
		{"unknown hash", "keccak", 16, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := params.AllowedControlID(tt.hash, tt.po2)
			if ok != tt.allowed {
				t.Fatalf("AllowedControlID(%q, %d) allowed = %v, want %v", tt.hash, tt.po2, ok, tt.allowed)
			}
			if ok && id != SegmentControlID(circuit.SegmentV1_2, tt.hash, tt.po2) {
				t.Error("AllowedControlID returned a different id than derived")
			}
		})
	}

	want := len(allHashes) * (DefaultMaxPo2 - circuit.MinCyclesPo2 + 1)
	if got := len(params.ControlIDs()); got != want {
		t.Errorf("len(ControlIDs()) = %d, want %d", got, want)
	}
}

// TestControlIDsAreVersionSpecific checks that releases never share ids
func TestControlIDsAreVersionSpecific(t *testing.T) {
	a := SegmentControlID(circuit.SegmentV1_0, suite.Poseidon2, 16)
	b := SegmentControlID(circuit.SegmentV1_2, suite.Poseidon2, 16)
	if a == b {
		t.Error("segment control ids collide across versions")
	}

	ra, err := AllowedControlRoot(circuit.RecursionV1_0, false)
	if err != nil {
		t.Fatalf("AllowedControlRoot() error: %v", err)
	}
	rb, err := AllowedControlRoot(circuit.RecursionV1_2, false)
	if err != nil {
		t.Fatalf("AllowedControlRoot() error: %v", err)
	}
	if ra == rb {
		t.Error("control roots collide across versions")
	}
}

// TestSegmentParamsDigest tests that the fingerprint tracks every field
func TestSegmentParamsDigest(t *testing.T) {
	base, _ := NewSegmentParams(circuit.SegmentV2_0, allHashes, DefaultMaxPo2)
	same, _ := NewSegmentParams(circuit.SegmentV2_0, []string{suite.Sha256, suite.Poseidon2, suite.Blake2b}, DefaultMaxPo2)
	if base.Digest() != same.Digest() {
		t.Error("digest must not depend on hash name order")
	}

	smaller, _ := NewSegmentParams(circuit.SegmentV2_0, allHashes, DefaultMaxPo2-1)
	if base.Digest() == smaller.Digest() {
		t.Error("digest must change with the allow-list")
	}

	other, _ := NewSegmentParams(circuit.SegmentV2_1, allHashes, DefaultMaxPo2)
	if base.Digest() == other.Digest() {
		t.Error("digest must change with the circuit")
	}
}

// TestNewSegmentParamsErrors tests invalid parameter construction
func TestNewSegmentParamsErrors(t *testing.T) {
	if _, err := NewSegmentParams(circuit.RecursionV1_0, allHashes, DefaultMaxPo2); err == nil {
		t.Error("expected error for recursion circuit")
	}
	if _, err := NewSegmentParams(circuit.SegmentV1_0, allHashes, circuit.SegmentMaxPo2+1); err == nil {
		t.Error("expected error for max po2 beyond circuit")
	}
	if _, err := NewSegmentParams(circuit.SegmentV1_0, nil, DefaultMaxPo2); err == nil {
		t.Error("expected error for empty hash list")
	}
}

// TestRecursionControlSetInclusion tests inclusion proofs for every program
func TestRecursionControlSetInclusion(t *testing.T) {
	hs, _ := suite.Lookup(ControlRootHash)
	programs := RecursionPrograms(true)
	set, err := NewRecursionControlSet(circuit.RecursionV3_0, programs, hs)
	if err != nil {
		t.Fatalf("NewRecursionControlSet() error: %v", err)
	}

	root, err := AllowedControlRoot(circuit.RecursionV3_0, true)
	if err != nil {
		t.Fatalf("AllowedControlRoot() error: %v", err)
	}
	if set.Root() != root {
		t.Fatal("control set root differs from AllowedControlRoot")
	}

	for _, p := range programs {
		id, proof, err := set.Inclusion(p)
		if err != nil {
			t.Fatalf("Inclusion(%q) error: %v", p, err)
		}
		if err := proof.Verify(id, root, hs); err != nil {
			t.Errorf("Inclusion(%q) does not verify: %v", p, err)
		}
	}

	if _, _, err := set.Inclusion("forged"); err == nil {
		t.Error("Inclusion() accepted an unknown program")
	}
}

// TestSuccinctParams tests inner control root handling
func TestSuccinctParams(t *testing.T) {
	params, err := NewSuccinctParams(circuit.RecursionV1_2, false)
	if err != nil {
		t.Fatalf("NewSuccinctParams() error: %v", err)
	}
	if params.ExpectedOutputRoot() != params.ControlRoot {
		t.Error("without inner root the output root is the control root")
	}

	inner := core.HashBytes([]byte("inner"))
	nested := *params
	nested.InnerControlRoot = &inner
	if nested.ExpectedOutputRoot() != inner {
		t.Error("inner root must take precedence")
	}
	if nested.Digest() == params.Digest() {
		t.Error("digest must change with the inner root")
	}

	rerooted := nested.WithControlRoot(inner)
	if rerooted.InnerControlRoot != nil || rerooted.ControlRoot != inner {
		t.Error("WithControlRoot must reset the inner root")
	}

	if _, err := NewSuccinctParams(circuit.SegmentV1_2, false); err == nil {
		t.Error("expected error for segment circuit")
	}
}
