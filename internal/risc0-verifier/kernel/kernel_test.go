package kernel

import (
	"errors"
	"testing"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/circuit"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/suite"
)

func mustSuite(t testing.TB, name string) suite.HashSuite {
	t.Helper()
	hs, ok := suite.Lookup(name)
	if !ok {
		t.Fatalf("suite %q not found", name)
	}
	return hs
}

func testOutputs(def *circuit.Def) []uint32 {
	outputs := make([]uint32, def.OutputSize)
	for i := range outputs {
		outputs[i] = uint32(i*7+3) & 0xffff
	}
	return outputs
}

func proveRecursion(t testing.TB, hashName string) ([]uint32, core.Digest) {
	t.Helper()
	def := circuit.RecursionV1_2
	controlID := core.HashBytes([]byte("control"))
	seal, err := Prove(def, mustSuite(t, hashName), circuit.RecursionPo2, controlID, testOutputs(def))
	if err != nil {
		t.Fatalf("Prove() error: %v", err)
	}
	return seal, controlID
}

// TestProveOpen tests that honest seals open under every hash suite
func TestProveOpen(t *testing.T) {
	for _, name := range []string{suite.Sha256, suite.Blake2b, suite.Poseidon2} {
		t.Run(name, func(t *testing.T) {
			def := circuit.RecursionV1_2
			seal, controlID := proveRecursion(t, name)

			if len(seal) != SealLen(def, circuit.RecursionPo2) {
				t.Fatalf("len(seal) = %d, want %d", len(seal), SealLen(def, circuit.RecursionPo2))
			}

			outputs, err := NewStark().Open(def, mustSuite(t, name), seal, ExpectControlID(controlID))
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			want := testOutputs(def)
			for i := range want {
				if outputs[i] != want[i] {
					t.Fatalf("outputs[%d] = %d, want %d", i, outputs[i], want[i])
				}
			}
		})
	}
}

// TestOpenRejectsWrongSuite tests that a seal is bound to its hash suite
func TestOpenRejectsWrongSuite(t *testing.T) {
	seal, controlID := proveRecursion(t, suite.Sha256)
	_, err := NewStark().Open(circuit.RecursionV1_2, mustSuite(t, suite.Blake2b), seal, ExpectControlID(controlID))
	if err == nil {
		t.Fatal("Open() accepted a seal under the wrong hash suite")
	}
	if IsControlMismatch(err) {
		t.Errorf("wrong suite must not look like a control mismatch: %v", err)
	}
}

// TestOpenRejectsWrongCircuit tests that a seal is bound to its circuit
func TestOpenRejectsWrongCircuit(t *testing.T) {
	seal, controlID := proveRecursion(t, suite.Sha256)
	if _, err := NewStark().Open(circuit.RecursionV1_0, mustSuite(t, suite.Sha256), seal, ExpectControlID(controlID)); err == nil {
		t.Fatal("Open() accepted a seal under a different circuit")
	}
}

// TestOpenControlMismatch tests that control failures are distinguishable
func TestOpenControlMismatch(t *testing.T) {
	seal, _ := proveRecursion(t, suite.Sha256)
	other := core.HashBytes([]byte("other"))

	_, err := NewStark().Open(circuit.RecursionV1_2, mustSuite(t, suite.Sha256), seal, ExpectControlID(other))
	if !IsControlMismatch(err) {
		t.Fatalf("Open() error = %v, want control mismatch", err)
	}
	var kerr *Error
	if !errors.As(err, &kerr) || kerr.ControlID == other {
		t.Error("Error.ControlID must report the id found in the seal")
	}
}

// TestOpenSingleWordFlips flips one byte in a spread of seal words
func TestOpenSingleWordFlips(t *testing.T) {
	def := circuit.RecursionV1_2
	hs := mustSuite(t, suite.Sha256)
	seal, controlID := proveRecursion(t, suite.Sha256)
	k := NewStark()

	headerLen := def.OutputSize + 1 + 2*core.DigestWords
	stride := 1
	if testing.Short() {
		stride = 97
	}

	for i := 0; i < len(seal); i++ {
		if i >= headerLen && i%stride != 0 && i != len(seal)/2 {
			continue
		}
		for _, mask := range []uint32{0x1, 0x100, 0x80000000} {
			mutated := append([]uint32(nil), seal...)
			mutated[i] ^= mask
			if _, err := k.Open(def, hs, mutated, ExpectControlID(controlID)); err == nil {
				t.Fatalf("Open() accepted seal with word %d flipped by %#x", i, mask)
			}
		}
	}
}

// TestOpenMalformed tests structural rejections
func TestOpenMalformed(t *testing.T) {
	def := circuit.RecursionV1_2
	hs := mustSuite(t, suite.Sha256)
	seal, controlID := proveRecursion(t, suite.Sha256)

	tests := []struct {
		name string
		seal []uint32
	}{
		{"empty", nil},
		{"truncated header", seal[:def.OutputSize]},
		{"truncated queries", seal[:len(seal)-1]},
		{"extra word", append(append([]uint32(nil), seal...), 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStark().Open(def, hs, tt.seal, ExpectControlID(controlID))
			if err == nil {
				t.Fatal("Open() accepted a malformed seal")
			}
			if IsControlMismatch(err) {
				t.Errorf("malformed seal reported as control mismatch: %v", err)
			}
		})
	}
}

// TestSealVersion tests the versioned segment layout
func TestSealVersion(t *testing.T) {
	def := circuit.SegmentV3_0
	hs := mustSuite(t, suite.Sha256)
	controlID := core.HashBytes([]byte("segment"))

	seal, err := Prove(def, hs, circuit.MinCyclesPo2, controlID, testOutputs(def))
	if err != nil {
		t.Fatalf("Prove() error: %v", err)
	}
	if seal[0] != circuit.SegmentSealVersion {
		t.Fatalf("seal[0] = %d, want %d", seal[0], circuit.SegmentSealVersion)
	}

	po2, err := ExtractPo2(def, seal)
	if err != nil || po2 != circuit.MinCyclesPo2 {
		t.Fatalf("ExtractPo2() = %d, %v", po2, err)
	}

	if _, err := NewStark().Open(def, hs, seal, ExpectControlID(controlID)); err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	// a v3 seal read with the unversioned layout sees the wrong po2
	if _, err := NewStark().Open(circuit.SegmentV1_2, hs, seal, ExpectControlID(controlID)); err == nil {
		t.Error("Open() accepted a versioned seal as unversioned")
	}

	bad := append([]uint32(nil), seal...)
	bad[0] = 99
	if _, err := NewStark().Open(def, hs, bad, ExpectControlID(controlID)); err == nil {
		t.Error("Open() accepted an unknown seal version")
	}
}

// TestProveErrors tests prover argument checks
func TestProveErrors(t *testing.T) {
	def := circuit.RecursionV1_2
	hs := mustSuite(t, suite.Sha256)
	if _, err := Prove(def, hs, circuit.RecursionPo2, core.ZeroDigest, nil); err == nil {
		t.Error("expected error for missing outputs")
	}
	if _, err := Prove(def, hs, circuit.RecursionPo2+1, core.ZeroDigest, testOutputs(def)); err == nil {
		t.Error("expected error for po2 out of range")
	}
}

// TestTranscriptDeterminism tests Fiat-Shamir sampling
func TestTranscriptDeterminism(t *testing.T) {
	t1, t2 := NewTranscript(), NewTranscript()
	t1.AbsorbWords([]uint32{1, 2, 3})
	t2.AbsorbWords([]uint32{1, 2, 3})

	a, err1 := t1.SampleIndices(256, 8)
	b, err2 := t2.SampleIndices(256, 8)
	if err1 != nil || err2 != nil {
		t.Fatalf("SampleIndices() errors: %v, %v", err1, err2)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("transcripts diverged at %d", i)
		}
		if a[i] < 0 || a[i] >= 256 {
			t.Errorf("index %d out of range", a[i])
		}
	}

	if _, err := t1.SampleIndices(100, 1); err == nil {
		t.Error("expected error for non power of two bound")
	}
}

func BenchmarkOpenRecursion(b *testing.B) {
	def := circuit.RecursionV1_2
	hs := mustSuite(b, suite.Poseidon2)
	seal, controlID := proveRecursion(b, suite.Poseidon2)
	k := NewStark()
	check := ExpectControlID(controlID)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := k.Open(def, hs, seal, check); err != nil {
			b.Fatal(err)
		}
	}
}
