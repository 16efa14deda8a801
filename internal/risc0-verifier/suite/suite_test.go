package suite

import (
	"errors"
	"testing"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
)

// TestRegistryResolve tests resolution within a closed set
func TestRegistryResolve(t *testing.T) {
	reg := MustNewRegistry(Poseidon2, Sha256)

	tests := []struct {
		name      string
		suite     string
		expectErr bool
	}{
		{"poseidon2", Poseidon2, false},
		{"sha-256", Sha256, false},
		{"known but excluded", Blake2b, true},
		{"unknown", "keccak", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := reg.Resolve(tt.suite)
			if tt.expectErr {
				var unknown *UnknownError
				if !errors.As(err, &unknown) {
					t.Fatalf("Resolve(%q) error = %v, want *UnknownError", tt.suite, err)
				}
				if unknown.Name != tt.suite {
					t.Errorf("UnknownError.Name = %q, want %q", unknown.Name, tt.suite)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.suite, err)
			}
			if s.Name() != tt.suite {
				t.Errorf("Name() = %q, want %q", s.Name(), tt.suite)
			}
		})
	}
}

// TestNewRegistryErrors tests invalid registry construction
func TestNewRegistryErrors(t *testing.T) {
	if _, err := NewRegistry(Sha256, "md5"); err == nil {
		t.Error("expected error for unknown suite")
	}
	if _, err := NewRegistry(Sha256, Sha256); err == nil {
		t.Error("expected error for duplicate suite")
	}
}

// TestRegistryWithout tests subset derivation
func TestRegistryWithout(t *testing.T) {
	full := MustNewRegistry(Blake2b, Poseidon2, Sha256)
	reduced := full.Without(Sha256)

	if reduced.Contains(Sha256) {
		t.Error("Without() kept the dropped suite")
	}
	if !full.Contains(Sha256) {
		t.Error("Without() mutated the original registry")
	}
	if got := reduced.Names(); len(got) != 2 || got[0] != Blake2b || got[1] != Poseidon2 {
		t.Errorf("Names() = %v", got)
	}
}

// TestSuitesAreDistinct checks that every suite is deterministic and that
// suites disagree with each other
func TestSuitesAreDistinct(t *testing.T) {
	data := []byte("risc0 receipt verifier")
	a, b := core.HashBytes([]byte("a")), core.HashBytes([]byte("b"))

	seen := make(map[core.Digest]string)
	for _, name := range []string{Blake2b, Poseidon2, Sha256} {
		s, ok := Lookup(name)
		if !ok {
			t.Fatalf("Lookup(%q) failed", name)
		}

		h1, h2 := s.HashBytes(data), s.HashBytes(data)
		if h1 != h2 {
			t.Errorf("%s: HashBytes not deterministic", name)
		}
		if prev, dup := seen[h1]; dup {
			t.Errorf("%s and %s produced the same digest", name, prev)
		}
		seen[h1] = name

		if s.HashPair(a, b) == s.HashPair(b, a) {
			t.Errorf("%s: HashPair must be order sensitive", name)
		}
		if s.HashBytes(nil) == s.HashBytes([]byte{0}) {
			t.Errorf("%s: empty input collides with a zero byte", name)
		}
	}
}

// TestSha256SuiteMatchesCore checks the sha-256 suite agrees with claim hashing
func TestSha256SuiteMatchesCore(t *testing.T) {
	s, _ := Lookup(Sha256)
	data := []byte("journal")
	if s.HashBytes(data) != core.HashBytes(data) {
		t.Error("sha-256 suite disagrees with core.HashBytes")
	}
	if HashWords(s, []uint32{1, 2}) != core.HashWords([]uint32{1, 2}) {
		t.Error("HashWords disagrees with core.HashWords")
	}
}

func BenchmarkPoseidon2HashPair(b *testing.B) {
	s, _ := Lookup(Poseidon2)
	left, right := core.HashBytes([]byte("l")), core.HashBytes([]byte("r"))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		left = s.HashPair(left, right)
	}
}
