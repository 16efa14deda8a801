package core

import (
	"crypto/sha256"
	"encoding/json"
	"testing"
)

// sha256Pair is a minimal PairHasher for tree tests
type sha256Pair struct{}

func (sha256Pair) HashPair(left, right Digest) Digest {
	lb, rb := left.Bytes(), right.Bytes()
	return DigestFromBytes(sha256.Sum256(append(lb[:], rb[:]...)))
}

// TestDigestWordsAndBytes checks the little-endian word view against a known key
func TestDigestWordsAndBytes(t *testing.T) {
	words := [DigestWords]uint32{
		1067704626, 3452143673, 166143985, 2720203724,
		4153258584, 3584210768, 3821389021, 2575106175,
	}
	const hexKey = "32e1a33f3988c3cdf127e709cc0323a258b28df750b7a2d5ddc4c5e37f007d99"

	fromWords := DigestFromWords(words)
	fromHex, err := DigestFromHex(hexKey)
	if err != nil {
		t.Fatalf("DigestFromHex() error: %v", err)
	}

	if fromWords != fromHex {
		t.Fatalf("word and byte views disagree: %s vs %s", fromWords, fromHex)
	}
	if fromWords.String() != hexKey {
		t.Errorf("String() = %s, want %s", fromWords.String(), hexKey)
	}
	if DigestFromBytes(fromWords.Bytes()) != fromWords {
		t.Error("Bytes() round trip changed the digest")
	}
}

// TestDigestFromHexErrors tests malformed hex input
func TestDigestFromHexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too short", "00ff"},
		{"not hex", "zz"},
		{"too long", "0x" + ZeroDigest.String() + "00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DigestFromHex(tt.input); err == nil {
				t.Errorf("DigestFromHex(%q) expected error", tt.input)
			}
		})
	}
}

// TestDigestCompare tests the total order
func TestDigestCompare(t *testing.T) {
	a := Digest{1, 0, 0, 0, 0, 0, 0, 0}
	b := Digest{1, 0, 0, 0, 0, 0, 0, 1}

	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("unexpected ordering: %d %d %d", a.Compare(b), b.Compare(a), a.Compare(a))
	}
	if !ZeroDigest.IsZero() || a.IsZero() {
		t.Error("IsZero() misreports")
	}
}

// TestDigestJSON tests the hex text encoding
func TestDigestJSON(t *testing.T) {
	d := HashBytes([]byte("journal"))
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var decoded Digest
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if decoded != d {
		t.Errorf("decoded %s, want %s", decoded, d)
	}
}

// TestTaggedStruct checks the zero system state digest
func TestTaggedStruct(t *testing.T) {
	got := TaggedStruct("risc0.SystemState", []Digest{ZeroDigest}, []uint32{0})
	want := MustDigestFromHex("a3acc27117418996340b84e5a90f3ef4c49d22c79e44aad822ec9c313e1eb8e2")
	if got != want {
		t.Errorf("TaggedStruct() = %s, want %s", got, want)
	}
}

// TestTaggedList tests list folding
func TestTaggedList(t *testing.T) {
	if TaggedList("risc0.Assumptions", nil) != ZeroDigest {
		t.Error("empty list must hash to zero")
	}

	single := TaggedList("risc0.Assumptions", []Digest{ZeroDigest})
	want := MustDigestFromHex("447df31b9cbb2bcb7d11cbed3a6b104bb38cd9659e2640aec3158db08badff41")
	if single != want {
		t.Errorf("TaggedList() = %s, want %s", single, want)
	}

	a, b := HashBytes([]byte("a")), HashBytes([]byte("b"))
	if TaggedList("t", []Digest{a, b}) != TaggedListCons("t", a, TaggedListCons("t", b, ZeroDigest)) {
		t.Error("list must fold from the back")
	}
}

// TestMerkleTree tests proofs for every leaf
func TestMerkleTree(t *testing.T) {
	tests := []struct {
		name   string
		leaves int
		depth  int
	}{
		{"single", 1, 0},
		{"pair", 2, 1},
		{"padded", 5, 3},
		{"full", 8, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leaves := make([]Digest, tt.leaves)
			for i := range leaves {
				leaves[i] = HashWords([]uint32{uint32(i)})
			}

			tree, err := NewMerkleTree(leaves, sha256Pair{})
			if err != nil {
				t.Fatalf("NewMerkleTree() error: %v", err)
			}
			if tree.Depth() != tt.depth {
				t.Errorf("Depth() = %d, want %d", tree.Depth(), tt.depth)
			}

			for i, leaf := range leaves {
				proof, err := tree.Proof(i)
				if err != nil {
					t.Fatalf("Proof(%d) error: %v", i, err)
				}
				if err := proof.Verify(leaf, tree.Root(), sha256Pair{}); err != nil {
					t.Errorf("Verify(%d) error: %v", i, err)
				}
				if tt.depth > 0 {
					bad := *proof
					bad.Index ^= 1
					if err := bad.Verify(leaf, tree.Root(), sha256Pair{}); err == nil {
						t.Errorf("Verify(%d) accepted a wrong index", i)
					}
				}
			}

			if _, err := tree.Proof(tt.leaves); err == nil {
				t.Error("Proof() accepted an out of range index")
			}
		})
	}
}

// TestMerkleProofIndexBound tests that high index bits are rejected
func TestMerkleProofIndexBound(t *testing.T) {
	leaves := []Digest{HashBytes([]byte("x")), HashBytes([]byte("y"))}
	tree, err := NewMerkleTree(leaves, sha256Pair{})
	if err != nil {
		t.Fatalf("NewMerkleTree() error: %v", err)
	}
	proof, _ := tree.Proof(0)
	proof.Index |= 1 << 4
	if err := proof.Verify(leaves[0], tree.Root(), sha256Pair{}); err == nil {
		t.Error("Verify() accepted an index beyond the tree")
	}
}

// TestNewMerkleTreeErrors tests construction errors
func TestNewMerkleTreeErrors(t *testing.T) {
	if _, err := NewMerkleTree(nil, sha256Pair{}); err == nil {
		t.Error("expected error for empty leaves")
	}
	if _, err := NewMerkleTree([]Digest{ZeroDigest}, nil); err == nil {
		t.Error("expected error for nil hasher")
	}
}
