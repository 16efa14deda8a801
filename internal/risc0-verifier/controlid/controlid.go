// Package controlid is the trust anchor: per-version allow-lists of circuit
// control identifiers and the control-root commitment for recursion.
package controlid

import (
	"fmt"
	"sort"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/circuit"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/suite"
)

// SegmentControlID derives the control identifier of the segment circuit
// def instantiated with the named hash function at trace size po2
func SegmentControlID(def *circuit.Def, hashName string, po2 uint32) core.Digest {
	return core.TaggedStruct("risc0.SegmentControlId",
		[]core.Digest{core.HashBytes(def.Info[:]), core.HashBytes([]byte(hashName))},
		[]uint32{po2})
}

// RecursionControlID derives the control identifier of a recursion program
// running on the recursion circuit def
func RecursionControlID(def *circuit.Def, program string) core.Digest {
	return core.TaggedStruct("risc0.RecursionControlId",
		[]core.Digest{core.HashBytes(def.Info[:]), core.HashBytes([]byte(program))},
		nil)
}

// LiftProgram names the recursion program lifting a segment of size po2
func LiftProgram(po2 uint32) string {
	return fmt.Sprintf("lift_%d", po2)
}

// Recursion programs beyond the lift family
const (
	ProgramJoin     = "join"
	ProgramResolve  = "resolve"
	ProgramIdentity = "identity"
	ProgramUnion    = "union"
)

// RecursionPrograms lists the recursion programs of a release, lifts first
func RecursionPrograms(withUnion bool) []string {
	programs := make([]string, 0, circuit.SegmentMaxPo2-circuit.MinCyclesPo2+5)
	for po2 := uint32(circuit.MinCyclesPo2); po2 <= circuit.SegmentMaxPo2; po2++ {
		programs = append(programs, LiftProgram(po2))
	}
	programs = append(programs, ProgramJoin, ProgramResolve, ProgramIdentity)
	if withUnion {
		programs = append(programs, ProgramUnion)
	}
	return programs
}

// RecursionControlSet is the Merkle commitment to the allowed recursion
// programs of a release. Its root is the control root.
type RecursionControlSet struct {
	tree  *core.MerkleTree
	index map[string]int
	ids   []core.Digest
}

// NewRecursionControlSet commits to programs under hasher
func NewRecursionControlSet(def *circuit.Def, programs []string, hasher core.PairHasher) (*RecursionControlSet, error) {
	if len(programs) == 0 {
		return nil, fmt.Errorf("recursion control set needs at least one program")
	}
	ids := make([]core.Digest, len(programs))
	index := make(map[string]int, len(programs))
	for i, p := range programs {
		if _, dup := index[p]; dup {
			return nil, fmt.Errorf("duplicate recursion program %q", p)
		}
		index[p] = i
		ids[i] = RecursionControlID(def, p)
	}
	tree, err := core.NewMerkleTree(ids, hasher)
	if err != nil {
		return nil, err
	}
	return &RecursionControlSet{tree: tree, index: index, ids: ids}, nil
}

// Root returns the control root
func (s *RecursionControlSet) Root() core.Digest {
	return s.tree.Root()
}

// Programs returns the number of committed programs
func (s *RecursionControlSet) Programs() int {
	return len(s.ids)
}

// Inclusion returns the control id of program and its inclusion proof
func (s *RecursionControlSet) Inclusion(program string) (core.Digest, *core.MerkleProof, error) {
	i, ok := s.index[program]
	if !ok {
		return core.Digest{}, nil, fmt.Errorf("recursion program %q not in control set", program)
	}
	proof, err := s.tree.Proof(i)
	if err != nil {
		return core.Digest{}, nil, err
	}
	return s.ids[i], proof, nil
}

// ControlRootHash is the hash suite committing recursion control sets
const ControlRootHash = suite.Poseidon2

// AllowedControlRoot computes the control root of the recursion circuit def
func AllowedControlRoot(def *circuit.Def, withUnion bool) (core.Digest, error) {
	hs, ok := suite.Lookup(ControlRootHash)
	if !ok {
		return core.Digest{}, fmt.Errorf("hash suite %q unavailable", ControlRootHash)
	}
	set, err := NewRecursionControlSet(def, RecursionPrograms(withUnion), hs)
	if err != nil {
		return core.Digest{}, err
	}
	return set.Root(), nil
}

func sortDigests(ds []core.Digest) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].Compare(ds[j]) < 0 })
}
