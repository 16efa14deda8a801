// Package suite resolves hash function names carried by receipts into the
// hashing strategy used for seal commitments and Merkle authentication.
package suite

import (
	"fmt"
	"sort"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
)

// Names of the supported hash suites
const (
	Blake2b   = "blake2b"
	Poseidon2 = "poseidon2"
	Sha256    = "sha-256"
)

// HashSuite is the hashing strategy handed to the proof-system kernel
type HashSuite interface {
	core.PairHasher

	// Name returns the registry name of the suite
	Name() string

	// HashBytes hashes an arbitrary byte string to a digest
	HashBytes(data []byte) core.Digest
}

// HashWords hashes the little-endian encoding of words with s
func HashWords(s HashSuite, words []uint32) core.Digest {
	return s.HashBytes(core.WordsToBytes(words))
}

// UnknownError is returned when a receipt names a hash function outside
// the registry's closed set
type UnknownError struct {
	Name string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown hash suite %q", e.Name)
}

var builtin = map[string]HashSuite{
	Blake2b:   blake2bSuite{},
	Poseidon2: newPoseidon2Suite(),
	Sha256:    sha256Suite{},
}

// Lookup returns the built-in suite with the given name
func Lookup(name string) (HashSuite, bool) {
	s, ok := builtin[name]
	return s, ok
}

// Registry is an immutable closed set of hash suites
type Registry struct {
	suites map[string]HashSuite
	names  []string
}

// NewRegistry creates a registry restricted to the named built-in suites
func NewRegistry(names ...string) (*Registry, error) {
	r := &Registry{suites: make(map[string]HashSuite, len(names))}
	for _, name := range names {
		s, ok := Lookup(name)
		if !ok {
			return nil, &UnknownError{Name: name}
		}
		if _, dup := r.suites[name]; dup {
			return nil, fmt.Errorf("duplicate hash suite %q", name)
		}
		r.suites[name] = s
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

// MustNewRegistry is NewRegistry for static tables
func MustNewRegistry(names ...string) *Registry {
	r, err := NewRegistry(names...)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the suite registered under name
func (r *Registry) Resolve(name string) (HashSuite, error) {
	if s, ok := r.suites[name]; ok {
		return s, nil
	}
	return nil, &UnknownError{Name: name}
}

// Contains reports whether name is in the registry
func (r *Registry) Contains(name string) bool {
	_, ok := r.suites[name]
	return ok
}

// Names returns the registered names in sorted order
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Without returns a copy of the registry without the named suites
func (r *Registry) Without(names ...string) *Registry {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	keep := make([]string, 0, len(r.names))
	for _, n := range r.names {
		if !drop[n] {
			keep = append(keep, n)
		}
	}
	return MustNewRegistry(keep...)
}
