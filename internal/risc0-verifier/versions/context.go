package versions

import (
	"fmt"
	"sync"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/circuit"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/controlid"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/kernel"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/suite"
)

// Context binds a protocol version to its circuits, hash suites and
// verifier parameters. A Context is never mutated after construction and
// may be shared between goroutines; the With methods return copies.
type Context struct {
	Version   ProtocolVersion
	Segment   *circuit.Def
	Recursion *circuit.Def

	// Suites resolves the hash function of succinct receipts
	Suites *suite.Registry

	// SegmentSuites resolves the hash function of segment receipts
	SegmentSuites *suite.Registry

	SegmentParams  *controlid.SegmentParams
	SuccinctParams *controlid.SuccinctParams

	Kernel kernel.CircuitKernel
}

type release struct {
	segment   *circuit.Def
	recursion *circuit.Def
	maxPo2    uint32
	union     bool
}

var releases = map[ProtocolVersion]release{
	V1_0: {circuit.SegmentV1_0, circuit.RecursionV1_0, circuit.SegmentMaxPo2, false},
	V1_1: {circuit.SegmentV1_1, circuit.RecursionV1_1, controlid.DefaultMaxPo2, false},
	V1_2: {circuit.SegmentV1_2, circuit.RecursionV1_2, controlid.DefaultMaxPo2, false},
	V2_0: {circuit.SegmentV2_0, circuit.RecursionV2_0, controlid.DefaultMaxPo2, true},
	V2_1: {circuit.SegmentV2_1, circuit.RecursionV2_1, controlid.DefaultMaxPo2, true},
	V2_2: {circuit.SegmentV2_2, circuit.RecursionV2_2, controlid.DefaultMaxPo2, true},
	V3_0: {circuit.SegmentV3_0, circuit.RecursionV3_0, controlid.DefaultMaxPo2, true},
}

var defaultSuites = []string{suite.Blake2b, suite.Poseidon2, suite.Sha256}

// RejectedSegmentHashes lists segment hash functions a version refuses.
// From v2 on, segments labelled "sha-256" are proven with poseidon2, so the
// label cannot be trusted.
func RejectedSegmentHashes(v ProtocolVersion) []string {
	if v.Major() >= 2 {
		return []string{suite.Sha256}
	}
	return nil
}

// UsesUnion reports whether the release's recursion programs include union
func UsesUnion(v ProtocolVersion) bool {
	return releases[v].union
}

func build(v ProtocolVersion) (*Context, error) {
	rel, ok := releases[v]
	if !ok {
		return nil, fmt.Errorf("unknown protocol version %d", int(v))
	}
	suites, err := suite.NewRegistry(defaultSuites...)
	if err != nil {
		return nil, err
	}
	segSuites := suites.Without(RejectedSegmentHashes(v)...)

	// control ids stay derivable for every hash so the parameter digest
	// matches what provers publish
	segParams, err := controlid.NewSegmentParams(rel.segment, defaultSuites, rel.maxPo2)
	if err != nil {
		return nil, fmt.Errorf("%s segment parameters: %w", v, err)
	}
	succParams, err := controlid.NewSuccinctParams(rel.recursion, rel.union)
	if err != nil {
		return nil, fmt.Errorf("%s succinct parameters: %w", v, err)
	}

	return &Context{
		Version:        v,
		Segment:        rel.segment,
		Recursion:      rel.recursion,
		Suites:         suites,
		SegmentSuites:  segSuites,
		SegmentParams:  segParams,
		SuccinctParams: succParams,
		Kernel:         kernel.NewStark(),
	}, nil
}

var contexts = func() map[ProtocolVersion]func() *Context {
	m := make(map[ProtocolVersion]func() *Context, len(All))
	for _, v := range All {
		m[v] = sync.OnceValue(func() *Context {
			ctx, err := build(v)
			if err != nil {
				panic(fmt.Sprintf("versions: building %s context: %v", v, err))
			}
			return ctx
		})
	}
	return m
}()

// Get returns the shared context of v
func Get(v ProtocolVersion) (*Context, error) {
	f, ok := contexts[v]
	if !ok {
		return nil, fmt.Errorf("unknown protocol version %d", int(v))
	}
	return f(), nil
}

// MustGet is Get for known versions
func MustGet(v ProtocolVersion) *Context {
	ctx, err := Get(v)
	if err != nil {
		panic(err)
	}
	return ctx
}

func (c *Context) clone() *Context {
	cp := *c
	return &cp
}

// WithSuites returns a copy of c resolving hash functions from r. Segment
// hashes rejected by the version stay rejected.
func (c *Context) WithSuites(r *suite.Registry) *Context {
	cp := c.clone()
	cp.Suites = r
	cp.SegmentSuites = r.Without(RejectedSegmentHashes(c.Version)...)
	return cp
}

// WithMaxPo2 returns a copy of c accepting segments up to po2
func (c *Context) WithMaxPo2(po2 uint32) (*Context, error) {
	params, err := controlid.NewSegmentParams(c.Segment, defaultSuites, po2)
	if err != nil {
		return nil, err
	}
	cp := c.clone()
	cp.SegmentParams = params
	return cp, nil
}

// WithKernel returns a copy of c opening seals with k
func (c *Context) WithKernel(k kernel.CircuitKernel) *Context {
	cp := c.clone()
	cp.Kernel = k
	return cp
}

// ForAssumption returns the context an assumption proven under controlRoot
// is verified in. The zero root means the assumption shares c.
func (c *Context) ForAssumption(controlRoot core.Digest) *Context {
	if controlRoot.IsZero() {
		return c
	}
	cp := c.clone()
	cp.SuccinctParams = c.SuccinctParams.WithControlRoot(controlRoot)
	return cp
}

// ExtractPo2 reads the trace size from a segment seal of this version
func (c *Context) ExtractPo2(seal []uint32) (uint32, error) {
	return kernel.ExtractPo2(c.Segment, seal)
}
