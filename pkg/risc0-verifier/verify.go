package risc0verifier

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/receipt"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/utils"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/verifier"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/versions"
)

// Verifier checks receipts of one protocol version
type Verifier interface {
	// Version returns the protocol version receipts are checked against
	Version() ProtocolVersion

	// Verify checks that proof shows the program vk halting successfully
	// with the given journal
	Verify(vk Vk, proof *Proof, journal Journal) error

	// VerifyIntegrity checks proof and returns the digest of the claim it
	// proves, without binding it to a key or journal
	VerifyIntegrity(proof *Proof) (Digest, error)

	// ExtractPo2 reads the trace size of a segment seal
	ExtractPo2(seal []uint32) (uint32, error)

	// SegmentsInfo reads the hash function and po2 of every segment of a
	// composite proof
	SegmentsInfo(proof *Proof) ([]SegmentInfo, error)

	// Parameters describes what the verifier accepts
	Parameters() Parameters
}

// Parameters are the verifier parameters of one protocol version. Provers
// stamp the two digests into the receipts they produce.
type Parameters struct {
	Version        ProtocolVersion `json:"version"`
	SegmentParams  Digest          `json:"segment_params"`
	SuccinctParams Digest          `json:"succinct_params"`
	ControlRoot    Digest          `json:"control_root"`
	MaxPo2         uint32          `json:"max_po2"`
	SegmentHashes  []string        `json:"segment_hashes"`
	SuccinctHashes []string        `json:"succinct_hashes"`
}

// verifierImpl is the internal implementation of Verifier
type verifierImpl struct {
	ctx *versions.Context
}

// NewVerifier returns the verifier of v
func NewVerifier(v ProtocolVersion) (Verifier, error) {
	ctx, err := versions.Get(v)
	if err != nil {
		return nil, &VerifierError{Code: ErrInvalidConfig, Message: "protocol version", Cause: err}
	}
	return &verifierImpl{ctx: ctx}, nil
}

// NewVerifierFromConfig returns the verifier selected by config
func NewVerifierFromConfig(config *Config) (Verifier, error) {
	if config == nil {
		config = utils.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, &VerifierError{Code: ErrInvalidConfig, Message: "config", Cause: err}
	}

	v := DefaultVersion
	if config.ProtocolVersion != "" {
		parsed, err := ParseVersion(config.ProtocolVersion)
		if err != nil {
			return nil, err
		}
		v = parsed
	}

	ctx, err := versions.Get(v)
	if err != nil {
		return nil, &VerifierError{Code: ErrInvalidConfig, Message: "protocol version", Cause: err}
	}
	if config.MaxPo2 != 0 {
		ctx, err = ctx.WithMaxPo2(config.MaxPo2)
		if err != nil {
			return nil, &VerifierError{Code: ErrInvalidConfig, Message: "max po2", Cause: err}
		}
	}
	return &verifierImpl{ctx: ctx}, nil
}

func mustVerifier(v ProtocolVersion) Verifier {
	return &verifierImpl{ctx: versions.MustGet(v)}
}

// V1_0Verifier returns the verifier of protocol version 1.0
func V1_0Verifier() Verifier { return mustVerifier(V1_0) }

// V1_1Verifier returns the verifier of protocol version 1.1
func V1_1Verifier() Verifier { return mustVerifier(V1_1) }

// V1_2Verifier returns the verifier of protocol version 1.2
func V1_2Verifier() Verifier { return mustVerifier(V1_2) }

// V2_0Verifier returns the verifier of protocol version 2.0
func V2_0Verifier() Verifier { return mustVerifier(V2_0) }

// V2_1Verifier returns the verifier of protocol version 2.1
func V2_1Verifier() Verifier { return mustVerifier(V2_1) }

// V2_2Verifier returns the verifier of protocol version 2.2
func V2_2Verifier() Verifier { return mustVerifier(V2_2) }

// V3_0Verifier returns the verifier of protocol version 3.0
func V3_0Verifier() Verifier { return mustVerifier(V3_0) }

func (v *verifierImpl) Version() ProtocolVersion {
	return v.ctx.Version
}

func (v *verifierImpl) Verify(vk Vk, proof *Proof, journal Journal) error {
	return wrap(verifier.Verify(v.ctx, vk.Digest(), proof, journal.Digest()))
}

func (v *verifierImpl) VerifyIntegrity(proof *Proof) (Digest, error) {
	d, err := verifier.VerifyIntegrity(v.ctx, proof)
	return d, wrap(err)
}

func (v *verifierImpl) ExtractPo2(seal []uint32) (uint32, error) {
	po2, err := v.ctx.ExtractPo2(seal)
	if err != nil {
		return 0, &VerifierError{Code: ErrReceiptFormat, Message: "segment seal", Cause: err}
	}
	return po2, nil
}

func (v *verifierImpl) Parameters() Parameters {
	return Parameters{
		Version:        v.ctx.Version,
		SegmentParams:  v.ctx.SegmentParams.Digest(),
		SuccinctParams: v.ctx.SuccinctParams.Digest(),
		ControlRoot:    v.ctx.SuccinctParams.ControlRoot,
		MaxPo2:         v.ctx.SegmentParams.MaxPo2,
		SegmentHashes:  v.ctx.SegmentSuites.Names(),
		SuccinctHashes: v.ctx.Suites.Names(),
	}
}

func (v *verifierImpl) SegmentsInfo(proof *Proof) ([]SegmentInfo, error) {
	if proof == nil {
		return nil, invalidInput("nil proof")
	}
	switch proof.Inner.Shape() {
	case receipt.ShapeComposite:
		infos, err := verifier.ExtractSegmentsInfo(v.ctx, proof.Inner.Composite)
		return infos, wrap(err)
	case receipt.ShapeSegment:
		infos, err := verifier.ExtractSegmentsInfo(v.ctx, &receipt.CompositeReceipt{
			Segments: []receipt.SegmentReceipt{*proof.Inner.Segment},
		})
		return infos, wrap(err)
	default:
		return nil, invalidInput("%s proofs have no segments", proof.Inner.Shape())
	}
}

// Verify checks proof under protocol version v
func Verify(v ProtocolVersion, vk Vk, proof *Proof, journal Journal) error {
	ver, err := NewVerifier(v)
	if err != nil {
		return err
	}
	return ver.Verify(vk, proof, journal)
}

// VerifyDefaultVersion checks proof under the latest protocol version
func VerifyDefaultVersion(vk Vk, proof *Proof, journal Journal) error {
	return Verify(DefaultVersion, vk, proof, journal)
}

// ExtractPo2 reads the trace size of a segment seal of version v
func ExtractPo2(v ProtocolVersion, seal []uint32) (uint32, error) {
	ver, err := NewVerifier(v)
	if err != nil {
		return 0, err
	}
	return ver.ExtractPo2(seal)
}

// VerifyStatement checks a self-describing statement with the verifier of
// its version
func VerifyStatement(s *Statement) error {
	if s == nil {
		return invalidInput("nil statement")
	}
	return Verify(s.Version, s.Vk, s.Proof, Journal(s.Journal))
}

// Job is one verification of a batch
type Job struct {
	Vk      Vk
	Proof   *Proof
	Journal Journal
}

// BatchOptions tunes VerifyBatch
type BatchOptions struct {
	// Workers bounds concurrent verifications; 0 means one per CPU
	Workers int

	// OnDone is called after each job, possibly from several goroutines
	OnDone func(index int, err error)
}

// VerifyBatch verifies jobs concurrently with v. The returned slice holds
// the outcome of each job; the error is only set if ctx ends the batch
// early, in which case unfinished jobs hold the context error.
func VerifyBatch(ctx context.Context, v Verifier, jobs []Job, opts BatchOptions) ([]error, error) {
	if v == nil {
		return nil, invalidInput("nil verifier")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]error, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range jobs {
		if gctx.Err() != nil {
			for j := i; j < len(jobs); j++ {
				results[j] = gctx.Err()
			}
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = err
				return nil
			}
			job := jobs[i]
			results[i] = v.Verify(job.Vk, job.Proof, job.Journal)
			if opts.OnDone != nil {
				opts.OnDone(i, results[i])
			}
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("batch interrupted: %w", err)
	}
	return results, nil
}

// DecodeProof parses and validates a proof; format is "json", "cbor" or
// "auto"
func DecodeProof(data []byte, format string) (*Proof, error) {
	switch format {
	case "", utils.FormatAuto:
		format = receipt.DetectFormat(data)
	case receipt.FormatJSON, receipt.FormatCBOR:
	default:
		return nil, invalidInput("unknown proof format %q", format)
	}
	p, err := receipt.Decode(data, format)
	if err != nil {
		return nil, wrap(err)
	}
	return p, nil
}

// EncodeProof serializes a proof as "json" or "cbor"
func EncodeProof(p *Proof, format string) ([]byte, error) {
	if p == nil {
		return nil, invalidInput("nil proof")
	}
	data, err := receipt.Encode(p, format)
	if err != nil {
		return nil, &VerifierError{Code: ErrInvalidInput, Message: "encode proof", Cause: err}
	}
	return data, nil
}
