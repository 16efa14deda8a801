// Package verifier reduces receipts of every shape to the claim they prove
// and binds that claim to an image id and a journal. Verification is a pure
// function of its inputs: it does no I/O and keeps no state.
package verifier

import (
	"slices"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/kernel"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/receipt"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/versions"
)

// Verify checks that proof shows the program imageID halting successfully
// with a journal whose digest is journalDigest
func Verify(ctx *versions.Context, imageID core.Digest, proof *receipt.Proof, journalDigest core.Digest) error {
	got, err := VerifyIntegrity(ctx, proof)
	if err != nil {
		return err
	}
	expected := receipt.OkClaim(imageID, journalDigest).Digest()
	if got != expected {
		return newError(KindClaimMismatch, nil, "receipt proves claim %s, expected %s", got, expected)
	}
	return nil
}

// VerifyIntegrity checks proof and returns the digest of the claim it
// proves without comparing it to any expectation
func VerifyIntegrity(ctx *versions.Context, proof *receipt.Proof) (core.Digest, error) {
	if ctx == nil {
		return core.Digest{}, newError(KindInvalidConfig, nil, "nil verifier context")
	}
	if proof == nil {
		return core.Digest{}, newError(KindInvalidInput, nil, "nil proof")
	}
	if err := proof.Validate(); err != nil {
		return core.Digest{}, newError(KindReceiptFormat, err, "proof")
	}
	if err := checkAccepted(ctx, proof); err != nil {
		return core.Digest{}, err
	}
	return verifyInner(ctx, &proof.Inner, 0)
}

// checkAccepted rejects segment hash labels the version does not trust
func checkAccepted(ctx *versions.Context, proof *receipt.Proof) error {
	rejected := versions.RejectedSegmentHashes(ctx.Version)
	if len(rejected) == 0 {
		return nil
	}
	var segments []receipt.SegmentReceipt
	switch proof.Inner.Shape() {
	case receipt.ShapeSegment:
		segments = []receipt.SegmentReceipt{*proof.Inner.Segment}
	case receipt.ShapeComposite:
		segments = proof.Inner.Composite.Segments
	}
	for _, s := range segments {
		if slices.Contains(rejected, s.HashFn) {
			return newError(KindReceiptFormat, nil, "%s segments are not accepted by %s", s.HashFn, ctx.Version)
		}
	}
	return nil
}

// SegmentInfo is the hash function and trace size of one segment
type SegmentInfo struct {
	Hash string `json:"hash"`
	Po2  uint32 `json:"po2"`
}

// ExtractSegmentsInfo reads the hash function and po2 of every segment of a
// composite receipt without verifying anything
func ExtractSegmentsInfo(ctx *versions.Context, r *receipt.CompositeReceipt) ([]SegmentInfo, error) {
	infos := make([]SegmentInfo, len(r.Segments))
	for i, s := range r.Segments {
		po2, err := kernel.ExtractPo2(ctx.Segment, s.Seal)
		if err != nil {
			return nil, newError(KindReceiptFormat, err, "segment %d", i)
		}
		infos[i] = SegmentInfo{Hash: s.HashFn, Po2: po2}
	}
	return infos, nil
}
