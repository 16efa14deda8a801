package verifier

import (
	"errors"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/receipt"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/versions"
)

// VerifyComposite checks every segment of r, the chaining between them and
// the receipts resolving the final segment's assumptions. It returns the
// claim of the whole execution.
func VerifyComposite(ctx *versions.Context, r *receipt.CompositeReceipt) (receipt.ReceiptClaim, error) {
	return verifyComposite(ctx, r, 0)
}

func verifyComposite(ctx *versions.Context, r *receipt.CompositeReceipt, depth int) (receipt.ReceiptClaim, error) {
	if len(r.Segments) == 0 {
		return receipt.ReceiptClaim{}, newError(KindReceiptFormat, nil, "composite receipt has no segments")
	}

	var expectedPre *core.Digest
	last := len(r.Segments) - 1
	for i := range r.Segments {
		seg := &r.Segments[i]
		claim, err := VerifySegment(ctx, seg)
		if err != nil {
			return receipt.ReceiptClaim{}, err
		}
		if expectedPre != nil && *expectedPre != claim.Pre.Digest() {
			return receipt.ReceiptClaim{}, newError(KindDiscontinuousExecution, nil,
				"segment %d pre-state %s does not continue post-state %s", i, claim.Pre.Digest(), *expectedPre)
		}
		if i == last {
			break
		}

		if claim.ExitCode != receipt.SystemSplit {
			return receipt.ReceiptClaim{}, newError(KindDiscontinuousExecution, nil,
				"segment %d exits with %s before the final segment", i, claim.ExitCode)
		}
		if !claim.Output.Digest().IsZero() {
			return receipt.ReceiptClaim{}, newError(KindDiscontinuousExecution, nil,
				"segment %d has output before the final segment", i)
		}
		post := claim.Post.Digest()
		expectedPre = &post
	}

	if err := verifyAssumptions(ctx, r, depth); err != nil {
		return receipt.ReceiptClaim{}, err
	}

	claim, err := r.Claim()
	if err != nil {
		return receipt.ReceiptClaim{}, newError(KindReceiptFormat, err, "composite claim")
	}
	return claim, nil
}

// verifyAssumptions requires one receipt per assumption, verified in the
// context the assumption names and proving exactly the assumed claim
func verifyAssumptions(ctx *versions.Context, r *receipt.CompositeReceipt, depth int) error {
	assumptions, err := r.Assumptions()
	if err != nil {
		return newError(KindReceiptFormat, err, "assumptions")
	}
	if len(assumptions) != len(r.AssumptionReceipts) {
		return newError(KindReceiptFormat, nil,
			"%d receipts provided for %d assumptions", len(r.AssumptionReceipts), len(assumptions))
	}
	if len(assumptions) > 0 && depth >= receipt.MaxAssumptionDepth {
		return newError(KindReceiptFormat, nil, "assumption receipts nested deeper than %d", receipt.MaxAssumptionDepth)
	}

	for i, a := range assumptions {
		inner := &r.AssumptionReceipts[i]
		got, err := verifyInner(ctx.ForAssumption(a.ControlRoot), inner, depth+1)
		if err != nil {
			var verr *Error
			if errors.As(err, &verr) {
				return newError(verr.Kind, err, "assumption %d", i)
			}
			return err
		}
		if got != a.Claim {
			return newError(KindClaimMismatch, nil,
				"assumption %d: receipt proves %s, assumption is %s", i, got, a.Claim)
		}
	}
	return nil
}

// verifyInner verifies any receipt shape and returns its claim digest
func verifyInner(ctx *versions.Context, r *receipt.InnerReceipt, depth int) (core.Digest, error) {
	switch r.Shape() {
	case receipt.ShapeSegment:
		c, err := VerifySegment(ctx, r.Segment)
		if err != nil {
			return core.Digest{}, err
		}
		return c.Digest(), nil
	case receipt.ShapeComposite:
		c, err := verifyComposite(ctx, r.Composite, depth)
		if err != nil {
			return core.Digest{}, err
		}
		return c.Digest(), nil
	case receipt.ShapeSuccinct:
		return VerifySuccinct(ctx, r.Succinct)
	default:
		return core.Digest{}, newError(KindReceiptFormat, nil, "receipt must hold exactly one of segment, composite or succinct")
	}
}
