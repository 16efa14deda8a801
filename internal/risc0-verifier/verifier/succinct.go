package verifier

import (
	"fmt"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/circuit"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/kernel"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/receipt"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/suite"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/versions"
)

// VerifySuccinct checks r against the recursion circuit of ctx and returns
// the digest of the claim it proves
//
// Verification steps:
// 1. Check the context parameters and resolve the hash suite
// 2. Open the seal, accepting only control ids included in the control root
// 3. Check the control root reported by the seal
// 4. Check the claim digest reported by the seal
func VerifySuccinct(ctx *versions.Context, r *receipt.SuccinctReceipt) (core.Digest, error) {
	params := ctx.SuccinctParams

	// Step 1: parameters and suite
	if err := checkInfo(params.ProofSystemInfo, params.CircuitInfo, ctx.Recursion); err != nil {
		return core.Digest{}, err
	}
	hs, err := resolveSuite(ctx.Suites, r.HashFn)
	if err != nil {
		return core.Digest{}, err
	}

	// Step 2: opening
	outputs, err := ctx.Kernel.Open(ctx.Recursion, hs, r.Seal, controlInclusion(r, params.ControlRoot, hs))
	if err != nil {
		return core.Digest{}, kernelError(err, "succinct receipt")
	}
	o, err := circuit.DecodeRecursionOutputs(outputs)
	if err != nil {
		return core.Digest{}, newError(KindInvalidProof, err, "succinct receipt outputs")
	}

	// Step 3: control root
	if want := params.ExpectedOutputRoot(); o.ControlRoot != want {
		return core.Digest{}, newError(KindControlIDMismatch, nil,
			"seal reports control root %s, expected %s", o.ControlRoot, want)
	}

	// Step 4: claim
	if want := r.Claim.Digest(); o.Claim != want {
		return core.Digest{}, newError(KindInvalidProof, nil,
			"seal proves claim %s, receipt carries %s", o.Claim, want)
	}
	return o.Claim, nil
}

// controlInclusion accepts the control id of the seal when it is the one the
// receipt names and its inclusion proof leads to root
func controlInclusion(r *receipt.SuccinctReceipt, root core.Digest, hs suite.HashSuite) kernel.ControlCheck {
	return func(_ uint32, controlID core.Digest) error {
		if controlID != r.ControlID {
			return fmt.Errorf("seal control id differs from receipt control id %s", r.ControlID)
		}
		return r.ControlInclusionProof.Verify(controlID, root, hs)
	}
}
