package verifier

import (
	"errors"
	"fmt"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/circuit"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/kernel"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/receipt"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/suite"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/versions"
)

// checkInfo rejects contexts whose parameters name another proof system or
// circuit than the one they verify with
func checkInfo(psi, ci circuit.ProtocolInfo, def *circuit.Def) error {
	if psi != circuit.ProofSystemInfo {
		return newError(KindInvalidConfig, nil, "proof system info %s, expected %s", psi, circuit.ProofSystemInfo)
	}
	if ci != def.Info {
		return newError(KindInvalidConfig, nil, "circuit info %s, expected %s", ci, def.Info)
	}
	return nil
}

func resolveSuite(r *suite.Registry, name string) (suite.HashSuite, error) {
	hs, err := r.Resolve(name)
	if err != nil {
		return nil, newError(KindUnknownHashSuite, err, "hash function %q", name)
	}
	return hs, nil
}

// kernelError maps an opening failure to its kind
func kernelError(err error, what string) error {
	if kernel.IsControlMismatch(err) {
		return newError(KindControlIDMismatch, err, "%s", what)
	}
	return newError(KindInvalidProof, err, "%s", what)
}

// VerifySegment checks r against the segment circuit of ctx and returns the
// claim it proves
func VerifySegment(ctx *versions.Context, r *receipt.SegmentReceipt) (receipt.ReceiptClaim, error) {
	params := ctx.SegmentParams
	if err := checkInfo(params.ProofSystemInfo, params.CircuitInfo, ctx.Segment); err != nil {
		return receipt.ReceiptClaim{}, err
	}

	hs, err := resolveSuite(ctx.SegmentSuites, r.HashFn)
	if err != nil {
		return receipt.ReceiptClaim{}, err
	}

	po2, err := kernel.ExtractPo2(ctx.Segment, r.Seal)
	if err != nil {
		return receipt.ReceiptClaim{}, newError(KindInvalidProof, err, "segment %d seal", r.Index)
	}
	// the table only holds po2 values inside the circuit range
	controlID, ok := params.AllowedControlID(r.HashFn, po2)
	if !ok {
		return receipt.ReceiptClaim{}, newError(KindUnsupportedParameters, nil,
			"segment %d: no control id for %s at po2 %d (max %d)", r.Index, r.HashFn, po2, params.MaxPo2)
	}

	outputs, err := ctx.Kernel.Open(ctx.Segment, hs, r.Seal, kernel.ExpectControlID(controlID))
	if err != nil {
		return receipt.ReceiptClaim{}, kernelError(err, fmt.Sprintf("segment %d", r.Index))
	}

	decoded, err := decodeSegmentClaim(ctx.Version, outputs)
	if err != nil {
		return receipt.ReceiptClaim{}, newError(KindInvalidProof, err, "segment %d outputs", r.Index)
	}
	if got, want := decoded.Digest(), r.Claim.Digest(); got != want {
		return receipt.ReceiptClaim{}, newError(KindInvalidProof, nil,
			"segment %d: seal proves claim %s, receipt carries %s", r.Index, got, want)
	}
	return r.Claim, nil
}

// decodeSegmentClaim rebuilds the claim committed by segment outputs. From
// v2 on the circuit does not commit program counters and a halted segment
// has no post-state.
func decodeSegmentClaim(v versions.ProtocolVersion, outputs []uint32) (receipt.ReceiptClaim, error) {
	o, err := circuit.DecodeSegmentOutputs(outputs)
	if err != nil {
		return receipt.ReceiptClaim{}, err
	}
	exit, err := receipt.ExitCodeFromPair(o.SysExit, o.UserExit)
	if err != nil {
		return receipt.ReceiptClaim{}, err
	}

	pre := receipt.SystemState{PC: o.PrePC, MerkleRoot: o.PreRoot}
	post := receipt.SystemState{PC: o.PostPC, MerkleRoot: o.PostRoot}
	if v.Major() >= 2 {
		pre.PC, post.PC = 0, 0
		if exit.Kind == receipt.ExitHalted {
			post.MerkleRoot = core.ZeroDigest
		}
	}

	return receipt.ReceiptClaim{
		Pre:      receipt.Value(pre),
		Post:     receipt.Value(post),
		ExitCode: exit,
		Input:    o.Input,
		Output:   receipt.Pruned[receipt.Option[receipt.Output]](o.Output),
	}, nil
}

// SegmentOutputs is the inverse of the segment claim decoding, for provers
func SegmentOutputs(v versions.ProtocolVersion, def *circuit.Def, c receipt.ReceiptClaim) ([]uint32, error) {
	sys, user := c.ExitCode.Pair()
	pre, err := c.Pre.AsValue()
	if err != nil {
		return nil, fmt.Errorf("pre-state: %w", err)
	}
	post, err := c.Post.AsValue()
	if err != nil {
		return nil, fmt.Errorf("post-state: %w", err)
	}
	if v.Major() >= 2 && (pre.PC != 0 || post.PC != 0) {
		return nil, errors.New("program counters are not committed from v2 on")
	}
	if v.Major() >= 2 && c.ExitCode.Kind == receipt.ExitHalted && !post.MerkleRoot.IsZero() {
		return nil, errors.New("halted segments have no post-state from v2 on")
	}
	return circuit.EncodeSegmentOutputs(circuit.SegmentOutputs{
		Input:    c.Input,
		PrePC:    pre.PC,
		PreRoot:  pre.MerkleRoot,
		PostPC:   post.PC,
		PostRoot: post.MerkleRoot,
		SysExit:  sys,
		UserExit: user,
		Output:   c.Output.Digest(),
	}, def.OutputSize)
}
