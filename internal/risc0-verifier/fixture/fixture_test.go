package fixture

import (
	"testing"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/controlid"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/receipt"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/suite"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/versions"
)

// TestCompositeChains tests that generated segments chain and end as asked
func TestCompositeChains(t *testing.T) {
	for _, v := range []versions.ProtocolVersion{versions.V1_2, versions.V3_0} {
		t.Run(v.String(), func(t *testing.T) {
			p := MustNewProver(v)
			img := NewImage("chain")
			c, err := p.Composite(Session{Image: img, Journal: []byte("j"), Segments: 3})
			if err != nil {
				t.Fatalf("Composite() error: %v", err)
			}
			if len(c.Segments) != 3 {
				t.Fatalf("len(Segments) = %d", len(c.Segments))
			}
			if got := c.Segments[0].Claim.Pre.Digest(); got != p.ImageID(img) {
				t.Errorf("first pre-state %s is not the image id", got)
			}
			for i := 1; i < len(c.Segments); i++ {
				if c.Segments[i-1].Claim.Post.Digest() != c.Segments[i].Claim.Pre.Digest() {
					t.Errorf("segment %d does not continue segment %d", i, i-1)
				}
				if c.Segments[i-1].Claim.ExitCode != receipt.SystemSplit {
					t.Errorf("segment %d exit = %s", i-1, c.Segments[i-1].Claim.ExitCode)
				}
			}
			if err := receipt.NewCompositeProof(c).Validate(); err != nil {
				t.Errorf("Validate() error: %v", err)
			}
		})
	}
}

// TestGenerate tests every case shape
func TestGenerate(t *testing.T) {
	for _, shape := range Shapes {
		t.Run(shape, func(t *testing.T) {
			c, err := Generate(versions.V1_2, CaseOptions{Label: "gen", Journal: []byte("out"), Shape: shape})
			if err != nil {
				t.Fatalf("Generate() error: %v", err)
			}
			want := receipt.OkClaim(c.Vk, receipt.NewJournal(c.Journal).Digest()).Digest()
			got, err := c.Proof.Inner.ClaimDigest()
			if err != nil || got != want {
				t.Errorf("claim digest = %s, %v; want %s", got, err, want)
			}
		})
	}

	if _, err := Generate(versions.V1_2, CaseOptions{Shape: ShapeSegment, Segments: 2}); err == nil {
		t.Error("Generate() accepted a multi-segment segment proof")
	}
	if _, err := Generate(versions.V1_2, CaseOptions{Shape: "bogus"}); err == nil {
		t.Error("Generate() accepted an unknown shape")
	}
}

// TestSuccinctInclusion tests that succinct receipts carry a valid inclusion proof
func TestSuccinctInclusion(t *testing.T) {
	p := MustNewProver(versions.V2_0)
	sr, err := p.Succinct(receipt.Value(receipt.OkClaim(p.ImageID(NewImage("x")), receipt.NewJournal(nil).Digest())), controlid.ProgramUnion)
	if err != nil {
		t.Fatalf("Succinct() error: %v", err)
	}
	hs, _ := suite.Lookup(sr.HashFn)
	if err := sr.ControlInclusionProof.Verify(sr.ControlID, p.Context().SuccinctParams.ControlRoot, hs); err != nil {
		t.Errorf("inclusion proof does not verify: %v", err)
	}

	if _, err := MustNewProver(versions.V1_2).Succinct(sr.Claim, controlid.ProgramUnion); err == nil {
		t.Error("v1.2 has no union program")
	}

	under, err := p.Under([]string{controlid.ProgramIdentity})
	if err != nil {
		t.Fatalf("Under() error: %v", err)
	}
	if under.ControlRoot() == p.ControlRoot() {
		t.Error("Under() kept the release control root")
	}
}
