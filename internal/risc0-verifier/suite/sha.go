package suite

import (
	"crypto/sha256"

	"golang.org/x/crypto/blake2b"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
)

type sha256Suite struct{}

func (sha256Suite) Name() string { return Sha256 }

func (sha256Suite) HashBytes(data []byte) core.Digest {
	return core.DigestFromBytes(sha256.Sum256(data))
}

func (sha256Suite) HashPair(left, right core.Digest) core.Digest {
	return core.DigestFromBytes(sha256.Sum256(pairBytes(left, right)))
}

type blake2bSuite struct{}

func (blake2bSuite) Name() string { return Blake2b }

func (blake2bSuite) HashBytes(data []byte) core.Digest {
	return core.DigestFromBytes(blake2b.Sum256(data))
}

func (blake2bSuite) HashPair(left, right core.Digest) core.Digest {
	return core.DigestFromBytes(blake2b.Sum256(pairBytes(left, right)))
}

func pairBytes(left, right core.Digest) []byte {
	buf := make([]byte, 0, 2*core.DigestBytes)
	lb, rb := left.Bytes(), right.Bytes()
	buf = append(buf, lb[:]...)
	return append(buf, rb[:]...)
}
