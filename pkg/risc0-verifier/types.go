package risc0verifier

import (
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/receipt"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/utils"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/verifier"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/versions"
)

// ProtocolVersion selects the circuits and parameters a receipt is checked
// against
type ProtocolVersion = versions.ProtocolVersion

// Supported protocol versions
const (
	V1_0 = versions.V1_0
	V1_1 = versions.V1_1
	V1_2 = versions.V1_2
	V2_0 = versions.V2_0
	V2_1 = versions.V2_1
	V2_2 = versions.V2_2
	V3_0 = versions.V3_0

	// DefaultVersion is the latest supported version
	DefaultVersion = versions.Default
)

// Versions lists every supported protocol version, oldest first
func Versions() []ProtocolVersion {
	return append([]ProtocolVersion(nil), versions.All...)
}

// ParseVersion accepts "v1.2", "1.2", "V1_2" and "1_2" spellings
func ParseVersion(s string) (ProtocolVersion, error) {
	v, err := versions.Parse(s)
	if err != nil {
		return 0, &VerifierError{Code: ErrInvalidConfig, Message: "protocol version", Cause: err}
	}
	return v, nil
}

// Digest is a 256-bit hash
type Digest = core.Digest

// Proof is a receipt of any shape
type Proof = receipt.Proof

// SegmentInfo is the hash function and trace size of one segment
type SegmentInfo = verifier.SegmentInfo

// Config represents the configuration of a verifier and of the tools built
// around it
type Config = utils.Config

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}

// Vk is the image id of a program: the digest of its initial state
type Vk struct {
	d core.Digest
}

// VkFromWords builds a Vk from eight little-endian words
func VkFromWords(words [8]uint32) Vk {
	return Vk{d: core.DigestFromWords(words)}
}

// VkFromBytes builds a Vk from its 32 byte encoding
func VkFromBytes(b [32]byte) Vk {
	return Vk{d: core.DigestFromBytes(b)}
}

// ParseVk parses a 32 byte hex string, with or without 0x prefix
func ParseVk(s string) (Vk, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return Vk{}, &VerifierError{Code: ErrInvalidInput, Message: "vk hex", Cause: err}
	}
	d, err := core.DigestFromSlice(b)
	if err != nil {
		return Vk{}, &VerifierError{Code: ErrInvalidInput, Message: "vk length", Cause: err}
	}
	return Vk{d: d}, nil
}

// Words returns the word view of the key
func (v Vk) Words() [8]uint32 {
	return v.d.Words()
}

// Bytes returns the byte view of the key
func (v Vk) Bytes() [32]byte {
	return v.d.Bytes()
}

// Digest returns the key as a digest
func (v Vk) Digest() Digest {
	return v.d
}

// String returns the 0x prefixed hex encoding of the key
func (v Vk) String() string {
	b := v.d.Bytes()
	return hexutil.Encode(b[:])
}

// MarshalText implements encoding.TextMarshaler
func (v Vk) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (v *Vk) UnmarshalText(text []byte) error {
	parsed, err := ParseVk(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Journal is the public output of an execution
type Journal []byte

// Digest returns the SHA-256 digest committed by receipts
func (j Journal) Digest() Digest {
	return receipt.NewJournal(j).Digest()
}

// Statement is a key, journal and proof to verify under Version. Its JSON
// form is the one the generate command writes and the HTTP service reads.
type Statement struct {
	Version ProtocolVersion `json:"version"`
	Vk      Vk              `json:"vk"`
	Journal hexutil.Bytes   `json:"journal"`
	Proof   *Proof          `json:"proof"`
}

// UnmarshalJSON decodes a statement; a missing version means DefaultVersion
func (s *Statement) UnmarshalJSON(data []byte) error {
	type plain Statement
	p := plain{Version: DefaultVersion}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Statement(p)
	return nil
}
