package core

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// DigestWords is the number of 32-bit words in a Digest
	DigestWords = 8

	// DigestBytes is the byte length of a Digest
	DigestBytes = 4 * DigestWords
)

// Digest is a 256-bit hash value stored as eight 32-bit words.
// The byte view is the little-endian encoding of each word in order.
type Digest [DigestWords]uint32

// ZeroDigest is the all-zero digest
var ZeroDigest Digest

// DigestFromWords builds a Digest from its word representation
func DigestFromWords(words [DigestWords]uint32) Digest {
	return Digest(words)
}

// DigestFromBytes builds a Digest from its byte representation
func DigestFromBytes(b [DigestBytes]byte) Digest {
	var d Digest
	for i := range d {
		d[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	return d
}

// DigestFromSlice builds a Digest from a 32-byte slice
func DigestFromSlice(b []byte) (Digest, error) {
	if len(b) != DigestBytes {
		return Digest{}, fmt.Errorf("digest must be %d bytes, got %d", DigestBytes, len(b))
	}
	var arr [DigestBytes]byte
	copy(arr[:], b)
	return DigestFromBytes(arr), nil
}

// DigestFromHex parses a 64 character hex string, with or without 0x prefix
func DigestFromHex(s string) (Digest, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, fmt.Errorf("invalid digest hex: %w", err)
	}
	return DigestFromSlice(b)
}

// MustDigestFromHex is DigestFromHex for package level constants
func MustDigestFromHex(s string) Digest {
	d, err := DigestFromHex(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Bytes returns the byte view of the digest
func (d Digest) Bytes() [DigestBytes]byte {
	var out [DigestBytes]byte
	for i, w := range d {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	return out
}

// Words returns the word view of the digest
func (d Digest) Words() [DigestWords]uint32 {
	return d
}

// IsZero reports whether d is the zero digest
func (d Digest) IsZero() bool {
	return d == ZeroDigest
}

// Compare orders digests word by word. It returns -1, 0 or +1.
func (d Digest) Compare(other Digest) int {
	for i := range d {
		switch {
		case d[i] < other[i]:
			return -1
		case d[i] > other[i]:
			return 1
		}
	}
	return 0
}

// String returns the hex encoding of the byte view
func (d Digest) String() string {
	b := d.Bytes()
	return hex.EncodeToString(b[:])
}

// MarshalText implements encoding.TextMarshaler
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := DigestFromHex(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (d Digest) MarshalBinary() ([]byte, error) {
	b := d.Bytes()
	return b[:], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (d *Digest) UnmarshalBinary(data []byte) error {
	parsed, err := DigestFromSlice(data)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// WordsToBytes returns the little-endian byte encoding of words
func WordsToBytes(words []uint32) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	return out
}
