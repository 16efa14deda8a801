package core

import (
	"crypto/sha256"
	"encoding/binary"
)

// Digestible is implemented by values with a canonical SHA-256 digest
type Digestible interface {
	Digest() Digest
}

// HashBytes returns the SHA-256 digest of data
func HashBytes(data []byte) Digest {
	return DigestFromBytes(sha256.Sum256(data))
}

// HashWords returns the SHA-256 digest of the little-endian encoding of words
func HashWords(words []uint32) Digest {
	return HashBytes(WordsToBytes(words))
}

// TaggedStruct hashes a structure made of a tag, child digests and data words:
//
//	sha256(sha256(tag) || down[0] || ... || data[0] (LE) || ... || u16 LE len(down))
func TaggedStruct(tag string, down []Digest, data []uint32) Digest {
	tagDigest := HashBytes([]byte(tag))

	buf := make([]byte, 0, DigestBytes*(1+len(down))+4*len(data)+2)
	tb := tagDigest.Bytes()
	buf = append(buf, tb[:]...)
	for _, d := range down {
		db := d.Bytes()
		buf = append(buf, db[:]...)
	}
	for _, w := range data {
		buf = binary.LittleEndian.AppendUint32(buf, w)
	}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(down)))

	return HashBytes(buf)
}

// TaggedListCons prepends head to the list whose digest is tail
func TaggedListCons(tag string, head, tail Digest) Digest {
	return TaggedStruct(tag, []Digest{head, tail}, nil)
}

// TaggedList folds the list from the back. The empty list hashes to ZeroDigest.
func TaggedList(tag string, list []Digest) Digest {
	acc := ZeroDigest
	for i := len(list) - 1; i >= 0; i-- {
		acc = TaggedListCons(tag, list[i], acc)
	}
	return acc
}
