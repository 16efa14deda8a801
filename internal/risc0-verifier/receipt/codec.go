package receipt

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Wire formats
const (
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// Decoder limits for untrusted CBOR input
const (
	maxCBORArrayElements = 1 << 22
	maxCBORMapPairs      = 1 << 10
	maxCBORNesting       = 64
)

var (
	decMode cbor.DecMode
	encMode cbor.EncMode
)

func init() {
	var err error
	decMode, err = cbor.DecOptions{
		MaxArrayElements: maxCBORArrayElements,
		MaxMapPairs:      maxCBORMapPairs,
		MaxNestedLevels:  maxCBORNesting,
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("receipt: cbor decoder options: %v", err))
	}
	encOpts := cbor.CoreDetEncOptions()
	encOpts.NilContainers = cbor.NilContainerAsEmpty
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("receipt: cbor encoder options: %v", err))
	}
}

// Encode serializes p in the given format
func Encode(p *Proof, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.Marshal(p)
	case FormatCBOR:
		return encMode.Marshal(p)
	default:
		return nil, fmt.Errorf("unknown proof format %q", format)
	}
}

// Decode parses and validates a proof in the given format
func Decode(data []byte, format string) (*Proof, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(data)
	case FormatCBOR:
		return DecodeCBOR(data)
	default:
		return nil, fmt.Errorf("unknown proof format %q", format)
	}
}

// DecodeJSON parses and validates a JSON proof. Unknown fields are rejected.
func DecodeJSON(data []byte) (*Proof, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var p Proof
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrFormat, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: json: trailing data", ErrFormat)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// DecodeCBOR parses and validates a CBOR proof
func DecodeCBOR(data []byte) (*Proof, error) {
	var p Proof
	if err := decMode.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: cbor: %v", ErrFormat, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// DetectFormat guesses the format of data: JSON documents start with '{'
func DetectFormat(data []byte) string {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatCBOR
}
