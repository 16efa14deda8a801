// Package versions maps prover releases to immutable verifier contexts.
package versions

import (
	"fmt"
	"strings"
)

// ProtocolVersion identifies a prover release line
type ProtocolVersion int

const (
	V1_0 ProtocolVersion = iota
	V1_1
	V1_2
	V2_0
	V2_1
	V2_2
	V3_0
)

// Default is the version used when none is given
const Default = V3_0

// All lists every supported version, oldest first
var All = []ProtocolVersion{V1_0, V1_1, V1_2, V2_0, V2_1, V2_2, V3_0}

var names = [...]string{
	V1_0: "v1.0",
	V1_1: "v1.1",
	V1_2: "v1.2",
	V2_0: "v2.0",
	V2_1: "v2.1",
	V2_2: "v2.2",
	V3_0: "v3.0",
}

// Valid reports whether v is a known version
func (v ProtocolVersion) Valid() bool {
	return v >= V1_0 && v <= V3_0
}

// Major returns the release line of v
func (v ProtocolVersion) Major() int {
	switch {
	case v >= V3_0:
		return 3
	case v >= V2_0:
		return 2
	default:
		return 1
	}
}

func (v ProtocolVersion) String() string {
	if !v.Valid() {
		return fmt.Sprintf("ProtocolVersion(%d)", int(v))
	}
	return names[v]
}

// MarshalText implements encoding.TextMarshaler
func (v ProtocolVersion) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid protocol version %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (v *ProtocolVersion) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Parse accepts "v1.2", "1.2", "V1_2" and "1_2" spellings
func Parse(s string) (ProtocolVersion, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.TrimPrefix(norm, "v")
	norm = strings.ReplaceAll(norm, "_", ".")
	for v, name := range names {
		if name[1:] == norm {
			return ProtocolVersion(v), nil
		}
	}
	return 0, fmt.Errorf("unknown protocol version %q", s)
}
