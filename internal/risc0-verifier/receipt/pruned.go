package receipt

import (
	"errors"
	"fmt"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/core"
)

// ErrPruned is returned when a value is needed but only its digest is known
var ErrPruned = errors.New("value is pruned")

// MaybePruned holds either a full value or only its digest. Both forms have
// the same digest, so pruning never changes a claim digest.
type MaybePruned[T core.Digestible] struct {
	Value  *T           `json:"value,omitempty" cbor:"1,keyasint,omitempty"`
	Pruned *core.Digest `json:"pruned,omitempty" cbor:"2,keyasint,omitempty"`
}

// Value wraps v
func Value[T core.Digestible](v T) MaybePruned[T] {
	return MaybePruned[T]{Value: &v}
}

// Pruned wraps the digest of an unknown value
func Pruned[T core.Digestible](d core.Digest) MaybePruned[T] {
	return MaybePruned[T]{Pruned: &d}
}

// Digest returns the digest of the held value or the pruned digest
func (m MaybePruned[T]) Digest() core.Digest {
	if m.Value != nil {
		return (*m.Value).Digest()
	}
	if m.Pruned != nil {
		return *m.Pruned
	}
	return core.ZeroDigest
}

// IsPruned reports whether only the digest is known
func (m MaybePruned[T]) IsPruned() bool {
	return m.Value == nil
}

// AsValue returns the held value or ErrPruned
func (m MaybePruned[T]) AsValue() (T, error) {
	if m.Value == nil {
		var zero T
		return zero, ErrPruned
	}
	return *m.Value, nil
}

// Prune returns the pruned form
func (m MaybePruned[T]) Prune() MaybePruned[T] {
	return Pruned[T](m.Digest())
}

func (m MaybePruned[T]) validate(field string) error {
	if (m.Value == nil) == (m.Pruned == nil) {
		return fmt.Errorf("%s: exactly one of value or pruned must be set", field)
	}
	return nil
}

// Option is an optional value whose absence digests to zero
type Option[T core.Digestible] struct {
	Some *T `json:"some,omitempty" cbor:"1,keyasint,omitempty"`
}

// Some wraps v
func Some[T core.Digestible](v T) Option[T] {
	return Option[T]{Some: &v}
}

// None returns the empty option
func None[T core.Digestible]() Option[T] {
	return Option[T]{}
}

// IsNone reports whether the option is empty
func (o Option[T]) IsNone() bool {
	return o.Some == nil
}

// Digest returns the value digest or zero for None
func (o Option[T]) Digest() core.Digest {
	if o.Some == nil {
		return core.ZeroDigest
	}
	return (*o.Some).Digest()
}
