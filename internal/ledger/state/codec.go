package state

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	id "chainid/pkg/domain"
	dErrors "chainid/pkg/domain-errors"
)

// Slot value encodings. Counters are 8 byte big-endian, booleans use the
// ARC-4 single byte form, addresses are stored raw.
const (
	boolTrue  byte = 0x80
	boolFalse byte = 0x00
)

// ErrCorruptSlot is returned when a stored value does not decode as the
// slot's type.
var ErrCorruptSlot = errors.New("state: corrupt slot")

func EncodeUint64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, 8), v)
}

func DecodeUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: uint64 slot has %d bytes", ErrCorruptSlot, len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func EncodeBool(v bool) []byte {
	if v {
		return []byte{boolTrue}
	}
	return []byte{boolFalse}
}

func DecodeBool(b []byte) (bool, error) {
	if len(b) != 1 {
		return false, fmt.Errorf("%w: bool slot has %d bytes", ErrCorruptSlot, len(b))
	}
	switch b[0] {
	case boolTrue:
		return true, nil
	case boolFalse:
		return false, nil
	default:
		return false, fmt.Errorf("%w: bool slot holds 0x%02x", ErrCorruptSlot, b[0])
	}
}

// GetUint64 reads a counter slot.
func GetUint64(ctx context.Context, r Immutable, key string) (uint64, error) {
	raw, err := r.GetValue(ctx, key)
	if err != nil {
		return 0, err
	}
	return DecodeUint64(raw)
}

// GetBool reads a flag slot.
func GetBool(ctx context.Context, r Immutable, key string) (bool, error) {
	raw, err := r.GetValue(ctx, key)
	if err != nil {
		return false, err
	}
	return DecodeBool(raw)
}

// GetAddress reads an account slot.
func GetAddress(ctx context.Context, r Immutable, key string) (id.Address, error) {
	raw, err := r.GetValue(ctx, key)
	if err != nil {
		return id.Address{}, err
	}
	if len(raw) != id.AddressLength {
		return id.Address{}, fmt.Errorf("%w: address slot has %d bytes", ErrCorruptSlot, len(raw))
	}
	return id.AddressFromBytes(raw)
}

// IncrementUint64 adds one to a counter slot. It fails instead of wrapping
// at math.MaxUint64.
func IncrementUint64(ctx context.Context, m Mutable, key string) (uint64, error) {
	current, err := GetUint64(ctx, m, key)
	if err != nil {
		return 0, err
	}
	if current == math.MaxUint64 {
		return 0, dErrors.New(dErrors.CodeInvariantViolation, "counter overflow")
	}
	next := current + 1
	if err := m.Insert(ctx, key, EncodeUint64(next)); err != nil {
		return 0, err
	}
	return next, nil
}
