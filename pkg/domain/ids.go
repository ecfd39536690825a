// Package domain provides the identifiers shared across the ledger host and its contracts.
package domain

import (
	"bytes"
	"crypto/sha512"
	"encoding/base32"
	"strconv"
	"strings"

	dErrors "chainid/pkg/domain-errors"
)

// AddressLength is the size of a raw account address in bytes.
const AddressLength = 32

const checksumLength = 4

// addressEncoding is unpadded RFC 4648 base32, the text form accounts are shared in.
var addressEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Address identifies an account. The zero value is the zero address, which is a
// valid (if unusual) account and is never treated as "unset" by contracts.
type Address [AddressLength]byte

// ZeroAddress is the all-zero account.
var ZeroAddress Address

// ParseAddress parses the 58 character checksummed text form of an address.
func ParseAddress(s string) (Address, error) {
	var addr Address
	s = strings.TrimSpace(s)
	if s == "" {
		return addr, dErrors.New(dErrors.CodeInvalidInput, "address cannot be empty")
	}
	raw, err := addressEncoding.DecodeString(s)
	if err != nil {
		return addr, dErrors.Wrap(err, dErrors.CodeInvalidInput, "address is not valid base32")
	}
	if len(raw) != AddressLength+checksumLength {
		return addr, dErrors.New(dErrors.CodeInvalidInput, "address has wrong length")
	}
	copy(addr[:], raw[:AddressLength])
	if !bytes.Equal(raw[AddressLength:], addr.checksum()) {
		return Address{}, dErrors.New(dErrors.CodeInvalidInput, "address checksum mismatch")
	}
	return addr, nil
}

// AddressFromBytes converts a raw 32 byte value into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var addr Address
	if len(b) != AddressLength {
		return addr, dErrors.New(dErrors.CodeInvalidInput, "address must be 32 bytes")
	}
	copy(addr[:], b)
	return addr, nil
}

// String returns the checksummed text form.
func (a Address) String() string {
	buf := make([]byte, 0, AddressLength+checksumLength)
	buf = append(buf, a[:]...)
	buf = append(buf, a.checksum()...)
	return addressEncoding.EncodeToString(buf)
}

// Bytes returns a copy of the raw address.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a[:])
	return out
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool { return a == ZeroAddress }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Address) checksum() []byte {
	sum := sha512.Sum512_256(a[:])
	return sum[len(sum)-checksumLength:]
}

// AppID identifies one deployment of a contract on the ledger. IDs start at 1.
type AppID uint64

// ParseAppID parses a decimal application id.
func ParseAppID(s string) (AppID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "app ID cannot be empty")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "app ID must be a positive integer")
	}
	if n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "app ID must be a positive integer")
	}
	return AppID(n), nil
}

func (id AppID) String() string { return strconv.FormatUint(uint64(id), 10) }

// IsNil reports whether the id is unset.
func (id AppID) IsNil() bool { return id == 0 }
