package e2e

import (
	"crypto/sha512"
	"encoding/base32"
)

var addressEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// accountAddress derives a stable account address from a scenario name such
// as "A" or "U1", in the server's checksummed text form.
func accountAddress(name string) string {
	raw := sha512.Sum512_256([]byte("chainid-e2e:" + name))
	sum := sha512.Sum512_256(raw[:])
	buf := append(raw[:], sum[len(sum)-4:]...)
	return addressEncoding.EncodeToString(buf)
}
